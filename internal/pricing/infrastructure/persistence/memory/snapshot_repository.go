// Package memory 进程内行情快照仓储
package memory

import (
	"sync/atomic"
	"time"

	"github.com/wyfcoding/smilepricing/internal/pricing/domain"
)

// SnapshotRepository 以原子指针持有当前快照，替换即整体交换
type SnapshotRepository struct {
	current atomic.Pointer[domain.Snapshot]
	version atomic.Uint64
	now     func() time.Time
}

// NewSnapshotRepository 创建仓储，初始为空快照
func NewSnapshotRepository() *SnapshotRepository {
	r := &SnapshotRepository{now: time.Now}
	r.current.Store(domain.NewSnapshot(nil))
	return r
}

// Load 返回当前快照
func (r *SnapshotRepository) Load() *domain.Snapshot {
	return r.current.Load()
}

// Replace 分配版本号后整体替换，并发替换以最后写入为准
func (r *SnapshotRepository) Replace(s *domain.Snapshot) *domain.Snapshot {
	next := &domain.Snapshot{
		Rows:       s.Rows,
		Version:    r.version.Add(1),
		UploadedAt: r.now().UTC(),
	}
	r.current.Store(next)
	return next
}
