package domain

// SnapshotRepository 当前行情快照的持有者
// 读者总是看到某一次完整替换前或后的快照，不会看到中间状态
type SnapshotRepository interface {
	// Load 返回当前快照，从未上传时返回空快照
	Load() *Snapshot
	// Replace 整体替换快照，返回分配了版本号的新快照
	Replace(s *Snapshot) *Snapshot
}
