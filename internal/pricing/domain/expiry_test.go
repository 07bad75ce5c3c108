package domain

import (
	"errors"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExpiryDate(t *testing.T) {
	tests := []struct {
		symbol string
		tenor  string
		want   time.Time
	}{
		{"BRN", "Jan24", date(2023, time.November, 30)},
		{"HH", "Mar24", date(2024, time.February, 29)},
		{"BRN", "Mar24", date(2024, time.January, 31)},
		// 2024-06-30 is a Sunday
		{"HH", "Jul24", date(2024, time.June, 28)},
		{"BRN", "jan24", date(2023, time.November, 30)},
		{"HH", "JAN24", date(2023, time.December, 29)},
	}

	for _, tc := range tests {
		got, err := ExpiryDate(tc.symbol, tc.tenor)
		if err != nil {
			t.Fatalf("ExpiryDate(%s, %s): unexpected error: %v", tc.symbol, tc.tenor, err)
		}
		if !got.Equal(tc.want) {
			t.Fatalf("ExpiryDate(%s, %s) = %s, want %s", tc.symbol, tc.tenor, got.Format("2006-01-02"), tc.want.Format("2006-01-02"))
		}
	}
}

func TestExpiryDateUnsupportedSymbol(t *testing.T) {
	for _, symbol := range []string{"WTI", "", "brn", "TTF"} {
		_, err := ExpiryDate(symbol, "Jan24")
		if !errors.Is(err, ErrUnsupportedSymbol) {
			t.Fatalf("symbol %q: expected UnsupportedSymbol, got %v", symbol, err)
		}
	}
}

func TestExpiryDateInvalidTenor(t *testing.T) {
	for _, tenor := range []string{"", "Foo24", "Jan2024", "2024-01", "Jan"} {
		_, err := ExpiryDate("BRN", tenor)
		if !errors.Is(err, ErrInvalidTenor) {
			t.Fatalf("tenor %q: expected InvalidTenor, got %v", tenor, err)
		}
	}
}

func TestLastBusinessDay(t *testing.T) {
	// 2023-09-30 is a Saturday
	if got := LastBusinessDay(date(2023, time.September, 5)); !got.Equal(date(2023, time.September, 29)) {
		t.Fatalf("got %s", got.Format("2006-01-02"))
	}
	if got := LastBusinessDay(date(2023, time.November, 1)); !got.Equal(date(2023, time.November, 30)) {
		t.Fatalf("got %s", got.Format("2006-01-02"))
	}
}

func TestYearFraction(t *testing.T) {
	today := date(2023, time.March, 16)
	expiry := date(2023, time.November, 30)
	if n := DaysBetween(today, expiry); n != 259 {
		t.Fatalf("DaysBetween = %d, want 259", n)
	}
	if got, want := YearFraction(today, expiry), 259.0/365; got != want {
		t.Fatalf("YearFraction = %v, want %v", got, want)
	}
}
