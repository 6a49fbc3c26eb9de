package model

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestBalanceAt(t *testing.T) {
	history := []BalanceHistory{
		{ID: 1, Balance: d("100"), Date: NewDate(2024, time.January, 1)},
		{ID: 3, Balance: d("80"), Date: NewDate(2024, time.January, 10)},
		{ID: 2, Balance: d("90"), Date: NewDate(2024, time.January, 10)},
		{ID: 4, Balance: d("120"), Date: NewDate(2024, time.February, 1)},
	}
	current := d("120")

	tests := []struct {
		name string
		date Date
		want string
	}{
		{"before any history falls back", NewDate(2023, time.December, 31), "120"},
		{"exact first day", NewDate(2024, time.January, 1), "100"},
		{"between snapshots", NewDate(2024, time.January, 5), "100"},
		{"same day takes latest insert", NewDate(2024, time.January, 10), "80"},
		{"after all", NewDate(2025, time.January, 1), "120"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BalanceAt(history, tt.date, current); !got.Equal(d(tt.want)) {
				t.Errorf("BalanceAt = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestSortHistory(t *testing.T) {
	history := []BalanceHistory{
		{ID: 3, Date: NewDate(2024, time.March, 1)},
		{ID: 2, Date: NewDate(2024, time.January, 1)},
		{ID: 1, Date: NewDate(2024, time.January, 1)},
	}
	SortHistory(history)
	for i, want := range []int64{1, 2, 3} {
		if history[i].ID != want {
			t.Errorf("history[%d].ID = %d, want %d", i, history[i].ID, want)
		}
	}
}

func TestBudgetRetotal(t *testing.T) {
	b := Budget{TotalAmount: decimal.NewFromInt(500), CurrentBalance: decimal.NewFromInt(320)}
	b.Retotal(decimal.NewFromInt(600))
	if !b.CurrentBalance.Equal(decimal.NewFromInt(420)) {
		t.Errorf("current = %s, want 420", b.CurrentBalance)
	}
	if !b.Spent().Equal(decimal.NewFromInt(180)) {
		t.Errorf("spent = %s, want 180", b.Spent())
	}
}
