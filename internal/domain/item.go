package domain

import (
	"math"
	"sort"
)

type Item struct {
	IRI       string
	ID        string
	Category  Category
	Number    int
	HasNumber bool
	Approval  Approval
	Previous  string
}

// IsNew reports whether the item first appeared on its agenda.
func (i *Item) IsNew() bool { return i.Previous == "" }

// NotOK reports whether the item carries an explicit approval flag that is
// not the formally-OK value.
func (i *Item) NotOK() bool { return i.Approval == ApprovalNotOK }

func (i *Item) sortNumber() int {
	if !i.HasNumber {
		return math.MaxInt
	}
	return i.Number
}

// SortItems orders items by category, then number, then id. Items without
// a number sort after numbered ones.
func SortItems(items []*Item) {
	sort.SliceStable(items, func(a, b int) bool {
		x, y := items[a], items[b]
		if x.Category != y.Category {
			return x.Category == CategoryNote
		}
		if x.sortNumber() != y.sortNumber() {
			return x.sortNumber() < y.sortNumber()
		}
		return x.ID < y.ID
	})
}
