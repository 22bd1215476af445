package frame

import (
	"sort"
	"strings"
)

// Group is one distinct key tuple and the rows that carry it, in table
// order.
type Group struct {
	Key  []Value
	Rows []int
}

// GroupBy partitions the rows of t by the tuple of the named columns.
//
// Null cells are coalesced to a private placeholder while grouping, so rows
// with a null in the same key column land in the same group, and the
// group's Key holds the original null again. Groups come out in order of
// first appearance.
func GroupBy(t *Table, names []string) ([]Group, error) {
	return GroupRows(t, names, nil)
}

// GroupRows is GroupBy restricted to a subset of rows. A nil rows slice
// means every row.
func GroupRows(t *Table, names []string, rows []int) ([]Group, error) {
	readers := make([]func(int) Value, len(names))
	for i, n := range names {
		get, err := t.reader("frame.GroupBy", n)
		if err != nil {
			return nil, err
		}
		readers[i] = get
	}

	index := make(map[string]int)
	var groups []Group
	var b strings.Builder
	add := func(r int) {
		b.Reset()
		for _, get := range readers {
			get(r).appendKey(&b)
		}
		k := b.String()
		gi, ok := index[k]
		if !ok {
			key := make([]Value, len(readers))
			for i, get := range readers {
				key[i] = get(r)
			}
			gi = len(groups)
			index[k] = gi
			groups = append(groups, Group{Key: key})
		}
		groups[gi].Rows = append(groups[gi].Rows, r)
	}

	if rows == nil {
		for r := 0; r < t.rows; r++ {
			add(r)
		}
	} else {
		for _, r := range rows {
			add(r)
		}
	}
	return groups, nil
}

// KeyOf encodes a key tuple the same way GroupBy does, for set lookups.
func KeyOf(vals []Value) string {
	var b strings.Builder
	for _, v := range vals {
		v.appendKey(&b)
	}
	return b.String()
}

// CheckUnique fails with a DuplicateKeyError if any tuple of the named
// columns occurs on more than one row.
func CheckUnique(t *Table, op string, names []string) error {
	groups, err := GroupBy(t, names)
	if err != nil {
		return err
	}
	for _, g := range groups {
		if len(g.Rows) > 1 {
			return &DuplicateKeyError{Op: op, Columns: append([]string(nil), names...), Key: g.Key}
		}
	}
	return nil
}

// SortRows stably sorts rows in place by the named columns, ascending,
// nulls last.
func SortRows(t *Table, names []string, rows []int) error {
	readers := make([]func(int) Value, len(names))
	for i, n := range names {
		get, err := t.reader("frame.SortRows", n)
		if err != nil {
			return err
		}
		readers[i] = get
	}
	sort.SliceStable(rows, func(a, b int) bool {
		for _, get := range readers {
			if c := Compare(get(rows[a]), get(rows[b])); c != 0 {
				return c < 0
			}
		}
		return false
	})
	return nil
}

// SortBy returns a copy of t with rows stably sorted by the named columns.
func SortBy(t *Table, names ...string) (*Table, error) {
	rows := make([]int, t.rows)
	for i := range rows {
		rows[i] = i
	}
	if err := SortRows(t, names, rows); err != nil {
		return nil, err
	}
	return t.Take(rows), nil
}
