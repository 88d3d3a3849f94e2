package domain

import (
	"fmt"
	"sort"
	"strings"
)

// SortKey names the column a directory listing is ordered by.
type SortKey uint8

const (
	SortByID SortKey = iota
	SortByName
	SortByAge
	SortBySalary
)

// SortKeys lists every key in column order.
var SortKeys = []SortKey{SortByID, SortByName, SortByAge, SortBySalary}

// String returns a stable string representation of the sort key.
func (k SortKey) String() string {
	switch k {
	case SortByID:
		return "id"
	case SortByName:
		return "name"
	case SortByAge:
		return "age"
	case SortBySalary:
		return "salary"
	default:
		return fmt.Sprintf("SortKey(%d)", k)
	}
}

// Next returns the following key in column order, wrapping around.
func (k SortKey) Next() SortKey {
	return SortKeys[(int(k)+1)%len(SortKeys)]
}

// ParseSortKey converts a string into a SortKey (case-insensitive).
// The empty string selects SortByID.
func ParseSortKey(s string) (SortKey, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "id":
		return SortByID, nil
	case "name":
		return SortByName, nil
	case "age":
		return SortByAge, nil
	case "salary":
		return SortBySalary, nil
	default:
		return 0, fmt.Errorf("unsupported sort key: %q", s)
	}
}

// Query selects and orders employees. Name is matched as a case-insensitive
// substring; an empty Name matches everyone.
type Query struct {
	Name   string
	SortBy SortKey
	Desc   bool
}

// Less reports whether a sorts before b under key k, ascending.
// Ties fall back to ID so the order is total.
func (k SortKey) Less(a, b Employee) bool {
	switch k {
	case SortByName:
		an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
		if an != bn {
			return an < bn
		}
	case SortByAge:
		if a.Age != b.Age {
			return a.Age < b.Age
		}
	case SortBySalary:
		if a.Salary != b.Salary {
			return a.Salary < b.Salary
		}
	}
	return a.ID < b.ID
}

// SortEmployees orders list in place by key, descending when desc is set.
func SortEmployees(list []Employee, key SortKey, desc bool) {
	sort.SliceStable(list, func(i, j int) bool {
		if desc {
			return key.Less(list[j], list[i])
		}
		return key.Less(list[i], list[j])
	})
}
