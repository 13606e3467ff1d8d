package utils

import (
	"sort"
	"time"
)

const ShortDashDateLayout = "2006-01-02"

// MonthKeyLayout buckets timestamps into calendar months, e.g. "2025-07".
const MonthKeyLayout = "2006-01"

func MonthKey(t time.Time) string {
	return t.Format(MonthKeyLayout)
}

// SortedMonthKeys returns the keys of a period map in chronological order.
// Month keys are zero padded, so lexical order is chronological order.
func SortedMonthKeys[T any](periods map[string]T) []string {
	keys := make([]string, 0, len(periods))
	for key := range periods {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// AddMonth advances a renewal date by one calendar month.
func AddMonth(t time.Time) time.Time {
	return t.AddDate(0, 1, 0)
}
