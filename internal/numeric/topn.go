package numeric

import (
	"cmp"
	"slices"
)

// KeyValue is one labelled contribution.
type KeyValue struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// TopN is the result of TopNWithOther.
type TopN struct {
	Top        []KeyValue `json:"top"`
	OtherSum   float64    `json:"other_sum"`
	OtherCount int        `json:"other_count"`
}

// TopNWithOther sorts rows descending by value (stable, so ties keep their
// input order), keeps the first n and folds the remainder into OtherSum.
// n is clamped to [0, len(rows)].
func TopNWithOther(rows []KeyValue, n int) TopN {
	sorted := slices.Clone(rows)
	slices.SortStableFunc(sorted, func(a, b KeyValue) int {
		return cmp.Compare(b.Value, a.Value)
	})

	n = max(0, min(n, len(sorted)))
	res := TopN{Top: sorted[:n:n], OtherCount: len(sorted) - n}
	for _, kv := range sorted[n:] {
		res.OtherSum += kv.Value
	}
	return res
}
