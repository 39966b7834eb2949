package numeric

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"
)

func TestTopNWithOther(t *testing.T) {
	rows := []KeyValue{{"a", 10}, {"b", 5}, {"c", 3}}

	got := TopNWithOther(rows, 2)
	assert.Equal(t, []KeyValue{{"a", 10}, {"b", 5}}, got.Top)
	assert.Equal(t, 3.0, got.OtherSum)
	assert.Equal(t, 1, got.OtherCount)
}

func TestTopNWithOther_Edges(t *testing.T) {
	rows := []KeyValue{{"x", 1}, {"y", 3}, {"z", 3}, {"w", 2}}

	t.Run("ties keep input order", func(t *testing.T) {
		got := TopNWithOther(rows, 2)
		assert.Equal(t, []KeyValue{{"y", 3}, {"z", 3}}, got.Top)
		assert.Equal(t, 3.0, got.OtherSum)
	})

	t.Run("n larger than rows", func(t *testing.T) {
		got := TopNWithOther(rows, 10)
		assert.Len(t, got.Top, 4)
		assert.Zero(t, got.OtherSum)
		assert.Zero(t, got.OtherCount)
	})

	t.Run("negative n", func(t *testing.T) {
		got := TopNWithOther(rows, -1)
		assert.Empty(t, got.Top)
		assert.Equal(t, 9.0, got.OtherSum)
	})

	t.Run("input untouched", func(t *testing.T) {
		TopNWithOther(rows, 1)
		assert.Equal(t, "x", rows[0].Key)
	})
}

func TestTopNWithOther_ConservesTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		values := rapid.SliceOf(rapid.Float64Range(0, 1000)).Draw(t, "values")
		n := rapid.IntRange(-2, 20).Draw(t, "n")

		rows := make([]KeyValue, len(values))
		total := 0.0
		for i, v := range values {
			rows[i] = KeyValue{Key: string(rune('a' + i%26)), Value: v}
			total += v
		}

		got := TopNWithOther(rows, n)
		sum := got.OtherSum
		for i, kv := range got.Top {
			sum += kv.Value
			if i > 0 && kv.Value > got.Top[i-1].Value {
				t.Fatalf("top not descending at %d", i)
			}
		}
		if diff := sum - total; diff > 1e-6 || diff < -1e-6 {
			t.Fatalf("sum %v != total %v", sum, total)
		}
	})
}
