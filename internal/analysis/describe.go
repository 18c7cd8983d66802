package analysis

import (
	"math"
	"sort"
	"strings"
)

// ColumnSummary mirrors a describe() row. Numeric statistics are nil for
// categorical columns and the other way round.
type ColumnSummary struct {
	Name  string   `json:"name"`
	Kind  Kind     `json:"kind"`
	Count int      `json:"count"`
	Mean  *float64 `json:"mean,omitempty"`
	Std   *float64 `json:"std,omitempty"`
	Min   *float64 `json:"min,omitempty"`
	Max   *float64 `json:"max,omitempty"`

	Unique int    `json:"unique,omitempty"`
	Top    string `json:"top,omitempty"`
	Freq   int    `json:"freq,omitempty"`
}

// Describe summarises every column. Count is the number of non-empty cells.
func Describe(t *Table) []ColumnSummary {
	out := make([]ColumnSummary, len(t.Columns))
	for i, c := range t.Columns {
		if c.Kind == Numeric {
			out[i] = describeNumeric(t, i)
		} else {
			out[i] = describeCategorical(t, i)
		}
	}
	return out
}

func describeNumeric(t *Table, col int) ColumnSummary {
	s := ColumnSummary{Name: t.Columns[col].Name, Kind: Numeric}

	var values []float64
	for row := range t.Rows {
		if v, ok := t.Number(row, col); ok {
			values = append(values, v)
		}
	}
	s.Count = len(values)
	if s.Count == 0 {
		return s
	}

	lo, hi, sum := values[0], values[0], 0.0
	for _, v := range values {
		sum += v
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	mean := sum / float64(s.Count)
	s.Mean, s.Min, s.Max = &mean, &lo, &hi

	if s.Count > 1 {
		var sq float64
		for _, v := range values {
			sq += (v - mean) * (v - mean)
		}
		std := math.Sqrt(sq / float64(s.Count-1))
		s.Std = &std
	}
	return s
}

func describeCategorical(t *Table, col int) ColumnSummary {
	s := ColumnSummary{Name: t.Columns[col].Name, Kind: Categorical}

	counts := valueCounts(t, col)
	for _, vc := range counts {
		s.Count += vc.Count
	}
	s.Unique = len(counts)
	if len(counts) > 0 {
		s.Top, s.Freq = counts[0].Value, counts[0].Count
	}
	return s
}

type ValueCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// ValueCounts counts the distinct non-empty values of a column, most
// frequent first and ties by value.
func ValueCounts(t *Table, column string) ([]ValueCount, error) {
	col, err := t.Index(column)
	if err != nil {
		return nil, err
	}
	return valueCounts(t, col), nil
}

func valueCounts(t *Table, col int) []ValueCount {
	counts := make(map[string]int)
	for _, row := range t.Rows {
		if strings.TrimSpace(row[col]) == "" {
			continue
		}
		counts[row[col]]++
	}

	out := make([]ValueCount, 0, len(counts))
	for v, n := range counts {
		out = append(out, ValueCount{Value: v, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Value < out[j].Value
	})
	return out
}
