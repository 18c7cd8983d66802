package analysis

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dmitrijs2005/minibi/internal/common"
)

// Filter keeps rows whose cell is one of Values, or for numeric columns
// lies within [Min, Max]. A nil bound is open.
type Filter struct {
	Column string   `json:"column"`
	Values []string `json:"values,omitempty"`
	Min    *float64 `json:"min,omitempty"`
	Max    *float64 `json:"max,omitempty"`
}

// In is a membership filter.
func In(column string, values ...string) Filter {
	return Filter{Column: column, Values: values}
}

// Between is an inclusive numeric range filter.
func Between(column string, lo, hi float64) Filter {
	return Filter{Column: column, Min: &lo, Max: &hi}
}

// Apply returns a new table holding the rows that pass every filter.
func Apply(t *Table, filters ...Filter) (*Table, error) {
	type compiled struct {
		col    int
		values map[string]struct{}
		lo, hi *float64
	}

	cs := make([]compiled, 0, len(filters))
	for _, f := range filters {
		col, err := t.Index(f.Column)
		if err != nil {
			return nil, err
		}
		c := compiled{col: col, lo: f.Min, hi: f.Max}
		if len(f.Values) > 0 {
			c.values = make(map[string]struct{}, len(f.Values))
			for _, v := range f.Values {
				c.values[v] = struct{}{}
			}
		}
		if (c.lo != nil || c.hi != nil) && t.Columns[col].Kind != Numeric {
			return nil, fmt.Errorf("%w: column %q is not numeric", common.ErrValidation, f.Column)
		}
		cs = append(cs, c)
	}

	rows := make([][]string, 0, len(t.Rows))
	for i, row := range t.Rows {
		keep := true
		for _, c := range cs {
			if c.values != nil {
				if _, ok := c.values[row[c.col]]; !ok {
					keep = false
					break
				}
			}
			if c.lo != nil || c.hi != nil {
				v, ok := t.Number(i, c.col)
				if !ok || (c.lo != nil && v < *c.lo) || (c.hi != nil && v > *c.hi) {
					keep = false
					break
				}
			}
		}
		if keep {
			rows = append(rows, row)
		}
	}
	return t.withRows(rows), nil
}

// Aggregation is the function applied per group.
type Aggregation string

const (
	Sum   Aggregation = "sum"
	Mean  Aggregation = "mean"
	Count Aggregation = "count"
)

type GroupRow struct {
	Key   string  `json:"key"`
	Value float64 `json:"value"`
}

// GroupBy aggregates valueColumn per distinct non-empty groupColumn value.
// Groups are ordered by key. Count counts non-empty cells; sum and mean
// need a numeric value column, and a group without numeric cells is
// left out of a mean.
func GroupBy(t *Table, groupColumn, valueColumn string, agg Aggregation) ([]GroupRow, error) {
	g, err := t.Index(groupColumn)
	if err != nil {
		return nil, err
	}
	v, err := t.Index(valueColumn)
	if err != nil {
		return nil, err
	}

	switch agg {
	case Count:
	case Sum, Mean:
		if t.Columns[v].Kind != Numeric {
			return nil, fmt.Errorf("%w: column %q is not numeric", common.ErrValidation, valueColumn)
		}
	default:
		return nil, fmt.Errorf("%w: unknown aggregation %q", common.ErrValidation, agg)
	}

	type acc struct {
		sum float64
		n   int
	}
	groups := make(map[string]*acc)
	for i, row := range t.Rows {
		key := row[g]
		if strings.TrimSpace(key) == "" {
			continue
		}
		a, ok := groups[key]
		if !ok {
			a = &acc{}
			groups[key] = a
		}
		if agg == Count {
			if strings.TrimSpace(row[v]) != "" {
				a.n++
			}
			continue
		}
		if x, ok := t.Number(i, v); ok {
			a.sum += x
			a.n++
		}
	}

	out := make([]GroupRow, 0, len(groups))
	for key, a := range groups {
		switch agg {
		case Count:
			out = append(out, GroupRow{Key: key, Value: float64(a.n)})
		case Sum:
			out = append(out, GroupRow{Key: key, Value: a.sum})
		case Mean:
			if a.n > 0 {
				out = append(out, GroupRow{Key: key, Value: a.sum / float64(a.n)})
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// GroupSpec selects a grouped aggregate in a Query.
type GroupSpec struct {
	Column      string      `json:"column"`
	Value       string      `json:"value"`
	Aggregation Aggregation `json:"aggregation"`
}

// Query is one request against a table: filters first, then at most one
// of a grouped aggregate or value counts over the filtered rows.
type Query struct {
	Filters     []Filter   `json:"filters,omitempty"`
	GroupBy     *GroupSpec `json:"group_by,omitempty"`
	ValueCounts string     `json:"value_counts,omitempty"`
	Limit       int        `json:"limit,omitempty"`
}

type Result struct {
	Columns   []Column     `json:"columns"`
	Rows      [][]string   `json:"rows"`
	TotalRows int          `json:"total_rows"`
	Groups    []GroupRow   `json:"groups,omitempty"`
	Counts    []ValueCount `json:"counts,omitempty"`
}

// Run applies q to t. Rows are truncated to q.Limit when it is positive;
// TotalRows always reports the filtered row count.
func Run(t *Table, q Query) (*Result, error) {
	if q.GroupBy != nil && q.ValueCounts != "" {
		return nil, fmt.Errorf("%w: group_by and value_counts are exclusive", common.ErrValidation)
	}

	filtered, err := Apply(t, q.Filters...)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: filtered.Columns, Rows: filtered.Rows, TotalRows: len(filtered.Rows)}
	if q.Limit > 0 && len(res.Rows) > q.Limit {
		res.Rows = res.Rows[:q.Limit]
	}

	switch {
	case q.GroupBy != nil:
		res.Groups, err = GroupBy(filtered, q.GroupBy.Column, q.GroupBy.Value, q.GroupBy.Aggregation)
	case q.ValueCounts != "":
		res.Counts, err = ValueCounts(filtered, q.ValueCounts)
	}
	if err != nil {
		return nil, err
	}
	return res, nil
}
