package memory

import (
	"reflect"
	"slices"
	"sort"
	"strings"

	serr "github.com/next-trace/scg-service-state/contract/errors"
	"github.com/next-trace/scg-service-state/contract/service"
)

// query is a parsed Find query. limit < 0 means no explicit $limit.
type query struct {
	filters []filter
	sortBy  []sortKey
	limit   int
	skip    int
}

type filter struct {
	field string
	op    string
	value any
}

type sortKey struct {
	field string
	desc  bool
}

var operators = []string{"$eq", "$ne", "$lt", "$lte", "$gt", "$gte", "$in", "$nin"}

func parseQuery(q service.Query) (query, error) {
	out := query{limit: -1}

	fields := make([]string, 0, len(q))
	for k := range q {
		fields = append(fields, k)
	}

	sort.Strings(fields)

	for _, field := range fields {
		v := q[field]

		switch field {
		case "$limit":
			n, ok := number(v)
			if !ok || n < 0 {
				return query{}, serr.BadRequest("invalid $limit %v", v)
			}

			out.limit = int(n)
		case "$skip":
			n, ok := number(v)
			if !ok || n < 0 {
				return query{}, serr.BadRequest("invalid $skip %v", v)
			}

			out.skip = int(n)
		case "$sort":
			keys, err := parseSort(v)
			if err != nil {
				return query{}, err
			}

			out.sortBy = keys
		default:
			if strings.HasPrefix(field, "$") {
				return query{}, serr.BadRequest("unsupported query parameter %s", field)
			}

			fs, err := parseFilter(field, v)
			if err != nil {
				return query{}, err
			}

			out.filters = append(out.filters, fs...)
		}
	}

	return out, nil
}

func parseFilter(field string, v any) ([]filter, error) {
	ops, ok := v.(map[string]any)
	if !ok {
		if q, isQuery := v.(service.Query); isQuery {
			ops, ok = map[string]any(q), true
		}
	}

	if !ok {
		return []filter{{field: field, op: "$eq", value: v}}, nil
	}

	names := make([]string, 0, len(ops))
	for op := range ops {
		names = append(names, op)
	}

	sort.Strings(names)

	out := make([]filter, 0, len(ops))
	for _, op := range names {
		if !slices.Contains(operators, op) {
			return nil, serr.BadRequest("unsupported operator %s on %s", op, field)
		}

		out = append(out, filter{field: field, op: op, value: ops[op]})
	}

	return out, nil
}

func parseSort(v any) ([]sortKey, error) {
	m, ok := v.(map[string]any)
	if !ok {
		if sq, isQuery := v.(service.Query); isQuery {
			m, ok = sq, true
		}
	}

	if !ok {
		return nil, serr.BadRequest("invalid $sort %v", v)
	}

	fields := make([]string, 0, len(m))
	for f := range m {
		fields = append(fields, f)
	}

	sort.Strings(fields)

	keys := make([]sortKey, 0, len(m))
	for _, f := range fields {
		dir, ok := number(m[f])
		if !ok {
			return nil, serr.BadRequest("invalid $sort direction for %s", f)
		}

		keys = append(keys, sortKey{field: f, desc: dir < 0})
	}

	return keys, nil
}

func (q query) match(r service.Record) bool {
	for _, f := range q.filters {
		if !f.match(r[f.field]) {
			return false
		}
	}

	return true
}

func (f filter) match(v any) bool {
	switch f.op {
	case "$eq":
		return equal(v, f.value)
	case "$ne":
		return !equal(v, f.value)
	case "$lt":
		c, ok := compare(v, f.value)
		return ok && c < 0
	case "$lte":
		c, ok := compare(v, f.value)
		return ok && c <= 0
	case "$gt":
		c, ok := compare(v, f.value)
		return ok && c > 0
	case "$gte":
		c, ok := compare(v, f.value)
		return ok && c >= 0
	case "$in":
		return contains(f.value, v)
	case "$nin":
		return !contains(f.value, v)
	default:
		return false
	}
}

func (q query) sort(rs []service.Record) {
	if len(q.sortBy) == 0 {
		return
	}

	sort.SliceStable(rs, func(i, j int) bool {
		for _, k := range q.sortBy {
			c, ok := compare(rs[i][k.field], rs[j][k.field])
			if !ok || c == 0 {
				continue
			}

			if k.desc {
				return c > 0
			}

			return c < 0
		}

		return false
	})
}

func contains(list, v any) bool {
	rv := reflect.ValueOf(list)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return false
	}

	for i := range rv.Len() {
		if equal(rv.Index(i).Interface(), v) {
			return true
		}
	}

	return false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}

	return service.SameID(a, b)
}

// compare orders numbers and strings; other values are not comparable.
func compare(a, b any) (int, bool) {
	if c, ok := service.CompareNumbers(a, b); ok {
		return c, true
	}

	sa, ok := a.(string)
	if !ok {
		return 0, false
	}

	sb, ok := b.(string)
	if !ok {
		return 0, false
	}

	return strings.Compare(sa, sb), true
}

func number(v any) (float64, bool) {
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	default:
		return 0, false
	}
}
