package filter

import (
	"fmt"
	"strings"
	"time"

	domdoc "github.com/kailas-cloud/clusterops/internal/domain/document"
)

// Getter resolves a dotted field path of a document.
type Getter interface {
	Get(path string) (any, bool)
	ID() string
}

// Match reports whether doc satisfies the condition.
// Type mismatches never match.
func (c Condition) Match(doc Getter) bool {
	if c.filterType == TypeIDs {
		return c.negate(contains(listOf(c.value), doc.ID()))
	}

	v, ok := doc.Get(c.field)
	present := ok && v != nil
	switch c.filterType {
	case TypeExists:
		return c.negate(present)
	case TypeExactMatch:
		if !present {
			return false
		}
		return c.compareStrings(fmt.Sprint(v), fmt.Sprint(c.value))
	case TypeContains:
		if !present {
			return false
		}
		needle := strings.ToLower(fmt.Sprint(c.value))
		if list, isList := v.([]any); isList {
			for _, e := range list {
				if strings.ToLower(fmt.Sprint(e)) == needle {
					return c.negate(true)
				}
			}
			return c.negate(false)
		}
		return c.negate(strings.Contains(strings.ToLower(fmt.Sprint(v)), needle))
	case TypeCategories:
		if !present {
			return false
		}
		want := listOf(c.value)
		for _, have := range listOf(v) {
			if contains(want, have) {
				return c.negate(true)
			}
		}
		return c.negate(false)
	case TypeNumeric:
		a, okA := domdoc.Number(v)
		b, okB := domdoc.Number(c.value)
		if !present || !okA || !okB {
			return false
		}
		return compare(c.condition, cmpFloat(a, b))
	case TypeDate:
		a, okA := date(v)
		b, okB := date(c.value)
		if !present || !okA || !okB {
			return false
		}
		return compare(c.condition, a.Compare(b))
	default:
		return false
	}
}

// MatchAll reports whether doc satisfies every condition.
func MatchAll(conds []Condition, doc Getter) bool {
	for _, c := range conds {
		if !c.Match(doc) {
			return false
		}
	}
	return true
}

func (c Condition) negate(b bool) bool {
	if c.condition == "!=" {
		return !b
	}
	return b
}

func (c Condition) compareStrings(a, b string) bool {
	return compare(c.condition, strings.Compare(a, b))
}

func compare(op string, c int) bool {
	switch op {
	case "==":
		return c == 0
	case "!=":
		return c != 0
	case ">":
		return c > 0
	case ">=":
		return c >= 0
	case "<":
		return c < 0
	case "<=":
		return c <= 0
	default:
		return false
	}
}

func cmpFloat(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func listOf(v any) []string {
	switch l := v.(type) {
	case []any:
		out := make([]string, len(l))
		for i, e := range l {
			out[i] = fmt.Sprint(e)
		}
		return out
	case []string:
		return l
	case nil:
		return nil
	default:
		return []string{fmt.Sprint(l)}
	}
}

func contains(list []string, s string) bool {
	for _, e := range list {
		if e == s {
			return true
		}
	}
	return false
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", time.DateOnly}

func date(v any) (time.Time, bool) {
	s, ok := v.(string)
	if !ok {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
