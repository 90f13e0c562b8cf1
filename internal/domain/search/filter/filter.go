package filter

import "fmt"

// MaxConditions is the maximum number of conditions per query.
const MaxConditions = 64

// Type is the hosted service filter_type.
type Type string

// Filter types understood by the hosted service.
const (
	TypeExactMatch Type = "exact_match"
	TypeContains   Type = "contains"
	TypeCategories Type = "categories"
	TypeExists     Type = "exists"
	TypeNumeric    Type = "numeric"
	TypeDate       Type = "date"
	TypeIDs        Type = "ids"
)

// IsValid checks if the filter type is supported.
func (t Type) IsValid() bool {
	switch t {
	case TypeExactMatch, TypeContains, TypeCategories, TypeExists, TypeNumeric, TypeDate, TypeIDs:
		return true
	default:
		return false
	}
}

var validConditions = map[string]bool{
	"==": true, "!=": true, ">": true, ">=": true, "<": true, "<=": true,
}

// Condition is a single filter clause: field, filter type, comparison and value.
type Condition struct {
	field      string
	filterType Type
	condition  string
	value      any
}

// New validates and creates a Condition. An empty condition defaults to "==".
func New(field string, ft Type, condition string, value any) (Condition, error) {
	if field == "" {
		return Condition{}, fmt.Errorf("filter field is required")
	}
	if !ft.IsValid() {
		return Condition{}, fmt.Errorf("invalid filter type %q for field %q", ft, field)
	}
	if condition == "" {
		condition = "=="
	}
	if !validConditions[condition] {
		return Condition{}, fmt.Errorf("invalid condition %q for field %q", condition, field)
	}
	if ft != TypeExists && value == nil {
		return Condition{}, fmt.Errorf("condition value is required for field %q", field)
	}
	return Condition{field: field, filterType: ft, condition: condition, value: value}, nil
}

// Validate checks the number of conditions of a query.
func Validate(conds []Condition) error {
	if len(conds) > MaxConditions {
		return fmt.Errorf("too many filter conditions (max %d)", MaxConditions)
	}
	return nil
}

// Field returns the filtered field.
func (c Condition) Field() string { return c.field }

// Type returns the filter type.
func (c Condition) Type() Type { return c.filterType }

// Condition returns the comparison operator.
func (c Condition) Condition() string { return c.condition }

// Value returns the comparison value.
func (c Condition) Value() any { return c.value }
