package query

import "fmt"

// Condition is one WHERE fragment. Implementations render Spanner named
// parameters (@p0, @p1, ...) starting at the index they are given.
type Condition interface {
	// SQL returns the fragment and the parameters it binds.
	SQL(paramIndex int) (string, map[string]interface{})
}

type compareCondition struct {
	field string
	op    string
	value interface{}
}

func (c *compareCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s %s @%s", c.field, c.op, paramName), map[string]interface{}{
		paramName: c.value,
	}
}

// Eq renders "field = @pN".
func Eq(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "=", value: value}
}

// Gte renders "field >= @pN".
func Gte(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: ">=", value: value}
}

// Lt renders "field < @pN".
func Lt(field string, value interface{}) Condition {
	return &compareCondition{field: field, op: "<", value: value}
}

// inCondition binds the whole slice as one array parameter.
type inCondition struct {
	field  string
	values interface{}
}

// In renders "field IN UNNEST(@pN)". values must be a slice Spanner can bind
// as an ARRAY (e.g. []int64, []string).
func In(field string, values interface{}) Condition {
	return &inCondition{field: field, values: values}
}

func (c *inCondition) SQL(paramIndex int) (string, map[string]interface{}) {
	paramName := fmt.Sprintf("p%d", paramIndex)
	return fmt.Sprintf("%s IN UNNEST(@%s)", c.field, paramName), map[string]interface{}{
		paramName: c.values,
	}
}

// IsNull renders "field IS NULL".
func IsNull(field string) Condition {
	return &isNullCondition{field: field}
}

type isNullCondition struct {
	field string
}

func (c *isNullCondition) SQL(int) (string, map[string]interface{}) {
	return fmt.Sprintf("%s IS NULL", c.field), map[string]interface{}{}
}
