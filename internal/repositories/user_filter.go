package repositories

import (
	"fmt"
	"strconv"
	"strings"

	"userhub/internal/models"
)

// Comparison is how a filter clause compares a column with its value.
type Comparison int

const (
	// Equals matches the column exactly.
	Equals Comparison = iota
	// Contains matches when the value is a substring of the column.
	Contains
)

// FilterClause is one column comparison of a UserFilter.
type FilterClause struct {
	Field      string
	Column     string
	Comparison Comparison
	Value      string
	id         uint
}

// UserFilter is a disjunction of clauses: a row matches when any clause
// matches. An empty filter matches every row.
type UserFilter []FilterClause

// FilterError reports a filter value that cannot be used.
type FilterError struct {
	Field   string
	Message string
}

func (e *FilterError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type filterField struct {
	name       string
	column     string
	comparison Comparison
}

// filterFields lists the accepted filter parameters in clause order.
var filterFields = []filterField{
	{"firstName", "first_name", Contains},
	{"lastName", "last_name", Contains},
	{"phone", "phone", Equals},
	{"email", "email", Equals},
	{"id", "id", Equals},
}

// NewUserFilter builds a filter from request parameters. Every recognised key
// present in params contributes one clause, even when its value is empty;
// other keys are ignored.
func NewUserFilter(params map[string]string) (UserFilter, error) {
	var filter UserFilter
	for _, f := range filterFields {
		value, ok := params[f.name]
		if !ok {
			continue
		}

		clause := FilterClause{Field: f.name, Column: f.column, Comparison: f.comparison, Value: value}
		if f.name == "id" {
			id, err := strconv.ParseUint(value, 10, 64)
			if err != nil {
				return nil, &FilterError{Field: f.name, Message: "must be a positive integer"}
			}
			clause.id = uint(id)
		}
		filter = append(filter, clause)
	}
	return filter, nil
}

// SQL returns the clause as a SQL fragment with one placeholder and its
// argument.
func (c FilterClause) SQL() (string, interface{}) {
	if c.Comparison == Contains {
		return c.Column + " LIKE ?", "%" + c.Value + "%"
	}
	if c.Column == "id" {
		return "id = ?", c.id
	}
	return c.Column + " = ?", c.Value
}

// Matches evaluates the clause against an in-memory row.
func (c FilterClause) Matches(u models.User) bool {
	var column string
	switch c.Column {
	case "id":
		return u.ID == c.id
	case "first_name":
		column = u.FirstName
	case "last_name":
		column = u.LastName
	case "phone":
		column = u.Phone
	case "email":
		column = u.Email
	default:
		return false
	}

	if c.Comparison == Contains {
		return strings.Contains(column, c.Value)
	}
	return column == c.Value
}

// Matches reports whether u satisfies any clause of the filter.
func (f UserFilter) Matches(u models.User) bool {
	if len(f) == 0 {
		return true
	}
	for _, c := range f {
		if c.Matches(u) {
			return true
		}
	}
	return false
}

// IsFilterField reports whether name is an accepted filter parameter.
func IsFilterField(name string) bool {
	for _, f := range filterFields {
		if f.name == name {
			return true
		}
	}
	return false
}
