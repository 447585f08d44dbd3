package httpapi

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"userdesk/internal/query"
)

// List query parameters.
const (
	paramPage   = "_page"
	paramLimit  = "_limit"
	paramSort   = "_sort"
	paramOrder  = "_order"
	paramTerm   = "q"
	paramRole   = "role"
	paramActive = "isActive"
)

// paramError is a rejected query parameter, answered with 400.
type paramError struct {
	Param string
	Err   error
}

func (e *paramError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Param, e.Err)
}

func (e *paramError) Unwrap() error { return e.Err }

// parseListQuery builds a query from URL parameters. Empty values count as
// absent. Page size 0 leaves the engine default in place.
func parseListQuery(values url.Values) (query.Query, error) {
	var q query.Query
	var err error
	if q.Page, err = positiveInt(values, paramPage); err != nil {
		return query.Query{}, err
	}
	if q.PageSize, err = positiveInt(values, paramLimit); err != nil {
		return query.Query{}, err
	}
	if q.Order, err = query.ParseOrder(values.Get(paramOrder)); err != nil {
		return query.Query{}, &paramError{Param: paramOrder, Err: err}
	}
	if field := values.Get(paramSort); field != "" {
		if !query.Sortable(field) {
			return query.Query{}, &paramError{
				Param: paramSort,
				Err:   fmt.Errorf("unknown field %q, expected one of %s", field, strings.Join(query.SortableFields(), ", ")),
			}
		}
		q.SortField = field
	}
	q.Term = values.Get(paramTerm)
	if raw := values.Get(paramRole); raw != "" {
		role, err := query.ParseRole(raw)
		if err != nil {
			return query.Query{}, &paramError{Param: paramRole, Err: err}
		}
		q.Role = &role
	}
	if raw := values.Get(paramActive); raw != "" {
		active, err := query.ParseActive(raw)
		if err != nil {
			return query.Query{}, &paramError{Param: paramActive, Err: err}
		}
		q.Active = &active
	}
	return q, nil
}

func positiveInt(values url.Values, key string) (int, error) {
	raw := values.Get(key)
	if raw == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &paramError{Param: key, Err: fmt.Errorf("%q is not an integer", raw)}
	}
	if n < 1 {
		return 0, &paramError{Param: key, Err: fmt.Errorf("must be at least 1, got %d", n)}
	}
	return n, nil
}
