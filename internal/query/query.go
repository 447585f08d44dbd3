// Package query filters, sorts and paginates a user collection.
//
// Steps run in a fixed order: text filter, role filter, active filter,
// stable sort, then pagination. Total counts records after filtering and
// before pagination.
package query

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"userdesk/pkg/domain"
)

// Order is the sort direction.
type Order string

const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
)

// Query describes one list request. Nil filters and an empty term or sort
// field disable the corresponding step.
type Query struct {
	Term      string
	Role      *domain.Role
	Active    *bool
	SortField string
	Order     Order
	Page      int
	PageSize  int
}

// Page is one slice of the filtered collection.
type Page struct {
	Users []domain.User
	Total int
}

// Engine evaluates queries. The zero value sorts with the English collation
// and pages by DefaultPageSize.
type Engine struct {
	Locale          language.Tag
	DefaultPageSize int
}

// Apply evaluates q with the zero Engine.
func Apply(records domain.Collection, q Query) Page {
	return Engine{}.Apply(records, q)
}

// Apply evaluates q against records. records is not modified.
func (e Engine) Apply(records domain.Collection, q Query) Page {
	matched := make([]domain.User, 0, len(records))
	term := strings.ToLower(q.Term)
	for _, u := range records {
		if term != "" && !matchesTerm(u, term) {
			continue
		}
		if q.Role != nil && u.Role != *q.Role {
			continue
		}
		if q.Active != nil && u.IsActive != *q.Active {
			continue
		}
		matched = append(matched, u)
	}

	if key, ok := sortKeys[q.SortField]; ok {
		e.sort(matched, key, q.Order == Desc)
	}

	total := len(matched)
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = DefaultPage
	}
	if size < 1 {
		size = e.pageSize()
	}
	// (page-1)*size may overflow int, so the range check divides instead.
	if total == 0 || page-1 > (total-1)/size {
		return Page{Users: []domain.User{}, Total: total}
	}
	start := (page - 1) * size
	end := total
	if size < total-start {
		end = start + size
	}
	out := make([]domain.User, end-start)
	for i, u := range matched[start:end] {
		out[i] = u.Clone()
	}
	return Page{Users: out, Total: total}
}

func (e Engine) pageSize() int {
	if e.DefaultPageSize > 0 {
		return e.DefaultPageSize
	}
	return DefaultPageSize
}

func (e Engine) sort(users []domain.User, key func(domain.User) any, desc bool) {
	tag := e.Locale
	if tag == language.Und {
		tag = language.English
	}
	// Collators keep scratch buffers, so each call gets its own.
	col := collate.New(tag)
	sign := 1
	if desc {
		sign = -1
	}
	sort.SliceStable(users, func(i, j int) bool {
		return sign*compare(col, key(users[i]), key(users[j])) < 0
	})
}

func matchesTerm(u domain.User, term string) bool {
	return strings.Contains(strings.ToLower(u.Name), term) ||
		strings.Contains(strings.ToLower(u.Email), term) ||
		strings.Contains(strings.ToLower(u.Username), term)
}

func compare(col *collate.Collator, a, b any) int {
	switch av := a.(type) {
	case string:
		if bv, ok := b.(string); ok {
			return col.CompareString(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case av == bv:
				return 0
			case !av:
				return -1
			default:
				return 1
			}
		}
	}
	return 0
}

// sortKeys maps sortable field names to value extractors. Absent values
// read as "".
var sortKeys = map[string]func(domain.User) any{
	"id":        func(u domain.User) any { return u.ID },
	"name":      func(u domain.User) any { return u.Name },
	"username":  func(u domain.User) any { return u.Username },
	"email":     func(u domain.User) any { return u.Email },
	"phone":     func(u domain.User) any { return u.Phone },
	"website":   func(u domain.User) any { return u.WebsiteOrEmpty() },
	"isActive":  func(u domain.User) any { return u.IsActive },
	"role":      func(u domain.User) any { return string(u.Role) },
	"createdAt": func(u domain.User) any { return u.CreatedAt },
	"updatedAt": func(u domain.User) any { return u.UpdatedAt },
}

// Sortable reports whether field may be used as a sort field.
func Sortable(field string) bool {
	_, ok := sortKeys[field]
	return ok
}

// SortableFields lists the sortable field names in alphabetical order.
func SortableFields() []string {
	out := make([]string, 0, len(sortKeys))
	for k := range sortKeys {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// ParseOrder accepts "asc" or "desc"; empty means Asc.
func ParseOrder(s string) (Order, error) {
	switch Order(s) {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("invalid sort order %q", s)
}

// ParseRole accepts one of the enumerated roles.
func ParseRole(s string) (domain.Role, error) {
	r := domain.Role(s)
	if !r.Valid() {
		return "", fmt.Errorf("invalid role %q", s)
	}
	return r, nil
}

// ParseActive normalizes a boolean or the literals "true" and "false".
func ParseActive(v any) (bool, error) {
	switch t := v.(type) {
	case bool:
		return t, nil
	case string:
		switch t {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
	}
	return false, fmt.Errorf("invalid active status %v", v)
}
