// Package validation checks user payloads against declarative rule sets and
// reports every violation with its field path.
package validation

import (
	"fmt"
	"net/mail"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Kind is the JSON type a rule expects.
type Kind int

const (
	KindString Kind = iota
	KindBool
	KindArray
	KindObject
)

// Formats understood by Rule.Format.
const (
	FormatEmail    = "email"
	FormatURI      = "uri"
	FormatDateTime = "date-time"
)

// Rule constrains one value. Zero bounds are not checked.
type Rule struct {
	Kind      Kind
	Required  bool
	MinLength int
	MaxLength int
	Pattern   *regexp.Regexp
	Format    string
	Enum      []string
	// AllowEmpty accepts "" regardless of the other string checks.
	AllowEmpty bool
	Nullable   bool
	// Coerce accepts the literals "true" and "false" for KindBool.
	Coerce bool
	Items  *Rule
	Fields []Field
}

// Field is a named rule inside an object.
type Field struct {
	Name string
	Rule Rule
}

// Schema validates a top-level payload object.
type Schema struct {
	Fields []Field
	// MinKeys is the minimum number of recognised keys.
	MinKeys int
}

// Violation is one failed constraint.
type Violation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Violations is returned when a payload fails validation.
type Violations []Violation

func (v Violations) Error() string {
	msgs := make([]string, len(v))
	for i, x := range v {
		msgs[i] = x.Message
	}
	return strings.Join(msgs, ". ")
}

// Validate checks payload against s. It returns a copy holding only the
// recognised keys, with coercions applied, or Violations.
func (s Schema) Validate(payload any) (map[string]any, error) {
	obj, ok := payload.(map[string]any)
	if !ok {
		return nil, Violations{{Field: "", Message: `"value" must be of type object`}}
	}
	var viols Violations
	out := checkObject(obj, s.Fields, "", &viols)
	if s.MinKeys > 0 && len(out) < s.MinKeys {
		viols = append(viols, Violation{
			Field:   "",
			Message: fmt.Sprintf(`"value" must have at least %d key%s`, s.MinKeys, plural(s.MinKeys)),
		})
	}
	if len(viols) > 0 {
		return nil, viols
	}
	return out, nil
}

func checkObject(obj map[string]any, fields []Field, prefix string, viols *Violations) map[string]any {
	out := make(map[string]any, len(fields))
	for _, f := range fields {
		path := f.Name
		if prefix != "" {
			path = prefix + "." + f.Name
		}
		raw, present := obj[f.Name]
		if !present {
			if f.Rule.Required {
				*viols = append(*viols, Violation{Field: path, Message: fmt.Sprintf("%q is required", path)})
			}
			continue
		}
		if v, ok := check(raw, f.Rule, path, viols); ok {
			out[f.Name] = v
		}
	}
	return out
}

func check(value any, r Rule, path string, viols *Violations) (any, bool) {
	fail := func(format string, args ...any) (any, bool) {
		msg := fmt.Sprintf("%q ", path) + fmt.Sprintf(format, args...)
		*viols = append(*viols, Violation{Field: path, Message: msg})
		return nil, false
	}
	if value == nil {
		if r.Nullable {
			return nil, true
		}
		return fail("must not be null")
	}
	switch r.Kind {
	case KindBool:
		switch t := value.(type) {
		case bool:
			return t, true
		case string:
			if r.Coerce && (t == "true" || t == "false") {
				return t == "true", true
			}
		}
		return fail("must be a boolean")
	case KindArray:
		list, ok := value.([]any)
		if !ok {
			return fail("must be an array")
		}
		items := make([]any, 0, len(list))
		valid := true
		for i, item := range list {
			v, ok := check(item, *r.Items, fmt.Sprintf("%s[%d]", path, i), viols)
			valid = valid && ok
			items = append(items, v)
		}
		return items, valid
	case KindObject:
		obj, ok := value.(map[string]any)
		if !ok {
			return fail("must be of type object")
		}
		before := len(*viols)
		out := checkObject(obj, r.Fields, path, viols)
		return out, len(*viols) == before
	default:
		str, ok := value.(string)
		if !ok {
			return fail("must be a string")
		}
		if str == "" && r.AllowEmpty {
			return str, true
		}
		return checkString(str, r, fail)
	}
}

func checkString(str string, r Rule, fail func(string, ...any) (any, bool)) (any, bool) {
	n := utf8.RuneCountInString(str)
	switch {
	case str == "" && r.MinLength > 0:
		return fail("is not allowed to be empty")
	case r.MinLength > 0 && n < r.MinLength:
		return fail("length must be at least %d characters long", r.MinLength)
	case r.MaxLength > 0 && n > r.MaxLength:
		return fail("length must be less than or equal to %d characters long", r.MaxLength)
	}
	if len(r.Enum) > 0 && !contains(r.Enum, str) {
		return fail("must be one of [%s]", strings.Join(r.Enum, ", "))
	}
	if r.Pattern != nil && !r.Pattern.MatchString(str) {
		return fail("with value %q fails to match the required pattern: %s", str, r.Pattern)
	}
	switch r.Format {
	case FormatEmail:
		if !isEmail(str) {
			return fail("must be a valid email")
		}
	case FormatURI:
		if !isURI(str) {
			return fail("must be a valid uri")
		}
	case FormatDateTime:
		if !isDateTime(str) {
			return fail("must be in ISO 8601 date format")
		}
	}
	return str, true
}

func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

func isURI(s string) bool {
	u, err := url.Parse(s)
	return err == nil && u.Scheme != "" && (u.Host != "" || u.Opaque != "")
}

var dateTimeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

func isDateTime(s string) bool {
	for _, layout := range dateTimeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

func contains(values []string, v string) bool {
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
