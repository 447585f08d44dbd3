package views

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/pflag"

	"userdesk/pkg/domain"
)

// slotInputLayouts are accepted for --slot, read in the form's location.
var slotInputLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	"2006-01-02 15:04",
	"2006-01-02",
}

// Form collects user fields from command line flags.
type Form struct {
	flags *pflag.FlagSet
	loc   *time.Location

	name, username, email, phone, website string
	active                                string
	skills, slots                         []string
	street, city, zipcode                 string
	company, role                         string
}

// formFlags maps flag names to payload paths.
var formFlags = []struct {
	flag, path string
}{
	{"name", "name"},
	{"username", "username"},
	{"email", "email"},
	{"phone", "phone"},
	{"website", "website"},
	{"active", "isActive"},
	{"skill", "skills"},
	{"slot", "availableSlots"},
	{"street", "address.street"},
	{"city", "address.city"},
	{"zipcode", "address.zipcode"},
	{"company", "company.name"},
	{"role", "role"},
}

// BindForm registers the user flags on fs. Slots without a zone are read in
// loc; nil means time.Local.
func BindForm(fs *pflag.FlagSet, loc *time.Location) *Form {
	if loc == nil {
		loc = time.Local
	}
	f := &Form{flags: fs, loc: loc}
	fs.StringVar(&f.name, "name", "", "full name (3-50 chars)")
	fs.StringVar(&f.username, "username", "", "username (3-20 chars)")
	fs.StringVar(&f.email, "email", "", "email address")
	fs.StringVar(&f.phone, "phone", "", "phone number")
	fs.StringVar(&f.website, "website", "", "website URL; empty clears it")
	fs.StringVar(&f.active, "active", "", "account status: true or false")
	fs.StringArrayVar(&f.skills, "skill", nil, "skill, repeatable (2-20 chars each)")
	fs.StringArrayVar(&f.slots, "slot", nil, "available slot, repeatable (e.g. 2025-03-01T09:00)")
	fs.StringVar(&f.street, "street", "", "street address")
	fs.StringVar(&f.city, "city", "", "city")
	fs.StringVar(&f.zipcode, "zipcode", "", "zipcode (5-10 digits)")
	fs.StringVar(&f.company, "company", "", "company name")
	fs.StringVar(&f.role, "role", "", "role: Admin, Editor or Viewer")
	return f
}

// SetLocation changes the zone used for slots given without one.
func (f *Form) SetLocation(loc *time.Location) {
	if loc != nil {
		f.loc = loc
	}
}

// CreatePayload builds a full creation payload from every flag, set or not,
// so the server reports each missing field.
func (f *Form) CreatePayload() (map[string]any, error) {
	return f.build(func(string) bool { return true }, true)
}

// Patch builds a partial payload from the flags that were set. Nested
// objects only carry the fields that changed.
func (f *Form) Patch() (map[string]any, error) {
	patch, err := f.build(f.flags.Changed, false)
	if err != nil {
		return nil, err
	}
	if len(patch) == 0 {
		return nil, fmt.Errorf("nothing to update: set at least one field flag")
	}
	return patch, nil
}

func (f *Form) build(include func(flag string) bool, create bool) (map[string]any, error) {
	out := map[string]any{}
	for _, ff := range formFlags {
		if !include(ff.flag) {
			continue
		}
		value, ok, err := f.value(ff.flag, create)
		if err != nil {
			return nil, err
		}
		if ok {
			setPath(out, ff.path, value)
		}
	}
	return out, nil
}

func (f *Form) value(flag string, create bool) (any, bool, error) {
	switch flag {
	case "name":
		return f.name, true, nil
	case "username":
		return f.username, true, nil
	case "email":
		return f.email, true, nil
	case "phone":
		return f.phone, true, nil
	case "website":
		if create && f.website == "" {
			return nil, false, nil
		}
		return f.website, true, nil
	case "active":
		if f.active == "" && create {
			return false, true, nil
		}
		b, err := strconv.ParseBool(f.active)
		if err != nil {
			return nil, false, fmt.Errorf("--active must be true or false, got %q", f.active)
		}
		return b, true, nil
	case "skill":
		return nonNil(f.skills), true, nil
	case "slot":
		slots, err := f.slotValues()
		return slots, err == nil, err
	case "street":
		return f.street, true, nil
	case "city":
		return f.city, true, nil
	case "zipcode":
		return f.zipcode, true, nil
	case "company":
		return f.company, true, nil
	case "role":
		return f.role, true, nil
	}
	return nil, false, fmt.Errorf("unknown form flag %s", flag)
}

func (f *Form) slotValues() ([]string, error) {
	out := make([]string, 0, len(f.slots))
	for _, raw := range f.slots {
		t, err := parseSlot(strings.TrimSpace(raw), f.loc)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.Timestamp(t))
	}
	return out, nil
}

func parseSlot(raw string, loc *time.Location) (time.Time, error) {
	for _, layout := range slotInputLayouts {
		if t, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("--slot %q is not a date-time", raw)
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}

// setPath stores value at a dotted path, creating nested objects.
func setPath(dst map[string]any, path string, value any) {
	head, rest, nested := strings.Cut(path, ".")
	if !nested {
		dst[head] = value
		return
	}
	child, ok := dst[head].(map[string]any)
	if !ok {
		child = map[string]any{}
		dst[head] = child
	}
	setPath(child, rest, value)
}
