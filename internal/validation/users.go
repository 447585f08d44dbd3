package validation

import (
	"encoding/json"
	"fmt"
	"regexp"

	"userdesk/pkg/domain"
)

var (
	phonePattern   = regexp.MustCompile(`^\+?[0-9\s-]{7,20}$`)
	zipcodePattern = regexp.MustCompile(`^\d{5,10}$`)
)

func roleNames() []string {
	roles := domain.Roles()
	out := make([]string, len(roles))
	for i, r := range roles {
		out[i] = string(r)
	}
	return out
}

// userFields builds the user rule set. Nested fields follow required too.
func userFields(required bool) []Field {
	return []Field{
		{Name: "name", Rule: Rule{Kind: KindString, Required: required, MinLength: 3, MaxLength: 50}},
		{Name: "username", Rule: Rule{Kind: KindString, Required: required, MinLength: 3, MaxLength: 20}},
		{Name: "email", Rule: Rule{Kind: KindString, Required: required, MaxLength: 100, Format: FormatEmail}},
		{Name: "phone", Rule: Rule{Kind: KindString, Required: required, Pattern: phonePattern}},
		{Name: "website", Rule: Rule{Kind: KindString, Format: FormatURI, AllowEmpty: true, Nullable: true}},
		{Name: "isActive", Rule: Rule{Kind: KindBool, Required: required, Coerce: true}},
		{Name: "skills", Rule: Rule{Kind: KindArray, Required: required,
			Items: &Rule{Kind: KindString, MinLength: 2, MaxLength: 20}}},
		{Name: "availableSlots", Rule: Rule{Kind: KindArray, Required: required,
			Items: &Rule{Kind: KindString, Format: FormatDateTime}}},
		{Name: "address", Rule: Rule{Kind: KindObject, Required: required, Fields: []Field{
			{Name: "street", Rule: Rule{Kind: KindString, Required: required, MinLength: 3}},
			{Name: "city", Rule: Rule{Kind: KindString, Required: required, MinLength: 2}},
			{Name: "zipcode", Rule: Rule{Kind: KindString, Required: required, Pattern: zipcodePattern}},
		}}},
		{Name: "company", Rule: Rule{Kind: KindObject, Required: required, Fields: []Field{
			{Name: "name", Rule: Rule{Kind: KindString, Required: required, MinLength: 2}},
		}}},
		{Name: "role", Rule: Rule{Kind: KindString, Required: required, Enum: roleNames()}},
	}
}

var (
	// CreateSchema requires every user field except website.
	CreateSchema = Schema{Fields: userFields(true)}
	// UpdateSchema accepts any non-empty subset of the user fields.
	UpdateSchema = Schema{Fields: userFields(false), MinKeys: 1}
)

// Create validates a creation payload and decodes it into a user without
// id or timestamps.
func Create(payload any) (domain.User, error) {
	clean, err := CreateSchema.Validate(payload)
	if err != nil {
		return domain.User{}, err
	}
	raw, err := json.Marshal(clean)
	if err != nil {
		return domain.User{}, fmt.Errorf("encode payload: %w", err)
	}
	var u domain.User
	if err := json.Unmarshal(raw, &u); err != nil {
		return domain.User{}, fmt.Errorf("decode payload: %w", err)
	}
	u.Normalize()
	return u, nil
}

// Update validates a partial payload and returns the recognised keys.
func Update(payload any) (map[string]any, error) {
	return UpdateSchema.Validate(payload)
}
