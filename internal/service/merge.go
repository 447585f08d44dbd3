package service

import (
	"encoding/json"
	"fmt"

	"userdesk/pkg/domain"
)

// mergeRule combines an existing value with an incoming one.
type mergeRule func(existing, incoming any) any

// ruleFor picks the rule for an incoming value: objects merge key by key,
// everything else (scalars, arrays, null) replaces the existing value.
func ruleFor(incoming any) mergeRule {
	if _, ok := incoming.(map[string]any); ok {
		return mergeObject
	}
	return replace
}

func replace(_, incoming any) any { return incoming }

func mergeObject(existing, incoming any) any {
	dst, ok := existing.(map[string]any)
	if !ok {
		dst = map[string]any{}
	}
	return Merge(dst, incoming.(map[string]any))
}

// Merge applies patch onto dst recursively and returns dst. Arrays are
// replaced wholesale, never merged element-wise.
func Merge(dst, patch map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any, len(patch))
	}
	for key, incoming := range patch {
		dst[key] = ruleFor(incoming)(dst[key], incoming)
	}
	return dst
}

func mergeUser(existing domain.User, patch map[string]any) (domain.User, error) {
	doc, err := toMap(existing)
	if err != nil {
		return domain.User{}, err
	}
	raw, err := json.Marshal(Merge(doc, patch))
	if err != nil {
		return domain.User{}, fmt.Errorf("encode merged user: %w", err)
	}
	var merged domain.User
	if err := json.Unmarshal(raw, &merged); err != nil {
		return domain.User{}, fmt.Errorf("decode merged user: %w", err)
	}
	merged.Normalize()
	return merged, nil
}

func toMap(u domain.User) (map[string]any, error) {
	raw, err := json.Marshal(u)
	if err != nil {
		return nil, fmt.Errorf("encode user: %w", err)
	}
	var out map[string]any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return out, nil
}
