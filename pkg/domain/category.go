package domain

import (
	"sort"
	"strings"

	dErrors "offsetledger/pkg/domain-errors"
)

// Category labels the kind of carbon-offset initiative.
// Invariant: the value must be a member of the configured CategorySet.
//
// Usage: construct via CategorySet.Parse at trust boundaries; direct casting
// bypasses validation.
type Category string

// Default categories. Deployments may configure a different closed set.
const (
	CategoryRenewableEnergy  Category = "renewable-energy"
	CategoryReforestation    Category = "reforestation"
	CategoryMethaneCapture   Category = "methane-capture"
	CategoryEnergyEfficiency Category = "energy-efficiency"
	CategoryCarbonCapture    Category = "carbon-capture"
)

// DefaultCategories returns the categories used when none are configured.
func DefaultCategories() []Category {
	return []Category{
		CategoryRenewableEnergy,
		CategoryReforestation,
		CategoryMethaneCapture,
		CategoryEnergyEfficiency,
		CategoryCarbonCapture,
	}
}

// CategorySet is a closed, immutable set of accepted categories. It is built
// once from configuration and never mutated at runtime.
type CategorySet struct {
	members map[Category]struct{}
}

// NewCategorySet builds a set, ignoring blank entries. An empty input yields
// the default categories.
func NewCategorySet(categories ...Category) CategorySet {
	members := make(map[Category]struct{}, len(categories))
	for _, c := range categories {
		c = Category(strings.ToLower(strings.TrimSpace(string(c))))
		if c != "" {
			members[c] = struct{}{}
		}
	}
	if len(members) == 0 {
		for _, c := range DefaultCategories() {
			members[c] = struct{}{}
		}
	}
	return CategorySet{members: members}
}

// Contains reports set membership.
func (s CategorySet) Contains(c Category) bool {
	_, ok := s.members[c]
	return ok
}

// Parse constructs a Category from external input.
//
// Errors: returns CodeValidation when the value is empty or not in the set.
func (s CategorySet) Parse(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	if c == "" {
		return "", dErrors.New(dErrors.CodeValidation, "category is required")
	}
	if !s.Contains(c) {
		return "", dErrors.New(dErrors.CodeValidation, "unknown category: "+string(c))
	}
	return c, nil
}

// List returns the members in lexical order.
func (s CategorySet) List() []Category {
	out := make([]Category, 0, len(s.members))
	for c := range s.members {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
