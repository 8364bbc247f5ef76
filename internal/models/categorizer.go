// Package models provides the data structures used throughout the application.
package models

import "strings"

// Category is one of the fixed stock-photo taxonomy names.
type Category string

// The 21 taxonomy categories, in canonical order.
const (
	CategoryAnimals          Category = "Animals"
	CategoryBuildings        Category = "Buildings and Architecture"
	CategoryBusiness         Category = "Business"
	CategoryDrinks           Category = "Drinks"
	CategoryEnvironment      Category = "The Environment"
	CategoryStatesOfMind     Category = "States of Mind"
	CategoryFood             Category = "Food"
	CategoryGraphicResources Category = "Graphic Resources"
	CategoryHobbies          Category = "Hobbies and Leisure"
	CategoryIndustry         Category = "Industry"
	CategoryLandscapes       Category = "Landscapes"
	CategoryLifestyle        Category = "Lifestyle"
	CategoryPeople           Category = "People"
	CategoryPlants           Category = "Plants and Flowers"
	CategoryCulture          Category = "Culture and Religion"
	CategoryScience          Category = "Science"
	CategorySocialIssues     Category = "Social Issues"
	CategorySports           Category = "Sports"
	CategoryTechnology       Category = "Technology"
	CategoryTransport        Category = "Transport"
	CategoryTravel           Category = "Travel"
)

// CategoryUnable is returned when a provider answered but its answer could not
// be validated or mapped onto the taxonomy.
const CategoryUnable Category = "Unable to categorize"

// DefaultCategory is used by rule-based mapping when nothing matched.
const DefaultCategory = CategoryGraphicResources

var taxonomy = [...]Category{
	CategoryAnimals,
	CategoryBuildings,
	CategoryBusiness,
	CategoryDrinks,
	CategoryEnvironment,
	CategoryStatesOfMind,
	CategoryFood,
	CategoryGraphicResources,
	CategoryHobbies,
	CategoryIndustry,
	CategoryLandscapes,
	CategoryLifestyle,
	CategoryPeople,
	CategoryPlants,
	CategoryCulture,
	CategoryScience,
	CategorySocialIssues,
	CategorySports,
	CategoryTechnology,
	CategoryTransport,
	CategoryTravel,
}

// Categories returns a copy of the taxonomy in canonical order.
func Categories() []Category {
	out := make([]Category, len(taxonomy))
	copy(out, taxonomy[:])
	return out
}

// CategoryNames returns the taxonomy as plain strings, in canonical order.
func CategoryNames() []string {
	out := make([]string, len(taxonomy))
	for i, c := range taxonomy {
		out[i] = string(c)
	}
	return out
}

// IsValid reports whether c is one of the 21 taxonomy names (case-sensitive).
// The CategoryUnable sentinel is not a taxonomy member.
func (c Category) IsValid() bool {
	for _, t := range taxonomy {
		if t == c {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// NormalizeCategory maps free text returned by a provider onto the taxonomy.
// An exact match wins, then a case-insensitive match; anything else yields
// CategoryUnable and false.
func NormalizeCategory(raw string) (Category, bool) {
	candidate := Category(strings.TrimSpace(raw))
	if candidate.IsValid() {
		return candidate, true
	}
	for _, t := range taxonomy {
		if strings.EqualFold(string(t), string(candidate)) {
			return t, true
		}
	}
	return CategoryUnable, false
}
