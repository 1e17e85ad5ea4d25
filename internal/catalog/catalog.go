// Package catalog holds the fixed category table used for presentation.
// Membership is advisory: the ledger accepts categories outside this table
// and Lookup falls back to a neutral entry instead of failing.
package catalog

// Category is a display entry for a category identifier.
type Category struct {
	Value string
	Label string
	Color string
}

// FallbackColor is used for identifiers outside the catalog.
const FallbackColor = "hsl(220 15% 50%)"

// Categories is the fixed catalog, in display order.
var Categories = []Category{
	{Value: "work", Label: "Work", Color: "hsl(250 85% 65%)"},
	{Value: "study", Label: "Study", Color: "hsl(280 75% 60%)"},
	{Value: "exercise", Label: "Exercise", Color: "hsl(145 70% 45%)"},
	{Value: "entertainment", Label: "Entertainment", Color: "hsl(35 90% 55%)"},
	{Value: "sleep", Label: "Sleep", Color: "hsl(200 85% 55%)"},
	{Value: "meals", Label: "Meals", Color: "hsl(0 72% 55%)"},
	{Value: "social", Label: "Social", Color: "hsl(320 70% 55%)"},
	{Value: "personal", Label: "Personal Care", Color: "hsl(175 80% 50%)"},
	{Value: "commute", Label: "Commute", Color: "hsl(60 70% 50%)"},
	{Value: "other", Label: "Other", Color: "hsl(220 15% 50%)"},
}

var byValue = func() map[string]Category {
	m := make(map[string]Category, len(Categories))
	for _, c := range Categories {
		m[c.Value] = c
	}
	return m
}()

// Lookup resolves an identifier to its catalog entry. Unknown identifiers
// get the identifier itself as label and the neutral fallback color.
func Lookup(value string) Category {
	if c, ok := byValue[value]; ok {
		return c
	}
	return Category{Value: value, Label: value, Color: FallbackColor}
}

// Label returns the display label for an identifier.
func Label(value string) string {
	return Lookup(value).Label
}

// Color returns the display color for an identifier.
func Color(value string) string {
	return Lookup(value).Color
}
