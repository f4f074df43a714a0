package venues

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Category is the closed five-tier venue classification.
type Category string

// Category tiers, in display order.
const (
	CategoryMythic  Category = "Mythic"
	CategoryGold    Category = "Gold"
	CategorySilver  Category = "Silver"
	CategoryCommon  Category = "Common"
	CategoryTapRoom Category = "TapRoom"
)

// Categories lists all tiers in the fixed order used for KML folder output.
var Categories = []Category{
	CategoryMythic,
	CategoryGold,
	CategorySilver,
	CategoryCommon,
	CategoryTapRoom,
}

// categorySynonyms maps each tier to the substrings recognized in free-text
// labels, English and Spanish. Matching is case- and diacritic-insensitive.
var categorySynonyms = []struct {
	category Category
	needles  []string
}{
	{CategoryMythic, []string{"mythic", "mitico"}},
	{CategoryGold, []string{"gold", "oro"}},
	{CategorySilver, []string{"silver", "plata"}},
	{CategoryTapRoom, []string{"taproom", "tap", "room"}},
}

// foldTransformer strips combining marks so "Lúpulo" and "Mítico" match
// their unaccented synonyms.
var foldTransformer = transform.Chain(
	norm.NFD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

func foldLabel(label string) string {
	folded, _, err := transform.String(foldTransformer, label)
	if err != nil {
		folded = label
	}
	return strings.ToLower(folded)
}

// ParseCategory maps an arbitrary free-text label (KML folder name, AI
// response field) to the closest tier. It is total and deterministic:
// anything unrecognized is Common.
func ParseCategory(label string) Category {
	needle := foldLabel(label)
	if needle == "" {
		return CategoryCommon
	}
	for _, entry := range categorySynonyms {
		for _, syn := range entry.needles {
			if strings.Contains(needle, syn) {
				return entry.category
			}
		}
	}
	return CategoryCommon
}

// String returns the display name of the tier.
func (c Category) String() string {
	return string(c)
}
