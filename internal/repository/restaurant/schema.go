package restaurant

import (
	"github.com/kailas-cloud/restodex/internal/db"
	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
)

// Hash field names of a stored restaurant. Plain fields are indexed under
// their own name.
const (
	fieldName       = domrest.AttrName
	fieldCuisine    = domrest.AttrCuisine
	fieldLocation   = domrest.AttrLocation
	fieldRating     = domrest.AttrRating
	fieldPriceRange = domrest.AttrPriceRange
)

// buildIndex describes the restaurant index: analyzed name plus a lower-cased
// keyword copy for substring lookups, analyzed cuisine and location, numeric
// rating and an exact, case-sensitive price range.
func buildIndex(name, prefix string) (*db.IndexDefinition, error) {
	return db.NewIndex(name).
		Prefix(prefix).
		Text(fieldName).
		KeywordOf(fieldName, domrest.AttrNameKeyword).
		Text(fieldCuisine).
		Text(fieldLocation).
		Numeric(fieldRating).
		ExactTag(fieldPriceRange).
		Build()
}
