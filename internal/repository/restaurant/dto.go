package restaurant

import (
	"strconv"
	"strings"

	domrest "github.com/kailas-cloud/restodex/internal/domain/restaurant"
)

// buildHashFields converts a Restaurant into a flat map for HSET.
func buildHashFields(r *domrest.Restaurant) map[string]string {
	return map[string]string{
		fieldName:       r.Name(),
		fieldCuisine:    r.Cuisine(),
		fieldLocation:   r.Location(),
		fieldRating:     strconv.FormatFloat(r.Rating(), 'f', -1, 64),
		fieldPriceRange: string(r.PriceRange()),
	}
}

// parseHashFields converts a stored hash back into a Restaurant.
// An unparsable rating hydrates as zero.
func parseHashFields(id string, m map[string]string) domrest.Restaurant {
	rating, _ := strconv.ParseFloat(m[fieldRating], 64)
	return domrest.Reconstruct(
		id,
		m[fieldName],
		m[fieldCuisine],
		m[fieldLocation],
		rating,
		domrest.PriceRange(m[fieldPriceRange]),
	)
}

func idFromKey(prefix, key string) string {
	return strings.TrimPrefix(key, prefix)
}
