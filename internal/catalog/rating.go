package catalog

import "math"

// NextRating folds one new star value into a running average, rounded to one
// decimal. Matches the aggregation pipeline ApplyRating runs server-side, so
// both paths agree on the stored value.
func NextRating(rating float64, numberOfReviews, stars int) float64 {
	total := rating*float64(numberOfReviews) + float64(stars)
	next := total / float64(numberOfReviews+1)
	return math.Round(next*10) / 10
}
