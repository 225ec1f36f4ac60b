package catalog

import (
	"strconv"
	"strings"

	"islebook-backend/internal/models"
)

// Matches reports whether the query is a case-insensitive substring of the
// activity's title, stringified price, stringified duration, or location.
// An empty query matches everything.
func Matches(query string, activity models.Activity) bool {
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return true
	}

	haystacks := []string{
		activity.Title,
		strconv.FormatFloat(activity.Price, 'f', -1, 64),
		strconv.Itoa(activity.Duration),
		activity.Location,
	}
	for _, h := range haystacks {
		if strings.Contains(strings.ToLower(h), query) {
			return true
		}
	}
	return false
}

// Filter returns the matching subset, preserving the input order.
func Filter(query string, activities []models.Activity) []models.Activity {
	if strings.TrimSpace(query) == "" {
		return activities
	}
	filtered := make([]models.Activity, 0, len(activities))
	for _, a := range activities {
		if Matches(query, a) {
			filtered = append(filtered, a)
		}
	}
	return filtered
}
