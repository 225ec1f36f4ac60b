package catalog

import (
	"testing"

	"islebook-backend/internal/models"
)

func sampleActivities() []models.Activity {
	return []models.Activity{
		{ID: "a1", Title: "Scuba Diving", Price: 50, Duration: 180, Location: "Cirkewwa"},
		{ID: "a2", Title: "Blue Lagoon Boat Trip", Price: 35, Duration: 240, Location: "Comino"},
		{ID: "a3", Title: "Mdina Walking Tour", Price: 20, Duration: 120, Location: "Mdina"},
	}
}

func TestFilterByTitleCaseInsensitive(t *testing.T) {
	got := Filter("scuba", sampleActivities())
	if len(got) != 1 || got[0].ID != "a1" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterByPrice(t *testing.T) {
	got := Filter("35", sampleActivities())
	if len(got) != 1 || got[0].ID != "a2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterByLocation(t *testing.T) {
	got := Filter("mdina", sampleActivities())
	if len(got) != 1 || got[0].ID != "a3" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestFilterEmptyQueryReturnsAllInOrder(t *testing.T) {
	activities := sampleActivities()
	got := Filter("  ", activities)
	if len(got) != len(activities) {
		t.Fatalf("expected %d activities, got %d", len(activities), len(got))
	}
	for i := range got {
		if got[i].ID != activities[i].ID {
			t.Fatalf("order changed at %d: %+v", i, got)
		}
	}
}

func TestFilterNoMatch(t *testing.T) {
	got := Filter("paragliding", sampleActivities())
	if len(got) != 0 {
		t.Fatalf("expected no matches, got %+v", got)
	}
}

func TestNextRating(t *testing.T) {
	cases := []struct {
		rating float64
		count  int
		stars  int
		want   float64
	}{
		{0, 0, 5, 5},
		{4.0, 2, 5, 4.3},
		{4.3, 3, 1, 3.5},
		{5, 1, 5, 5},
		{3.7, 9, 0, 3.3},
	}
	for _, c := range cases {
		if got := NextRating(c.rating, c.count, c.stars); got != c.want {
			t.Fatalf("NextRating(%v, %d, %d) = %v, want %v", c.rating, c.count, c.stars, got, c.want)
		}
	}
}
