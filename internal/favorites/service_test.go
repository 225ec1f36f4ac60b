package favorites

import (
	"context"
	"errors"
	"testing"
)

type fakeRepo struct {
	docs map[string]map[string]bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{docs: make(map[string]map[string]bool)}
}

func (f *fakeRepo) Get(_ context.Context, email string) (map[string]bool, error) {
	doc, ok := f.docs[email]
	if !ok {
		return map[string]bool{}, nil
	}
	out := make(map[string]bool, len(doc))
	for k, v := range doc {
		out[k] = v
	}
	return out, nil
}

func (f *fakeRepo) Add(_ context.Context, email, title string) error {
	if f.docs[email] == nil {
		f.docs[email] = make(map[string]bool)
	}
	f.docs[email][title] = true
	return nil
}

func (f *fakeRepo) Remove(_ context.Context, email, title string) error {
	delete(f.docs[email], title)
	return nil
}

func TestToggleAddsThenRemoves(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	favorited, err := svc.Toggle(ctx, "amy@example.com", "Scuba Diving")
	if err != nil {
		t.Fatalf("Toggle error: %v", err)
	}
	if !favorited {
		t.Fatalf("first toggle should favorite")
	}

	titles, err := svc.List(ctx, "amy@example.com")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if !titles["Scuba Diving"] {
		t.Fatalf("expected Scuba Diving to be favorited: %v", titles)
	}

	favorited, err = svc.Toggle(ctx, "amy@example.com", "Scuba Diving")
	if err != nil {
		t.Fatalf("Toggle error: %v", err)
	}
	if favorited {
		t.Fatalf("second toggle should unfavorite")
	}

	titles, err = svc.List(ctx, "amy@example.com")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("expected no favorites, got %v", titles)
	}
}

func TestToggleIsPerCustomer(t *testing.T) {
	svc := NewService(newFakeRepo())
	ctx := context.Background()

	if _, err := svc.Toggle(ctx, "amy@example.com", "Mdina Walking Tour"); err != nil {
		t.Fatalf("Toggle error: %v", err)
	}

	titles, err := svc.List(ctx, "ben@example.com")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(titles) != 0 {
		t.Fatalf("favorites leaked across customers: %v", titles)
	}
}

func TestToggleRejectsEmptyTitle(t *testing.T) {
	svc := NewService(newFakeRepo())
	if _, err := svc.Toggle(context.Background(), "amy@example.com", "   "); !errors.Is(err, ErrEmptyTitle) {
		t.Fatalf("expected ErrEmptyTitle, got %v", err)
	}
}

func TestToggleRejectsFieldPathTitles(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	ctx := context.Background()

	// Dots would split the title into a nested document path, leaving a
	// second toggle unable to find the stored key.
	if _, err := svc.Toggle(ctx, "amy@example.com", "St. Julian's Tour"); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle for dotted title, got %v", err)
	}
	// A leading dollar is a query operator.
	if _, err := svc.Toggle(ctx, "amy@example.com", "$where"); !errors.Is(err, ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle for $-prefixed title, got %v", err)
	}

	if len(repo.docs) != 0 {
		t.Fatalf("rejected titles must not be written: %v", repo.docs)
	}
}
