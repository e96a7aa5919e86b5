package service

import (
	"context"
	"errors"
	"testing"

	"handpic/internal/domain"
)

func createAlicePost(t *testing.T, users UserService, posts PostService) (*domain.User, *domain.Post) {
	t.Helper()
	ctx := context.Background()
	alice := signupAlice(t, users)
	post, err := posts.Create(ctx, alice.ID, "my hand", "left one", "/uploads/h.jpg")
	if err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	return alice, post
}

func TestCreatePost(t *testing.T) {
	users, posts, _ := newTestServices(t)
	_, post := createAlicePost(t, users, posts)

	if post.Username != "alice" {
		t.Errorf("Username = %q, want author name denormalized", post.Username)
	}
	if post.LikesCount != 0 {
		t.Errorf("LikesCount = %d, want 0", post.LikesCount)
	}
}

func TestCreatePostValidation(t *testing.T) {
	users, posts, _ := newTestServices(t)
	ctx := context.Background()
	alice := signupAlice(t, users)

	tests := []struct {
		name        string
		title       string
		description string
		image       string
	}{
		{"missing title", "", "desc", "/uploads/h.jpg"},
		{"missing description", "title", "", "/uploads/h.jpg"},
		{"missing image", "title", "desc", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := posts.Create(ctx, alice.ID, tt.title, tt.description, tt.image)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Create() error = %v, want ErrInvalidInput", err)
			}
		})
	}

	if _, err := posts.Create(ctx, 999, "title", "desc", "/uploads/h.jpg"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Create(unknown owner) error = %v, want ErrNotFound", err)
	}
}

func TestListRejectsUnknownSort(t *testing.T) {
	users, posts, _ := newTestServices(t)
	createAlicePost(t, users, posts)
	ctx := context.Background()

	if _, err := posts.List(ctx, "password_hash", "", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List(unknown sort) error = %v, want ErrInvalidInput", err)
	}
	if _, err := posts.List(ctx, "likes", "sideways", ""); !errors.Is(err, ErrInvalidInput) {
		t.Errorf("List(unknown order) error = %v, want ErrInvalidInput", err)
	}

	for _, sortBy := range []string{"", "created_at", "likes", "title"} {
		if _, err := posts.List(ctx, sortBy, "asc", ""); err != nil {
			t.Errorf("List(%q) error: %v", sortBy, err)
		}
	}
}

func TestUpdateAndDeleteOwnership(t *testing.T) {
	users, posts, _ := newTestServices(t)
	ctx := context.Background()
	alice, post := createAlicePost(t, users, posts)
	bob, err := users.Signup(ctx, "bob", "b@x.com", "password1", 25)
	if err != nil {
		t.Fatalf("Signup(bob) error: %v", err)
	}

	if _, err := posts.Update(ctx, bob.ID, post.ID, "stolen", ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner update error = %v, want ErrForbidden", err)
	}
	if _, err := posts.Delete(ctx, bob.ID, post.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("non-owner delete error = %v, want ErrForbidden", err)
	}

	updated, err := posts.Update(ctx, alice.ID, post.ID, "renamed", "")
	if err != nil {
		t.Fatalf("Update() error: %v", err)
	}
	if updated.Title != "renamed" || updated.Description != "left one" {
		t.Errorf("updated = %+v, want renamed title with kept description", updated)
	}

	image, err := posts.Delete(ctx, alice.ID, post.ID)
	if err != nil {
		t.Fatalf("Delete() error: %v", err)
	}
	if image != "/uploads/h.jpg" {
		t.Errorf("image = %q, want the stored location", image)
	}
	if _, err := posts.Get(ctx, post.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(deleted) error = %v, want ErrNotFound", err)
	}
}

func TestToggleLikeIdempotentPair(t *testing.T) {
	users, posts, _ := newTestServices(t)
	ctx := context.Background()
	alice, post := createAlicePost(t, users, posts)

	liked, count, err := posts.ToggleLike(ctx, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if !liked || count != 1 {
		t.Errorf("toggle = (%v, %d), want (true, 1)", liked, count)
	}

	liked, count, err = posts.ToggleLike(ctx, post.ID, alice.ID)
	if err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if liked || count != 0 {
		t.Errorf("double toggle = (%v, %d), want original (false, 0)", liked, count)
	}

	if _, _, err := posts.ToggleLike(ctx, 999, alice.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ToggleLike(missing post) error = %v, want ErrNotFound", err)
	}
}

func TestListLikedBy(t *testing.T) {
	users, posts, _ := newTestServices(t)
	ctx := context.Background()
	alice, post := createAlicePost(t, users, posts)

	liked, err := posts.ListLikedBy(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListLikedBy() error: %v", err)
	}
	if len(liked) != 0 {
		t.Errorf("liked = %d posts, want none before liking", len(liked))
	}

	if _, _, err := posts.ToggleLike(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	liked, err = posts.ListLikedBy(ctx, alice.ID)
	if err != nil {
		t.Fatalf("ListLikedBy() error: %v", err)
	}
	if len(liked) != 1 || liked[0].ID != post.ID {
		t.Errorf("liked = %+v, want the liked post", liked)
	}
}

func TestStatsOverview(t *testing.T) {
	users, posts, stats := newTestServices(t)
	ctx := context.Background()
	alice, post := createAlicePost(t, users, posts)

	if _, _, err := posts.ToggleLike(ctx, post.ID, alice.ID); err != nil {
		t.Fatalf("ToggleLike() error: %v", err)
	}
	if err := stats.RecordView(ctx); err != nil {
		t.Fatalf("RecordView() error: %v", err)
	}
	if err := stats.RecordView(ctx); err != nil {
		t.Fatalf("RecordView() error: %v", err)
	}

	overview, err := stats.Overview(ctx)
	if err != nil {
		t.Fatalf("Overview() error: %v", err)
	}
	if overview.TotalUsers != 1 || overview.PhotosShared != 1 || overview.TotalLikes != 1 {
		t.Errorf("overview = %+v, want one user, one post, one like", overview)
	}
	if overview.TotalViews != 2 {
		t.Errorf("TotalViews = %d, want 2", overview.TotalViews)
	}
	// the only user signed up within the last week
	if overview.GrowthRate != 100 {
		t.Errorf("GrowthRate = %v, want 100", overview.GrowthRate)
	}
}
