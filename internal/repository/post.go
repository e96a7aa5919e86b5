package repository

import (
	"context"

	"handpic/internal/domain"
)

// SortField enumerates the columns a gallery listing may be ordered by.
// Anything outside this set is rejected before reaching the store.
type SortField string

const (
	SortByCreatedAt SortField = "created_at"
	SortByLikes     SortField = "likes"
	SortByTitle     SortField = "title"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// PostFilter narrows and orders a gallery listing. Query is matched
// case-insensitively against title, description and author username.
type PostFilter struct {
	Sort  SortField
	Order SortOrder
	Query string
}

// PostRepository defines persistence operations for Post entities.
type PostRepository interface {
	Init(ctx context.Context) error
	Create(ctx context.Context, post *domain.Post) (int64, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, filter PostFilter) ([]domain.Post, error)
	ListByOwner(ctx context.Context, userID int64) ([]domain.Post, error)
	ListLikedBy(ctx context.Context, userID int64) ([]domain.Post, error)
	Update(ctx context.Context, post *domain.Post) error
	Delete(ctx context.Context, id int64) error
	// ToggleLike flips userID's membership in the post's like set and
	// co-updates the counter in a single transaction.
	ToggleLike(ctx context.Context, postID, userID int64) (liked bool, count int64, err error)
	CountPosts(ctx context.Context) (int64, error)
	CountLikes(ctx context.Context) (int64, error)
}
