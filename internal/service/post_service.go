package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"handpic/internal/domain"
	"handpic/internal/repository"
)

// PostService coordinates post level operations backed by repositories.
type PostService interface {
	Create(ctx context.Context, ownerID int64, title, description, imagePath string) (*domain.Post, error)
	Get(ctx context.Context, id int64) (*domain.Post, error)
	List(ctx context.Context, sortBy, order, query string) ([]domain.Post, error)
	ListByOwner(ctx context.Context, userID int64) ([]domain.Post, error)
	ListLikedBy(ctx context.Context, userID int64) ([]domain.Post, error)
	Update(ctx context.Context, callerID, id int64, title, description string) (*domain.Post, error)
	// Delete removes the post and returns its image location for storage cleanup.
	Delete(ctx context.Context, callerID, id int64) (string, error)
	ToggleLike(ctx context.Context, postID, callerID int64) (bool, int64, error)
}

type postService struct {
	posts repository.PostRepository
	users repository.UserRepository
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) PostService {
	return &postService{
		posts: posts,
		users: users,
	}
}

func (s *postService) Create(ctx context.Context, ownerID int64, title, description, imagePath string) (*domain.Post, error) {
	title = strings.TrimSpace(title)
	description = strings.TrimSpace(description)

	if title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if description == "" {
		return nil, fmt.Errorf("%w: description is required", ErrInvalidInput)
	}
	if imagePath == "" {
		return nil, fmt.Errorf("%w: image file is required", ErrInvalidInput)
	}

	owner, err := s.users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	post := &domain.Post{
		Title:       title,
		Description: description,
		ImagePath:   imagePath,
		Username:    owner.Username,
		UserID:      owner.ID,
	}

	if _, err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) Get(ctx context.Context, id int64) (*domain.Post, error) {
	post, err := s.posts.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context, sortBy, order, query string) ([]domain.Post, error) {
	filter, err := parsePostFilter(sortBy, order, query)
	if err != nil {
		return nil, err
	}
	return s.posts.List(ctx, filter)
}

func (s *postService) ListByOwner(ctx context.Context, userID int64) ([]domain.Post, error) {
	return s.posts.ListByOwner(ctx, userID)
}

func (s *postService) ListLikedBy(ctx context.Context, userID int64) ([]domain.Post, error) {
	return s.posts.ListLikedBy(ctx, userID)
}

func (s *postService) Update(ctx context.Context, callerID, id int64, title, description string) (*domain.Post, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if post.UserID != callerID {
		return nil, ErrForbidden
	}

	if title = strings.TrimSpace(title); title != "" {
		post.Title = title
	}
	if description = strings.TrimSpace(description); description != "" {
		post.Description = description
	}

	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) Delete(ctx context.Context, callerID, id int64) (string, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return "", err
	}
	if post.UserID != callerID {
		return "", ErrForbidden
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", ErrNotFound
		}
		return "", err
	}
	return post.ImagePath, nil
}

func (s *postService) ToggleLike(ctx context.Context, postID, callerID int64) (bool, int64, error) {
	liked, count, err := s.posts.ToggleLike(ctx, postID, callerID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, 0, ErrNotFound
		}
		return false, 0, err
	}
	return liked, count, nil
}

// parsePostFilter maps the raw query parameters onto the enumerated sort
// fields. Unknown values are rejected rather than passed through.
func parsePostFilter(sortBy, order, query string) (repository.PostFilter, error) {
	var filter repository.PostFilter
	filter.Query = strings.TrimSpace(query)

	switch strings.TrimSpace(sortBy) {
	case "", string(repository.SortByCreatedAt):
		filter.Sort = repository.SortByCreatedAt
	case string(repository.SortByLikes):
		filter.Sort = repository.SortByLikes
	case string(repository.SortByTitle):
		filter.Sort = repository.SortByTitle
	default:
		return repository.PostFilter{}, fmt.Errorf("%w: unknown sort field %q", ErrInvalidInput, sortBy)
	}

	switch strings.TrimSpace(order) {
	case "", string(repository.SortDesc):
		filter.Order = repository.SortDesc
	case string(repository.SortAsc):
		filter.Order = repository.SortAsc
	default:
		return repository.PostFilter{}, fmt.Errorf("%w: unknown sort order %q", ErrInvalidInput, order)
	}

	return filter, nil
}
