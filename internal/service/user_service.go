package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"handpic/internal/auth"
	"handpic/internal/domain"
	"handpic/internal/repository"
)

// UserService handles signup, login, session verification and profile
// lifecycle. Users it returns never carry the password hash.
type UserService interface {
	Signup(ctx context.Context, username, email, password string, age int) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.User, string, error)
	Verify(ctx context.Context, token string) (*domain.User, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
	ListUsers(ctx context.Context) ([]domain.User, error)
	UpdateUser(ctx context.Context, callerID, id int64, username, email string, age int) (*domain.User, error)
	// DeleteUser removes the account with its posts and likes and returns
	// the image locations of the removed posts for storage cleanup.
	DeleteUser(ctx context.Context, callerID, id int64) ([]string, error)
}

type userService struct {
	users  repository.UserRepository
	posts  repository.PostRepository
	tokens *auth.TokenCodec
}

func NewUserService(users repository.UserRepository, posts repository.PostRepository, tokens *auth.TokenCodec) UserService {
	return &userService{
		users:  users,
		posts:  posts,
		tokens: tokens,
	}
}

func (s *userService) Signup(ctx context.Context, username, email, password string, age int) (*domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)

	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must be at least 8 characters", ErrInvalidInput)
	}
	if age <= 0 {
		return nil, fmt.Errorf("%w: age must be a positive number", ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		Age:          age,
	}

	if _, err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		return nil, err
	}

	return sanitizeUser(user), nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(email)
	password = strings.TrimSpace(password)
	if email == "" || password == "" {
		return nil, "", ErrInvalidCredentials
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return nil, "", fmt.Errorf("issue token: %w", err)
	}

	return sanitizeUser(user), token, nil
}

// Verify decodes the session token and re-fetches the user, so a deleted
// account stops verifying even while its token is still inside the TTL.
func (s *userService) Verify(ctx context.Context, token string) (*domain.User, error) {
	identity, err := s.tokens.Verify(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	user, err := s.users.GetByID(ctx, identity.UserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		users[i] = *sanitizeUser(&users[i])
	}
	return users, nil
}

func (s *userService) UpdateUser(ctx context.Context, callerID, id int64, username, email string, age int) (*domain.User, error) {
	if callerID != id {
		return nil, ErrForbidden
	}

	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	if username = strings.TrimSpace(username); username != "" {
		user.Username = username
	}
	if email = strings.TrimSpace(email); email != "" {
		if !strings.Contains(email, "@") {
			return nil, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
		}
		user.Email = email
	}
	if age != 0 {
		if age < 0 {
			return nil, fmt.Errorf("%w: age must be a positive number", ErrInvalidInput)
		}
		user.Age = age
	}

	if err := s.users.Update(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrUserExists
		}
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return sanitizeUser(user), nil
}

func (s *userService) DeleteUser(ctx context.Context, callerID, id int64) ([]string, error) {
	if callerID != id {
		return nil, ErrForbidden
	}

	posts, err := s.posts.ListByOwner(ctx, id)
	if err != nil {
		return nil, err
	}
	images := make([]string, 0, len(posts))
	for _, post := range posts {
		if post.ImagePath != "" {
			images = append(images, post.ImagePath)
		}
	}

	if err := s.users.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return images, nil
}

func sanitizeUser(user *domain.User) *domain.User {
	if user == nil {
		return nil
	}
	return &domain.User{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		Age:       user.Age,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}
