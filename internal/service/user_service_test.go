package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"handpic/internal/auth"
	"handpic/internal/domain"
	"handpic/internal/repository"
	"handpic/internal/repository/sqlite"
)

func newTestServices(t *testing.T) (UserService, PostService, StatsService) {
	t.Helper()

	db, err := sqlite.OpenMemory()
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	users, posts, stats := initRepos(t, db)
	tokens := auth.NewTokenCodec("test-secret", time.Hour)
	return NewUserService(users, posts, tokens),
		NewPostService(posts, users),
		NewStatsService(users, posts, stats)
}

func initRepos(t *testing.T, db *sql.DB) (repository.UserRepository, repository.PostRepository, repository.StatsRepository) {
	t.Helper()

	ctx := context.Background()
	users := sqlite.NewUserRepository(db)
	posts := sqlite.NewPostRepository(db)
	stats := sqlite.NewStatsRepository(db)
	if err := users.Init(ctx); err != nil {
		t.Fatalf("init users: %v", err)
	}
	if err := posts.Init(ctx); err != nil {
		t.Fatalf("init posts: %v", err)
	}
	if err := stats.Init(ctx); err != nil {
		t.Fatalf("init stats: %v", err)
	}
	return users, posts, stats
}

func signupAlice(t *testing.T, users UserService) *domain.User {
	t.Helper()
	user, err := users.Signup(context.Background(), "alice", "a@x.com", "password1", 30)
	if err != nil {
		t.Fatalf("Signup() error: %v", err)
	}
	return user
}

func TestSignupAndLogin(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	user := signupAlice(t, users)
	if user.PasswordHash != "" {
		t.Error("signup response must not carry the password hash")
	}
	if user.ID == 0 {
		t.Error("expected assigned user id")
	}

	loggedIn, token, err := users.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	if token == "" {
		t.Error("expected session token")
	}
	if loggedIn.Username != "alice" || loggedIn.PasswordHash != "" {
		t.Errorf("login user = %+v, want sanitized alice", loggedIn)
	}
}

func TestSignupValidation(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		username string
		email    string
		password string
		age      int
	}{
		{"missing username", "", "a@x.com", "password1", 30},
		{"missing email", "alice", "", "password1", 30},
		{"invalid email", "alice", "not-an-email", "password1", 30},
		{"missing password", "alice", "a@x.com", "", 30},
		{"short password", "alice", "a@x.com", "short", 30},
		{"zero age", "alice", "a@x.com", "password1", 0},
		{"negative age", "alice", "a@x.com", "password1", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := users.Signup(ctx, tt.username, tt.email, tt.password, tt.age)
			if !errors.Is(err, ErrInvalidInput) {
				t.Errorf("Signup() error = %v, want ErrInvalidInput", err)
			}
		})
	}
}

func TestSignupDuplicate(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()
	signupAlice(t, users)

	if _, err := users.Signup(ctx, "alice", "other@x.com", "password1", 22); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate username error = %v, want ErrUserExists", err)
	}
	if _, err := users.Signup(ctx, "alice2", "a@x.com", "password1", 22); !errors.Is(err, ErrUserExists) {
		t.Errorf("duplicate email error = %v, want ErrUserExists", err)
	}
}

func TestLoginFailuresAreUniform(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()
	signupAlice(t, users)

	_, _, wrongPassword := users.Login(ctx, "a@x.com", "wrong-password")
	_, _, unknownEmail := users.Login(ctx, "nobody@x.com", "password1")

	if !errors.Is(wrongPassword, ErrInvalidCredentials) {
		t.Errorf("wrong password error = %v, want ErrInvalidCredentials", wrongPassword)
	}
	if !errors.Is(unknownEmail, ErrInvalidCredentials) {
		t.Errorf("unknown email error = %v, want ErrInvalidCredentials", unknownEmail)
	}
	// identical outward behavior, no account-existence leak
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Errorf("errors differ: %q vs %q", wrongPassword, unknownEmail)
	}
}

func TestVerify(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()
	user := signupAlice(t, users)

	_, token, err := users.Login(ctx, "a@x.com", "password1")
	if err != nil {
		t.Fatalf("Login() error: %v", err)
	}

	verified, err := users.Verify(ctx, token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if verified.ID != user.ID || verified.Username != "alice" || verified.Age != 30 {
		t.Errorf("verified = %+v, want alice", verified)
	}
	if verified.PasswordHash != "" {
		t.Error("verify response must not carry the password hash")
	}

	if _, err := users.Verify(ctx, "garbage"); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Verify(garbage) error = %v, want ErrUnauthorized", err)
	}

	// a deleted account stops verifying even though the token is unexpired
	if _, err := users.DeleteUser(ctx, user.ID, user.ID); err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if _, err := users.Verify(ctx, token); !errors.Is(err, ErrUnauthorized) {
		t.Errorf("Verify(deleted user) error = %v, want ErrUnauthorized", err)
	}
}

func TestUpdateUserOwnership(t *testing.T) {
	users, _, _ := newTestServices(t)
	ctx := context.Background()
	alice := signupAlice(t, users)
	bob, err := users.Signup(ctx, "bob", "b@x.com", "password1", 25)
	if err != nil {
		t.Fatalf("Signup(bob) error: %v", err)
	}

	if _, err := users.UpdateUser(ctx, bob.ID, alice.ID, "mallory", "", 0); !errors.Is(err, ErrForbidden) {
		t.Errorf("cross-user update error = %v, want ErrForbidden", err)
	}

	updated, err := users.UpdateUser(ctx, alice.ID, alice.ID, "alice2", "", 31)
	if err != nil {
		t.Fatalf("UpdateUser() error: %v", err)
	}
	if updated.Username != "alice2" || updated.Age != 31 || updated.Email != "a@x.com" {
		t.Errorf("updated = %+v, want renamed alice with kept email", updated)
	}

	if _, err := users.UpdateUser(ctx, alice.ID, alice.ID, "bob", "", 0); !errors.Is(err, ErrUserExists) {
		t.Errorf("rename onto taken username error = %v, want ErrUserExists", err)
	}
}

func TestDeleteUserReturnsImageLocations(t *testing.T) {
	users, posts, _ := newTestServices(t)
	ctx := context.Background()
	alice := signupAlice(t, users)

	if _, err := posts.Create(ctx, alice.ID, "hand", "desc", "/uploads/h.jpg"); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	if _, err := users.DeleteUser(ctx, alice.ID+1, alice.ID); !errors.Is(err, ErrForbidden) {
		t.Errorf("cross-user delete error = %v, want ErrForbidden", err)
	}

	images, err := users.DeleteUser(ctx, alice.ID, alice.ID)
	if err != nil {
		t.Fatalf("DeleteUser() error: %v", err)
	}
	if len(images) != 1 || images[0] != "/uploads/h.jpg" {
		t.Errorf("images = %v, want the post's image location", images)
	}
}
