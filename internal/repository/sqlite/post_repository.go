package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"handpic/internal/domain"
	"handpic/internal/repository"
)

const (
	createPostsTable = `
CREATE TABLE IF NOT EXISTS posts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	title TEXT NOT NULL,
	description TEXT NOT NULL,
	image_path TEXT NOT NULL,
	username TEXT NOT NULL,
	user_id INTEGER NOT NULL,
	likes_count INTEGER NOT NULL DEFAULT 0,
	created_at DATETIME NOT NULL,
	updated_at DATETIME NOT NULL
);
`
	createPostLikesTable = `
CREATE TABLE IF NOT EXISTS post_likes (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	post_id INTEGER NOT NULL REFERENCES posts(id) ON DELETE CASCADE,
	user_id INTEGER NOT NULL,
	created_at DATETIME NOT NULL,
	UNIQUE (post_id, user_id)
);
`
)

const postColumns = `id, title, description, image_path, username, user_id, likes_count, created_at, updated_at`

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) repository.PostRepository {
	return &PostRepository{db: db}
}

func (r *PostRepository) Init(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, createPostsTable); err != nil {
		return fmt.Errorf("create posts table: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, createPostLikesTable); err != nil {
		return fmt.Errorf("create post_likes table: %w", err)
	}
	return nil
}

func (r *PostRepository) Create(ctx context.Context, post *domain.Post) (int64, error) {
	now := time.Now().UTC()
	post.CreatedAt = now
	post.UpdatedAt = now

	res, err := r.db.ExecContext(ctx, `
INSERT INTO posts (title, description, image_path, username, user_id, likes_count, created_at, updated_at)
VALUES (?, ?, ?, ?, ?, 0, ?, ?)`,
		post.Title,
		post.Description,
		post.ImagePath,
		post.Username,
		post.UserID,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return 0, fmt.Errorf("insert post: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("post last insert id: %w", err)
	}
	post.ID = id
	return id, nil
}

func (r *PostRepository) Get(ctx context.Context, id int64) (*domain.Post, error) {
	row := r.db.QueryRowContext(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE id = ?`,
		id,
	)
	post, err := scanPost(row)
	if err != nil {
		return nil, err
	}
	if post.LikedBy, err = r.likedBy(ctx, post.ID); err != nil {
		return nil, err
	}
	return post, nil
}

func (r *PostRepository) List(ctx context.Context, filter repository.PostFilter) ([]domain.Post, error) {
	column, err := sortColumn(filter.Sort)
	if err != nil {
		return nil, err
	}
	direction, err := sortDirection(filter.Order)
	if err != nil {
		return nil, err
	}

	query := `SELECT ` + postColumns + ` FROM posts`
	var args []any
	if q := strings.TrimSpace(filter.Query); q != "" {
		query += ` WHERE (LOWER(title) LIKE ? OR LOWER(description) LIKE ? OR LOWER(username) LIKE ?)`
		pattern := "%" + strings.ToLower(q) + "%"
		args = append(args, pattern, pattern, pattern)
	}
	query += fmt.Sprintf(` ORDER BY %s %s, id %s`, column, direction, direction)

	return r.queryPosts(ctx, query, args...)
}

func (r *PostRepository) ListByOwner(ctx context.Context, userID int64) ([]domain.Post, error) {
	return r.queryPosts(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE user_id = ?
ORDER BY created_at DESC, id DESC`,
		userID,
	)
}

func (r *PostRepository) ListLikedBy(ctx context.Context, userID int64) ([]domain.Post, error) {
	return r.queryPosts(ctx, `
SELECT `+postColumns+`
FROM posts
WHERE id IN (SELECT post_id FROM post_likes WHERE user_id = ?)
ORDER BY created_at DESC, id DESC`,
		userID,
	)
}

func (r *PostRepository) Update(ctx context.Context, post *domain.Post) error {
	post.UpdatedAt = time.Now().UTC()

	res, err := r.db.ExecContext(ctx, `
UPDATE posts
SET title = ?, description = ?, updated_at = ?
WHERE id = ?`,
		post.Title,
		post.Description,
		post.UpdatedAt,
		post.ID,
	)
	if err != nil {
		return fmt.Errorf("update post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %w", repository.ErrNotFound)
	}
	return nil
}

func (r *PostRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM posts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete post: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete post rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("post %w", repository.ErrNotFound)
	}
	return nil
}

// ToggleLike flips the caller's like on a post. The membership check, the
// like-set mutation and the counter update run in one transaction so the
// counter can never drift from the set size. The decrement is clamped at
// zero in case an earlier inconsistency left the counter low.
func (r *PostRepository) ToggleLike(ctx context.Context, postID, userID int64) (bool, int64, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return false, 0, fmt.Errorf("begin toggle like: %w", err)
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts WHERE id = ?`, postID).Scan(&exists); err != nil {
		return false, 0, fmt.Errorf("check post: %w", err)
	}
	if exists == 0 {
		return false, 0, fmt.Errorf("post %w", repository.ErrNotFound)
	}

	var alreadyLiked int64
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(1) FROM post_likes WHERE post_id = ? AND user_id = ?`,
		postID, userID,
	).Scan(&alreadyLiked); err != nil {
		return false, 0, fmt.Errorf("check like: %w", err)
	}

	now := time.Now().UTC()
	liked := alreadyLiked == 0
	if liked {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO post_likes (post_id, user_id, created_at) VALUES (?, ?, ?)`,
			postID, userID, now,
		); err != nil {
			return false, 0, fmt.Errorf("insert like: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET likes_count = likes_count + 1, updated_at = ? WHERE id = ?`,
			now, postID,
		); err != nil {
			return false, 0, fmt.Errorf("increment like count: %w", err)
		}
	} else {
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM post_likes WHERE post_id = ? AND user_id = ?`,
			postID, userID,
		); err != nil {
			return false, 0, fmt.Errorf("delete like: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE posts SET likes_count = MAX(likes_count - 1, 0), updated_at = ? WHERE id = ?`,
			now, postID,
		); err != nil {
			return false, 0, fmt.Errorf("decrement like count: %w", err)
		}
	}

	var count int64
	if err := tx.QueryRowContext(ctx, `SELECT likes_count FROM posts WHERE id = ?`, postID).Scan(&count); err != nil {
		return false, 0, fmt.Errorf("read like count: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return false, 0, fmt.Errorf("commit toggle like: %w", err)
	}
	return liked, count, nil
}

func (r *PostRepository) CountPosts(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM posts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count posts: %w", err)
	}
	return n, nil
}

func (r *PostRepository) CountLikes(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(1) FROM post_likes`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count likes: %w", err)
	}
	return n, nil
}

func (r *PostRepository) queryPosts(ctx context.Context, query string, args ...any) ([]domain.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	var posts []domain.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, *post)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range posts {
		if posts[i].LikedBy, err = r.likedBy(ctx, posts[i].ID); err != nil {
			return nil, err
		}
	}
	return posts, nil
}

func (r *PostRepository) likedBy(ctx context.Context, postID int64) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id FROM post_likes WHERE post_id = ? ORDER BY user_id`,
		postID,
	)
	if err != nil {
		return nil, fmt.Errorf("list post likes: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan post like: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate post likes: %w", err)
	}
	return ids, nil
}

func sortColumn(field repository.SortField) (string, error) {
	switch field {
	case repository.SortByCreatedAt, "":
		return "created_at", nil
	case repository.SortByLikes:
		return "likes_count", nil
	case repository.SortByTitle:
		return "title", nil
	default:
		return "", fmt.Errorf("unsupported sort field %q", field)
	}
}

func sortDirection(order repository.SortOrder) (string, error) {
	switch order {
	case repository.SortDesc, "":
		return "DESC", nil
	case repository.SortAsc:
		return "ASC", nil
	default:
		return "", fmt.Errorf("unsupported sort order %q", order)
	}
}

func scanPost(row interface {
	Scan(dest ...any) error
}) (*domain.Post, error) {
	var post domain.Post
	if err := row.Scan(
		&post.ID,
		&post.Title,
		&post.Description,
		&post.ImagePath,
		&post.Username,
		&post.UserID,
		&post.LikesCount,
		&post.CreatedAt,
		&post.UpdatedAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("post %w", repository.ErrNotFound)
		}
		return nil, fmt.Errorf("scan post: %w", err)
	}
	return &post, nil
}
