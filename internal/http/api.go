package http

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"handpic/internal/auth"
	"handpic/internal/domain"
	"handpic/internal/service"
	"handpic/internal/storage"
)

const (
	sessionCookieName = "token"
	identityKey       = "identity"

	// presigned image links only need to outlive a page view
	imageURLTTL = time.Hour
)

// Handler wires HTTP routes to domain services.
type Handler struct {
	users      service.UserService
	posts      service.PostService
	stats      service.StatsService
	storage    storage.Service
	tokens     *auth.TokenCodec
	health     func(ctx context.Context) error
	logger     *logrus.Logger
	production bool
	corsOrigin string
}

func NewHandler(
	users service.UserService,
	posts service.PostService,
	stats service.StatsService,
	store storage.Service,
	tokens *auth.TokenCodec,
	health func(ctx context.Context) error,
	logger *logrus.Logger,
	production bool,
	corsOrigin string,
) *Handler {
	return &Handler{
		users:      users,
		posts:      posts,
		stats:      stats,
		storage:    store,
		tokens:     tokens,
		health:     health,
		logger:     logger,
		production: production,
		corsOrigin: corsOrigin,
	}
}

func (h *Handler) RegisterRoutes(router *gin.Engine) {
	router.Use(h.corsMiddleware())

	router.GET("/health", h.healthCheck)
	router.POST("/signup", h.signup)
	router.POST("/login", h.login)
	router.POST("/logout", h.logout)
	router.GET("/posts", h.listPosts)
	router.GET("/posts/:id", h.getPost)
	router.GET("/users", h.listUsers)
	router.GET("/users/:id", h.getUser)
	router.GET("/stats", h.siteStats)

	protected := router.Group("", h.authRequired())
	{
		protected.GET("/auth/verify", h.verify)
		protected.POST("/create/post", h.createPost)
		protected.PUT("/posts/:id", h.updatePost)
		protected.DELETE("/posts/:id", h.deletePost)
		protected.POST("/posts/:id/like", h.toggleLike)
		protected.GET("/user/liked-posts", h.likedPosts)
		protected.PUT("/users/:id", h.updateUser)
		protected.DELETE("/users/:id", h.deleteUser)
	}
}

func (h *Handler) corsMiddleware() gin.HandlerFunc {
	origin := h.corsOrigin
	if origin == "" {
		origin = "*"
	}
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		if origin != "*" {
			// credentials require a concrete origin
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Add("Vary", "Origin")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// authRequired is the gate in front of every protected route: it pulls the
// session cookie, verifies it, and attaches the identity for downstream use.
func (h *Handler) authRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(sessionCookieName)
		if err != nil || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: No token provided"})
			return
		}

		identity, err := h.tokens.Verify(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: Invalid token"})
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func callerIdentity(c *gin.Context) *auth.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*auth.Identity)
	return identity
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(h.cookieSameSite())
	c.SetCookie(sessionCookieName, token, int(h.tokens.TTL().Seconds()), "/", "", h.production, true)
}

func (h *Handler) clearSessionCookie(c *gin.Context) {
	c.SetSameSite(h.cookieSameSite())
	c.SetCookie(sessionCookieName, "", -1, "/", "", h.production, true)
}

func (h *Handler) cookieSameSite() http.SameSite {
	if h.production {
		// the SPA is served from another origin in production
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

// writeServiceError maps service sentinels onto HTTP statuses. Anything
// unrecognized is logged and returned as a generic 500 so store internals
// never leak to clients.
func (h *Handler) writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid credentials"})
	case errors.Is(err, service.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized: Invalid token"})
	case errors.Is(err, service.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"message": "You do not own this resource"})
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Not found"})
	case errors.Is(err, service.ErrUserExists):
		c.JSON(http.StatusConflict, gin.H{"message": "Username or email already taken"})
	default:
		h.logger.WithError(err).Error("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
}

type UserSummaryResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type PostResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Username    string  `json:"username"`
	UserID      int64   `json:"user_id"`
	LikesCount  int64   `json:"likes_count"`
	LikedBy     []int64 `json:"liked_by"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func userToResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Age:      user.Age,
	}
}

func (h *Handler) postToResponse(ctx context.Context, post domain.Post) PostResponse {
	image := post.ImagePath
	if h.storage != nil && image != "" {
		if url, err := h.storage.ObjectURL(ctx, image, imageURLTTL); err == nil {
			image = url
		} else {
			h.logger.WithError(err).Warn("resolve image url")
		}
	}

	likedBy := post.LikedBy
	if likedBy == nil {
		likedBy = []int64{}
	}

	return PostResponse{
		ID:          post.ID,
		Title:       post.Title,
		Description: post.Description,
		Image:       image,
		Username:    post.Username,
		UserID:      post.UserID,
		LikesCount:  post.LikesCount,
		LikedBy:     likedBy,
		CreatedAt:   post.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   post.UpdatedAt.Format(time.RFC3339),
	}
}

func (h *Handler) postsToResponse(ctx context.Context, posts []domain.Post) []PostResponse {
	resp := make([]PostResponse, len(posts))
	for i := range posts {
		resp[i] = h.postToResponse(ctx, posts[i])
	}
	return resp
}
