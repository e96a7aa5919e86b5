package http

import (
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type updatePostRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

func (h *Handler) createPost(c *gin.Context) {
	title := c.PostForm("title")
	description := c.PostForm("description")

	file, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required!"})
		return
	}

	src, err := file.Open()
	if err != nil {
		h.logger.WithError(err).Error("open uploaded image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}
	defer src.Close()

	name := uuid.NewString() + strings.ToLower(filepath.Ext(file.Filename))
	location, err := h.storage.UploadObject(c.Request.Context(), src, name, file.Header.Get("Content-Type"))
	if err != nil {
		h.logger.WithError(err).Error("upload image")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	caller := callerIdentity(c)
	post, err := h.posts.Create(c.Request.Context(), caller.UserID, title, description, location)
	if err != nil {
		if removeErr := h.storage.DeleteObject(c.Request.Context(), location); removeErr != nil {
			h.logger.WithError(removeErr).Warn("remove orphaned image")
		}
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Post created successfully",
		"post":    h.postToResponse(c.Request.Context(), *post),
	})
}

func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.posts.List(c.Request.Context(), c.Query("sortBy"), c.Query("order"), c.Query("q"))
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.postsToResponse(c.Request.Context(), posts))
}

func (h *Handler) getPost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	post, err := h.posts.Get(c.Request.Context(), id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	if err := h.stats.RecordView(c.Request.Context()); err != nil {
		h.logger.WithError(err).Warn("record view")
	}

	c.JSON(http.StatusOK, h.postToResponse(c.Request.Context(), *post))
}

func (h *Handler) updatePost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var req updatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	caller := callerIdentity(c)
	post, err := h.posts.Update(c.Request.Context(), caller.UserID, id, req.Title, req.Description)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.postToResponse(c.Request.Context(), *post))
}

func (h *Handler) deletePost(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	caller := callerIdentity(c)
	imagePath, err := h.posts.Delete(c.Request.Context(), caller.UserID, id)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	resp := gin.H{"message": "Post deleted successfully"}
	if imagePath != "" {
		if err := h.storage.DeleteObject(c.Request.Context(), imagePath); err != nil {
			h.logger.WithError(err).Warn("delete stored image")
			resp["warnings"] = []string{"failed to remove image " + imagePath}
		}
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) toggleLike(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	caller := callerIdentity(c)
	liked, count, err := h.posts.ToggleLike(c.Request.Context(), id, caller.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	message := "Post unliked"
	if liked {
		message = "Post liked"
	}
	c.JSON(http.StatusOK, gin.H{
		"message":    message,
		"isLiked":    liked,
		"likesCount": count,
	})
}

func (h *Handler) likedPosts(c *gin.Context) {
	caller := callerIdentity(c)
	posts, err := h.posts.ListLikedBy(c.Request.Context(), caller.UserID)
	if err != nil {
		h.writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.postsToResponse(c.Request.Context(), posts))
}

func (h *Handler) siteStats(c *gin.Context) {
	overview, err := h.stats.Overview(c.Request.Context())
	if err != nil {
		h.writeServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"totalUsers":       overview.TotalUsers,
		"photosShared":     overview.PhotosShared,
		"totalLikes":       overview.TotalLikes,
		"totalViews":       overview.TotalViews,
		"growthRate":       overview.GrowthRate,
		"dailyActiveUsers": overview.DailyActiveUsers,
	})
}

func (h *Handler) healthCheck(c *gin.Context) {
	if err := h.health(c.Request.Context()); err != nil {
		h.logger.WithError(err).Error("health check")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "database": "disconnected"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": "connected"})
}
