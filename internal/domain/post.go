package domain

import "time"

// Post is a shared photo. LikesCount mirrors the number of entries in
// LikedBy and the two are only ever updated together.
type Post struct {
	ID          int64
	Title       string
	Description string
	ImagePath   string
	Username    string // author display name, denormalized at creation
	UserID      int64
	LikesCount  int64
	LikedBy     []int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Stats holds the site-wide counters that are not derivable from other
// tables (views and daily actives are maintained as a single row).
type Stats struct {
	TotalViews       int64
	DailyActiveUsers int64
	LastUpdated      time.Time
}

// StatsOverview is the aggregate snapshot served to clients.
type StatsOverview struct {
	TotalUsers       int64
	PhotosShared     int64
	TotalLikes       int64
	TotalViews       int64
	GrowthRate       float64
	DailyActiveUsers int64
}
