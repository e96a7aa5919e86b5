package service

import (
	"context"
	"time"

	"handpic/internal/domain"
	"handpic/internal/repository"
)

// StatsService aggregates site-wide numbers for the public stats endpoint.
type StatsService interface {
	Overview(ctx context.Context) (*domain.StatsOverview, error)
	RecordView(ctx context.Context) error
}

type statsService struct {
	users repository.UserRepository
	posts repository.PostRepository
	stats repository.StatsRepository
}

func NewStatsService(users repository.UserRepository, posts repository.PostRepository, stats repository.StatsRepository) StatsService {
	return &statsService{
		users: users,
		posts: posts,
		stats: stats,
	}
}

func (s *statsService) Overview(ctx context.Context) (*domain.StatsOverview, error) {
	totalUsers, err := s.users.Count(ctx)
	if err != nil {
		return nil, err
	}
	recentUsers, err := s.users.CountCreatedSince(ctx, time.Now().UTC().Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}
	totalPosts, err := s.posts.CountPosts(ctx)
	if err != nil {
		return nil, err
	}
	totalLikes, err := s.posts.CountLikes(ctx)
	if err != nil {
		return nil, err
	}
	snapshot, err := s.stats.Snapshot(ctx)
	if err != nil {
		return nil, err
	}

	// share of the user base that signed up in the last week
	var growth float64
	if totalUsers > 0 {
		growth = float64(recentUsers) / float64(totalUsers) * 100
	}

	return &domain.StatsOverview{
		TotalUsers:       totalUsers,
		PhotosShared:     totalPosts,
		TotalLikes:       totalLikes,
		TotalViews:       snapshot.TotalViews,
		GrowthRate:       growth,
		DailyActiveUsers: snapshot.DailyActiveUsers,
	}, nil
}

func (s *statsService) RecordView(ctx context.Context) error {
	return s.stats.AddView(ctx)
}
