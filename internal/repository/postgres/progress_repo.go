package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// gormProgressRepository implements repository.ProgressRepository using GORM.
type gormProgressRepository struct {
	db *gorm.DB
}

// NewProgressRepository creates a new instance of gormProgressRepository.
func NewProgressRepository(db *gorm.DB) repository.ProgressRepository {
	return &gormProgressRepository{db: db}
}

// InTx runs fn against a repository bound to one database transaction.
// The ON CONFLICT upsert inside takes a row lock on the (user, video)
// progress row, so two near-simultaneous events for the same video
// serialize here and cannot interleave their aggregate recomputes.
func (r *gormProgressRepository) InTx(ctx context.Context, fn func(repository.ProgressRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormProgressRepository{db: tx})
	})
}

// UpsertVideoProgress creates or updates the (user, video) watch record.
// Completed merges with a monotonic OR against the stored row, so a
// duplicate or out-of-order event reporting completed=false can never
// un-complete a video. CompletedAt keeps its first non-null value.
func (r *gormProgressRepository) UpsertVideoProgress(ctx context.Context, vp *domain.VideoProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "video_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"progress":     vp.Progress,
			"completed":    gorm.Expr("user_video_progresses.completed OR excluded.completed"),
			"completed_at": gorm.Expr("COALESCE(user_video_progresses.completed_at, excluded.completed_at)"),
			"updated_at":   time.Now().UTC(),
		}),
	}).Create(vp).Error
}

// GetVideoProgress retrieves the (user, video) record.
func (r *gormProgressRepository) GetVideoProgress(ctx context.Context, userID, videoID uint) (*domain.VideoProgress, error) {
	var vp domain.VideoProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND video_id = ?", userID, videoID).
		First(&vp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &vp, nil
}

// ListVideoProgressByUser returns all of a user's video progress records.
func (r *gormProgressRepository) ListVideoProgressByUser(ctx context.Context, userID uint) ([]domain.VideoProgress, error) {
	var records []domain.VideoProgress
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// CountCompletedInCourse counts the user's completed videos in the course.
func (r *gormProgressRepository) CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.VideoProgress{}).
		Joins("JOIN videos ON videos.id = user_video_progresses.video_id").
		Where("user_video_progresses.user_id = ? AND user_video_progresses.completed = true AND videos.course_id = ?", userID, courseID).
		Count(&count).Error
	return count, err
}

// CountCourseVideos counts rows in the videos table for the course. The
// total deliberately comes from videos, not progress rows: never-started
// videos have no progress row.
func (r *gormProgressRepository) CountCourseVideos(ctx context.Context, courseID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Video{}).
		Where("course_id = ?", courseID).
		Count(&count).Error
	return count, err
}

// GetCourseProgress retrieves the (user, course) aggregate.
func (r *gormProgressRepository) GetCourseProgress(ctx context.Context, userID, courseID uint) (*domain.CourseProgress, error) {
	var cp domain.CourseProgress
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&cp).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cp, nil
}

// UpsertCourseProgress writes the recomputed aggregate. CompletedAt is
// preserved from the first completed transition and never overwritten by
// later recomputes.
func (r *gormProgressRepository) UpsertCourseProgress(ctx context.Context, cp *domain.CourseProgress) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"videos_watched": cp.VideosWatched,
			"total_videos":   cp.TotalVideos,
			"completed":      cp.Completed,
			"completed_at":   gorm.Expr("COALESCE(user_course_progresses.completed_at, excluded.completed_at)"),
			"updated_at":     time.Now().UTC(),
		}),
	}).Create(cp).Error
}
