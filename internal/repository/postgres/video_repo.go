package postgres

import (
	"context"
	"errors"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"

	"gorm.io/gorm"
)

// gormVideoRepository implements repository.VideoRepository using GORM.
type gormVideoRepository struct {
	db *gorm.DB
}

// NewVideoRepository creates a new instance of gormVideoRepository.
func NewVideoRepository(db *gorm.DB) repository.VideoRepository {
	return &gormVideoRepository{db: db}
}

// Create inserts a new video.
func (r *gormVideoRepository) Create(ctx context.Context, video *domain.Video) (uint, error) {
	if err := r.db.WithContext(ctx).Create(video).Error; err != nil {
		return 0, err
	}
	return video.ID, nil
}

// GetByID retrieves a video by primary key.
func (r *gormVideoRepository) GetByID(ctx context.Context, id uint) (*domain.Video, error) {
	var video domain.Video
	err := r.db.WithContext(ctx).First(&video, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &video, nil
}

// NextPosition returns max(position)+1 among the course's videos, or 1 for
// an empty course.
func (r *gormVideoRepository) NextPosition(ctx context.Context, courseID uint) (int, error) {
	var max int
	err := r.db.WithContext(ctx).Model(&domain.Video{}).
		Where("course_id = ?", courseID).
		Select("COALESCE(MAX(position), 0)").
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	return max + 1, nil
}

// SetDurationIfUnset caches the player-reported duration on first play.
// The IS NULL guard makes concurrent reports idempotent: whichever lands
// first wins and later reports are no-ops.
func (r *gormVideoRepository) SetDurationIfUnset(ctx context.Context, id uint, seconds int) error {
	return r.db.WithContext(ctx).Model(&domain.Video{}).
		Where("id = ? AND duration IS NULL", id).
		Update("duration", seconds).Error
}

// Delete removes a video; the user's progress rows cascade.
func (r *gormVideoRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Video{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
