package postgres

import (
	"context"
	"errors"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"

	"gorm.io/gorm"
)

// videoOrder sorts course videos for preloads. Ties on position fall back
// to id so the ordering is deterministic even with duplicate positions.
const videoOrder = "position ASC, id ASC"

// gormCourseRepository implements repository.CourseRepository using GORM.
type gormCourseRepository struct {
	db *gorm.DB
}

// NewCourseRepository creates a new instance of gormCourseRepository.
func NewCourseRepository(db *gorm.DB) repository.CourseRepository {
	return &gormCourseRepository{db: db}
}

// Create inserts a course together with its nested videos, if any.
func (r *gormCourseRepository) Create(ctx context.Context, course *domain.Course) (uint, error) {
	if err := r.db.WithContext(ctx).Create(course).Error; err != nil {
		return 0, err
	}
	return course.ID, nil
}

// GetByID retrieves a course with its videos in position order.
func (r *gormCourseRepository) GetByID(ctx context.Context, id uint) (*domain.Course, error) {
	var course domain.Course
	err := r.db.WithContext(ctx).
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order(videoOrder) }).
		First(&course, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &course, nil
}

// List returns all courses, newest first, each with ordered videos.
func (r *gormCourseRepository) List(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	err := r.db.WithContext(ctx).
		Preload("Videos", func(db *gorm.DB) *gorm.DB { return db.Order(videoOrder) }).
		Order("created_at DESC").
		Find(&courses).Error
	if err != nil {
		return nil, err
	}
	return courses, nil
}

// Update saves changed course fields. Videos are managed through the
// VideoRepository, not rewritten here.
func (r *gormCourseRepository) Update(ctx context.Context, course *domain.Course) error {
	result := r.db.WithContext(ctx).Model(&domain.Course{}).
		Where("id = ?", course.ID).
		Updates(map[string]interface{}{
			"title":       course.Title,
			"description": course.Description,
			"price":       course.Price,
			"category":    course.Category,
			"thumbnail":   course.Thumbnail,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a course. Videos, access grants, progress records, and
// certificates cascade through their foreign keys.
func (r *gormCourseRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Course{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
