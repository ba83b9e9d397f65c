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

// gormAccessRepository implements repository.AccessRepository using GORM.
type gormAccessRepository struct {
	db *gorm.DB
}

// NewAccessRepository creates a new instance of gormAccessRepository.
func NewAccessRepository(db *gorm.DB) repository.AccessRepository {
	return &gormAccessRepository{db: db}
}

// Get retrieves the grant for a (user, course) pair.
func (r *gormAccessRepository) Get(ctx context.Context, userID, courseID uint) (*domain.Access, error) {
	var access domain.Access
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND course_id = ?", userID, courseID).
		First(&access).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &access, nil
}

// List returns grants matching the filter, newest request first, with the
// user and course rows preloaded for the admin screens.
func (r *gormAccessRepository) List(ctx context.Context, filter repository.AccessFilter) ([]domain.Access, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Order("requested_at DESC")
	if filter.Approved != nil {
		q = q.Where("approved = ?", *filter.Approved)
	}
	if filter.UserID != nil {
		q = q.Where("user_id = ?", *filter.UserID)
	}
	if filter.CourseID != nil {
		q = q.Where("course_id = ?", *filter.CourseID)
	}

	var accesses []domain.Access
	if err := q.Find(&accesses).Error; err != nil {
		return nil, err
	}
	return accesses, nil
}

// Upsert creates the (user, course) grant or updates its approval state.
// GrantedAt is stamped when the grant flips to approved and cleared when
// approval is revoked.
func (r *gormAccessRepository) Upsert(ctx context.Context, access *domain.Access) error {
	if access.Approved && access.GrantedAt == nil {
		now := time.Now().UTC()
		access.GrantedAt = &now
	}
	if !access.Approved {
		access.GrantedAt = nil
	}

	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "course_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"approved", "granted_at"}),
	}).Create(access).Error
}

// Delete removes a grant by id.
func (r *gormAccessRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Access{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
