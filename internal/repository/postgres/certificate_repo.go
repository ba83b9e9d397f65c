package postgres

import (
	"context"
	"errors"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"

	"gorm.io/gorm"
)

// gormCertificateRepository implements repository.CertificateRepository using GORM.
type gormCertificateRepository struct {
	db *gorm.DB
}

// NewCertificateRepository creates a new instance of gormCertificateRepository.
func NewCertificateRepository(db *gorm.DB) repository.CertificateRepository {
	return &gormCertificateRepository{db: db}
}

// Create inserts a certificate record. The unique index on
// (user_id, course_id) maps duplicates to repository.ErrConflict.
func (r *gormCertificateRepository) Create(ctx context.Context, cert *domain.Certificate) (uint, error) {
	if err := r.db.WithContext(ctx).Create(cert).Error; err != nil {
		if isUniqueViolation(err) {
			return 0, repository.ErrConflict
		}
		return 0, err
	}
	return cert.ID, nil
}

// GetByID retrieves a certificate by primary key.
func (r *gormCertificateRepository) GetByID(ctx context.Context, id uint) (*domain.Certificate, error) {
	var cert domain.Certificate
	err := r.db.WithContext(ctx).First(&cert, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// Get retrieves the certificate for a (user, course) pair regardless of
// approval state.
func (r *gormCertificateRepository) Get(ctx context.Context, userID, courseID uint) (*domain.Certificate, error) {
	return r.get(ctx, userID, courseID, false)
}

// GetApproved retrieves the approved certificate for a (user, course)
// pair, or repository.ErrNotFound when none is approved.
func (r *gormCertificateRepository) GetApproved(ctx context.Context, userID, courseID uint) (*domain.Certificate, error) {
	return r.get(ctx, userID, courseID, true)
}

func (r *gormCertificateRepository) get(ctx context.Context, userID, courseID uint, approvedOnly bool) (*domain.Certificate, error) {
	var cert domain.Certificate
	q := r.db.WithContext(ctx).Where("user_id = ? AND course_id = ?", userID, courseID)
	if approvedOnly {
		q = q.Where("approved = true")
	}
	err := q.First(&cert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &cert, nil
}

// List returns certificates, optionally narrowed to one user, newest
// first, with user and course preloaded for the admin back office.
func (r *gormCertificateRepository) List(ctx context.Context, userID *uint) ([]domain.Certificate, error) {
	q := r.db.WithContext(ctx).
		Preload("User").
		Preload("Course").
		Order("issued_at DESC")
	if userID != nil {
		q = q.Where("user_id = ?", *userID)
	}

	var certs []domain.Certificate
	if err := q.Find(&certs).Error; err != nil {
		return nil, err
	}
	return certs, nil
}

// SetApproved toggles the approval flag on a certificate.
func (r *gormCertificateRepository) SetApproved(ctx context.Context, id uint, approved bool) error {
	result := r.db.WithContext(ctx).Model(&domain.Certificate{}).
		Where("id = ?", id).
		Update("approved", approved)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Delete removes a certificate record.
func (r *gormCertificateRepository) Delete(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Delete(&domain.Certificate{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return repository.ErrNotFound
	}
	return nil
}
