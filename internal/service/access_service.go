package service

import (
	"context"
	"errors"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
)

var ErrAccessNotFound = errors.New("access grant not found")

// AccessService manages the request/approval lifecycle of course access.
type AccessService interface {
	// RequestAccess records a user's interest in a course. The grant
	// starts unapproved; an admin approves it later. Requesting twice is
	// a no-op that preserves any existing approval.
	RequestAccess(ctx context.Context, userID, courseID uint) (*domain.Access, error)

	// GrantAccess is the admin upsert: it creates or updates the grant
	// with the given approval state and stamps grantedAt on approval.
	GrantAccess(ctx context.Context, userID, courseID uint, approved bool) (*domain.Access, error)

	ListAccess(ctx context.Context, filter repository.AccessFilter) ([]domain.Access, error)
	RevokeAccess(ctx context.Context, id uint) error
}

// accessService implements the AccessService interface.
type accessService struct {
	accessRepo repository.AccessRepository
	courseRepo repository.CourseRepository
}

// NewAccessService creates a new instance of accessService.
func NewAccessService(accessRepo repository.AccessRepository, courseRepo repository.CourseRepository) AccessService {
	return &accessService{
		accessRepo: accessRepo,
		courseRepo: courseRepo,
	}
}

// RequestAccess creates an unapproved grant for (userID, courseID).
func (s *accessService) RequestAccess(ctx context.Context, userID, courseID uint) (*domain.Access, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	// An existing grant (approved or pending) wins over a new request.
	existing, err := s.accessRepo.Get(ctx, userID, courseID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	access := &domain.Access{
		UserID:   userID,
		CourseID: courseID,
		Approved: false,
	}
	if err := s.accessRepo.Upsert(ctx, access); err != nil {
		return nil, err
	}
	return access, nil
}

// GrantAccess creates or updates the grant with the given approval state.
func (s *accessService) GrantAccess(ctx context.Context, userID, courseID uint, approved bool) (*domain.Access, error) {
	if _, err := s.courseRepo.GetByID(ctx, courseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	access := &domain.Access{
		UserID:   userID,
		CourseID: courseID,
		Approved: approved,
	}
	if err := s.accessRepo.Upsert(ctx, access); err != nil {
		return nil, err
	}
	return s.accessRepo.Get(ctx, userID, courseID)
}

// ListAccess returns grants for the admin screens.
func (s *accessService) ListAccess(ctx context.Context, filter repository.AccessFilter) ([]domain.Access, error) {
	return s.accessRepo.List(ctx, filter)
}

// RevokeAccess deletes a grant entirely.
func (s *accessService) RevokeAccess(ctx context.Context, id uint) error {
	err := s.accessRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrAccessNotFound
	}
	return err
}
