package service

import (
	"context"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
)

// UserSummary is a user row for the admin back office, with the titles of
// the courses the user holds approved access to.
type UserSummary struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	Email     string      `json:"email"`
	Role      domain.Role `json:"role"`
	CreatedAt time.Time   `json:"createdAt"`
	Courses   []string    `json:"courses"`
}

// UserService serves the admin user listing.
type UserService interface {
	ListUsers(ctx context.Context) ([]UserSummary, error)
}

// userService implements the UserService interface.
type userService struct {
	userRepo   repository.UserRepository
	accessRepo repository.AccessRepository
}

// NewUserService creates a new instance of userService.
func NewUserService(userRepo repository.UserRepository, accessRepo repository.AccessRepository) UserService {
	return &userService{
		userRepo:   userRepo,
		accessRepo: accessRepo,
	}
}

// ListUsers returns every user with their approved course titles.
func (s *userService) ListUsers(ctx context.Context) ([]UserSummary, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	approved := true
	grants, err := s.accessRepo.List(ctx, repository.AccessFilter{Approved: &approved})
	if err != nil {
		return nil, err
	}

	coursesByUser := make(map[uint][]string)
	for _, g := range grants {
		title := "No course"
		if g.Course != nil {
			title = g.Course.Title
		}
		coursesByUser[g.UserID] = append(coursesByUser[g.UserID], title)
	}

	summaries := make([]UserSummary, 0, len(users))
	for _, u := range users {
		courses := coursesByUser[u.ID]
		if courses == nil {
			courses = []string{}
		}
		summaries = append(summaries, UserSummary{
			ID:        u.ID,
			Name:      u.Name,
			Email:     u.Email,
			Role:      u.Role,
			CreatedAt: u.CreatedAt,
			Courses:   courses,
		})
	}
	return summaries, nil
}
