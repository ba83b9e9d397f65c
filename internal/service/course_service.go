package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
)

var ErrNoVideos = errors.New("a course requires at least one video")

// NewVideoInput describes a video in a course-creation request. Positions
// are assigned from request order, 1-based.
type NewVideoInput struct {
	Title       string
	Description string
	URL         string
}

// CourseService covers the catalog and the admin course/video CRUD.
type CourseService interface {
	CreateCourse(ctx context.Context, course *domain.Course, videos []NewVideoInput) (*domain.Course, error)
	GetCourse(ctx context.Context, id uint) (*domain.Course, error)
	ListCourses(ctx context.Context) ([]domain.Course, error)
	UpdateCourse(ctx context.Context, course *domain.Course) error
	DeleteCourse(ctx context.Context, id uint) error

	// AddVideo appends a video at the course's next position.
	AddVideo(ctx context.Context, video *domain.Video) (*domain.Video, error)
	DeleteVideo(ctx context.Context, id uint) error
}

// courseService implements the CourseService interface.
type courseService struct {
	courseRepo repository.CourseRepository
	videoRepo  repository.VideoRepository
}

// NewCourseService creates a new instance of courseService.
func NewCourseService(courseRepo repository.CourseRepository, videoRepo repository.VideoRepository) CourseService {
	return &courseService{
		courseRepo: courseRepo,
		videoRepo:  videoRepo,
	}
}

// CreateCourse creates a course with its nested videos. Videos get
// sequential 1-based positions in request order, which keeps the unlock
// chain well defined from the start.
func (s *courseService) CreateCourse(ctx context.Context, course *domain.Course, videos []NewVideoInput) (*domain.Course, error) {
	if course.Title == "" {
		return nil, errors.New("course title is required")
	}
	if len(videos) == 0 {
		return nil, ErrNoVideos
	}

	course.Videos = make([]domain.Video, 0, len(videos))
	for i, v := range videos {
		if v.URL == "" {
			return nil, errors.New("every video requires a url")
		}
		title := v.Title
		if title == "" {
			title = defaultVideoTitle(i + 1)
		}
		course.Videos = append(course.Videos, domain.Video{
			Title:       title,
			Description: v.Description,
			URL:         v.URL,
			Position:    i + 1,
		})
	}

	courseID, err := s.courseRepo.Create(ctx, course)
	if err != nil {
		return nil, err
	}
	return s.courseRepo.GetByID(ctx, courseID)
}

// GetCourse retrieves a course with ordered videos.
func (s *courseService) GetCourse(ctx context.Context, id uint) (*domain.Course, error) {
	course, err := s.courseRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	return course, nil
}

// ListCourses returns the full catalog.
func (s *courseService) ListCourses(ctx context.Context) ([]domain.Course, error) {
	return s.courseRepo.List(ctx)
}

// UpdateCourse saves edited course metadata.
func (s *courseService) UpdateCourse(ctx context.Context, course *domain.Course) error {
	err := s.courseRepo.Update(ctx, course)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourseNotFound
	}
	return err
}

// DeleteCourse removes a course; videos, grants, progress, and
// certificates cascade in the database.
func (s *courseService) DeleteCourse(ctx context.Context, id uint) error {
	err := s.courseRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrCourseNotFound
	}
	return err
}

// AddVideo appends a video to an existing course at the next position.
func (s *courseService) AddVideo(ctx context.Context, video *domain.Video) (*domain.Video, error) {
	if video.URL == "" {
		return nil, errors.New("video url is required")
	}
	if _, err := s.courseRepo.GetByID(ctx, video.CourseID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}

	position, err := s.videoRepo.NextPosition(ctx, video.CourseID)
	if err != nil {
		return nil, err
	}
	video.Position = position
	if video.Title == "" {
		video.Title = defaultVideoTitle(position)
	}

	if _, err := s.videoRepo.Create(ctx, video); err != nil {
		return nil, err
	}
	return video, nil
}

// DeleteVideo removes a single video from a course.
func (s *courseService) DeleteVideo(ctx context.Context, id uint) error {
	err := s.videoRepo.Delete(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return ErrVideoNotFound
	}
	return err
}

func defaultVideoTitle(position int) string {
	return fmt.Sprintf("Video %d", position)
}
