package service

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/pranjitbis/learning-management-system/internal/domain"
	"github.com/pranjitbis/learning-management-system/internal/repository"
)

// --- Error Definitions ---
var (
	ErrAccessDenied    = errors.New("no approved access to this course")
	ErrVideoNotFound   = errors.New("video not found")
	ErrCourseNotFound  = errors.New("course not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidDuration = errors.New("duration must be a positive number of seconds")
)

// VideoView is a course video enriched with the caller's watch state.
type VideoView struct {
	ID                uint   `json:"id"`
	Title             string `json:"title"`
	URL               string `json:"url"`
	Position          int    `json:"position"`
	Duration          *int   `json:"duration,omitempty"`
	FormattedDuration string `json:"formattedDuration"`
	Progress          int    `json:"progress"`
	Completed         bool   `json:"completed"`
	Locked            bool   `json:"locked"`
}

// CourseProgressView is the course-level aggregate shown on the dashboard.
type CourseProgressView struct {
	VideosWatched        int  `json:"videosWatched"`
	TotalVideos          int  `json:"totalVideos"`
	CompletionPercentage int  `json:"completionPercentage"`
	Completed            bool `json:"completed"`
}

// CourseView joins a course, the caller's video states, and the
// certificate link (nil unless the dual gate passes).
type CourseView struct {
	ID             uint               `json:"id"`
	Title          string             `json:"title"`
	Description    string             `json:"description"`
	Category       string             `json:"category"`
	Thumbnail      string             `json:"thumbnail,omitempty"`
	Videos         []VideoView        `json:"videos"`
	Progress       CourseProgressView `json:"progress"`
	CertificateURL *string            `json:"certificateUrl"`
}

// Dashboard is the full view model for GET /api/dashboard.
type Dashboard struct {
	User    DashboardUser `json:"user"`
	Courses []CourseView  `json:"courses"`
}

type DashboardUser struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// ProgressService is the core of the system: it ingests watch events from
// the polling playback client, keeps per-video state monotonic, re-derives
// the course aggregate, and assembles the dashboard.
type ProgressService interface {
	// RecordProgress persists a watch event for (userID, videoID) and
	// returns whether the owning course is now fully completed. The call
	// is idempotent and safe under client retries.
	RecordProgress(ctx context.Context, userID, videoID uint, progress int, completed bool) (courseCompleted bool, err error)

	// CacheVideoDuration stores the player-reported duration on the first
	// observed play; later reports are ignored.
	CacheVideoDuration(ctx context.Context, userID, videoID uint, seconds int) error

	// GetDashboard assembles the caller's approved courses with per-video
	// progress, lock state, and certificate links.
	GetDashboard(ctx context.Context, userID uint) (*Dashboard, error)
}

// progressService implements the ProgressService interface.
type progressService struct {
	userRepo     repository.UserRepository
	courseRepo   repository.CourseRepository
	videoRepo    repository.VideoRepository
	accessRepo   repository.AccessRepository
	progressRepo repository.ProgressRepository
	certificates CertificateService
}

// NewProgressService creates a new instance of progressService.
func NewProgressService(
	userRepo repository.UserRepository,
	courseRepo repository.CourseRepository,
	videoRepo repository.VideoRepository,
	accessRepo repository.AccessRepository,
	progressRepo repository.ProgressRepository,
	certificates CertificateService,
) ProgressService {
	return &progressService{
		userRepo:     userRepo,
		courseRepo:   courseRepo,
		videoRepo:    videoRepo,
		accessRepo:   accessRepo,
		progressRepo: progressRepo,
		certificates: certificates,
	}
}

// RecordProgress upserts the (user, video) record and recomputes the
// course aggregate in one transaction.
//
// The playback client polls every few seconds and may deliver duplicated
// or reordered events; the repository's monotonic-OR upsert means a
// completed video never reads back as incomplete, and replaying an event
// leaves state unchanged. Progress outside [0, 100] is clamped rather
// than rejected so a slightly-off player cannot corrupt state.
func (s *progressService) RecordProgress(ctx context.Context, userID, videoID uint, progress int, completed bool) (bool, error) {
	progress = clampProgress(progress)

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return false, ErrVideoNotFound
		}
		return false, err
	}

	if err := s.requireApprovedAccess(ctx, userID, video.CourseID); err != nil {
		return false, err
	}

	now := time.Now().UTC()
	var completedAt *time.Time
	if completed {
		completedAt = &now
	}

	var courseCompleted bool
	err = s.progressRepo.InTx(ctx, func(tx repository.ProgressRepository) error {
		if err := tx.UpsertVideoProgress(ctx, &domain.VideoProgress{
			UserID:      userID,
			VideoID:     videoID,
			Progress:    progress,
			Completed:   completed,
			CompletedAt: completedAt,
		}); err != nil {
			return err
		}

		watched, err := tx.CountCompletedInCourse(ctx, userID, video.CourseID)
		if err != nil {
			return err
		}
		total, err := tx.CountCourseVideos(ctx, video.CourseID)
		if err != nil {
			return err
		}

		// A zero-video course can never be complete.
		courseCompleted = total > 0 && watched == total

		var courseCompletedAt *time.Time
		if courseCompleted {
			courseCompletedAt = &now
		}
		return tx.UpsertCourseProgress(ctx, &domain.CourseProgress{
			UserID:        userID,
			CourseID:      video.CourseID,
			VideosWatched: int(watched),
			TotalVideos:   int(total),
			Completed:     courseCompleted,
			CompletedAt:   courseCompletedAt,
		})
	})
	if err != nil {
		return false, err
	}

	return courseCompleted, nil
}

// CacheVideoDuration fills the video's duration from the first observed
// play. The update is guarded by an IS NULL condition, so whichever
// concurrent report lands first wins.
func (s *progressService) CacheVideoDuration(ctx context.Context, userID, videoID uint, seconds int) error {
	if seconds <= 0 {
		return ErrInvalidDuration
	}

	video, err := s.videoRepo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrVideoNotFound
		}
		return err
	}

	if err := s.requireApprovedAccess(ctx, userID, video.CourseID); err != nil {
		return err
	}

	return s.videoRepo.SetDurationIfUnset(ctx, videoID, seconds)
}

// GetDashboard joins course, access, progress, and certificate data into
// the per-user dashboard view model.
func (s *progressService) GetDashboard(ctx context.Context, userID uint) (*Dashboard, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	approved := true
	accesses, err := s.accessRepo.List(ctx, repository.AccessFilter{
		Approved: &approved,
		UserID:   &userID,
	})
	if err != nil {
		return nil, err
	}

	progressRecords, err := s.progressRepo.ListVideoProgressByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	progressByVideoID := make(map[uint]domain.VideoProgress, len(progressRecords))
	for _, vp := range progressRecords {
		progressByVideoID[vp.VideoID] = vp
	}

	courses := make([]CourseView, 0, len(accesses))
	for _, access := range accesses {
		course, err := s.courseRepo.GetByID(ctx, access.CourseID)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				continue // course deleted after the grant; skip it
			}
			return nil, err
		}
		courses = append(courses, s.assembleCourseView(ctx, userID, course, progressByVideoID))
	}

	return &Dashboard{
		User: DashboardUser{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
		},
		Courses: courses,
	}, nil
}

func (s *progressService) assembleCourseView(ctx context.Context, userID uint, course *domain.Course, progressByVideoID map[uint]domain.VideoProgress) CourseView {
	ordered := domain.SortVideosByPosition(course.Videos)
	locked := domain.ComputeLockState(ordered, progressByVideoID)

	videos := make([]VideoView, 0, len(ordered))
	watched := 0
	for _, v := range ordered {
		vp := progressByVideoID[v.ID]
		if vp.Completed {
			watched++
		}
		videos = append(videos, VideoView{
			ID:                v.ID,
			Title:             v.Title,
			URL:               v.URL,
			Position:          v.Position,
			Duration:          v.Duration,
			FormattedDuration: domain.FormatDuration(v.Duration),
			Progress:          vp.Progress,
			Completed:         vp.Completed,
			Locked:            locked[v.ID],
		})
	}

	aggregate := domain.CourseProgress{
		UserID:        userID,
		CourseID:      course.ID,
		VideosWatched: watched,
		TotalVideos:   len(ordered),
		Completed:     len(ordered) > 0 && watched == len(ordered),
	}

	view := CourseView{
		ID:          course.ID,
		Title:       course.Title,
		Description: course.Description,
		Category:    course.Category,
		Thumbnail:   course.Thumbnail,
		Videos:      videos,
		Progress: CourseProgressView{
			VideosWatched:        aggregate.VideosWatched,
			TotalVideos:          aggregate.TotalVideos,
			CompletionPercentage: aggregate.CompletionPercentage(),
			Completed:            aggregate.Completed,
		},
	}

	certURL, err := s.certificates.CertificateURL(ctx, userID, course.ID)
	if err != nil {
		// The dashboard degrades to "no certificate" rather than failing
		// the whole request over a storage hiccup.
		log.Printf("ERROR: could not resolve certificate URL for user %d course %d: %v", userID, course.ID, err)
	} else if certURL != "" {
		view.CertificateURL = &certURL
	}

	return view
}

func (s *progressService) requireApprovedAccess(ctx context.Context, userID, courseID uint) error {
	access, err := s.accessRepo.Get(ctx, userID, courseID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrAccessDenied
		}
		return err
	}
	if !access.Approved {
		return ErrAccessDenied
	}
	return nil
}

func clampProgress(progress int) int {
	if progress < 0 {
		return 0
	}
	if progress > 100 {
		return 100
	}
	return progress
}
