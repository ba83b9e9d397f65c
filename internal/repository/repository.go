package repository

import (
	"context"

	"github.com/pranjitbis/learning-management-system/internal/domain"
)

// Error constants for repository layer
var (
	ErrNotFound     = RepositoryError("not found")
	ErrConflict     = RepositoryError("already exists")
	ErrUpdateFailed = RepositoryError("update failed")
)

// RepositoryError helps distinguish repository errors
type RepositoryError string

func (e RepositoryError) Error() string {
	return string(e)
}

// UserRepository defines the interface for interacting with user data.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) (uint, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	GetByID(ctx context.Context, id uint) (*domain.User, error)
	List(ctx context.Context) ([]domain.User, error)
}

// CourseRepository defines the interface for interacting with course data.
// Reads return videos preloaded in position order.
type CourseRepository interface {
	Create(ctx context.Context, course *domain.Course) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Course, error)
	List(ctx context.Context) ([]domain.Course, error)
	Update(ctx context.Context, course *domain.Course) error
	Delete(ctx context.Context, id uint) error
}

// VideoRepository defines the interface for interacting with video data.
type VideoRepository interface {
	Create(ctx context.Context, video *domain.Video) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Video, error)
	// NextPosition returns the 1-based position an appended video should take.
	NextPosition(ctx context.Context, courseID uint) (int, error)
	// SetDurationIfUnset caches a player-reported duration, only when no
	// duration has been recorded yet.
	SetDurationIfUnset(ctx context.Context, id uint, seconds int) error
	Delete(ctx context.Context, id uint) error
}

// AccessFilter narrows access listings; nil fields are ignored.
type AccessFilter struct {
	Approved *bool
	UserID   *uint
	CourseID *uint
}

// AccessRepository defines the interface for interacting with access grants.
type AccessRepository interface {
	Get(ctx context.Context, userID, courseID uint) (*domain.Access, error)
	List(ctx context.Context, filter AccessFilter) ([]domain.Access, error)
	// Upsert creates the (user, course) grant or updates its approval state.
	Upsert(ctx context.Context, access *domain.Access) error
	Delete(ctx context.Context, id uint) error
}

// ProgressRepository defines the interface for interacting with per-video
// and per-course progress records.
type ProgressRepository interface {
	// InTx runs fn against a repository bound to a single transaction.
	// The video-progress upsert and the course-aggregate recompute must
	// share one transaction so a failed request leaves no partial state.
	InTx(ctx context.Context, fn func(ProgressRepository) error) error

	// UpsertVideoProgress creates or updates the (user, video) record.
	// Completed merges with a monotonic OR: a stored true is never
	// reverted, and CompletedAt keeps its first value.
	UpsertVideoProgress(ctx context.Context, vp *domain.VideoProgress) error
	GetVideoProgress(ctx context.Context, userID, videoID uint) (*domain.VideoProgress, error)
	ListVideoProgressByUser(ctx context.Context, userID uint) ([]domain.VideoProgress, error)

	// CountCompletedInCourse counts the user's completed videos belonging
	// to the course. CountCourseVideos counts rows in the videos table,
	// not progress rows, since never-started videos have no progress row.
	CountCompletedInCourse(ctx context.Context, userID, courseID uint) (int64, error)
	CountCourseVideos(ctx context.Context, courseID uint) (int64, error)

	GetCourseProgress(ctx context.Context, userID, courseID uint) (*domain.CourseProgress, error)
	// UpsertCourseProgress writes the recomputed aggregate. CompletedAt is
	// preserved from the first completed transition.
	UpsertCourseProgress(ctx context.Context, cp *domain.CourseProgress) error
}

// CertificateRepository defines the interface for interacting with
// certificate records.
type CertificateRepository interface {
	Create(ctx context.Context, cert *domain.Certificate) (uint, error)
	GetByID(ctx context.Context, id uint) (*domain.Certificate, error)
	Get(ctx context.Context, userID, courseID uint) (*domain.Certificate, error)
	GetApproved(ctx context.Context, userID, courseID uint) (*domain.Certificate, error)
	List(ctx context.Context, userID *uint) ([]domain.Certificate, error)
	SetApproved(ctx context.Context, id uint, approved bool) error
	Delete(ctx context.Context, id uint) error
}
