package domain

import (
	"time"
)

// VideoProgress is the per (user, video) watch record, upserted on every
// progress event from the playback client.
//
// Completed is monotonic: once true it never reverts to false, regardless
// of what later (possibly duplicated or reordered) events report.
type VideoProgress struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex:idx_progress_user_video;not null" json:"userId"`
	VideoID     uint       `gorm:"uniqueIndex:idx_progress_user_video;not null" json:"videoId"`
	Progress    int        `gorm:"not null;default:0" json:"progress"` // 0..100 percent watched
	Completed   bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`
	UpdatedAt   time.Time  `json:"updatedAt"`

	Video *Video `gorm:"foreignKey:VideoID;constraint:OnDelete:CASCADE" json:"-"`
}

func (VideoProgress) TableName() string {
	return "user_video_progresses"
}

// CourseProgress is the per (user, course) aggregate derived from
// VideoProgress. It is a cache, never an independent source of truth:
// VideosWatched always equals the count of the user's completed videos in
// the course, and any write path touching VideoProgress re-derives it in
// the same transaction.
type CourseProgress struct {
	ID            uint       `gorm:"primaryKey" json:"id"`
	UserID        uint       `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"userId"`
	CourseID      uint       `gorm:"uniqueIndex:idx_progress_user_course;not null" json:"courseId"`
	VideosWatched int        `gorm:"not null;default:0" json:"videosWatched"`
	TotalVideos   int        `gorm:"not null;default:0" json:"totalVideos"`
	Completed     bool       `gorm:"not null;default:false" json:"completed"`
	CompletedAt   *time.Time `json:"completedAt,omitempty"` // set once, on the first transition
	UpdatedAt     time.Time  `json:"updatedAt"`

	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`
}

func (CourseProgress) TableName() string {
	return "user_course_progresses"
}

// CompletionPercentage returns the rounded percentage of completed videos.
// A course with no videos is 0%, never complete.
func (p *CourseProgress) CompletionPercentage() int {
	if p.TotalVideos == 0 {
		return 0
	}
	return int(float64(p.VideosWatched)/float64(p.TotalVideos)*100 + 0.5)
}
