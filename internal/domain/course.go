package domain

import (
	"time"
)

// Course is an ordered collection of videos that users can be granted access to.
type Course struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description"`
	Price       float64   `json:"price"`
	Category    string    `json:"category"`
	Thumbnail   string    `json:"thumbnail,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`

	// Ordered by Position ascending; ties broken by ID.
	Videos []Video `gorm:"constraint:OnDelete:CASCADE" json:"videos,omitempty"`
}

// Video belongs to exactly one course. Position is the 1-based rank within
// the course. Duration is cached lazily from the playback client on the
// first observed play, so it may be nil for never-played videos.
type Video struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	CourseID    uint      `gorm:"index;not null" json:"courseId"`
	Title       string    `gorm:"not null" json:"title"`
	Description string    `json:"description,omitempty"`
	URL         string    `gorm:"not null" json:"url"`
	Position    int       `gorm:"not null" json:"position"`
	Duration    *int      `json:"duration,omitempty"` // seconds
	CreatedAt   time.Time `json:"createdAt"`
}
