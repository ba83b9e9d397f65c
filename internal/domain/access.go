package domain

import (
	"time"
)

// Access grants a user permission to view a course. Only approved grants
// count toward dashboard visibility and progress tracking.
type Access struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	UserID      uint       `gorm:"uniqueIndex:idx_access_user_course;not null" json:"userId"`
	CourseID    uint       `gorm:"uniqueIndex:idx_access_user_course;not null" json:"courseId"`
	Approved    bool       `gorm:"not null;default:false" json:"approved"`
	RequestedAt time.Time  `gorm:"autoCreateTime" json:"requestedAt"`
	GrantedAt   *time.Time `json:"grantedAt,omitempty"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
