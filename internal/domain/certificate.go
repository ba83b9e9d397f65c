package domain

import (
	"time"
)

// Certificate is an admin-uploaded artifact for a (user, course) pair.
// FilePath is the object key in storage, not a full URL. Issuance is a
// manual admin action independent of course completion; completion only
// gates whether the download link is surfaced.
type Certificate struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	UserID   uint      `gorm:"uniqueIndex:idx_cert_user_course;not null" json:"userId"`
	CourseID uint      `gorm:"uniqueIndex:idx_cert_user_course;not null" json:"courseId"`
	FilePath string    `gorm:"not null" json:"filePath"`
	Approved bool      `gorm:"not null;default:false" json:"approved"`
	IssuedAt time.Time `gorm:"autoCreateTime" json:"issuedAt"`

	User   *User   `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Course *Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course,omitempty"`
}
