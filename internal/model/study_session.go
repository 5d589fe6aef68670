package model

import "time"

// StudySession 一次学习记录，只追加
// swagger:model
type StudySession struct {
	UUIDBase
	CourseID        string    `gorm:"type:varchar(36);not null;index" json:"courseId"`
	UserID          uint      `gorm:"not null;index" json:"userId"`
	DurationMinutes int       `gorm:"not null" json:"durationMinutes"`
	SessionDate     time.Time `gorm:"type:date;not null;index" json:"sessionDate"`
	Notes           string    `gorm:"type:text" json:"notes"`
}

func (StudySession) TableName() string {
	return "study_sessions"
}

func (s *StudySession) SetOwner(userID uint) {
	s.UserID = userID
}
