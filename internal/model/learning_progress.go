package model

import "time"

type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "not_started"
	StatusInProgress ProgressStatus = "in_progress"
	StatusCompleted  ProgressStatus = "completed"
)

// Valid 状态之间可以任意切换，这里只校验取值
func (s ProgressStatus) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// LearningProgress 每个用户每门课程唯一的一条进度记录
// swagger:model
type LearningProgress struct {
	UUIDBase
	CourseID           string         `gorm:"type:varchar(36);not null;uniqueIndex:idx_progress_course_user" json:"courseId"`
	UserID             uint           `gorm:"not null;uniqueIndex:idx_progress_course_user" json:"userId"`
	ProgressPercentage int            `gorm:"not null;default:0" json:"progressPercentage"`
	HoursSpent         float64        `gorm:"type:decimal(8,2);not null;default:0" json:"hoursSpent"`
	Status             ProgressStatus `gorm:"size:20;not null;default:'not_started'" json:"status"`
	LastStudiedAt      *time.Time     `json:"lastStudiedAt"`

	Course *Course `gorm:"foreignKey:CourseID;references:ID" json:"course,omitempty"`
}

func (LearningProgress) TableName() string {
	return "learning_progress"
}

func (p *LearningProgress) SetOwner(userID uint) {
	p.UserID = userID
}

// NewDefaultProgress 新课程对应的初始进度：0% / not_started
func NewDefaultProgress(courseID string, userID uint) *LearningProgress {
	return &LearningProgress{
		CourseID: courseID,
		UserID:   userID,
		Status:   StatusNotStarted,
	}
}
