package model

// Course 用户自定义的学习课程
// swagger:model
type Course struct {
	UUIDBase
	UserID      uint   `gorm:"index;not null" json:"userId"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Description string `gorm:"type:text" json:"description"`
	Category    string `gorm:"size:100" json:"category"`
	TargetHours int    `gorm:"not null;default:0" json:"targetHours"`

	Progress *LearningProgress `gorm:"foreignKey:CourseID;references:ID;constraint:OnDelete:CASCADE" json:"progress,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

func (c *Course) SetOwner(userID uint) {
	c.UserID = userID
}
