package model

// Note 课程笔记，只追加
// swagger:model
type Note struct {
	UUIDBase
	CourseID string `gorm:"type:varchar(36);not null;index" json:"courseId"`
	UserID   uint   `gorm:"not null;index" json:"userId"`
	Title    string `gorm:"size:200;not null" json:"title"`
	Content  string `gorm:"type:text" json:"content"`
}

func (Note) TableName() string {
	return "notes"
}

func (n *Note) SetOwner(userID uint) {
	n.UserID = userID
}
