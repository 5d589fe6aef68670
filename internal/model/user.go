package model

// swagger:model User
type User struct {
	BaseModel
	Name     string `gorm:"size:100;not null" json:"name"`
	Email    string `gorm:"size:100;unique;not null" json:"email"`
	Password string `gorm:"size:100;not null" json:"-"`
}

func (User) TableName() string {
	return "users"
}

// UserContext 当前登录用户，由中间件从 JWT 中解析后显式传入每个服务调用
type UserContext struct {
	UserID uint
	Email  string
}

func (u UserContext) Authenticated() bool {
	return u.UserID != 0
}
