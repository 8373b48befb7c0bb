package user

import (
	"gorm.io/gorm"
)

// User 定义了用户在数据库中的持久化模型。
type User struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Username 是用户登录时使用的唯一用户名
	Username string `gorm:"uniqueIndex;not null" json:"username"`

	// Email 是用户的唯一邮箱地址
	Email string `gorm:"uniqueIndex;not null" json:"email"`

	// PasswordHash 是bcrypt加密后的密码，绝不出现在任何API响应中
	PasswordHash string `gorm:"not null" json:"-"`
}
