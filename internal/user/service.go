package user

import (
	"errors"
	"fmt"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

var (
	// ErrUsernameTaken 表示注册时用户名已被占用。
	ErrUsernameTaken = errors.New("用户名已被占用")
	// ErrEmailTaken 表示注册时邮箱已被占用。
	ErrEmailTaken = errors.New("邮箱已被注册")
	// ErrInvalidCredentials 表示用户名或密码错误。
	ErrInvalidCredentials = errors.New("用户名或密码错误")
	// ErrSamePassword 表示新密码与当前密码相同。
	ErrSamePassword = errors.New("新密码不能与当前密码相同")
)

// Register 创建一个新用户，密码使用bcrypt加密后存储。
func Register(username, email, password string) (*User, error) {
	// 先做一次快速查重，给前端更友好的错误信息
	var count int64
	if err := database.DB.Model(&User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("无法查询用户名: %w", err)
	}
	if count > 0 {
		return nil, ErrUsernameTaken
	}
	if err := database.DB.Model(&User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, fmt.Errorf("无法查询邮箱: %w", err)
	}
	if count > 0 {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("无法加密密码: %w", err)
	}

	newUser := User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	if err := database.DB.Create(&newUser).Error; err != nil {
		// 唯一索引兜底，防止查重和写入之间的并发注册
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("无法创建新用户: %w", err)
	}

	return &newUser, nil
}

// Authenticate 校验用户名和密码，成功时返回用户记录。
// 用户不存在和密码错误返回同一个错误，避免泄露用户名是否已注册。
func Authenticate(username, password string) (*User, error) {
	var u User
	if err := database.DB.Where("username = ?", username).First(&u).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("无法查询用户: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return &u, nil
}

// ChangePassword 校验当前密码后更新为新密码。
func ChangePassword(userID uint, currentPassword, newPassword string) error {
	var u User
	if err := database.DB.First(&u, userID).Error; err != nil {
		return fmt.Errorf("无法查询用户: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(newPassword)) == nil {
		return ErrSamePassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("无法加密新密码: %w", err)
	}

	if err := database.DB.Model(&u).Update("password_hash", string(hash)).Error; err != nil {
		return fmt.Errorf("无法更新密码: %w", err)
	}
	return nil
}
