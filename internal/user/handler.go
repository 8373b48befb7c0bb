package user

import (
	"errors"
	"net/http"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/config"
	"github.com/SlpAus/habit-tracker-backend/pkg/token"
	"github.com/gin-gonic/gin"
)

// SignupRequestBody 定义了注册请求体的JSON结构
type SignupRequestBody struct {
	Username string `json:"username" binding:"required,min=3,max=32"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=72"`
}

// SigninRequestBody 定义了登录请求体的JSON结构
type SigninRequestBody struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ChangePasswordRequestBody 定义了修改密码请求体的JSON结构
type ChangePasswordRequestBody struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=6,max=72"`
}

// SigninResponse 是登录成功时返回的JSON结构
type SigninResponse struct {
	Token    string `json:"token"`
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Signup 处理用户注册请求
func Signup(c *gin.Context) {
	var body SignupRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	_, err := Register(body.Username, body.Email, body.Password)
	if err != nil {
		if errors.Is(err, ErrUsernameTaken) || errors.Is(err, ErrEmailTaken) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "注册失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "注册成功"})
}

// Signin 处理用户登录请求，成功时签发Bearer令牌
func Signin(c *gin.Context) {
	var body SigninRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	u, err := Authenticate(body.Username, body.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登录失败: " + err.Error()})
		return
	}

	tokenStr, _, err := token.Issue(u.ID, config.Cfg.Auth.TokenTTL())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "无法签发令牌: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, SigninResponse{
		Token:    tokenStr,
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
}

// Signout 处理用户登出请求，将当前令牌加入吊销名单
func Signout(c *gin.Context) {
	v, exists := c.Get(ClaimsKey)
	claims, ok := v.(*token.Claims)
	if !exists || !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	if err := RevokeToken(claims); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "登出失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "登出成功"})
}

// ChangePasswordHandler 处理修改密码请求
func ChangePasswordHandler(c *gin.Context) {
	var body ChangePasswordRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	userID, ok := CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
		return
	}

	if err := ChangePassword(userID, body.CurrentPassword, body.NewPassword); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "当前密码不正确"})
			return
		}
		if errors.Is(err, ErrSamePassword) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "修改密码失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "密码修改成功"})
}
