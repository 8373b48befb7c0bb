package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// secretKey 是一个全局变量，用于存储服务器在启动时生成的32字节密钥。
// 密钥不落盘，重启后所有已签发的令牌自动失效。
var secretKey []byte

var (
	// ErrInvalidToken 表示令牌格式错误或签名校验失败。
	ErrInvalidToken = errors.New("令牌无效")
	// ErrExpiredToken 表示令牌已过有效期。
	ErrExpiredToken = errors.New("令牌已过期")
)

// Claims 定义了需要被签名的登录令牌数据结构。
// 它在签发时被序列化进令牌，在每个认证请求中被解析出来。
type Claims struct {
	// TokenID 是本令牌的唯一ID (UUIDv7)，登出时被写入Redis吊销名单。
	TokenID string `json:"jti"`
	// UserID 是令牌所属用户的数据库主键。
	UserID uint `json:"uid"`
	// ExpiresAt 是令牌的过期时间 (Unix秒)。
	ExpiresAt int64 `json:"exp"`
}

// RemainingValidity 返回令牌距离过期还剩余的时长。
func (c *Claims) RemainingValidity(now time.Time) time.Duration {
	return time.Unix(c.ExpiresAt, 0).Sub(now)
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// sign 使用HMAC-SHA256和密钥对payload进行签名。
func sign(payload []byte) []byte {
	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payload)
	return mac.Sum(nil)
}

// Issue 为指定用户签发一个新的登录令牌。
// 返回的令牌格式为 base64url(payload).base64url(signature)。
func Issue(userID uint, ttl time.Duration) (string, *Claims, error) {
	tokenID, err := uuid.NewV7()
	if err != nil {
		return "", nil, fmt.Errorf("无法生成UUID v7: %w", err)
	}

	claims := &Claims{
		TokenID:   tokenID.String(),
		UserID:    userID,
		ExpiresAt: time.Now().Add(ttl).Unix(),
	}

	payloadBytes, err := json.Marshal(claims)
	if err != nil {
		return "", nil, errors.New("无法序列化令牌payload")
	}

	encodedPayload := base64.RawURLEncoding.EncodeToString(payloadBytes)
	encodedSignature := base64.RawURLEncoding.EncodeToString(sign(payloadBytes))
	return encodedPayload + "." + encodedSignature, claims, nil
}

// Parse 解析并验证一个令牌字符串。
// 签名校验使用 hmac.Equal 进行时间恒定的比较，防止时序攻击。
func Parse(tokenStr string) (*Claims, error) {
	parts := strings.Split(tokenStr, ".")
	if len(parts) != 2 {
		return nil, ErrInvalidToken
	}

	payloadBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, ErrInvalidToken
	}
	actualSignature, err := base64.RawURLEncoding.DecodeString(parts[1])
	if err != nil {
		return nil, ErrInvalidToken
	}

	if !hmac.Equal(sign(payloadBytes), actualSignature) {
		return nil, ErrInvalidToken
	}

	var claims Claims
	if err := json.Unmarshal(payloadBytes, &claims); err != nil {
		return nil, ErrInvalidToken
	}

	if time.Now().Unix() >= claims.ExpiresAt {
		return nil, ErrExpiredToken
	}

	return &claims, nil
}
