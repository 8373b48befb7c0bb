package user

import (
	"fmt"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"github.com/SlpAus/habit-tracker-backend/pkg/token"
)

// --- Redis 键名常量 ---

const (
	// RevokedTokenKeyPrefix 是吊销令牌键的前缀。
	// 完整键名: auth:revoked:<令牌的jti>
	// 值无意义，仅以键的存在性表示吊销；TTL设为令牌的剩余有效期，
	// 令牌自然过期后键也随之消失，名单不会无限膨胀。
	RevokedTokenKeyPrefix = "auth:revoked:"
)

// RevokeToken 将一个令牌加入Redis吊销名单，用于登出。
func RevokeToken(claims *token.Claims) error {
	ttl := claims.RemainingValidity(time.Now())
	if ttl <= 0 {
		return nil // 已过期的令牌无需吊销
	}

	key := RevokedTokenKeyPrefix + claims.TokenID
	if err := database.RDB.Set(database.Ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("无法将令牌 %s 写入吊销名单: %w", claims.TokenID, err)
	}
	return nil
}

// IsTokenRevoked 检查一个令牌是否已被吊销。
// Redis不健康时跳过检查直接放行：吊销名单只服务于主动登出，
// 令牌本身的签名和有效期校验不依赖Redis。
func IsTokenRevoked(tokenID string) (bool, error) {
	if !database.IsRedisHealthy() {
		return false, nil
	}

	n, err := database.RDB.Exists(database.Ctx, RevokedTokenKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("无法查询令牌吊销名单: %w", err)
	}
	return n > 0, nil
}
