package habit

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"github.com/redis/go-redis/v9"
)

// --- Redis 键名常量 ---

const (
	// StatsCacheKeyPrefix 是统计结果缓存键的前缀。
	// 完整键名: habit:stats:<习惯ID>
	// Value: HabitWithStats 结构体的JSON序列化字符串
	StatsCacheKeyPrefix = "habit:stats:"

	// StatsCacheTTL 是统计缓存的有效期。
	// 统计结果依赖参考日期，短TTL同时限定了跨午夜的陈旧窗口。
	StatsCacheTTL = 1 * time.Minute
)

func statsCacheKey(habitID uint) string {
	return fmt.Sprintf("%s%d", StatsCacheKeyPrefix, habitID)
}

// GetStatsCache 尝试从Redis读取一个习惯的统计缓存。
// 缓存未命中时返回 (nil, nil)。
func GetStatsCache(habitID uint) (*HabitWithStats, error) {
	val, err := database.RDB.Get(database.Ctx, statsCacheKey(habitID)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法读取统计缓存: %w", err)
	}

	var cached HabitWithStats
	if err := json.Unmarshal([]byte(val), &cached); err != nil {
		return nil, fmt.Errorf("无法反序列化统计缓存: %w", err)
	}
	return &cached, nil
}

// SetStatsCache 将一个习惯的统计结果写入Redis缓存。
func SetStatsCache(stats *HabitWithStats) error {
	data, err := json.Marshal(stats)
	if err != nil {
		return fmt.Errorf("无法序列化统计结果: %w", err)
	}
	if err := database.RDB.Set(database.Ctx, statsCacheKey(stats.Habit.ID), data, StatsCacheTTL).Err(); err != nil {
		return fmt.Errorf("无法写入统计缓存: %w", err)
	}
	return nil
}

// InvalidateStatsCache 在打卡或删除后使统计缓存失效。
// 失效失败不阻断业务，缓存最多在TTL内陈旧。
func InvalidateStatsCache(habitID uint) {
	if !database.IsRedisHealthy() {
		return
	}
	if err := database.RDB.Del(database.Ctx, statsCacheKey(habitID)).Err(); err != nil {
		fmt.Printf("警告: 无法删除习惯 %d 的统计缓存: %v\n", habitID, err)
	}
}
