package habit

import (
	"errors"
	"fmt"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"gorm.io/gorm"
)

var (
	// ErrHabitNotFound 表示引用的习惯ID在存储中不存在。
	ErrHabitNotFound = errors.New("习惯不存在")
	// ErrNotOwner 表示认证用户不是该习惯的所有者。
	ErrNotOwner = errors.New("无权操作该习惯")
)

// HabitWithStats 把习惯本体和它的统计结果组合在一起。
// 它是stats接口和列表接口的返回单元，也是Redis统计缓存的存储单元。
type HabitWithStats struct {
	Habit Habit `json:"habit"`
	Statistics
}

// loadOwnedHabit 查询习惯并校验所有权。
// 这是所有按ID操作的统一入口：先NotFound，后Unauthorized。
func loadOwnedHabit(db *gorm.DB, habitID, userID uint) (*Habit, error) {
	h, err := getHabitByID(db, habitID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrHabitNotFound
		}
		return nil, fmt.Errorf("无法查询习惯: %w", err)
	}
	if h.UserID != userID {
		return nil, ErrNotOwner
	}
	return h, nil
}

// CreateHabit 为用户创建一个新习惯。
// CreatedDate在创建时设定为当天，之后不再变更。
func CreateHabit(userID uint, name, description string, targetFrequency int) (*Habit, error) {
	if targetFrequency <= 0 {
		targetFrequency = 1
	}

	h := Habit{
		Name:            name,
		Description:     description,
		CreatedDate:     NormalizeDate(time.Now()),
		TargetFrequency: targetFrequency,
		UserID:          userID,
	}
	if err := database.DB.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("无法创建习惯: %w", err)
	}
	return &h, nil
}

// DeleteHabit 删除一个习惯并级联删除它的全部打卡记录。
func DeleteHabit(userID, habitID uint) error {
	err := database.DB.Transaction(func(tx *gorm.DB) error {
		h, err := loadOwnedHabit(tx, habitID, userID)
		if err != nil {
			return err
		}
		if err := deleteEntriesByHabit(tx, h.ID); err != nil {
			return err
		}
		if err := tx.Delete(h).Error; err != nil {
			return fmt.Errorf("无法删除习惯: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	InvalidateStatsCache(habitID)
	return nil
}

// ToggleCompletion 切换某习惯在某日历日期的完成状态。
// 该日期没有记录时创建一条completed=true的新记录；已有记录时翻转其completed标记。
// 记录从不被删除，整个操作是对存储的单次原子写入。
func ToggleCompletion(userID, habitID uint, date time.Time) (*HabitEntry, error) {
	date = NormalizeDate(date)
	var result *HabitEntry

	err := database.DB.Transaction(func(tx *gorm.DB) error {
		if _, err := loadOwnedHabit(tx, habitID, userID); err != nil {
			return err
		}

		entry, err := getEntryForDate(tx, habitID, date)
		if err != nil {
			return err
		}

		if entry != nil {
			entry.Completed = !entry.Completed
			if err := tx.Save(entry).Error; err != nil {
				return fmt.Errorf("无法更新打卡记录: %w", err)
			}
			result = entry
			return nil
		}

		newEntry := HabitEntry{
			HabitID:        habitID,
			CompletionDate: date,
			Completed:      true,
		}
		if err := tx.Create(&newEntry).Error; err != nil {
			// 两个并发请求同时观察到"无记录"时，唯一索引会拒绝后一个插入。
			// 此时把插入降级为翻转，保持每次调用恰好一次有效写入的语义。
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				existing, retryErr := getEntryForDate(tx, habitID, date)
				if retryErr != nil || existing == nil {
					return fmt.Errorf("打卡记录冲突后无法重读: %w", err)
				}
				existing.Completed = !existing.Completed
				if err := tx.Save(existing).Error; err != nil {
					return fmt.Errorf("无法更新打卡记录: %w", err)
				}
				result = existing
				return nil
			}
			return fmt.Errorf("无法创建打卡记录: %w", err)
		}
		result = &newEntry
		return nil
	})
	if err != nil {
		return nil, err
	}

	InvalidateStatsCache(habitID)
	return result, nil
}

// computeStats 从数据库加载一个习惯的记录并运行统计引擎。
func computeStats(h *Habit, today time.Time) (*HabitWithStats, error) {
	today = NormalizeDate(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	monthlyEntries, err := getEntriesInRange(database.DB, h.ID, monthStart, monthEnd)
	if err != nil {
		return nil, err
	}
	completedEntries, err := getCompletedEntries(database.DB, h.ID)
	if err != nil {
		return nil, err
	}

	return &HabitWithStats{
		Habit:      *h,
		Statistics: CalculateStatistics(completedEntries, monthlyEntries, today),
	}, nil
}

// statsWithCache 在Redis健康时优先走统计缓存，未命中时计算并异步回填。
func statsWithCache(h *Habit, today time.Time) (*HabitWithStats, error) {
	if database.IsRedisHealthy() {
		cached, err := GetStatsCache(h.ID)
		if err == nil && cached != nil {
			return cached, nil
		}
	}

	stats, err := computeStats(h, today)
	if err != nil {
		return nil, err
	}

	if database.IsRedisHealthy() {
		go func(s HabitWithStats) {
			defer func() {
				if r := recover(); r != nil {
					fmt.Printf("严重错误: 缓存统计结果的goroutine发生panic: %v\n", r)
				}
			}()
			if err := SetStatsCache(&s); err != nil {
				fmt.Printf("警告: %v\n", err)
			}
		}(*stats)
	}

	return stats, nil
}

// GetHabitWithStats 返回单个习惯及其完整统计。
func GetHabitWithStats(userID, habitID uint, today time.Time) (*HabitWithStats, error) {
	h, err := loadOwnedHabit(database.DB, habitID, userID)
	if err != nil {
		return nil, err
	}
	return statsWithCache(h, today)
}

// ListHabitsWithStats 返回用户的全部习惯，每个都附带完整统计。
func ListHabitsWithStats(userID uint, today time.Time) ([]HabitWithStats, error) {
	habits, err := getHabitsByUser(database.DB, userID)
	if err != nil {
		return nil, err
	}

	results := make([]HabitWithStats, 0, len(habits))
	for i := range habits {
		stats, err := statsWithCache(&habits[i], today)
		if err != nil {
			return nil, err
		}
		results = append(results, *stats)
	}
	return results, nil
}
