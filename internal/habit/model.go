package habit

import (
	"time"

	"gorm.io/gorm"
)

// DateLayout 是所有API和缓存中日历日期的统一格式。
const DateLayout = "2006-01-02"

// NormalizeDate 将一个时间点截断为UTC午夜的纯日历日期。
// 所有写入CompletionDate的值和所有日期比较都必须先经过这里，
// 否则时分秒残留会破坏日期相等判断。
func NormalizeDate(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Habit 定义了数据库中习惯的数据结构
type Habit struct {
	// gorm.Model 包含 ID, CreatedAt, UpdatedAt, DeletedAt
	gorm.Model

	// Name 是习惯的名称，例如 "晨跑"
	Name string `gorm:"not null" json:"name"`

	// Description 是习惯的可选描述
	Description string `gorm:"size:500" json:"description"`

	// CreatedDate 是习惯首次被记录的日历日期，创建后不再变更
	CreatedDate time.Time `gorm:"not null" json:"createdDate"`

	// TargetFrequency 是期望的每日完成次数，默认为1
	// 当前统计算法尚未使用它，但它是实体契约的一部分
	TargetFrequency int `gorm:"not null;default:1" json:"targetFrequency"`

	// UserID 是习惯所属用户的ID，每个习惯只属于一个用户
	UserID uint `gorm:"index;not null" json:"userId"`
}

// HabitEntry 定义了单日完成记录的数据结构
// (habit_id, completion_date) 上的唯一索引保证每天至多一条记录，
// 并发切换竞争同一天时由该约束兜底
type HabitEntry struct {
	gorm.Model

	// HabitID 是本记录所属习惯的ID
	HabitID uint `gorm:"not null;uniqueIndex:idx_entry_habit_date" json:"habitId"`

	// CompletionDate 是本记录对应的日历日期（UTC午夜，无时间成分）
	CompletionDate time.Time `gorm:"not null;uniqueIndex:idx_entry_habit_date" json:"completionDate"`

	// Completed 是当天的完成标记
	// 切换操作只翻转这个标记，从不删除记录
	Completed bool `gorm:"not null" json:"completed"`
}
