package habit

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// 本文件封装habit模块的全部数据库查询。
// 所有函数都接受一个*gorm.DB参数，便于在事务内外复用同一套查询。

// getHabitByID 按主键查询习惯，未找到时返回gorm.ErrRecordNotFound。
func getHabitByID(db *gorm.DB, habitID uint) (*Habit, error) {
	var h Habit
	if err := db.First(&h, habitID).Error; err != nil {
		return nil, err
	}
	return &h, nil
}

// getHabitsByUser 查询一个用户的全部习惯，按创建顺序返回。
func getHabitsByUser(db *gorm.DB, userID uint) ([]Habit, error) {
	var habits []Habit
	if err := db.Where("user_id = ?", userID).Order("id asc").Find(&habits).Error; err != nil {
		return nil, fmt.Errorf("无法查询用户习惯列表: %w", err)
	}
	return habits, nil
}

// getEntryForDate 查询某习惯在某日历日期的记录。
// 该日期没有记录时返回 (nil, nil)。
func getEntryForDate(db *gorm.DB, habitID uint, date time.Time) (*HabitEntry, error) {
	var e HabitEntry
	err := db.Where("habit_id = ? AND completion_date = ?", habitID, NormalizeDate(date)).First(&e).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("无法查询打卡记录: %w", err)
	}
	return &e, nil
}

// getEntriesInRange 查询某习惯在闭区间[start, end]内的全部记录（无论completed与否）。
func getEntriesInRange(db *gorm.DB, habitID uint, start, end time.Time) ([]HabitEntry, error) {
	var entries []HabitEntry
	err := db.Where("habit_id = ? AND completion_date BETWEEN ? AND ?",
		habitID, NormalizeDate(start), NormalizeDate(end)).Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询区间打卡记录: %w", err)
	}
	return entries, nil
}

// getCompletedEntries 查询某习惯全部历史中completed=true的记录。
func getCompletedEntries(db *gorm.DB, habitID uint) ([]HabitEntry, error) {
	var entries []HabitEntry
	err := db.Where("habit_id = ? AND completed = ?", habitID, true).
		Order("completion_date desc").Find(&entries).Error
	if err != nil {
		return nil, fmt.Errorf("无法查询完成记录: %w", err)
	}
	return entries, nil
}

// deleteEntriesByHabit 删除某习惯的全部记录，用于删除习惯时的级联清理。
// 使用Unscoped做物理删除，避免软删除的残留行占用唯一索引。
func deleteEntriesByHabit(db *gorm.DB, habitID uint) error {
	if err := db.Unscoped().Where("habit_id = ?", habitID).Delete(&HabitEntry{}).Error; err != nil {
		return fmt.Errorf("无法删除习惯的打卡记录: %w", err)
	}
	return nil
}
