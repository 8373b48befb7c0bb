package habit

import (
	"fmt"
	"testing"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/platform/database"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// setupTestDB 为单个测试创建一个独立的内存SQLite数据库，
// 并把它挂到全局的database.DB上，测试结束后恢复原状。
// 同时把Redis标记为不健康，让统计缓存被完全旁路。
func setupTestDB(t *testing.T) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("无法打开内存数据库: %v", err)
	}
	if err := db.AutoMigrate(&Habit{}, &HabitEntry{}); err != nil {
		t.Fatalf("无法迁移测试表: %v", err)
	}

	oldDB := database.DB
	database.DB = db
	database.SetRedisHealthy(false)
	t.Cleanup(func() {
		database.DB = oldDB
		database.SetRedisHealthy(true)
	})
}

func mustCreateHabit(t *testing.T, userID uint, name string) *Habit {
	t.Helper()
	h, err := CreateHabit(userID, name, "", 1)
	if err != nil {
		t.Fatalf("CreateHabit failed: %v", err)
	}
	return h
}

func TestToggleCompletion_Alternation(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "晨跑")
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	// 第一次切换：无记录 → 创建completed=true
	entry, err := ToggleCompletion(1, h.ID, date)
	if err != nil {
		t.Fatalf("第一次切换失败: %v", err)
	}
	if !entry.Completed {
		t.Error("第一次切换应为completed=true")
	}
	firstID := entry.ID

	// 第二次切换：翻转为false，复用同一条记录
	entry, err = ToggleCompletion(1, h.ID, date)
	if err != nil {
		t.Fatalf("第二次切换失败: %v", err)
	}
	if entry.Completed {
		t.Error("第二次切换应为completed=false")
	}
	if entry.ID != firstID {
		t.Errorf("切换不应创建新记录: ID %d → %d", firstID, entry.ID)
	}

	// 第三次切换：恢复为true
	entry, err = ToggleCompletion(1, h.ID, date)
	if err != nil {
		t.Fatalf("第三次切换失败: %v", err)
	}
	if !entry.Completed {
		t.Error("第三次切换应为completed=true")
	}

	// 唯一性不变量：该日期始终只有一条记录
	var count int64
	if err := database.DB.Model(&HabitEntry{}).Where("habit_id = ?", h.ID).Count(&count).Error; err != nil {
		t.Fatalf("无法统计记录数: %v", err)
	}
	if count != 1 {
		t.Errorf("同一天应只有1条记录，实际 %d", count)
	}
}

func TestToggleCompletion_RoundTrip(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "阅读")
	date := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	entry, err := ToggleCompletion(1, h.ID, date)
	if err != nil {
		t.Fatalf("切换失败: %v", err)
	}

	// 立即按 (habitId, date) 重新读取，completed值必须一致
	fetched, err := getEntryForDate(database.DB, h.ID, date)
	if err != nil {
		t.Fatalf("重新读取失败: %v", err)
	}
	if fetched == nil {
		t.Fatal("切换后应能按日期读到记录")
	}
	if fetched.Completed != entry.Completed {
		t.Errorf("读回的completed = %v, want %v", fetched.Completed, entry.Completed)
	}
}

func TestToggleCompletion_UnknownHabit(t *testing.T) {
	setupTestDB(t)

	_, err := ToggleCompletion(1, 9999, time.Now())
	if err != ErrHabitNotFound {
		t.Errorf("err = %v, want ErrHabitNotFound", err)
	}
}

func TestToggleCompletion_OtherUsersHabit(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "冥想")

	_, err := ToggleCompletion(2, h.ID, time.Now())
	if err != ErrNotOwner {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}

	// 越权调用不应留下任何写入
	var count int64
	if err := database.DB.Model(&HabitEntry{}).Where("habit_id = ?", h.ID).Count(&count).Error; err != nil {
		t.Fatalf("无法统计记录数: %v", err)
	}
	if count != 0 {
		t.Errorf("越权切换不应写入记录，实际 %d 条", count)
	}
}

func TestToggleCompletion_FutureDateAllowed(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "写日记")
	future := NormalizeDate(time.Now()).AddDate(0, 0, 30)

	entry, err := ToggleCompletion(1, h.ID, future)
	if err != nil {
		t.Fatalf("未来日期的切换不应失败: %v", err)
	}
	if !entry.Completed {
		t.Error("未来日期的首次切换应为completed=true")
	}
}

func TestDeleteHabit_CascadesEntries(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "早睡")

	for day := 1; day <= 3; day++ {
		date := time.Date(2024, 6, day, 0, 0, 0, 0, time.UTC)
		if _, err := ToggleCompletion(1, h.ID, date); err != nil {
			t.Fatalf("切换失败: %v", err)
		}
	}

	if err := DeleteHabit(1, h.ID); err != nil {
		t.Fatalf("DeleteHabit failed: %v", err)
	}

	var count int64
	if err := database.DB.Unscoped().Model(&HabitEntry{}).Where("habit_id = ?", h.ID).Count(&count).Error; err != nil {
		t.Fatalf("无法统计记录数: %v", err)
	}
	if count != 0 {
		t.Errorf("删除习惯后应级联删除全部记录，剩余 %d 条", count)
	}

	if _, err := GetHabitWithStats(1, h.ID, time.Now()); err != ErrHabitNotFound {
		t.Errorf("删除后的查询 err = %v, want ErrHabitNotFound", err)
	}
}

func TestDeleteHabit_OtherUsersHabit(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "背单词")

	if err := DeleteHabit(2, h.ID); err != ErrNotOwner {
		t.Errorf("err = %v, want ErrNotOwner", err)
	}
}

func TestGetHabitWithStats_EndToEnd(t *testing.T) {
	setupTestDB(t)
	h := mustCreateHabit(t, 1, "健身")

	today := NormalizeDate(time.Now())
	yesterday := today.AddDate(0, 0, -1)
	for _, date := range []time.Time{yesterday, today} {
		if _, err := ToggleCompletion(1, h.ID, date); err != nil {
			t.Fatalf("切换失败: %v", err)
		}
	}

	stats, err := GetHabitWithStats(1, h.ID, today)
	if err != nil {
		t.Fatalf("GetHabitWithStats failed: %v", err)
	}

	if stats.CurrentStreak != 2 {
		t.Errorf("CurrentStreak = %d, want 2", stats.CurrentStreak)
	}
	if stats.LongestStreak != 2 {
		t.Errorf("LongestStreak = %d, want 2", stats.LongestStreak)
	}
	if stats.TotalCompletions != 2 {
		t.Errorf("TotalCompletions = %d, want 2", stats.TotalCompletions)
	}

	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	daysInMonth := monthStart.AddDate(0, 1, -1).Day()
	if len(stats.MonthlyCompletions) != daysInMonth {
		t.Errorf("日历应有 %d 个键，实际 %d", daysInMonth, len(stats.MonthlyCompletions))
	}
	if !stats.MonthlyCompletions[today.Format(DateLayout)] {
		t.Error("今天的日历应为已完成")
	}
}

func TestListHabitsWithStats_ScopedToUser(t *testing.T) {
	setupTestDB(t)
	mine := mustCreateHabit(t, 1, "喝水")
	mustCreateHabit(t, 2, "别人的习惯")

	results, err := ListHabitsWithStats(1, time.Now())
	if err != nil {
		t.Fatalf("ListHabitsWithStats failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("用户1应只有1个习惯，实际 %d", len(results))
	}
	if results[0].Habit.ID != mine.ID {
		t.Errorf("返回的习惯ID = %d, want %d", results[0].Habit.ID, mine.ID)
	}
	if results[0].TotalCompletions != 0 {
		t.Errorf("无记录的习惯 TotalCompletions = %d, want 0", results[0].TotalCompletions)
	}
}
