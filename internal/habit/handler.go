package habit

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/SlpAus/habit-tracker-backend/internal/user"
	"github.com/gin-gonic/gin"
)

// CreateHabitRequestBody 定义了创建习惯时请求体的JSON结构
type CreateHabitRequestBody struct {
	Name            string `json:"name" binding:"required,max=100"`
	Description     string `json:"description" binding:"max=500"`
	TargetFrequency int    `json:"targetFrequency" binding:"omitempty,min=1"`
}

// --- API响应模型 ---

type HabitResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	CreatedDate     string `json:"createdDate"`
	TargetFrequency int    `json:"targetFrequency"`
	UserID          uint   `json:"userId"`
}

type HabitWithStatsResponse struct {
	Habit              HabitResponse   `json:"habit"`
	CurrentStreak      int             `json:"currentStreak"`
	LongestStreak      int             `json:"longestStreak"`
	CompletionRate     float64         `json:"completionRate"`
	MonthlyCompletions map[string]bool `json:"monthlyCompletions"`
	TotalCompletions   int             `json:"totalCompletions"`
}

type EntryResponse struct {
	ID             uint   `json:"id"`
	HabitID        uint   `json:"habitId"`
	CompletionDate string `json:"completionDate"`
	Completed      bool   `json:"completed"`
}

// --- 数据格式化辅助函数 ---

func formatHabit(h *Habit) HabitResponse {
	return HabitResponse{
		ID:              h.ID,
		Name:            h.Name,
		Description:     h.Description,
		CreatedDate:     h.CreatedDate.Format(DateLayout),
		TargetFrequency: h.TargetFrequency,
		UserID:          h.UserID,
	}
}

func formatHabitWithStats(s *HabitWithStats) HabitWithStatsResponse {
	return HabitWithStatsResponse{
		Habit:              formatHabit(&s.Habit),
		CurrentStreak:      s.CurrentStreak,
		LongestStreak:      s.LongestStreak,
		CompletionRate:     s.CompletionRate,
		MonthlyCompletions: s.MonthlyCompletions,
		TotalCompletions:   s.TotalCompletions,
	}
}

func formatEntry(e *HabitEntry) EntryResponse {
	return EntryResponse{
		ID:             e.ID,
		HabitID:        e.HabitID,
		CompletionDate: e.CompletionDate.Format(DateLayout),
		Completed:      e.Completed,
	}
}

// --- 请求解析辅助函数 ---

// currentUserOrAbort 取出认证用户ID，缺失时以401中止请求。
func currentUserOrAbort(c *gin.Context) (uint, bool) {
	userID, ok := user.CurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "缺少认证令牌"})
	}
	return userID, ok
}

// habitIDOrAbort 解析路径参数中的习惯ID，格式错误时以400中止请求。
func habitIDOrAbort(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "习惯ID格式错误"})
		return 0, false
	}
	return uint(id), true
}

// writeDomainError 把service层的领域错误映射为HTTP状态码。
func writeDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrNotOwner):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// --- Gin处理函数 ---

// CreateHabitHandler 处理创建习惯的请求
func CreateHabitHandler(c *gin.Context) {
	userID, ok := currentUserOrAbort(c)
	if !ok {
		return
	}

	var body CreateHabitRequestBody
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "请求格式错误: " + err.Error()})
		return
	}

	h, err := CreateHabit(userID, body.Name, body.Description, body.TargetFrequency)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "创建习惯失败: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, formatHabit(h))
}

// ListHabitsHandler 返回当前用户的全部习惯及统计
func ListHabitsHandler(c *gin.Context) {
	userID, ok := currentUserOrAbort(c)
	if !ok {
		return
	}

	results, err := ListHabitsWithStats(userID, time.Now())
	if err != nil {
		writeDomainError(c, err)
		return
	}

	responses := make([]HabitWithStatsResponse, 0, len(results))
	for i := range results {
		responses = append(responses, formatHabitWithStats(&results[i]))
	}
	c.JSON(http.StatusOK, responses)
}

// DeleteHabitHandler 删除一个习惯及其全部打卡记录
func DeleteHabitHandler(c *gin.Context) {
	userID, ok := currentUserOrAbort(c)
	if !ok {
		return
	}
	habitID, ok := habitIDOrAbort(c)
	if !ok {
		return
	}

	if err := DeleteHabit(userID, habitID); err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "习惯已删除"})
}

// ToggleCompletionHandler 切换某习惯在某日期的完成状态
// 日期通过query参数传入，格式为 YYYY-MM-DD
func ToggleCompletionHandler(c *gin.Context) {
	userID, ok := currentUserOrAbort(c)
	if !ok {
		return
	}
	habitID, ok := habitIDOrAbort(c)
	if !ok {
		return
	}

	dateStr := c.Query("date")
	if dateStr == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "缺少date参数"})
		return
	}
	date, err := time.ParseInLocation(DateLayout, dateStr, time.UTC)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "日期格式错误，应为YYYY-MM-DD"})
		return
	}

	entry, err := ToggleCompletion(userID, habitID, date)
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatEntry(entry))
}

// GetHabitStatsHandler 返回单个习惯的完整统计
func GetHabitStatsHandler(c *gin.Context) {
	userID, ok := currentUserOrAbort(c)
	if !ok {
		return
	}
	habitID, ok := habitIDOrAbort(c)
	if !ok {
		return
	}

	stats, err := GetHabitWithStats(userID, habitID, time.Now())
	if err != nil {
		writeDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, formatHabitWithStats(stats))
}
