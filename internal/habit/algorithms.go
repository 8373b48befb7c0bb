package habit

import (
	"sort"
	"time"
)

// Statistics 汇总了一个习惯的全部统计指标。
// 它是纯计算的结果，不持久化。
type Statistics struct {
	// CurrentStreak 是截至参考日期仍然有效的连续完成天数
	CurrentStreak int `json:"currentStreak"`

	// LongestStreak 是全部历史中最长的连续完成天数
	LongestStreak int `json:"longestStreak"`

	// CompletionRate 是参考月份内完成天数的百分比 (0.0-100.0)，不做四舍五入
	CompletionRate float64 `json:"completionRate"`

	// MonthlyCompletions 覆盖参考月份的每一个日历日期，键为 "YYYY-MM-DD"
	// 没有记录的日期默认为false；显式的completed=false与默认false在视图上不可区分
	MonthlyCompletions map[string]bool `json:"monthlyCompletions"`

	// TotalCompletions 是全部历史中completed=true的记录总数，不限于当月
	TotalCompletions int `json:"totalCompletions"`
}

// CalculateStatistics 是统计引擎的入口，一个不做任何I/O的纯函数。
// completedEntries 是该习惯全部历史中completed=true的记录；
// monthlyEntries 是该习惯在参考月份内的全部记录（无论completed与否）；
// today 是参考日期，由调用方显式传入，生产环境传当前日期，测试传固定日期。
func CalculateStatistics(completedEntries []HabitEntry, monthlyEntries []HabitEntry, today time.Time) Statistics {
	today = NormalizeDate(today)
	monthStart := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, -1)

	// 当月完成率：当月completed=true的天数 / 当月总天数 × 100
	completedDays := 0
	for _, e := range monthlyEntries {
		if e.Completed {
			completedDays++
		}
	}
	totalDaysInMonth := monthEnd.Day()
	rate := 0.0
	if totalDaysInMonth > 0 {
		rate = float64(completedDays) / float64(totalDaysInMonth) * 100
	}

	return Statistics{
		CurrentStreak:      calculateCurrentStreak(completedEntries, today),
		LongestStreak:      calculateLongestStreak(completedEntries),
		CompletionRate:     rate,
		MonthlyCompletions: buildMonthlyCompletions(monthlyEntries, monthStart, monthEnd),
		TotalCompletions:   len(completedEntries),
	}
}

// buildMonthlyCompletions 构建覆盖整个参考月份的完成日历。
// 日历中每个日期默认为false，再用月内真实记录的completed值覆盖。
func buildMonthlyCompletions(monthlyEntries []HabitEntry, monthStart, monthEnd time.Time) map[string]bool {
	completions := make(map[string]bool, monthEnd.Day())
	for d := monthStart; !d.After(monthEnd); d = d.AddDate(0, 0, 1) {
		completions[d.Format(DateLayout)] = false
	}

	for _, e := range monthlyEntries {
		key := NormalizeDate(e.CompletionDate).Format(DateLayout)
		// 只覆盖落在参考月份内的记录，日历的键集合始终恰好是整月
		if _, ok := completions[key]; ok {
			completions[key] = e.Completed
		}
	}

	return completions
}

// calculateCurrentStreak 计算截至参考日期的当前连续完成天数。
// 最近一次完成既不是今天也不是昨天时，连续即已中断，返回0。
func calculateCurrentStreak(completedEntries []HabitEntry, today time.Time) int {
	if len(completedEntries) == 0 {
		return 0
	}

	// 按日期降序排序
	entries := make([]HabitEntry, len(completedEntries))
	copy(entries, completedEntries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CompletionDate.After(entries[j].CompletionDate)
	})

	yesterday := today.AddDate(0, 0, -1)
	mostRecent := NormalizeDate(entries[0].CompletionDate)
	if !mostRecent.Equal(today) && !mostRecent.Equal(yesterday) {
		return 0
	}

	// 从最近一次完成开始向过去逐日回溯，第一个不等于期望日期的记录终止回溯。
	// 同一天出现两条completed记录时（唯一约束下不应发生），第二条会因为
	// 不等于已递减的期望日期而提前终止连续——这个对顺序敏感的行为被有意保留。
	streak := 0
	expected := mostRecent
	for _, e := range entries {
		if NormalizeDate(e.CompletionDate).Equal(expected) {
			streak++
			expected = expected.AddDate(0, 0, -1)
		} else {
			break
		}
	}

	return streak
}

// calculateLongestStreak 计算全部历史中最长的连续完成天数。
// 只要存在至少一条完成记录，最小值即为1。
func calculateLongestStreak(completedEntries []HabitEntry) int {
	if len(completedEntries) == 0 {
		return 0
	}

	// 按日期升序排序
	entries := make([]HabitEntry, len(completedEntries))
	copy(entries, completedEntries)
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].CompletionDate.Before(entries[j].CompletionDate)
	})

	longest := 1
	current := 1
	for i := 1; i < len(entries); i++ {
		prev := NormalizeDate(entries[i-1].CompletionDate)
		curr := NormalizeDate(entries[i].CompletionDate)

		if curr.Equal(prev.AddDate(0, 0, 1)) {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}

	return longest
}
