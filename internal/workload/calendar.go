package workload

import (
	"strconv"
	"time"
)

const DayKeyLayout = "2006-01-02"

var dayNames = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

type WeekDay struct {
	Key       string    `json:"key"`       // 规范化后的日期，可以直接作为 map 的键
	DayName   string    `json:"dayName"`   // Mon ... Sun
	DateLabel string    `json:"dateLabel"` // 几号
	Date      time.Time `json:"date"`
	IsToday   bool      `json:"isToday"`
	IsWeekend bool      `json:"isWeekend"`
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// mondayOf 返回 t 所在周的周一零点
// Weekday 中周日为 0，所以 (weekday + 6) % 7 就是距离周一的天数
func mondayOf(t time.Time) time.Time {
	day := startOfDay(t)
	return day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
}

// BuildWeek 生成以周一开头的 7 天，weekOffset 为 0 表示本周，负数为过去，正数为将来
func BuildWeek(today time.Time, weekOffset int) []WeekDay {
	today = startOfDay(today)
	start := mondayOf(today).AddDate(0, 0, weekOffset*7)

	days := make([]WeekDay, len(dayNames))
	for i := range days {
		date := start.AddDate(0, 0, i)
		days[i] = WeekDay{
			Key:       date.Format(DayKeyLayout),
			DayName:   dayNames[i],
			DateLabel: strconv.Itoa(date.Day()),
			Date:      date,
			IsToday:   date.Equal(today),
			IsWeekend: i >= 5,
		}
	}

	return days
}

// WeekRangeLabel 形如 "Oct 12 - Oct 18, 2026"，跨年时两端都带年份
func WeekRangeLabel(days []WeekDay) string {
	if len(days) == 0 {
		return ""
	}

	first := days[0].Date
	last := days[len(days)-1].Date
	if first.Year() != last.Year() {
		return first.Format("Jan 2, 2006") + " - " + last.Format("Jan 2, 2006")
	}
	return first.Format("Jan 2") + " - " + last.Format("Jan 2, 2006")
}

func todayIndex(days []WeekDay) int {
	for i, day := range days {
		if day.IsToday {
			return i
		}
	}
	return -1
}

// daysBetween 按日历天计算，不受夏令时影响
func daysBetween(from, to time.Time) int {
	fy, fm, fd := from.Date()
	ty, tm, td := to.Date()
	a := time.Date(fy, fm, fd, 0, 0, 0, 0, time.UTC)
	b := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a).Hours() / 24)
}
