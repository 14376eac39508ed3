package workload

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"
)

type DueKind string

const (
	DueToday     DueKind = "today"
	DueTomorrow  DueKind = "tomorrow"
	DueYesterday DueKind = "yesterday"
	DueRelative  DueKind = "relative"
	DueAbsolute  DueKind = "absolute"
	DueFallback  DueKind = "fallback"
)

// DueResolution 是对截止日期文本的解析结果
type DueResolution struct {
	Kind DueKind
	Days int       // 距离参考时间的天数，负数表示已过期；Kind 为 fallback 时无意义
	Date time.Time // 仅 Kind 为 absolute 时有值
}

var relativeDuePattern = regexp.MustCompile(`^in\s+(\d+)\s+days?$`)

var absoluteDueLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006/01/02",
	"01/02/2006",
	"Jan 2, 2006",
	"January 2, 2006",
	"2 Jan 2006",
}

type dueMatcher func(text string, ref time.Time) (DueResolution, bool)

// 匹配顺序：固定短语 -> 绝对日期 -> "in N days" -> 回退
var dueMatchers = []dueMatcher{
	matchDuePhrase,
	matchAbsoluteDue,
	matchRelativeDue,
}

// ParseDue 解析截止日期文本，任何无法识别的输入都返回 fallback，而不是报错
func ParseDue(raw string, ref time.Time) DueResolution {
	text := strings.TrimSpace(raw)
	if text == "" {
		return DueResolution{Kind: DueFallback}
	}

	for _, match := range dueMatchers {
		if res, ok := match(text, ref); ok {
			return res
		}
	}

	return DueResolution{Kind: DueFallback}
}

func matchDuePhrase(text string, _ time.Time) (DueResolution, bool) {
	switch strings.ToLower(text) {
	case "today":
		return DueResolution{Kind: DueToday, Days: 0}, true
	case "tomorrow":
		return DueResolution{Kind: DueTomorrow, Days: 1}, true
	case "yesterday":
		return DueResolution{Kind: DueYesterday, Days: -1}, true
	}
	return DueResolution{}, false
}

func matchAbsoluteDue(text string, ref time.Time) (DueResolution, bool) {
	for _, layout := range absoluteDueLayouts {
		var date time.Time
		var err error
		if layout == time.RFC3339 {
			date, err = time.Parse(layout, text)
			date = date.In(ref.Location())
		} else {
			date, err = time.ParseInLocation(layout, text, ref.Location())
		}
		if err != nil {
			continue
		}

		days := int(math.Round(date.Sub(ref).Hours() / 24))
		return DueResolution{Kind: DueAbsolute, Days: days, Date: date}, true
	}
	return DueResolution{}, false
}

func matchRelativeDue(text string, _ time.Time) (DueResolution, bool) {
	m := relativeDuePattern.FindStringSubmatch(strings.ToLower(text))
	if m == nil {
		return DueResolution{}, false
	}

	n, err := strconv.Atoi(m[1])
	if err != nil {
		// 数字太大，交给回退处理
		return DueResolution{}, false
	}
	return DueResolution{Kind: DueRelative, Days: n}, true
}

// DueLabel 根据距离截止的天数生成给人看的文字
func DueLabel(daysUntil int) string {
	switch {
	case daysUntil == 0:
		return "Due today"
	case daysUntil == 1:
		return "Due tomorrow"
	case daysUntil > 1:
		return "Due in " + strconv.Itoa(daysUntil) + " days"
	case daysUntil == -1:
		return "Overdue by 1 day"
	default:
		return "Overdue by " + strconv.Itoa(-daysUntil) + " days"
	}
}
