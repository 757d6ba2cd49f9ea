package finance

import (
	"time"
)

// 快捷日期范围
const (
	QuickRangeToday  = "today"
	QuickRange7Days  = "7d"
	QuickRange15Days = "15d"
	QuickRange30Days = "30d"
)

// DateWindow 报表日期窗口，边界为闭区间，为空表示不限
type DateWindow struct {
	From *time.Time
	To   *time.Time
}

// Contains 判断时间是否落在窗口内
func (w DateWindow) Contains(t time.Time) bool {
	if w.From != nil && t.Before(*w.From) {
		return false
	}
	if w.To != nil && t.After(*w.To) {
		return false
	}
	return true
}

// IsZero 窗口是否未限定
func (w DateWindow) IsZero() bool {
	return w.From == nil && w.To == nil
}

// RangeQuery 报表日期参数
type RangeQuery struct {
	QuickRange string `form:"range"` // today/7d/15d/30d
	From       string `form:"from"`  // YYYY-MM-DD
	To         string `form:"to"`    // YYYY-MM-DD
}

// ResolveWindow 将日期参数解析为窗口
// 快捷范围优先；显式 from/to 按日历日解析为当地 [当日零点, 当日末微秒]，
// 无法解析的边界直接忽略而不是让整个查询失败
func ResolveWindow(q RangeQuery, now time.Time, loc *time.Location) DateWindow {
	switch q.QuickRange {
	case QuickRangeToday:
		return dayWindow(now, 0, loc)
	case QuickRange7Days:
		return dayWindow(now, 6, loc)
	case QuickRange15Days:
		return dayWindow(now, 14, loc)
	case QuickRange30Days:
		return dayWindow(now, 29, loc)
	}

	var window DateWindow
	if t, err := time.ParseInLocation("2006-01-02", q.From, loc); err == nil {
		from := DayStart(t, loc)
		window.From = &from
	}
	if t, err := time.ParseInLocation("2006-01-02", q.To, loc); err == nil {
		to := DayEnd(t, loc)
		window.To = &to
	}
	return window
}

// PeriodWindow 将 OPEN 账期转换为日期窗口（账期天然没有右边界）
func PeriodWindow(periodStart time.Time, loc *time.Location) DateWindow {
	from := DayStart(periodStart, loc)
	return DateWindow{From: &from}
}

// dayWindow 最近 N+1 个日历日的窗口
func dayWindow(now time.Time, daysBack int, loc *time.Location) DateWindow {
	from := DayStart(now.AddDate(0, 0, -daysBack), loc)
	to := DayEnd(now, loc)
	return DateWindow{From: &from, To: &to}
}
