// Package summary renders event listings for the user: the
// post-mutation month view, today/week listings, and search results.
// User-facing copy is Korean, matching the rest of the conversation.
package summary

import (
	"fmt"
	"strings"
	"time"

	"github.com/jinbless/moelclaw/internal/calendar"
	"github.com/jinbless/moelclaw/internal/dates"
)

// weekdayNames are the short Korean weekday names, indexed by
// time.Weekday (Sunday first)
var weekdayNames = [7]string{"일", "월", "화", "수", "목", "금", "토"}

// Weekday returns the short Korean name for t's weekday
func Weekday(t time.Time) string {
	return weekdayNames[t.Weekday()]
}

// timeLabel renders an event's start for listings: HH:MM, or 종일 for
// all-day events
func timeLabel(e calendar.Event) string {
	if e.AllDay {
		return "종일"
	}
	return e.Start.Format("15:04")
}

// spanSuffix notes a multi-day span with its inclusive last day
func spanSuffix(e calendar.Event) string {
	if !e.AllDay {
		return ""
	}
	last := dates.InclusiveEnd(e.End)
	if !last.After(e.Start) {
		return ""
	}
	return fmt.Sprintf(" (~%s)", last.Format(dates.DateLayout))
}

// Month renders the post-mutation month view: every event in the month,
// grouped by date in ascending order and numbered. Handed directly to
// the user without a language-model pass.
func Month(year int, month time.Month, events []calendar.Event) string {
	header := fmt.Sprintf("📅 %d년 %d월 일정", year, int(month))
	if len(events) == 0 {
		return header + "\n\n📭 등록된 일정이 없습니다."
	}

	lines := []string{header + ":"}
	currentDate := ""
	n := 0
	for _, e := range events {
		dateStr := e.Start.Format(dates.DateLayout)
		if dateStr != currentDate {
			currentDate = dateStr
			lines = append(lines, fmt.Sprintf("\n📆 %s (%s)", dateStr, Weekday(e.Start)))
		}
		n++
		lines = append(lines, fmt.Sprintf("%d. 🕐 %s - %s%s", n, timeLabel(e), e.Summary, spanSuffix(e)))
	}
	return strings.Join(lines, "\n")
}

// Today renders the today listing
func Today(events []calendar.Event) string {
	if len(events) == 0 {
		return "📭 오늘은 예정된 일정이 없습니다."
	}

	lines := []string{"📅 오늘의 일정:\n"}
	for i, e := range events {
		lines = append(lines, fmt.Sprintf("%d. 🕐 %s - %s", i+1, timeLabel(e), e.Summary))
	}
	return strings.Join(lines, "\n")
}

// Week renders the this-week listing grouped by date
func Week(events []calendar.Event) string {
	if len(events) == 0 {
		return "📭 이번 주는 예정된 일정이 없습니다."
	}

	lines := []string{"📅 이번 주 일정:"}
	currentDate := ""
	for _, e := range events {
		dateStr := e.Start.Format(dates.DateLayout)
		if dateStr != currentDate {
			currentDate = dateStr
			lines = append(lines, fmt.Sprintf("\n📆 %s (%s)", dateStr, Weekday(e.Start)))
		}
		lines = append(lines, fmt.Sprintf("  🕐 %s - %s", timeLabel(e), e.Summary))
	}
	return strings.Join(lines, "\n")
}

// Search renders search results with dates
func Search(events []calendar.Event, keyword string) string {
	if len(events) == 0 {
		msg := "🔍 검색 결과가 없습니다."
		if keyword != "" {
			msg += fmt.Sprintf(" (%q)", keyword)
		}
		return msg
	}

	header := "🔍 검색 결과"
	if keyword != "" {
		header += fmt.Sprintf(" %q", keyword)
	}
	header += fmt.Sprintf(" (%d건):\n", len(events))

	lines := []string{header}
	for i, e := range events {
		lines = append(lines, fmt.Sprintf("%d. 📅 %s 🕐 %s - %s",
			i+1, e.Start.Format(dates.DateLayout), timeLabel(e), e.Summary))
	}
	return strings.Join(lines, "\n")
}
