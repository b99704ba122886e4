package extract

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/avkor/SMB-SchedulingService/pkg/types"
)

// DayPart грубый фильтр времени суток
type DayPart string

const (
	PartMorning   DayPart = "morning"
	PartAfternoon DayPart = "afternoon"
	PartEvening   DayPart = "evening"
)

// TimeWindow окно локального времени [From, To) для фильтрации слотов
type TimeWindow struct {
	From types.TimeString
	To   types.TimeString
}

// Window возвращает окно локального времени для части дня
func (p DayPart) Window() TimeWindow {
	switch p {
	case PartMorning:
		return TimeWindow{From: "06:00", To: "12:00"}
	case PartAfternoon:
		return TimeWindow{From: "12:00", To: "18:00"}
	case PartEvening:
		return TimeWindow{From: "18:00", To: "23:00"}
	default:
		return TimeWindow{From: "00:00", To: "23:59"}
	}
}

var (
	weekdayNames = map[string]time.Weekday{
		"sunday":    time.Sunday,
		"monday":    time.Monday,
		"tuesday":   time.Tuesday,
		"wednesday": time.Wednesday,
		"thursday":  time.Thursday,
		"friday":    time.Friday,
		"saturday":  time.Saturday,
	}

	// DD/MM[/YYYY]
	numericDateRe = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)

	// 12-часовой формат: "3pm", "3 pm", "3:30pm"
	clock12Re = regexp.MustCompile(`\b(1[0-2]|0?[1-9])(?::([0-5]\d))?\s*(am|pm)\b`)

	// 24-часовой формат: "15:00"
	clock24Re = regexp.MustCompile(`\b([01]?\d|2[0-3]):([0-5]\d)\b`)

	beforeAfterRe = regexp.MustCompile(`\b(before|after)\s+((?:1[0-2]|0?[1-9])(?::[0-5]\d)?\s*(?:am|pm)|(?:[01]?\d|2[0-3]):[0-5]\d)`)
)

// Date извлекает желаемую дату из текста
// Понимает: today, tomorrow, названия дней недели (следующее вхождение),
// DD/MM и DD/MM/YYYY. Возвращает локальную полночь в зоне loc
func Date(text string, now time.Time, loc *time.Location) (time.Time, bool) {
	normalized := normalize(text)
	today := time.Date(now.In(loc).Year(), now.In(loc).Month(), now.In(loc).Day(), 0, 0, 0, 0, loc)

	if containsTerm(normalized, "today") || containsTerm(normalized, "tonight") {
		return today, true
	}
	if containsTerm(normalized, "tomorrow") {
		return today.AddDate(0, 0, 1), true
	}

	for name, weekday := range weekdayNames {
		if !containsTerm(normalized, name) {
			continue
		}
		// Следующее вхождение дня недели; сегодняшний день означает следующую неделю
		daysAhead := (int(weekday) - int(today.Weekday()) + 7) % 7
		if daysAhead == 0 {
			daysAhead = 7
		}
		return today.AddDate(0, 0, daysAhead), true
	}

	if m := numericDateRe.FindStringSubmatch(normalized); m != nil {
		day, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		if month < 1 || month > 12 || day < 1 || day > 31 {
			return time.Time{}, false
		}

		year := today.Year()
		if m[3] != "" {
			year, _ = strconv.Atoi(m[3])
			if year < 100 {
				year += 2000
			}
		}

		date := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
		// Проверяем, что дата не "перетекла" (например, 31/02 -> 03/03)
		if date.Day() != day || date.Month() != time.Month(month) {
			return time.Time{}, false
		}

		// Дата без года, уже прошедшая в этом году, означает следующий год
		if m[3] == "" && date.Before(today) {
			date = date.AddDate(1, 0, 0)
		}

		return date, true
	}

	return time.Time{}, false
}

// ClockTime извлекает точное время из текста
// Понимает 12-часовой ("3 pm", "3:30pm") и 24-часовой ("15:00") форматы
func ClockTime(text string) (types.TimeString, bool) {
	normalized := normalize(text)

	// Границы окна ("before 3pm") не являются точным временем
	stripped := beforeAfterRe.ReplaceAllString(normalized, "")

	if m := clock12Re.FindStringSubmatch(stripped); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute := 0
		if m[2] != "" {
			minute, _ = strconv.Atoi(m[2])
		}
		if m[3] == "pm" && hour != 12 {
			hour += 12
		}
		if m[3] == "am" && hour == 12 {
			hour = 0
		}
		return types.TimeString(fmt.Sprintf("%02d:%02d", hour, minute)), true
	}

	if m := clock24Re.FindStringSubmatch(stripped); m != nil {
		hour, _ := strconv.Atoi(m[1])
		minute, _ := strconv.Atoi(m[2])
		return types.TimeString(fmt.Sprintf("%02d:%02d", hour, minute)), true
	}

	return "", false
}

// Part извлекает часть дня из текста
func Part(text string) (DayPart, bool) {
	normalized := normalize(text)

	if containsTerm(normalized, "morning") {
		return PartMorning, true
	}
	if containsTerm(normalized, "afternoon") {
		return PartAfternoon, true
	}
	if containsTerm(normalized, "evening") || containsTerm(normalized, "tonight") || containsTerm(normalized, "night") {
		return PartEvening, true
	}

	return "", false
}

// Bound извлекает окно "before HH:MM" / "after HH:MM"
func Bound(text string) (TimeWindow, bool) {
	normalized := normalize(text)

	m := beforeAfterRe.FindStringSubmatch(normalized)
	if m == nil {
		return TimeWindow{}, false
	}

	at, ok := ClockTime(m[2])
	if !ok {
		return TimeWindow{}, false
	}

	if m[1] == "before" {
		return TimeWindow{From: "00:00", To: at}, true
	}
	return TimeWindow{From: at, To: "23:59"}, true
}

// HintWindow выбирает окно фильтрации слотов из текста:
// явная граница ("before/after HH:MM") приоритетнее части дня
func HintWindow(text string) (TimeWindow, bool) {
	if w, ok := Bound(text); ok {
		return w, true
	}
	if p, ok := Part(text); ok {
		return p.Window(), true
	}
	return TimeWindow{}, false
}
