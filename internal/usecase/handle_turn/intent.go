package handle_turn

import (
	"regexp"
	"strconv"
	"strings"
)

// intentKind грубая классификация намерения одного сообщения
type intentKind int

const (
	intentOther intentKind = iota
	intentBook
	intentReschedule
	intentCancel
	intentAffirm
	intentDecline
	intentChange
)

var (
	cancelWords     = []string{"cancel", "nevermind", "never mind", "forget it"}
	rescheduleWords = []string{"reschedule", "move my appointment", "change my appointment"}
	affirmWords     = []string{"yes", "yep", "yeah", "yup", "sure", "ok", "okay", "confirm", "confirmed", "correct", "sounds good", "perfect", "please do", "go ahead"}
	declineWords    = []string{"no", "nope", "nah", "not now", "don't", "do not"}
	changeWords     = []string{"change", "different time", "another time", "different day", "another day", "other time"}
	bookWords       = []string{"book", "booking", "appointment", "schedule", "reserve", "slot", "slots", "available", "availability", "free"}

	ordinalRe = regexp.MustCompile(`\b(?:option\s+)?([1-9])\b`)

	ordinalWords = map[string]int{
		"first":  1,
		"second": 2,
		"third":  3,
		"fourth": 4,
		"fifth":  5,
	}
)

// classifyIntent определяет намерение сообщения по ключевым словам
// Порядок проверок важен: reschedule раньше change ("change my appointment"),
// cancel раньше decline
func classifyIntent(text string) intentKind {
	normalized := strings.ToLower(strings.TrimSpace(text))

	switch {
	case containsAnyPhrase(normalized, rescheduleWords):
		return intentReschedule
	case containsAnyPhrase(normalized, cancelWords):
		return intentCancel
	case containsAnyPhrase(normalized, affirmWords):
		return intentAffirm
	case containsAnyPhrase(normalized, changeWords):
		return intentChange
	case containsAnyPhrase(normalized, declineWords):
		return intentDecline
	case containsAnyPhrase(normalized, bookWords):
		return intentBook
	default:
		return intentOther
	}
}

// parseOrdinal извлекает выбор слота из ответа клиента: "1", "option 2",
// "the first one". Возвращает индекс с единицы и признак успеха
func parseOrdinal(text string, max int) (int, bool) {
	normalized := strings.ToLower(strings.TrimSpace(text))

	for word, n := range ordinalWords {
		if hasWord(normalized, word) && n <= max {
			return n, true
		}
	}

	if m := ordinalRe.FindStringSubmatch(normalized); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil && n >= 1 && n <= max {
			return n, true
		}
	}

	return 0, false
}

// containsAnyPhrase проверяет вхождение любой из фраз по границам слов
func containsAnyPhrase(text string, phrases []string) bool {
	for _, phrase := range phrases {
		if hasWord(text, phrase) {
			return true
		}
	}
	return false
}

// hasWord проверяет вхождение фразы по границам слов
func hasWord(text, phrase string) bool {
	idx := strings.Index(text, phrase)
	for idx >= 0 {
		left := idx == 0 || !isWordChar(text[idx-1])
		end := idx + len(phrase)
		right := end == len(text) || !isWordChar(text[end])
		if left && right {
			return true
		}
		next := strings.Index(text[idx+1:], phrase)
		if next < 0 {
			return false
		}
		idx = idx + 1 + next
	}
	return false
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '\''
}
