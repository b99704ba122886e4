package extract

import (
	"regexp"
	"strings"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

var (
	// Самопредставления: "my name is Maria", "i'm Maria", "it's Maria Silva"
	nameRe = regexp.MustCompile(`(?i)\b(?:my name is|i am|i'm|im|it's|this is)\s+([\p{L}]+(?:\s+[\p{L}]+){0,2})`)

	// Последовательности цифр с допустимыми разделителями
	phoneRe = regexp.MustCompile(`\+?\d[\d\s().-]{5,}\d`)

	nonDigitRe = regexp.MustCompile(`\D`)

	// Слова, которые часто идут после "i'm", но именем не являются
	nameStopwords = map[string]bool{
		"looking":    true,
		"trying":     true,
		"interested": true,
		"calling":    true,
		"here":       true,
		"not":        true,
		"sorry":      true,
		"good":       true,
		"fine":       true,
		"free":       true,
		"busy":       true,
		"available":  true,
		"sure":       true,
		"going":      true,
		"just":       true,
		"thanks":     true,
		"thank":      true,
		"and":        true,
	}
)

// Name извлекает имя клиента из самопредставления
// Без явного представления имя не угадывается
func Name(text string) (string, bool) {
	m := nameRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}

	words := strings.Fields(strings.TrimSpace(m[1]))
	cleaned := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.Trim(w, ".,!?")
		if w == "" {
			continue
		}
		if nameStopwords[strings.ToLower(w)] {
			break
		}
		cleaned = append(cleaned, w)
	}

	if len(cleaned) == 0 {
		return "", false
	}

	return strings.Join(cleaned, " "), true
}

// Phone извлекает телефонный номер из текста
// Номер нормализуется до одних цифр; принимаются последовательности
// правдоподобной длины (8-15 цифр после нормализации)
func Phone(text string) (string, bool) {
	for _, candidate := range phoneRe.FindAllString(text, -1) {
		digits := nonDigitRe.ReplaceAllString(candidate, "")
		if len(digits) >= domain.MinPhoneDigits && len(digits) <= domain.MaxPhoneDigits {
			return digits, true
		}
	}
	return "", false
}
