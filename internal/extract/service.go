// Package extract содержит чистые функции извлечения полей бронирования
// из свободного текста сообщений клиентов.
// Функции никогда не возвращают ошибок: отсутствие совпадения - это
// обычный результат (ok=false), а не сбой.
package extract

import "strings"

// ServiceOption минимальное представление услуги каталога для матчинга
type ServiceOption struct {
	ID              int64
	Name            string
	Aliases         []string
	DurationMinutes int
	Price           *float64
	RequiresDeposit bool
}

// Service ищет услугу в тексте сообщения
// Порядок: точное совпадение названия, точное совпадение синонима,
// вхождение названия/синонима как подстроки.
// Неоднозначное совпадение (несколько разных услуг) - это "не найдено":
// угадывать нельзя
func Service(text string, options []ServiceOption) (ServiceOption, bool) {
	normalized := normalize(text)
	if normalized == "" || len(options) == 0 {
		return ServiceOption{}, false
	}

	// Точное совпадение: весь текст и есть название услуги
	for _, opt := range options {
		if normalized == normalize(opt.Name) {
			return opt, true
		}
		for _, alias := range opt.Aliases {
			if normalized == normalize(alias) {
				return opt, true
			}
		}
	}

	// Вхождение названия или синонима как подстроки
	var matched []ServiceOption
	for _, opt := range options {
		if containsTerm(normalized, normalize(opt.Name)) {
			matched = append(matched, opt)
			continue
		}
		for _, alias := range opt.Aliases {
			if containsTerm(normalized, normalize(alias)) {
				matched = append(matched, opt)
				break
			}
		}
	}

	if len(matched) != 1 {
		return ServiceOption{}, false
	}

	return matched[0], true
}

// containsTerm проверяет вхождение термина по границам слов
func containsTerm(text, term string) bool {
	if term == "" {
		return false
	}
	idx := strings.Index(text, term)
	if idx < 0 {
		return false
	}
	// Слева и справа от вхождения должны быть границы слов
	if idx > 0 && isWordChar(text[idx-1]) {
		return false
	}
	end := idx + len(term)
	if end < len(text) && isWordChar(text[end]) {
		return false
	}
	return true
}

func isWordChar(c byte) bool {
	return c >= 'a' && c <= 'z' || c >= '0' && c <= '9'
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
