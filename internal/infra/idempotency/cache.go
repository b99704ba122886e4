package idempotency

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	// ErrStore возвращается при ошибках обращения к Redis
	ErrStore = errors.New("idempotency.cache: storage error")
)

const (
	messageKeyPrefix = "dedup:msg:"
	replyKeyPrefix   = "dedup:reply:"
)

// Cache кэш идемпотентности диалогового движка
// Разделяемое key-value хранилище с TTL на ключ: в отличие от
// process-local карт корректно работает при нескольких инстансах сервиса
type Cache struct {
	client *redis.Client
	window time.Duration
}

// NewCache создает новый кэш идемпотентности
// window - окно дедупликации входящих сообщений и исходящих ответов
func NewCache(client *redis.Client, window time.Duration) *Cache {
	return &Cache{client: client, window: window}
}

// MarkMessage отмечает входящее сообщение как обработанное
// Возвращает true, если сообщение встречается впервые в окне дедупликации
func (c *Cache) MarkMessage(ctx context.Context, messageID string) (bool, error) {
	return c.markIfFirst(ctx, messageKeyPrefix+messageID)
}

// MarkReply отмечает, что на текущее сообщение клиента уже дан ответ
// Ключ строится из conversation id и отпечатка текста сообщения
func (c *Cache) MarkReply(ctx context.Context, conversationID, utterance string) (bool, error) {
	return c.markIfFirst(ctx, replyKeyPrefix+conversationID+":"+Fingerprint(utterance))
}

// ForgetMessage снимает отметку обработки сообщения
// Вызывается при ошибке обработки, чтобы повторная доставка
// того же сообщения не была отброшена как дубликат
func (c *Cache) ForgetMessage(ctx context.Context, messageID string) error {
	return c.forget(ctx, messageKeyPrefix+messageID)
}

// ForgetReply снимает отметку данного ответа
func (c *Cache) ForgetReply(ctx context.Context, conversationID, utterance string) error {
	return c.forget(ctx, replyKeyPrefix+conversationID+":"+Fingerprint(utterance))
}

func (c *Cache) markIfFirst(ctx context.Context, key string) (bool, error) {
	first, err := c.client.SetNX(ctx, key, 1, c.window).Result()
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrStore, err)
	}
	return first, nil
}

func (c *Cache) forget(ctx context.Context, key string) error {
	if err := c.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrStore, err)
	}
	return nil
}

// Fingerprint возвращает стабильный отпечаток текста сообщения
func Fingerprint(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:8])
}
