package draft

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/avkor/SMB-SchedulingService/internal/domain"
)

const keyPrefix = "draft:"

// Store хранилище черновиков диалогов в Redis
// Черновик хранится целиком как один JSON-блоб по conversation id
// и перезаписывается полностью на каждом ходе.
// TTL ключа дублирует ExpiresAt черновика как страховка от мусора,
// но источником истины остаётся ленивая проверка ExpiresAt при чтении
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

// NewStore создает новый экземпляр хранилища черновиков
func NewStore(client *redis.Client, ttl time.Duration) *Store {
	return &Store{client: client, ttl: ttl}
}

// Get возвращает черновик разговора
// Если черновика нет, возвращается ErrDraftNotFound
func (s *Store) Get(ctx context.Context, conversationID string) (*domain.ConversationDraft, error) {
	data, err := s.client.Get(ctx, keyPrefix+conversationID).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrDraftNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrStore, err)
	}

	var d domain.ConversationDraft
	if err := json.Unmarshal([]byte(data), &d); err != nil {
		return nil, fmt.Errorf("%w: Get: %v", ErrDecode, err)
	}

	return &d, nil
}

// Set перезаписывает черновик целиком, обновляя TTL ключа
func (s *Store) Set(ctx context.Context, d *domain.ConversationDraft) error {
	data, err := json.Marshal(d)
	if err != nil {
		return fmt.Errorf("%w: Set: %v", ErrEncode, err)
	}

	if err := s.client.Set(ctx, keyPrefix+d.ConversationID, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("%w: Set: %v", ErrStore, err)
	}

	return nil
}

// Delete удаляет черновик разговора
func (s *Store) Delete(ctx context.Context, conversationID string) error {
	if err := s.client.Del(ctx, keyPrefix+conversationID).Err(); err != nil {
		return fmt.Errorf("%w: Delete: %v", ErrStore, err)
	}
	return nil
}
