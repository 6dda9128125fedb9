package cache

import (
	"context"
	"sync"
	"time"

	"github.com/procure-next/internal/constants"
	"github.com/procure-next/internal/models"
)

// PreviewBonus 预览快照赠品行
type PreviewBonus struct {
	ProductID   uint   `json:"product_id"`
	ProductName string `json:"product_name"`
	Quantity    int    `json:"quantity"`
	OfferID     *uint  `json:"offer_id,omitempty"`
	OfferTitle  string `json:"offer_title,omitempty"`
}

// PreviewLine 预览快照订单行
type PreviewLine struct {
	ProductID      uint           `json:"product_id"`
	ProductName    string         `json:"product_name"`
	Quantity       int            `json:"quantity"`
	UnitPrice      models.Money   `json:"unit_price"`
	DiscountAmount models.Money   `json:"discount_amount"`
	FinalTotal     models.Money   `json:"final_total"`
	OfferID        *uint          `json:"offer_id,omitempty"`
	OfferTitle     string         `json:"offer_title,omitempty"`
	RewardType     string         `json:"reward_type,omitempty"`
	Bonuses        []PreviewBonus `json:"bonuses,omitempty"`
}

// PreviewSnapshot 预览快照；仅存在于缓存，没有数据库行
// 确认成功、确认失败（校验失败除外）、归属不符或 TTL 到期时销毁
type PreviewSnapshot struct {
	PreviewToken   string        `json:"preview_token"`
	CustomerUserID uint          `json:"customer_user_id"`
	CompanyID      uint          `json:"company_id"`
	Notes          string        `json:"notes,omitempty"`
	Items          []PreviewLine `json:"items"`
	Subtotal       models.Money  `json:"subtotal"`
	TotalDiscount  models.Money  `json:"total_discount"`
	FinalTotal     models.Money  `json:"final_total"`
	CreatedAt      int64         `json:"created_at"`
}

// PreviewStore 预览快照存储抽象
// PutNX 在键已存在时返回 false（令牌碰撞，调用方需换令牌重试）
type PreviewStore interface {
	Get(ctx context.Context, token string) (*PreviewSnapshot, bool, error)
	PutNX(ctx context.Context, snapshot *PreviewSnapshot, ttl time.Duration) (bool, error)
	Delete(ctx context.Context, token string) error
}

func previewKey(token string) string {
	return constants.PreviewCacheKeyPrefix + token
}

// RedisPreviewStore 基于 Redis 的预览快照存储
type RedisPreviewStore struct{}

// NewRedisPreviewStore 创建 Redis 预览快照存储
func NewRedisPreviewStore() *RedisPreviewStore {
	return &RedisPreviewStore{}
}

// Get 读取预览快照
func (s *RedisPreviewStore) Get(ctx context.Context, token string) (*PreviewSnapshot, bool, error) {
	var snapshot PreviewSnapshot
	hit, err := GetJSON(ctx, previewKey(token), &snapshot)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &snapshot, true, nil
}

// PutNX 写入预览快照，键已存在时返回 false
func (s *RedisPreviewStore) PutNX(ctx context.Context, snapshot *PreviewSnapshot, ttl time.Duration) (bool, error) {
	if snapshot == nil || snapshot.PreviewToken == "" {
		return false, nil
	}
	return SetJSONNX(ctx, previewKey(snapshot.PreviewToken), snapshot, ttl)
}

// Delete 删除预览快照
func (s *RedisPreviewStore) Delete(ctx context.Context, token string) error {
	return Del(ctx, previewKey(token))
}

type memoryPreviewEntry struct {
	snapshot  PreviewSnapshot
	expiresAt time.Time
}

// MemoryPreviewStore 进程内预览快照存储
// 用于未启用 Redis 的部署与测试；Now 可注入以便测试 TTL 行为
type MemoryPreviewStore struct {
	mu      sync.Mutex
	entries map[string]memoryPreviewEntry

	Now func() time.Time
}

// NewMemoryPreviewStore 创建进程内预览快照存储
func NewMemoryPreviewStore() *MemoryPreviewStore {
	return &MemoryPreviewStore{
		entries: make(map[string]memoryPreviewEntry),
		Now:     time.Now,
	}
}

// Get 读取预览快照；过期条目按未命中处理并顺带删除
func (s *MemoryPreviewStore) Get(ctx context.Context, token string) (*PreviewSnapshot, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.entries[token]
	if !ok {
		return nil, false, nil
	}
	if s.Now().After(entry.expiresAt) {
		delete(s.entries, token)
		return nil, false, nil
	}
	snapshot := entry.snapshot
	return &snapshot, true, nil
}

// PutNX 写入预览快照，键已存在且未过期时返回 false
func (s *MemoryPreviewStore) PutNX(ctx context.Context, snapshot *PreviewSnapshot, ttl time.Duration) (bool, error) {
	if snapshot == nil || snapshot.PreviewToken == "" {
		return false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if entry, ok := s.entries[snapshot.PreviewToken]; ok && !s.Now().After(entry.expiresAt) {
		return false, nil
	}
	s.entries[snapshot.PreviewToken] = memoryPreviewEntry{
		snapshot:  *snapshot,
		expiresAt: s.Now().Add(ttl),
	}
	return true, nil
}

// Delete 删除预览快照
func (s *MemoryPreviewStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, token)
	return nil
}
