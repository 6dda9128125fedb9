package cache

import (
	"context"
	"testing"
	"time"
)

func testSnapshot(token string) *PreviewSnapshot {
	return &PreviewSnapshot{
		PreviewToken:   token,
		CustomerUserID: 101,
		CompanyID:      1,
	}
}

func TestMemoryPreviewStorePutGetDelete(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()

	ok, err := store.PutNX(ctx, testSnapshot("PV-20260828-00AA"), 15*time.Minute)
	if err != nil || !ok {
		t.Fatalf("PutNX want true, got ok=%v err=%v", ok, err)
	}

	snapshot, hit, err := store.Get(ctx, "PV-20260828-00AA")
	if err != nil || !hit {
		t.Fatalf("Get want hit, got hit=%v err=%v", hit, err)
	}
	if snapshot.CustomerUserID != 101 {
		t.Fatalf("snapshot mismatch: %+v", snapshot)
	}

	if err := store.Delete(ctx, "PV-20260828-00AA"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := store.Get(ctx, "PV-20260828-00AA"); hit {
		t.Fatalf("deleted token should miss")
	}
}

func TestMemoryPreviewStorePutNXCollision(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()

	if ok, _ := store.PutNX(ctx, testSnapshot("PV-20260828-00AB"), time.Minute); !ok {
		t.Fatalf("first PutNX should succeed")
	}
	if ok, _ := store.PutNX(ctx, testSnapshot("PV-20260828-00AB"), time.Minute); ok {
		t.Fatalf("PutNX on live key should return false")
	}
	if ok, _ := store.PutNX(ctx, testSnapshot("PV-20260828-00AC"), time.Minute); !ok {
		t.Fatalf("different token should succeed")
	}
}

func TestMemoryPreviewStoreRejectsEmptyToken(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()

	if ok, err := store.PutNX(ctx, nil, time.Minute); ok || err != nil {
		t.Fatalf("nil snapshot should not store, got ok=%v err=%v", ok, err)
	}
	if ok, err := store.PutNX(ctx, testSnapshot(""), time.Minute); ok || err != nil {
		t.Fatalf("empty token should not store, got ok=%v err=%v", ok, err)
	}
}

func TestMemoryPreviewStoreTTL(t *testing.T) {
	store := NewMemoryPreviewStore()
	ctx := context.Background()

	base := time.Now()
	store.Now = func() time.Time { return base }

	if ok, _ := store.PutNX(ctx, testSnapshot("PV-20260828-00AD"), 15*time.Minute); !ok {
		t.Fatalf("PutNX should succeed")
	}

	// 14 分钟后仍可命中
	store.Now = func() time.Time { return base.Add(14 * time.Minute) }
	if _, hit, _ := store.Get(ctx, "PV-20260828-00AD"); !hit {
		t.Fatalf("token should survive until TTL")
	}

	// 过期后按未命中处理
	store.Now = func() time.Time { return base.Add(15*time.Minute + time.Second) }
	if _, hit, _ := store.Get(ctx, "PV-20260828-00AD"); hit {
		t.Fatalf("expired token should miss")
	}

	// 过期键可被复用
	if ok, _ := store.PutNX(ctx, testSnapshot("PV-20260828-00AD"), 15*time.Minute); !ok {
		t.Fatalf("expired key should be reusable")
	}
}
