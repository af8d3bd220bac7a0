package session

import (
	"testing"

	"github.com/google/uuid"
)

func TestCacheResetReplacesContents(t *testing.T) {
	cache := NewCache[testOrder]()
	stale := uuid.New()
	cache.Put(stale, testOrder{ID: stale, Status: "Delivered"})

	fresh := uuid.New()
	cache.Reset(map[uuid.UUID]testOrder{
		fresh: {ID: fresh, Status: "Pending"},
	})

	if _, ok := cache.Get(stale); ok {
		t.Error("stale entry survived Reset")
	}
	if got, ok := cache.Get(fresh); !ok || got.Status != "Pending" {
		t.Errorf("fresh entry: got %+v, ok=%v", got, ok)
	}
	if cache.Len() != 1 {
		t.Errorf("Len: got %d, want 1", cache.Len())
	}
}

func TestCachePutIfAbsentKeepsExisting(t *testing.T) {
	cache := NewCache[testOrder]()
	id := uuid.New()

	got := cache.PutIfAbsent(id, testOrder{ID: id, Status: "Pending"})
	if got.Status != "Pending" {
		t.Errorf("first PutIfAbsent: got %s, want Pending", got.Status)
	}

	// An optimistic value already in the cache wins over a stale row.
	cache.Put(id, testOrder{ID: id, Status: "In Progress"})
	got = cache.PutIfAbsent(id, testOrder{ID: id, Status: "Pending"})
	if got.Status != "In Progress" {
		t.Errorf("second PutIfAbsent: got %s, want In Progress", got.Status)
	}
	if cached, _ := cache.Get(id); cached.Status != "In Progress" {
		t.Errorf("cached value clobbered: got %s", cached.Status)
	}
}

func TestCacheAllReturnsCopies(t *testing.T) {
	cache := NewCache[testOrder]()
	id := uuid.New()
	cache.Put(id, testOrder{ID: id, Status: "Pending"})

	all := cache.All()
	if len(all) != 1 {
		t.Fatalf("All: got %d items, want 1", len(all))
	}
	all[0].Status = "Cancelled"

	got, _ := cache.Get(id)
	if got.Status != "Pending" {
		t.Error("mutating All result leaked into the cache")
	}
}
