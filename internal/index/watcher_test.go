package index

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/halloran/medkit/internal/models"
)

// eventually polls fn every tick until it returns true or timeout elapses.
func eventually(t *testing.T, timeout, tick time.Duration, fn func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if fn() {
			return
		}
		time.Sleep(tick)
	}
	t.Error(msg)
}

func TestWatcher_ResyncOnRewrite(t *testing.T) {
	st, db := syncTestEnv(t, twoGroupDoc())
	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var events []string

	go Watch(ctx, db, st, quietLogger(), func(kind, path string) {
		mu.Lock()
		events = append(events, kind)
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	doc := &models.Document{}
	doc.Data.MainFlashcards = []models.Card{{ID: "rewritten", Question: "q", Answer: "a"}}
	doc.Data.HasMain = true
	writeStore(t, st.Path(), doc)

	eventually(t, 5*time.Second, 50*time.Millisecond, func() bool {
		_, err := db.GetCard("rewritten")
		return err == nil
	}, "rewritten store not re-indexed by watcher")

	eventually(t, 2*time.Second, 50*time.Millisecond, func() bool {
		mu.Lock()
		defer mu.Unlock()
		for _, e := range events {
			if e == "store.reloaded" {
				return true
			}
		}
		return false
	}, "no store.reloaded callback received")
}

func TestWatcher_IgnoresSiblingFiles(t *testing.T) {
	st, db := syncTestEnv(t, twoGroupDoc())
	if err := Sync(db, st, quietLogger()); err != nil {
		t.Fatalf("initial sync: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var mu sync.Mutex
	var called int

	go Watch(ctx, db, st, quietLogger(), func(_, _ string) {
		mu.Lock()
		called++
		mu.Unlock()
	})

	time.Sleep(100 * time.Millisecond)

	writeStore(t, st.Path()+".bak", twoGroupDoc())
	time.Sleep(500 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if called != 0 {
		t.Errorf("callback fired %d times for a sibling file", called)
	}
}
