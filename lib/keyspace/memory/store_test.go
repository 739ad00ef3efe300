package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/elimelt/ha-redis/lib/keyspace"
)

func TestSetGet(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	value, loaded, err := ks.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !loaded {
		t.Errorf("Expected key to be found")
	}
	if value != "v" {
		t.Errorf("Expected value 'v', got %q", value)
	}
}

func TestGetMissingKey(t *testing.T) {
	ctx := context.Background()
	ks := New()

	_, loaded, err := ks.Get(ctx, "missing")
	if err != nil {
		t.Fatalf("Get on missing key must not error: %v", err)
	}
	if loaded {
		t.Errorf("Expected missing key to report loaded=false")
	}
}

func TestSetWithTTL(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.Set(ctx, "k", "v", 10*time.Millisecond); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if _, loaded, _ := ks.Get(ctx, "k"); !loaded {
		t.Fatalf("Expected key to exist before expiry")
	}

	time.Sleep(20 * time.Millisecond)

	if _, loaded, _ := ks.Get(ctx, "k"); loaded {
		t.Errorf("Expected key to be gone after expiry")
	}
	if exists, _ := ks.Exists(ctx, "k"); exists {
		t.Errorf("Exists must not report expired keys")
	}
}

func TestIncr(t *testing.T) {
	ctx := context.Background()
	ks := New()

	for want := int64(1); want <= 3; want++ {
		got, err := ks.Incr(ctx, "counter")
		if err != nil {
			t.Fatalf("Incr failed: %v", err)
		}
		if got != want {
			t.Errorf("Expected %d, got %d", want, got)
		}
	}
}

func TestIncrNonInteger(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.Set(ctx, "k", "not-a-number", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	_, err := ks.Incr(ctx, "k")
	if err == nil {
		t.Fatalf("Expected error incrementing a non-integer value")
	}
	kerr, ok := err.(*keyspace.Error)
	if !ok || kerr.Code != keyspace.RetCInvalidOperation {
		t.Errorf("Expected RetCInvalidOperation, got %v", err)
	}
}

func TestLPushLRange(t *testing.T) {
	ctx := context.Background()
	ks := New()

	for i := 0; i < 3; i++ {
		if err := ks.LPush(ctx, "list", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("LPush failed: %v", err)
		}
	}

	values, err := ks.LRange(ctx, "list", 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}

	// LPush prepends, so the most recent value comes first
	want := []string{"v2", "v1", "v0"}
	if len(values) != len(want) {
		t.Fatalf("Expected %d values, got %d", len(want), len(values))
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("Index %d: expected %q, got %q", i, want[i], values[i])
		}
	}
}

func TestLPushTrimsList(t *testing.T) {
	ctx := context.Background()
	ks := New()

	for i := 0; i < keyspace.MaxListLen+20; i++ {
		if err := ks.LPush(ctx, "list", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("LPush failed: %v", err)
		}
	}

	values, err := ks.LRange(ctx, "list", 0, -1)
	if err != nil {
		t.Fatalf("LRange failed: %v", err)
	}
	if len(values) != keyspace.MaxListLen {
		t.Errorf("Expected list to be trimmed to %d entries, got %d", keyspace.MaxListLen, len(values))
	}
}

func TestLRangeBounds(t *testing.T) {
	ctx := context.Background()
	ks := New()

	for i := 4; i >= 0; i-- {
		if err := ks.LPush(ctx, "list", fmt.Sprintf("v%d", i)); err != nil {
			t.Fatalf("LPush failed: %v", err)
		}
	}
	// list is now v0 v1 v2 v3 v4

	testCases := []struct {
		name        string
		start, stop int64
		want        []string
	}{
		{"full range", 0, -1, []string{"v0", "v1", "v2", "v3", "v4"}},
		{"prefix", 0, 1, []string{"v0", "v1"}},
		{"stop beyond end", 3, 100, []string{"v3", "v4"}},
		{"negative start", -2, -1, []string{"v3", "v4"}},
		{"start after stop", 3, 1, []string{}},
		{"start beyond end", 10, 20, []string{}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values, err := ks.LRange(ctx, "list", tc.start, tc.stop)
			if err != nil {
				t.Fatalf("LRange failed: %v", err)
			}
			if len(values) != len(tc.want) {
				t.Fatalf("Expected %v, got %v", tc.want, values)
			}
			for i := range tc.want {
				if values[i] != tc.want[i] {
					t.Errorf("Index %d: expected %q, got %q", i, tc.want[i], values[i])
				}
			}
		})
	}
}

func TestSAddSMembers(t *testing.T) {
	ctx := context.Background()
	ks := New()

	added, err := ks.SAdd(ctx, "set", "a")
	if err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}
	if !added {
		t.Errorf("Expected first SAdd to report added=true")
	}

	added, err = ks.SAdd(ctx, "set", "a")
	if err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}
	if added {
		t.Errorf("Expected duplicate SAdd to report added=false")
	}

	if _, err := ks.SAdd(ctx, "set", "b"); err != nil {
		t.Fatalf("SAdd failed: %v", err)
	}

	members, err := ks.SMembers(ctx, "set")
	if err != nil {
		t.Fatalf("SMembers failed: %v", err)
	}
	sort.Strings(members)
	if len(members) != 2 || members[0] != "a" || members[1] != "b" {
		t.Errorf("Expected members [a b], got %v", members)
	}
}

func TestHSetHGetAll(t *testing.T) {
	ctx := context.Background()
	ks := New()

	created, err := ks.HSet(ctx, "hash", "f1", "v1")
	if err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	if !created {
		t.Errorf("Expected new field to report created=true")
	}

	created, err = ks.HSet(ctx, "hash", "f1", "v2")
	if err != nil {
		t.Fatalf("HSet failed: %v", err)
	}
	if created {
		t.Errorf("Expected overwrite to report created=false")
	}

	fields, err := ks.HGetAll(ctx, "hash")
	if err != nil {
		t.Fatalf("HGetAll failed: %v", err)
	}
	if len(fields) != 1 || fields["f1"] != "v2" {
		t.Errorf("Expected {f1: v2}, got %v", fields)
	}
}

func TestWrongType(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	testCases := []struct {
		name string
		op   func() error
	}{
		{"lpush on string", func() error { return ks.LPush(ctx, "k", "v") }},
		{"sadd on string", func() error { _, err := ks.SAdd(ctx, "k", "m"); return err }},
		{"hset on string", func() error { _, err := ks.HSet(ctx, "k", "f", "v"); return err }},
		{"lrange on string", func() error { _, err := ks.LRange(ctx, "k", 0, -1); return err }},
		{"smembers on string", func() error { _, err := ks.SMembers(ctx, "k"); return err }},
		{"hgetall on string", func() error { _, err := ks.HGetAll(ctx, "k"); return err }},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.op()
			if err == nil {
				t.Fatalf("Expected WRONGTYPE error")
			}
			kerr, ok := err.(*keyspace.Error)
			if !ok || kerr.Code != keyspace.RetCInvalidOperation {
				t.Errorf("Expected RetCInvalidOperation, got %v", err)
			}
		})
	}
}

func TestSetOverwritesOtherType(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.LPush(ctx, "k", "v"); err != nil {
		t.Fatalf("LPush failed: %v", err)
	}
	if err := ks.Set(ctx, "k", "str", 0); err != nil {
		t.Fatalf("SET must overwrite a key of any type: %v", err)
	}
	value, loaded, err := ks.Get(ctx, "k")
	if err != nil || !loaded || value != "str" {
		t.Errorf("Expected ('str', true, nil), got (%q, %v, %v)", value, loaded, err)
	}
}

func TestDelete(t *testing.T) {
	ctx := context.Background()
	ks := New()

	if err := ks.Set(ctx, "k", "v", 0); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := ks.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if exists, _ := ks.Exists(ctx, "k"); exists {
		t.Errorf("Expected key to be gone after delete")
	}
	// deleting a missing key is not an error
	if err := ks.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete on missing key must not error: %v", err)
	}
}

func TestConcurrentIncr(t *testing.T) {
	ctx := context.Background()
	ks := New()

	const workers = 8
	const perWorker = 200

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWorker; j++ {
				if _, err := ks.Incr(ctx, "counter"); err != nil {
					t.Errorf("Incr failed: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	value, loaded, err := ks.Get(ctx, "counter")
	if err != nil || !loaded {
		t.Fatalf("Get failed: %v", err)
	}
	if value != fmt.Sprintf("%d", workers*perWorker) {
		t.Errorf("Expected counter %d, got %s", workers*perWorker, value)
	}
}
