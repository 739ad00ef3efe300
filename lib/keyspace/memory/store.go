package memory

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/puzpuzpuz/xsync/v3"

	"github.com/elimelt/ha-redis/lib/keyspace"
)

// --------------------------------------------------------------------------
// Entry representation
// --------------------------------------------------------------------------

type entryKind uint8

const (
	kindString entryKind = iota
	kindList
	kindSet
	kindHash
)

func (k entryKind) String() string {
	switch k {
	case kindString:
		return "string"
	case kindList:
		return "list"
	case kindSet:
		return "set"
	case kindHash:
		return "hash"
	default:
		return "unknown"
	}
}

// entry is a single key of any type. The kind is fixed on first write and
// every operation checks it, mirroring the server's WRONGTYPE behavior.
type entry struct {
	mu        sync.Mutex
	kind      entryKind
	str       string
	list      []string
	set       map[string]struct{}
	hash      map[string]string
	expiresAt time.Time // zero value = no expiration
}

// expired reports whether the entry's TTL has elapsed. Expiry is lazy:
// expired entries are dropped when they are next touched.
func (e *entry) expired() bool {
	return !e.expiresAt.IsZero() && time.Now().After(e.expiresAt)
}

// reset clears the entry to an empty value of the given kind.
func (e *entry) reset(kind entryKind) {
	e.kind = kind
	e.str = ""
	e.list = nil
	e.set = nil
	e.hash = nil
	e.expiresAt = time.Time{}
}

// --------------------------------------------------------------------------
// Keyspace implementation
// --------------------------------------------------------------------------

type keyspaceImpl struct {
	data *xsync.MapOf[string, *entry]
}

// New creates an in-process keyspace. It needs no external services and,
// being a single node, trivially satisfies any write policy: there is no
// replica to wait for and nothing to lag behind.
func New() keyspace.IKeyspace {
	return &keyspaceImpl{
		data: xsync.NewMapOf[string, *entry](),
	}
}

// acquire returns the locked entry for key, creating it with the given kind
// if absent or expired. Returns a WRONGTYPE-style error if the key holds a
// different kind. The caller must unlock the entry.
func (s *keyspaceImpl) acquire(key string, kind entryKind) (*entry, *keyspace.Error) {
	e, _ := s.data.LoadOrCompute(key, func() *entry {
		return &entry{kind: kind}
	})

	e.mu.Lock()
	if e.expired() {
		e.reset(kind)
	}
	if e.kind != kind {
		held := e.kind
		e.mu.Unlock()
		return nil, keyspace.NewErrorf(keyspace.RetCInvalidOperation,
			"WRONGTYPE operation against a key holding a %s value", held)
	}
	return e, nil
}

// lookup returns the locked entry for key if it exists and is not expired.
// The caller must unlock the entry when the boolean is true.
func (s *keyspaceImpl) lookup(key string) (*entry, bool) {
	e, ok := s.data.Load(key)
	if !ok {
		return nil, false
	}
	e.mu.Lock()
	if e.expired() {
		e.mu.Unlock()
		s.data.Delete(key)
		return nil, false
	}
	return e, true
}

// --------------------------------------------------------------------------
// Interface Methods (docu see keyspace/interface.go)
// --------------------------------------------------------------------------

func (s *keyspaceImpl) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	e, _ := s.data.LoadOrCompute(key, func() *entry {
		return &entry{kind: kindString}
	})

	e.mu.Lock()
	defer e.mu.Unlock()

	// SET overwrites a key of any type
	e.reset(kindString)
	e.str = value
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	return nil
}

func (s *keyspaceImpl) Get(ctx context.Context, key string) (string, bool, error) {
	e, ok := s.lookup(key)
	if !ok {
		return "", false, nil
	}
	defer e.mu.Unlock()

	if e.kind != kindString {
		return "", false, keyspace.NewErrorf(keyspace.RetCInvalidOperation,
			"WRONGTYPE operation against a key holding a %s value", e.kind)
	}
	return e.str, true, nil
}

func (s *keyspaceImpl) Incr(ctx context.Context, key string) (int64, error) {
	e, kerr := s.acquire(key, kindString)
	if kerr != nil {
		return 0, kerr
	}
	defer e.mu.Unlock()

	value := int64(0)
	if e.str != "" {
		parsed, err := strconv.ParseInt(e.str, 10, 64)
		if err != nil {
			return 0, keyspace.NewError(keyspace.RetCInvalidOperation,
				"value is not an integer or out of range")
		}
		value = parsed
	}
	value++
	e.str = strconv.FormatInt(value, 10)
	return value, nil
}

func (s *keyspaceImpl) LPush(ctx context.Context, key, value string) error {
	e, kerr := s.acquire(key, kindList)
	if kerr != nil {
		return kerr
	}
	defer e.mu.Unlock()

	e.list = append([]string{value}, e.list...)
	if len(e.list) > keyspace.MaxListLen {
		e.list = e.list[:keyspace.MaxListLen]
	}
	return nil
}

func (s *keyspaceImpl) LRange(ctx context.Context, key string, start, stop int64) ([]string, error) {
	e, ok := s.lookup(key)
	if !ok {
		return []string{}, nil
	}
	defer e.mu.Unlock()

	if e.kind != kindList {
		return nil, keyspace.NewErrorf(keyspace.RetCInvalidOperation,
			"WRONGTYPE operation against a key holding a %s value", e.kind)
	}

	n := int64(len(e.list))
	if start < 0 {
		start += n
	}
	if stop < 0 {
		stop += n
	}
	if start < 0 {
		start = 0
	}
	if stop >= n {
		stop = n - 1
	}
	if start > stop || start >= n {
		return []string{}, nil
	}

	values := make([]string, stop-start+1)
	copy(values, e.list[start:stop+1])
	return values, nil
}

func (s *keyspaceImpl) SAdd(ctx context.Context, key, member string) (bool, error) {
	e, kerr := s.acquire(key, kindSet)
	if kerr != nil {
		return false, kerr
	}
	defer e.mu.Unlock()

	if e.set == nil {
		e.set = make(map[string]struct{})
	}
	if _, ok := e.set[member]; ok {
		return false, nil
	}
	e.set[member] = struct{}{}
	return true, nil
}

func (s *keyspaceImpl) SMembers(ctx context.Context, key string) ([]string, error) {
	e, ok := s.lookup(key)
	if !ok {
		return []string{}, nil
	}
	defer e.mu.Unlock()

	if e.kind != kindSet {
		return nil, keyspace.NewErrorf(keyspace.RetCInvalidOperation,
			"WRONGTYPE operation against a key holding a %s value", e.kind)
	}

	members := make([]string, 0, len(e.set))
	for member := range e.set {
		members = append(members, member)
	}
	return members, nil
}

func (s *keyspaceImpl) HSet(ctx context.Context, key, field, value string) (bool, error) {
	e, kerr := s.acquire(key, kindHash)
	if kerr != nil {
		return false, kerr
	}
	defer e.mu.Unlock()

	if e.hash == nil {
		e.hash = make(map[string]string)
	}
	_, existed := e.hash[field]
	e.hash[field] = value
	return !existed, nil
}

func (s *keyspaceImpl) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	e, ok := s.lookup(key)
	if !ok {
		return map[string]string{}, nil
	}
	defer e.mu.Unlock()

	if e.kind != kindHash {
		return nil, keyspace.NewErrorf(keyspace.RetCInvalidOperation,
			"WRONGTYPE operation against a key holding a %s value", e.kind)
	}

	fields := make(map[string]string, len(e.hash))
	for field, value := range e.hash {
		fields[field] = value
	}
	return fields, nil
}

func (s *keyspaceImpl) Exists(ctx context.Context, key string) (bool, error) {
	e, ok := s.lookup(key)
	if ok {
		e.mu.Unlock()
	}
	return ok, nil
}

func (s *keyspaceImpl) Delete(ctx context.Context, key string) error {
	s.data.Delete(key)
	return nil
}

func (s *keyspaceImpl) Ping(ctx context.Context) error {
	return nil
}

func (s *keyspaceImpl) Close() error {
	return nil
}
