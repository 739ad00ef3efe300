package keyspace

import (
	"context"
	"fmt"
	"time"
)

// --------------------------------------------------------------------------
// Interface Definition
// --------------------------------------------------------------------------

// IKeyspace is the generic interface for interacting with a Redis-shaped
// keyspace. Every method maps to exactly one server command; no caching,
// batching or retry logic is layered on top. Read operations return the
// requested data plus a *Error (nil on success), write operations return
// only a *Error.
//
// Implementations that replicate to other nodes may additionally enforce a
// WritePolicy: a write then only succeeds once enough replicas have
// acknowledged it.
type IKeyspace interface {
	// Set inserts or updates a string key. A zero ttl means no expiration.
	Set(ctx context.Context, key, value string, ttl time.Duration) (err error)
	// Get returns the value for a key. The boolean return value indicates
	// whether a value for the key was found; a miss is not an error.
	Get(ctx context.Context, key string) (value string, loaded bool, err error)
	// Incr increments the integer value stored at key by one, creating the
	// key with value 1 if it does not exist.
	Incr(ctx context.Context, key string) (value int64, err error)
	// LPush prepends a value to the list stored at key. The list is trimmed
	// to the MaxListLen most recent entries.
	LPush(ctx context.Context, key, value string) (err error)
	// LRange returns the list elements between start and stop (inclusive,
	// negative indices count from the tail as in Redis).
	LRange(ctx context.Context, key string, start, stop int64) (values []string, err error)
	// SAdd adds a member to the set stored at key. The boolean return value
	// indicates whether the member was newly added.
	SAdd(ctx context.Context, key, member string) (added bool, err error)
	// SMembers returns all members of the set stored at key.
	SMembers(ctx context.Context, key string) (members []string, err error)
	// HSet sets a field of the hash stored at key. The boolean return value
	// indicates whether the field was newly created.
	HSet(ctx context.Context, key, field, value string) (created bool, err error)
	// HGetAll returns all field-value pairs of the hash stored at key.
	HGetAll(ctx context.Context, key string) (fields map[string]string, err error)
	// Exists returns whether a key exists in the keyspace.
	Exists(ctx context.Context, key string) (loaded bool, err error)
	// Delete removes a key of any type. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) (err error)
	// Ping checks connectivity to the backing store.
	Ping(ctx context.Context) (err error)
	// Close releases all connections held by the keyspace.
	Close() error
}

// MaxListLen is the number of entries a list is trimmed to after LPush.
const MaxListLen = 100

// --------------------------------------------------------------------------
// Write Policy
// --------------------------------------------------------------------------

// WritePolicy controls how many replicas must acknowledge a write before it
// is reported as successful. The zero value means asynchronous writes: the
// primary's reply alone completes the operation.
//
// Enforcement uses the server's replica-acknowledgment primitive (WAIT);
// the keyspace never tracks replication offsets itself. Note that an
// under-acknowledged write may still have been applied on the primary --
// WAIT reports replication progress, it does not roll back.
type WritePolicy struct {
	// MinReplicas is the number of replicas that must acknowledge each write.
	MinReplicas int
	// WaitTimeout bounds how long a write blocks on acknowledgments.
	WaitTimeout time.Duration
}

// Synchronous reports whether the policy requires replica acknowledgments.
func (p WritePolicy) Synchronous() bool {
	return p.MinReplicas > 0
}

// --------------------------------------------------------------------------
// Custom Error Type
// --------------------------------------------------------------------------

// Error is a custom error type that wraps a return code (of type RetCode)
// and an error message.
type Error struct {
	Code RetCode // The return code
	Msg  string  // The error message.
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("KeyspaceError (code %s): %s", e.Code.String(), e.Msg)
}

// NewError creates a new keyspace Error with the given code and message.
func NewError(code RetCode, msg string) *Error {
	return &Error{
		Code: code,
		Msg:  msg,
	}
}

// NewErrorf creates a new keyspace Error with a formatted message.
func NewErrorf(code RetCode, format string, args ...interface{}) *Error {
	return NewError(code, fmt.Sprintf(format, args...))
}

// --------------------------------------------------------------------------
// Return Codes
// --------------------------------------------------------------------------

type RetCode uint64

const (
	RetCSuccess          RetCode = iota // 0: Command executed successfully.
	RetCInternalError                   // 1: Command failed due to an internal or connection error.
	RetCInvalidOperation                // 2: Operation against a key holding the wrong kind of value.
	RetCInsufficientAcks                // 3: Write was not acknowledged by enough replicas in time.
)

// String returns the name of the return code.
func (c RetCode) String() string {
	switch c {
	case RetCSuccess:
		return "Success"
	case RetCInternalError:
		return "InternalError"
	case RetCInvalidOperation:
		return "InvalidOperation"
	case RetCInsufficientAcks:
		return "InsufficientAcks"
	default:
		return "Unknown"
	}
}

// IsInsufficientAcks reports whether err is a keyspace error carrying the
// RetCInsufficientAcks code.
func IsInsufficientAcks(err error) bool {
	if e, ok := err.(*Error); ok {
		return e.Code == RetCInsufficientAcks
	}
	return false
}
