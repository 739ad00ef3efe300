package loadgen

import (
	"fmt"
	"math/rand"
)

// Shared workload vocabulary: the REST handlers fall back to these
// generators when a request omits the key or value, so ad-hoc requests and
// generated load land in the same keyspaces.

const (
	keySpread     = 1000
	counterSpread = 100
	bucketSpread  = 50

	randomChars = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"
)

// RandomString returns a random alphanumeric string of the given length.
func RandomString(length int) string {
	result := make([]byte, length)
	for i := range result {
		result[i] = randomChars[rand.Intn(len(randomChars))]
	}
	return string(result)
}

// RandomKey returns a random string key (key:1 .. key:1000).
func RandomKey() string {
	return fmt.Sprintf("key:%d", rand.Intn(keySpread)+1)
}

// RandomCounterKey returns a random counter key (counter:1 .. counter:100).
func RandomCounterKey() string {
	return fmt.Sprintf("counter:%d", RandomInt(1, counterSpread))
}

// RandomListKey returns a random list key (list:1 .. list:50).
func RandomListKey() string {
	return fmt.Sprintf("list:%d", RandomInt(1, bucketSpread))
}

// RandomSetKey returns a random set key (set:1 .. set:50).
func RandomSetKey() string {
	return fmt.Sprintf("set:%d", RandomInt(1, bucketSpread))
}

// RandomHashKey returns a random hash key (hash:1 .. hash:50).
func RandomHashKey() string {
	return fmt.Sprintf("hash:%d", RandomInt(1, bucketSpread))
}

// RandomInt returns a random integer in [min, max].
func RandomInt(min, max int) int {
	return rand.Intn(max-min+1) + min
}
