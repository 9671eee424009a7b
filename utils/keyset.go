package utils

import (
	"strconv"
	"strings"
)

// KeySet is a set of string keys, used to spot rows already seen.
type KeySet struct {
	seen map[string]struct{}
}

// NewKeySet creates an empty KeySet.
func NewKeySet() *KeySet {
	return &KeySet{seen: make(map[string]struct{})}
}

// Add returns true if the key was newly added, false if already present.
func (s *KeySet) Add(key string) bool {
	if _, exists := s.seen[key]; exists {
		return false
	}
	s.seen[key] = struct{}{}
	return true
}

// RowKey encodes a row of cells into a single key. Each cell is length-prefixed
// so that ["a,b", "c"] and ["a", "b,c"] never collide.
func RowKey(cells []string) string {
	var b strings.Builder
	for _, c := range cells {
		b.WriteString(strconv.Itoa(len(c)))
		b.WriteByte(':')
		b.WriteString(c)
	}
	return b.String()
}
