package strategy

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownStrategy is returned for names outside the Kind enumeration.
var ErrUnknownStrategy = errors.New("unknown strategy")

// Kind enumerates the dispatch strategies.
type Kind int

const (
	ThreadsRecreate Kind = iota
	ThreadsReuse
	ThreadsMap
	AsyncFor
	AsyncMap
)

var kindNames = [...]string{
	ThreadsRecreate: "threads_recreate",
	ThreadsReuse:    "threads_reuse",
	ThreadsMap:      "threads_map",
	AsyncFor:        "async_for",
	AsyncMap:        "async_map",
}

// String returns the canonical strategy name.
func (k Kind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(k))
	}

	return kindNames[k]
}

// Kinds returns every strategy in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, len(kindNames))
	for i := range kinds {
		kinds[i] = Kind(i)
	}

	return kinds
}

// Normalize lowercases name and replaces hyphens with underscores.
func Normalize(name string) string {
	return strings.ReplaceAll(strings.ToLower(name), "-", "_")
}

// ParseKind maps a user-supplied name to its Kind.
func ParseKind(name string) (Kind, error) {
	normalized := Normalize(name)

	for i, n := range kindNames {
		if n == normalized {
			return Kind(i), nil
		}
	}

	return 0, fmt.Errorf("%w %q", ErrUnknownStrategy, name)
}
