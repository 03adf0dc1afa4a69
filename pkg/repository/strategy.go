package repository

import (
	"fmt"
	"strings"
)

// Strategy selects which data sources a repository consults and in what
// order. It is fixed when the repository is constructed.
type Strategy int

const (
	// RemoteOnly queries the remote source and never touches the local one.
	RemoteOnly Strategy = iota

	// LocalOnly queries the local source and never touches the remote one.
	LocalOnly

	// RemoteWithLocalCache queries the remote source and mirrors successful
	// results into the local source.
	RemoteWithLocalCache

	// LocalWithRemoteFallback serves reads from the local source and falls
	// back to the remote source on a miss or a local failure.
	LocalWithRemoteFallback
)

var strategyNames = [...]string{
	RemoteOnly:              "remote-only",
	LocalOnly:               "local-only",
	RemoteWithLocalCache:    "remote-with-local-cache",
	LocalWithRemoteFallback: "local-with-remote-fallback",
}

// String returns the kebab-case name of the strategy.
func (s Strategy) String() string {
	if s.Valid() {
		return strategyNames[s]
	}
	return fmt.Sprintf("Strategy(%d)", int(s))
}

// Valid reports whether s is one of the defined strategies.
func (s Strategy) Valid() bool {
	return s >= RemoteOnly && s <= LocalWithRemoteFallback
}

// usesRemote reports whether the strategy ever calls the remote source.
func (s Strategy) usesRemote() bool {
	return s != LocalOnly
}

// usesLocal reports whether the strategy ever calls the local source.
func (s Strategy) usesLocal() bool {
	return s != RemoteOnly
}

// ParseStrategy parses a strategy name. Matching is case-insensitive and
// accepts underscores in place of dashes.
func ParseStrategy(s string) (Strategy, error) {
	norm := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	for i, name := range strategyNames {
		if name == norm {
			return Strategy(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidStrategy, s)
}

// MarshalText implements encoding.TextMarshaler.
func (s Strategy) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidStrategy, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *Strategy) UnmarshalText(text []byte) error {
	parsed, err := ParseStrategy(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
