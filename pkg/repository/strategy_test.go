package repository

import (
	"errors"
	"testing"

	"github.com/pelletier/go-toml/v2"
)

func TestParseStrategy(t *testing.T) {
	tests := []struct {
		in      string
		want    Strategy
		wantErr bool
	}{
		{"remote-only", RemoteOnly, false},
		{"local-only", LocalOnly, false},
		{"remote-with-local-cache", RemoteWithLocalCache, false},
		{"LOCAL_WITH_REMOTE_FALLBACK", LocalWithRemoteFallback, false},
		{"  local-only ", LocalOnly, false},
		{"cache-first", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseStrategy(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStrategy) {
					t.Errorf("ParseStrategy(%q) error = %v, want ErrInvalidStrategy", tt.in, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStrategy(%q) error = %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseStrategy(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestStrategy_String(t *testing.T) {
	if got := RemoteWithLocalCache.String(); got != "remote-with-local-cache" {
		t.Errorf("String() = %s", got)
	}
	if got := Strategy(7).String(); got != "Strategy(7)" {
		t.Errorf("String() = %s", got)
	}
}

func TestStrategy_TextRoundTripThroughTOML(t *testing.T) {
	type file struct {
		Strategy Strategy `toml:"strategy"`
	}

	var f file
	if err := toml.Unmarshal([]byte(`strategy = "local-with-remote-fallback"`), &f); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if f.Strategy != LocalWithRemoteFallback {
		t.Errorf("Strategy = %v, want LocalWithRemoteFallback", f.Strategy)
	}

	if _, err := Strategy(9).MarshalText(); !errors.Is(err, ErrInvalidStrategy) {
		t.Errorf("MarshalText() error = %v, want ErrInvalidStrategy", err)
	}
}
