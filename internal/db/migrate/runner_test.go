package migrate

import (
	"errors"
	"strings"
	"testing"
)

func TestParseDirection(t *testing.T) {
	for _, s := range []string{"up", "down"} {
		d, err := ParseDirection(s)
		if err != nil || string(d) != s {
			t.Errorf("ParseDirection(%q) = %q, %v", s, d, err)
		}
	}
	for _, s := range []string{"", "UP", "Down", "sideways"} {
		if _, err := ParseDirection(s); err == nil {
			t.Errorf("ParseDirection(%q) should fail", s)
		}
	}
}

func TestRun_EmptyDSN(t *testing.T) {
	for _, dsn := range []string{"", "   "} {
		err := Run(dsn, Up)
		if err == nil || !strings.Contains(err.Error(), "DATABASE_URL is not set") {
			t.Errorf("Run(%q) error = %v", dsn, err)
		}
	}
	if _, _, err := Version(""); err == nil {
		t.Error("Version with empty DSN should fail")
	}
}

func TestRun_Unreachable(t *testing.T) {
	tests := []struct {
		name string
		dsn  string
	}{
		{"invalid format", "invalid-dsn"},
		{"malformed", "postgres://"},
		{"spaces", "postgres://localhost with spaces/test"},
		{"unknown host", "postgres://u:p@storefront-db.invalid:5432/test?connect_timeout=1"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := Run(tc.dsn, Up)
			if err == nil {
				t.Fatalf("Run(%q) should fail", tc.dsn)
			}
			if errors.Is(err, ErrNoChange) {
				t.Error("Run must not surface ErrNoChange")
			}
		})
	}
}

func TestRun_InvalidDirection(t *testing.T) {
	if err := Run("postgres://u:p@storefront-db.invalid:5432/test?connect_timeout=1", Direction("left")); err == nil {
		t.Fatal("Run with invalid direction should fail")
	}
}
