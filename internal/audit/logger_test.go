package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"storefront-auth/backend/internal/audit/domain"
)

// mockAuditRepo implements the audit repository for tests.
type mockAuditRepo struct {
	entries   []*domain.AuditLog
	createErr error
	ctxErr    error
}

func (m *mockAuditRepo) Create(ctx context.Context, entry *domain.AuditLog) error {
	m.ctxErr = ctx.Err()
	if m.createErr != nil {
		return m.createErr
	}
	m.entries = append(m.entries, entry)
	return nil
}

func (m *mockAuditRepo) ListByAccount(ctx context.Context, accountID string, limit int) ([]*domain.AuditLog, error) {
	return nil, nil
}

func TestLogger_LogEvent(t *testing.T) {
	repo := &mockAuditRepo{}
	logger := NewLogger(repo, func(context.Context) string { return "192.168.1.1" }, nil)

	logger.LogEvent(context.Background(), "acc-1", domain.ActionSignIn, map[string]string{"email_domain": "x.com"})

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	e := repo.entries[0]
	if e.AccountID != "acc-1" {
		t.Errorf("AccountID = %q, want %q", e.AccountID, "acc-1")
	}
	if e.Action != domain.ActionSignIn {
		t.Errorf("Action = %q, want %q", e.Action, domain.ActionSignIn)
	}
	if e.IP != "192.168.1.1" {
		t.Errorf("IP = %q, want %q", e.IP, "192.168.1.1")
	}
	if e.ID == "" || e.CreatedAt.IsZero() {
		t.Error("ID and CreatedAt must be set")
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(e.Metadata), &meta); err != nil || meta["email_domain"] != "x.com" {
		t.Errorf("Metadata = %q", e.Metadata)
	}
}

func TestLogger_NoIPExtractor(t *testing.T) {
	repo := &mockAuditRepo{}
	NewLogger(repo, nil, nil).LogEvent(context.Background(), "", domain.ActionSignInFailed, nil)

	if len(repo.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(repo.entries))
	}
	if repo.entries[0].IP != "unknown" {
		t.Errorf("IP = %q, want unknown", repo.entries[0].IP)
	}
	if repo.entries[0].Metadata != "" {
		t.Errorf("Metadata = %q, want empty", repo.entries[0].Metadata)
	}
}

func TestLogger_RepoErrorIsLogged(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	repo := &mockAuditRepo{createErr: errors.New("db down")}
	NewLogger(repo, nil, zap.New(core)).LogEvent(context.Background(), "acc-1", domain.ActionSignUp, nil)

	if logs.Len() != 1 {
		t.Fatalf("logged %d entries, want 1", logs.Len())
	}
}

func TestLogger_SurvivesCanceledRequest(t *testing.T) {
	repo := &mockAuditRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	NewLogger(repo, nil, nil).LogEvent(ctx, "acc-1", domain.ActionPasswordUpdate, nil)
	if repo.ctxErr != nil {
		t.Errorf("repo saw ctx error %v, want nil", repo.ctxErr)
	}
	if len(repo.entries) != 1 {
		t.Errorf("expected 1 entry, got %d", len(repo.entries))
	}
}

func TestLogger_NilSafe(t *testing.T) {
	var l *Logger
	l.LogEvent(context.Background(), "acc-1", domain.ActionSignIn, nil)
	NewLogger(nil, nil, nil).LogEvent(context.Background(), "acc-1", domain.ActionSignIn, nil)
}
