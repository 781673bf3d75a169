// Package audit records auth actions with the caller's IP. Writes are best-effort.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-auth/backend/internal/audit/domain"
	auditrepo "storefront-auth/backend/internal/audit/repository"
)

// writeTimeout bounds one audit insert; it runs detached from the request context.
const writeTimeout = 3 * time.Second

// IPExtractor returns the client IP from the request context.
type IPExtractor func(context.Context) string

// AuditLogger writes one audit event. LogEvent never fails the caller.
type AuditLogger interface {
	LogEvent(ctx context.Context, accountID, action string, metadata map[string]string)
}

// Logger implements AuditLogger using the audit repository and an optional IP extractor.
type Logger struct {
	repo        auditrepo.Repository
	ipExtractor IPExtractor
	logger      *zap.Logger
	now         func() time.Time
}

// NewLogger returns a Logger that persists to repo. ipExtractor may be nil; then IP is "unknown".
func NewLogger(repo auditrepo.Repository, ipExtractor IPExtractor, logger *zap.Logger) *Logger {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Logger{repo: repo, ipExtractor: ipExtractor, logger: logger, now: time.Now}
}

// LogEvent writes one entry. Errors are logged and not returned. The write survives
// cancellation of ctx so a client disconnect does not drop the record.
func (l *Logger) LogEvent(ctx context.Context, accountID, action string, metadata map[string]string) {
	if l == nil || l.repo == nil {
		return
	}
	ip := ""
	if l.ipExtractor != nil {
		ip = l.ipExtractor(ctx)
	}
	if ip == "" {
		ip = "unknown"
	}
	var meta string
	if len(metadata) > 0 {
		b, err := json.Marshal(metadata)
		if err == nil {
			meta = string(b)
		}
	}
	entry := &domain.AuditLog{
		ID:        uuid.NewString(),
		AccountID: accountID,
		Action:    action,
		IP:        ip,
		Metadata:  meta,
		CreatedAt: l.now().UTC(),
	}
	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), writeTimeout)
	defer cancel()
	if err := l.repo.Create(writeCtx, entry); err != nil {
		l.logger.Warn("audit: failed to log event", zap.String("action", action), zap.Error(err))
	}
}
