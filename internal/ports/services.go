package ports

import (
	"context"
	"time"

	"github.com/labtrack/labtrack/internal/domain"
)

// Clock returns the current time. Use cases never call time.Now directly.
type Clock func() time.Time

// EquipmentLocker serializes booking per equipment. The returned release
// function must be called exactly once.
type EquipmentLocker interface {
	Lock(ctx context.Context, equipmentID int64) (release func(), err error)
}

// PasswordHasher hashes and verifies user credentials
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(hash, password string) bool
}

// AuditRecorder appends audit entries. Implementations never fail the caller.
type AuditRecorder interface {
	Record(ctx context.Context, actorID int64, action, detail string)
}

// AuditPublisher receives every entry once it is stored
type AuditPublisher interface {
	Publish(entry *domain.AccessLogEntry)
}
