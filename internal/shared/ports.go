package shared

import "context"

// AuditRecorder is the port used by ledger services to persist audit trails.
type AuditRecorder interface {
	Record(ctx context.Context, log AuditLog) error
}

// Invalidator drops cached read projections after a mutation.
type Invalidator interface {
	Bump(ctx context.Context) error
}
