package interfaces

import "context"

// IAuditSink records business events for traceability.
//
// Best-effort: use cases log sink failures and never fail the primary
// operation because of them.
type IAuditSink interface {
	Record(ctx context.Context, entity, entityID, action, actor string, meta map[string]any) error
}
