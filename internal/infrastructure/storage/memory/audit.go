package memory

import (
	"context"

	"backoffice/internal/domain/audit"
)

var _ audit.Recorder = (*AuditLog)(nil)

// AuditLog keeps audit entries in memory. Entries are not rolled back with
// transactions, matching the PostgreSQL recorder which writes outside them.
type AuditLog struct{ s *Store }

func (s *Store) Audit() *AuditLog { return &AuditLog{s: s} }

func (a *AuditLog) Record(_ context.Context, entry audit.Entry) error {
	a.s.auditMu.Lock()
	defer a.s.auditMu.Unlock()
	a.s.audit = append(a.s.audit, entry)
	return nil
}

// Entries returns a copy of the recorded entries in order.
func (a *AuditLog) Entries() []audit.Entry {
	a.s.auditMu.Lock()
	defer a.s.auditMu.Unlock()
	return append([]audit.Entry(nil), a.s.audit...)
}
