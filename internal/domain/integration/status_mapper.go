package integration

import "github.com/storesync/backend/internal/domain/order"

// StatusMapper translates between the local order status vocabulary and the
// CRM's status vocabulary. The table is fixed at construction; a missing
// mapping is a silent skip for callers, never an error.
type StatusMapper struct {
	toExternal map[order.Status]string
	toLocal    map[string]order.Status
}

// DefaultStatusMap returns the standard local-to-external status table
func DefaultStatusMap() map[order.Status]string {
	return map[order.Status]string{
		order.StatusPending:    "new",
		order.StatusProcessing: "in_progress",
		order.StatusCompleted:  "completed",
		order.StatusFailed:     "failed",
		order.StatusCancelled:  "cancelled",
		order.StatusRefunded:   "refunded",
	}
}

// NewStatusMapper builds a mapper from a local-to-external table.
// The reverse direction is derived from the same table.
func NewStatusMapper(table map[order.Status]string) *StatusMapper {
	m := &StatusMapper{
		toExternal: make(map[order.Status]string, len(table)),
		toLocal:    make(map[string]order.Status, len(table)),
	}
	for local, external := range table {
		m.toExternal[local] = external
		m.toLocal[external] = local
	}
	return m
}

// NewDefaultStatusMapper builds a mapper with the standard table
func NewDefaultStatusMapper() *StatusMapper {
	return NewStatusMapper(DefaultStatusMap())
}

// ToExternal maps a local status to the CRM vocabulary
func (m *StatusMapper) ToExternal(local order.Status) (string, bool) {
	external, ok := m.toExternal[local]
	return external, ok
}

// ToLocal maps a CRM status to the local vocabulary
func (m *StatusMapper) ToLocal(external string) (order.Status, bool) {
	local, ok := m.toLocal[external]
	return local, ok
}
