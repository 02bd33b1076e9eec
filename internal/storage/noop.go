package storage

import (
	"time"

	"github.com/dialview/icws-monitor/internal/types"
)

// Store defines the persistence interface
type Store interface {
	UpsertInteraction(i types.Interaction) error
	UpsertAgent(a types.Agent) error
	UpsertLedgerEntry(e types.PushLedgerEntry) error
	DeleteInteractionsBefore(cutoff time.Time) (int, error)
	DeleteAgentsBefore(cutoff time.Time) (int, error)
	DeleteLedgerBefore(cutoff time.Time) (int, error)
}

// NoopStore is a no-op implementation when DynamoDB is disabled
type NoopStore struct{}

func NewNoopStore() *NoopStore { return &NoopStore{} }

func (s *NoopStore) UpsertInteraction(_ types.Interaction) error       { return nil }
func (s *NoopStore) UpsertAgent(_ types.Agent) error                   { return nil }
func (s *NoopStore) UpsertLedgerEntry(_ types.PushLedgerEntry) error   { return nil }
func (s *NoopStore) DeleteInteractionsBefore(_ time.Time) (int, error) { return 0, nil }
func (s *NoopStore) DeleteAgentsBefore(_ time.Time) (int, error)       { return 0, nil }
func (s *NoopStore) DeleteLedgerBefore(_ time.Time) (int, error)       { return 0, nil }
