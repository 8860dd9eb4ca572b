// Package settlement emits settlement authorizations for verified check-ins.
//
// Publication is at-least-once: the workflow commits the authorized session
// first and publishes afterwards, so consumers must deduplicate on
// session_id. A failed publication is retried through the workflow's
// RetrySettlement operation.
package settlement

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"nilgate/internal/checkin/models"
)

// MemoryLog keeps published events in process. Used when no broker is
// configured, and by tests.
type MemoryLog struct {
	mu     sync.Mutex
	events []models.SettlementEvent
	failer func(models.SettlementEvent) error
}

func NewMemoryLog() *MemoryLog {
	return &MemoryLog{}
}

// FailWith makes subsequent publications return the result of fn. A nil fn
// restores normal behaviour.
func (l *MemoryLog) FailWith(fn func(models.SettlementEvent) error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failer = fn
}

func (l *MemoryLog) PublishSettlement(_ context.Context, event models.SettlementEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failer != nil {
		if err := l.failer(event); err != nil {
			return err
		}
	}
	l.events = append(l.events, event)
	return nil
}

// Events returns a copy of everything published so far, oldest first.
func (l *MemoryLog) Events() []models.SettlementEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]models.SettlementEvent(nil), l.events...)
}

func encode(event models.SettlementEvent) ([]byte, error) {
	payload, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("encode settlement event: %w", err)
	}
	return payload, nil
}
