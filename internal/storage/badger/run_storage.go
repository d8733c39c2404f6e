package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/timshannon/badgerhold/v4"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/models"
)

type runStorage struct {
	store  *Store
	logger *common.Logger
}

// NewRunStorage creates a new RunStore backed by BadgerHold.
func NewRunStorage(store *Store, logger *common.Logger) interfaces.RunStore {
	return &runStorage{store: store, logger: logger}
}

func (s *runStorage) Create(_ context.Context, symbol string) (*models.Run, error) {
	run := &models.Run{
		ID:        common.NewID(),
		Symbol:    symbol,
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
	}
	if err := s.store.db.Insert(run.ID, run); err != nil {
		return nil, fmt.Errorf("failed to create run for %s: %w", symbol, err)
	}
	s.logger.Debug().Str("run_id", run.ID).Str("symbol", symbol).Msg("Run created")
	return run, nil
}

// Finish moves a run to a terminal status. A run already finished is
// left untouched: terminal states are immutable.
func (s *runStorage) Finish(_ context.Context, id string, status models.RunStatus) error {
	var run models.Run
	if err := s.store.db.Get(id, &run); err != nil {
		return fmt.Errorf("failed to get run %s: %w", id, err)
	}
	if run.Finished() {
		return fmt.Errorf("run %s already finished with status %s", id, run.Status)
	}

	now := time.Now()
	run.Status = status
	run.FinishedAt = &now
	if err := s.store.db.Update(id, &run); err != nil {
		return fmt.Errorf("failed to finish run %s: %w", id, err)
	}
	s.logger.Debug().Str("run_id", id).Str("status", string(status)).Msg("Run finished")
	return nil
}

func (s *runStorage) AppendLog(_ context.Context, id, level, message string) error {
	var run models.Run
	if err := s.store.db.Get(id, &run); err != nil {
		return fmt.Errorf("failed to get run %s: %w", id, err)
	}
	run.Logs = append(run.Logs, models.RunLogEntry{
		Level:   level,
		Message: message,
		At:      time.Now(),
	})
	if err := s.store.db.Update(id, &run); err != nil {
		return fmt.Errorf("failed to append log to run %s: %w", id, err)
	}
	return nil
}

func (s *runStorage) Get(_ context.Context, id string) (*models.Run, error) {
	var run models.Run
	err := s.store.db.Get(id, &run)
	if err == badgerhold.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run %s: %w", id, err)
	}
	return &run, nil
}
