// Package storage wires the persistence backends into one manager.
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bobmcallan/sentinel/internal/common"
	"github.com/bobmcallan/sentinel/internal/interfaces"
	"github.com/bobmcallan/sentinel/internal/storage/badger"
)

// Manager owns the BadgerHold store and the on-disk document area.
type Manager struct {
	store     *badger.Store
	dataPath  string
	companies interfaces.CompanyStore
	runs      interfaces.RunStore
	filings   interfaces.FilingStore
	headlines interfaces.HeadlineStore
	mood      interfaces.MoodStore
	prices    interfaces.PriceStore
	logger    *common.Logger
}

// NewManager opens the database under cfg.Storage.Path and prepares the
// document data directory.
func NewManager(cfg *common.Config, logger *common.Logger) (*Manager, error) {
	store, err := badger.NewStore(logger, cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	dataPath := cfg.Storage.DataPath
	if dataPath == "" {
		dataPath = filepath.Join(cfg.Storage.Path, "data")
	}
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		store.Close()
		return nil, fmt.Errorf("failed to create data directory %s: %w", dataPath, err)
	}

	return &Manager{
		store:     store,
		dataPath:  dataPath,
		companies: badger.NewCompanyStorage(store, logger),
		runs:      badger.NewRunStorage(store, logger),
		filings:   badger.NewFilingStorage(store, logger),
		headlines: badger.NewHeadlineStorage(store, logger),
		mood:      badger.NewMoodStorage(store, logger),
		prices:    badger.NewPriceStorage(store, logger),
		logger:    logger,
	}, nil
}

func (m *Manager) Companies() interfaces.CompanyStore  { return m.companies }
func (m *Manager) Runs() interfaces.RunStore           { return m.runs }
func (m *Manager) Filings() interfaces.FilingStore     { return m.filings }
func (m *Manager) Headlines() interfaces.HeadlineStore { return m.headlines }
func (m *Manager) Mood() interfaces.MoodStore          { return m.mood }
func (m *Manager) Prices() interfaces.PriceStore       { return m.prices }

// DataPath returns the directory for downloaded documents and text.
func (m *Manager) DataPath() string { return m.dataPath }

// Close closes the underlying database.
func (m *Manager) Close() error {
	m.logger.Debug().Msg("Closing storage")
	return m.store.Close()
}

var _ interfaces.StorageManager = (*Manager)(nil)
