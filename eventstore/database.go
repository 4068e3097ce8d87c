// Copyright 2025 The Go A2A Authors
// SPDX-License-Identifier: Apache-2.0

package eventstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/go-a2a/ledger"
)

// EventModel is the GORM persistence model for one stored event.
type EventModel struct {
	ID            uint   `gorm:"primaryKey;autoIncrement"`
	EventID       string `gorm:"size:36;uniqueIndex"`
	AggregateType string `gorm:"size:64;index"`
	AggregateID   string `gorm:"size:128;uniqueIndex:idx_stream_version,priority:1"`
	Version       int64  `gorm:"uniqueIndex:idx_stream_version,priority:2"`
	EventType     string `gorm:"size:128"`
	OccurredAt    time.Time
	Payload       []byte
}

// TableName returns the default table name for EventModel.
func (EventModel) TableName() string { return "ledger_events" }

// SnapshotModel is the GORM persistence model for one aggregate snapshot.
type SnapshotModel struct {
	AggregateID string `gorm:"primaryKey;size:128"`
	Version     int64
	State       []byte
	UpdatedAt   time.Time
}

// TableName returns the default table name for SnapshotModel.
func (SnapshotModel) TableName() string { return "ledger_snapshots" }

// DatabaseStore is a database implementation of ledger.EventStore using GORM.
// The unique (aggregate_id, version) index makes concurrent appends to the
// same stream fail even if two writers pass the version pre-check, so the
// optimistic concurrency guarantee holds without table locks.
type DatabaseStore struct {
	db *gorm.DB
}

var _ ledger.EventStore = (*DatabaseStore)(nil)

// DatabaseStoreConfig holds configuration for DatabaseStore.
type DatabaseStoreConfig struct {
	DB          *gorm.DB
	CreateTable bool // Whether to create the tables if they don't exist
}

// NewDatabaseStore creates a new DatabaseStore.
func NewDatabaseStore(config DatabaseStoreConfig) (*DatabaseStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if config.CreateTable {
		if err := config.DB.AutoMigrate(&EventModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate event table: %w", err)
		}
	}
	return &DatabaseStore{db: config.DB}, nil
}

// Append atomically appends events to the aggregate's stream inside a
// database transaction.
func (s *DatabaseStore) Append(ctx context.Context, aggregateID string, expectedVersion int64, events []ledger.Envelope) error {
	if aggregateID == "" {
		return fmt.Errorf("aggregate ID cannot be empty")
	}
	if len(events) == 0 {
		return fmt.Errorf("events cannot be empty")
	}
	for _, event := range events {
		if err := event.Validate(); err != nil {
			return err
		}
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current int64
		err := tx.Model(&EventModel{}).
			Where("aggregate_id = ?", aggregateID).
			Select("COALESCE(MAX(version), 0)").
			Scan(&current).Error
		if err != nil {
			return fmt.Errorf("failed to read stream version for %s: %w", aggregateID, err)
		}
		if current != expectedVersion {
			return ledger.VersionConflictError{
				AggregateID: aggregateID,
				Expected:    expectedVersion,
				Actual:      current,
			}
		}

		models := make([]EventModel, len(events))
		for i, event := range events {
			models[i] = EventModel{
				EventID:       event.EventID.String(),
				AggregateType: event.AggregateType,
				AggregateID:   event.AggregateID,
				Version:       event.Version,
				EventType:     event.EventType,
				OccurredAt:    event.OccurredAt,
				Payload:       event.Payload,
			}
		}
		if err := tx.Create(&models).Error; err != nil {
			return fmt.Errorf("failed to append events for %s: %w", aggregateID, err)
		}
		return nil
	})
}

// ReadStream returns the aggregate's events with version > fromVersion in
// version order.
func (s *DatabaseStore) ReadStream(ctx context.Context, aggregateID string, fromVersion int64) ([]ledger.Envelope, error) {
	if aggregateID == "" {
		return nil, fmt.Errorf("aggregate ID cannot be empty")
	}

	var models []EventModel
	err := s.db.WithContext(ctx).
		Where("aggregate_id = ? AND version > ?", aggregateID, fromVersion).
		Order("version").
		Find(&models).Error
	if err != nil {
		return nil, fmt.Errorf("failed to read stream for %s: %w", aggregateID, err)
	}

	envelopes := make([]ledger.Envelope, len(models))
	for i, model := range models {
		eventID, err := uuid.Parse(model.EventID)
		if err != nil {
			return nil, fmt.Errorf("stored event %d has malformed event ID: %w", model.ID, err)
		}
		envelopes[i] = ledger.Envelope{
			EventID:       eventID,
			AggregateType: model.AggregateType,
			AggregateID:   model.AggregateID,
			Version:       model.Version,
			EventType:     model.EventType,
			OccurredAt:    model.OccurredAt,
			Payload:       model.Payload,
		}
	}
	return envelopes, nil
}

// DatabaseSnapshotStore is a database implementation of ledger.SnapshotStore
// using GORM.
type DatabaseSnapshotStore struct {
	db *gorm.DB
}

var _ ledger.SnapshotStore = (*DatabaseSnapshotStore)(nil)

// NewDatabaseSnapshotStore creates a new DatabaseSnapshotStore.
func NewDatabaseSnapshotStore(config DatabaseStoreConfig) (*DatabaseSnapshotStore, error) {
	if config.DB == nil {
		return nil, fmt.Errorf("database connection cannot be nil")
	}
	if config.CreateTable {
		if err := config.DB.AutoMigrate(&SnapshotModel{}); err != nil {
			return nil, fmt.Errorf("failed to migrate snapshot table: %w", err)
		}
	}
	return &DatabaseSnapshotStore{db: config.DB}, nil
}

// LoadSnapshot returns the latest snapshot for the aggregate, or
// ledger.ErrNoSnapshot when none exists.
func (s *DatabaseSnapshotStore) LoadSnapshot(ctx context.Context, aggregateID string) (ledger.Snapshot, error) {
	if aggregateID == "" {
		return ledger.Snapshot{}, fmt.Errorf("aggregate ID cannot be empty")
	}

	var model SnapshotModel
	err := s.db.WithContext(ctx).Where("aggregate_id = ?", aggregateID).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ledger.Snapshot{}, ledger.ErrNoSnapshot
		}
		return ledger.Snapshot{}, fmt.Errorf("failed to load snapshot for %s: %w", aggregateID, err)
	}
	return ledger.Snapshot{
		AggregateID: model.AggregateID,
		Version:     model.Version,
		State:       model.State,
	}, nil
}

// SaveSnapshot stores the snapshot, replacing any earlier one.
func (s *DatabaseSnapshotStore) SaveSnapshot(ctx context.Context, snapshot ledger.Snapshot) error {
	if snapshot.AggregateID == "" {
		return fmt.Errorf("snapshot aggregate ID cannot be empty")
	}

	model := SnapshotModel{
		AggregateID: snapshot.AggregateID,
		Version:     snapshot.Version,
		State:       snapshot.State,
	}
	if err := s.db.WithContext(ctx).Save(&model).Error; err != nil {
		return fmt.Errorf("failed to save snapshot for %s: %w", snapshot.AggregateID, err)
	}
	return nil
}
