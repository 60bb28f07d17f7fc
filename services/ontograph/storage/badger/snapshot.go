// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package badger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/AleutianAI/ontograph/pkg/validation"
	"github.com/AleutianAI/ontograph/services/ontograph/graph"
	"github.com/AleutianAI/ontograph/services/ontograph/ontology"
	"github.com/AleutianAI/ontograph/services/ontograph/telemetry"
)

var (
	// ErrSnapshotNotFound indicates no snapshot is stored under the name.
	ErrSnapshotNotFound = errors.New("snapshot not found")

	// ErrInvalidName indicates a snapshot name outside [A-Za-z0-9._-].
	ErrInvalidName = errors.New("invalid snapshot name")
)

// Key layout. Metadata and payload live under separate prefixes so List
// never reads payloads.
const (
	metaPrefix = "snapshot/meta/"
	dataPrefix = "snapshot/data/"

	// formatVersion is bumped when the payload encoding changes.
	formatVersion = 1
)

var tracer = otel.Tracer("ontograph.storage.badger")

// SnapshotInfo describes a stored snapshot.
type SnapshotInfo struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Nodes     int       `json:"nodes"`
	Edges     int       `json:"edges"`
	Terms     int       `json:"terms"`
	Entities  int       `json:"entities"`
	Bytes     int       `json:"bytes"`
	Format    int       `json:"format"`
}

// snapshotPayload is the stored form of an ontology.
type snapshotPayload struct {
	Graph  *graph.Snapshot[string] `json:"graph"`
	Tables ontology.Tables         `json:"tables"`
}

// SnapshotStore saves and restores ontologies by name.
//
// Thread Safety: Safe for concurrent use. Saving an ontology reads it, so
// the ontology must not be mutated during Save.
type SnapshotStore struct {
	db     *DB
	logger *slog.Logger
	now    func() time.Time
}

// NewSnapshotStore creates a store over db. logger may be nil.
func NewSnapshotStore(db *DB, logger *slog.Logger) *SnapshotStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SnapshotStore{db: db, logger: logger, now: time.Now}
}

// Save stores o under name, replacing any snapshot with the same name.
//
// Outputs:
//
//	SnapshotInfo - Metadata of the stored snapshot, with a fresh ID.
//	error - ErrInvalidName, an encoding error, or a database error.
func (s *SnapshotStore) Save(ctx context.Context, name string, o *ontology.Ontology) (info SnapshotInfo, err error) {
	ctx, span := tracer.Start(ctx, "snapshot.Save", trace.WithAttributes(attribute.String("snapshot.name", name)))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.ValidateSnapshotName(name); err != nil {
		return SnapshotInfo{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	payload, err := json.Marshal(snapshotPayload{Graph: o.Graph().Snapshot(), Tables: o.Tables()})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("encode snapshot %s: %w", name, err)
	}

	stats := o.Graph().Stats()
	info = SnapshotInfo{
		ID:        uuid.New().String(),
		Name:      name,
		CreatedAt: s.now().UTC(),
		Nodes:     stats.NodeCount,
		Edges:     stats.EdgeCount,
		Terms:     stats.NodesByKind[graph.KindTerm],
		Entities:  stats.NodesByKind[graph.KindEntity],
		Bytes:     len(payload),
		Format:    formatVersion,
	}
	meta, err := json.Marshal(info)
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("encode snapshot metadata %s: %w", name, err)
	}

	err = s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if err := txn.Set([]byte(dataPrefix+name), payload); err != nil {
			return err
		}
		return txn.Set([]byte(metaPrefix+name), meta)
	})
	if err != nil {
		return SnapshotInfo{}, fmt.Errorf("store snapshot %s: %w", name, err)
	}

	span.SetAttributes(attribute.Int("snapshot.bytes", info.Bytes))
	s.logger.Info("snapshot saved",
		slog.String("name", name),
		slog.String("id", info.ID),
		slog.Int("nodes", info.Nodes),
		slog.Int("bytes", info.Bytes),
	)
	return info, nil
}

// Load restores the snapshot stored under name as a sealed ontology.
//
// Outputs:
//
//	*ontology.Ontology - The ontology in PhaseReady.
//	SnapshotInfo - The stored metadata.
//	error - ErrInvalidName, ErrSnapshotNotFound, a decoding error, or a
//	        database error.
func (s *SnapshotStore) Load(ctx context.Context, name string, opts ...ontology.Option) (o *ontology.Ontology, info SnapshotInfo, err error) {
	ctx, span := tracer.Start(ctx, "snapshot.Load", trace.WithAttributes(attribute.String("snapshot.name", name)))
	defer func() { telemetry.EndSpan(span, err) }()

	if err := validation.ValidateSnapshotName(name); err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("%w: %v", ErrInvalidName, err)
	}

	var payload snapshotPayload
	err = s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		if err := getJSON(txn, metaPrefix, name, &info); err != nil {
			return err
		}
		return getJSON(txn, dataPrefix, name, &payload)
	})
	if err != nil {
		return nil, SnapshotInfo{}, err
	}
	if info.Format != formatVersion {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot %s has format %d, want %d", name, info.Format, formatVersion)
	}
	if payload.Graph == nil {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot %s: %w", name, graph.ErrInvalidSnapshot)
	}

	g, err := graph.FromSnapshot(payload.Graph)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot %s: %w", name, err)
	}
	o, err = ontology.Restore(ctx, g, payload.Tables, opts...)
	if err != nil {
		return nil, SnapshotInfo{}, fmt.Errorf("snapshot %s: %w", name, err)
	}

	s.logger.Debug("snapshot loaded", slog.String("name", name), slog.String("id", info.ID))
	return o, info, nil
}

// List returns the metadata of every stored snapshot, ordered by name.
func (s *SnapshotStore) List(ctx context.Context) ([]SnapshotInfo, error) {
	var infos []SnapshotInfo
	err := s.db.WithReadTxn(ctx, func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var info SnapshotInfo
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &info)
			})
			if err != nil {
				return fmt.Errorf("decode %s: %w", it.Item().Key(), err)
			}
			infos = append(infos, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return infos, nil
}

// Delete removes the snapshot stored under name.
//
// Outputs:
//
//	error - ErrSnapshotNotFound if nothing is stored under name.
func (s *SnapshotStore) Delete(ctx context.Context, name string) error {
	err := s.db.WithTxn(ctx, func(txn *badger.Txn) error {
		if _, err := txn.Get([]byte(metaPrefix + name)); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
			}
			return err
		}
		if err := txn.Delete([]byte(metaPrefix + name)); err != nil {
			return err
		}
		return txn.Delete([]byte(dataPrefix + name))
	})
	if err != nil {
		return err
	}
	s.logger.Info("snapshot deleted", slog.String("name", name))
	return nil
}

func getJSON(txn *badger.Txn, prefix, name string, v any) error {
	key := prefix + name
	item, err := txn.Get([]byte(key))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	if err != nil {
		return err
	}
	return item.Value(func(val []byte) error {
		if err := json.Unmarshal(val, v); err != nil {
			return fmt.Errorf("decode %s: %w", key, err)
		}
		return nil
	})
}
