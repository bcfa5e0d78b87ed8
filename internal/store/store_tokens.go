package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"onboardbot/internal/callback"
	"onboardbot/internal/flow"
)

// SaveCallbackTokens persists a token batch. The whole batch is written in
// one transaction so a prompt never references half-stored tokens.
func (s *Store) SaveCallbackTokens(ctx context.Context, entries []callback.Entry) error {
	if len(entries) == 0 {
		return nil
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)

	return retryOnBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin token tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		for _, entry := range entries {
			if _, err := tx.ExecContext(
				ctx,
				`INSERT INTO callback_tokens (token, action, class, document_id, storage_ref, label, created_at)
                 VALUES (?, ?, ?, ?, ?, ?, ?)`,
				entry.Token,
				entry.Action,
				entry.Class,
				entry.DocumentID,
				entry.StorageRef,
				entry.Label,
				timestamp,
			); err != nil {
				return fmt.Errorf("insert callback token: %w", err)
			}
		}
		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit token batch: %w", err)
		}
		return nil
	})
}

// ResolveCallbackToken looks up a token, returning nil when unknown.
// Resolution does not consume the token; staleness is judged against the
// referenced document, not the token row.
func (s *Store) ResolveCallbackToken(ctx context.Context, token string) (*callback.Entry, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT token, action, class, document_id, storage_ref, label FROM callback_tokens WHERE token = ?`,
		token,
	)

	var (
		entry     callback.Entry
		rawAction string
		rawClass  string
	)
	err := row.Scan(&entry.Token, &rawAction, &rawClass, &entry.DocumentID, &entry.StorageRef, &entry.Label)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve callback token: %w", err)
	}

	switch callback.Action(rawAction) {
	case callback.ActionClassify, callback.ActionDelete:
		entry.Action = callback.Action(rawAction)
	default:
		return nil, fmt.Errorf("callback token %s has unknown action %q", token, rawAction)
	}
	if rawClass != "" {
		class, ok := flow.ParseClass(rawClass)
		if !ok {
			return nil, fmt.Errorf("callback token %s has unknown class %q", token, rawClass)
		}
		entry.Class = class
	}
	return &entry, nil
}
