package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"onboardbot/internal/flow"
)

const userColumns = "username, first_name, last_name, chat_id, state"

const documentColumns = "id, class, storage_ref, original_filename, stored_filename, transport_file_id, thumbnail_file_id, created_at"

// InsertUser creates a new user record. The caller owns the initial state.
func (s *Store) InsertUser(ctx context.Context, user *flow.UserRecord) error {
	if user == nil {
		return errors.New("user is nil")
	}
	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO users (username, first_name, last_name, chat_id, state, created_at, updated_at)
         VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Username,
		user.FirstName,
		user.LastName,
		user.ChatID,
		user.State,
		timestamp,
		timestamp,
	); err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// LoadUser fetches a user record with all documents, or nil when absent.
func (s *Store) LoadUser(ctx context.Context, username string) (*flow.UserRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE username = ?`, username)
	user, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user: %w", err)
	}

	docs, err := s.loadDocuments(ctx, username)
	if err != nil {
		return nil, err
	}
	user.Documents = docs
	return user, nil
}

// UpdateState persists a new flow state for the user.
func (s *Store) UpdateState(ctx context.Context, username string, state flow.FlowState) error {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE users SET state = ?, updated_at = ? WHERE username = ?`,
		state,
		time.Now().UTC().Format(time.RFC3339Nano),
		username,
	)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("update state: user %s not found", username)
	}
	return nil
}

// ScanUsersNeedingClassification returns users whose flow is neither new
// nor completed and who have at least one unclassified document. Returned
// records carry their full document sets.
func (s *Store) ScanUsersNeedingClassification(ctx context.Context) ([]*flow.UserRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+userColumns+` FROM users
         WHERE state NOT IN (?, ?)
           AND EXISTS (
               SELECT 1 FROM documents
               WHERE documents.username = users.username AND documents.class = ?
           )
         ORDER BY username`,
		flow.StateNew,
		flow.StateCompleted,
		flow.ClassUnclassified,
	)
	if err != nil {
		return nil, fmt.Errorf("scan users needing classification: %w", err)
	}
	defer rows.Close()

	var users []*flow.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, user := range users {
		docs, err := s.loadDocuments(ctx, user.Username)
		if err != nil {
			return nil, err
		}
		user.Documents = docs
	}
	return users, nil
}

// ListUsers returns every user record ordered by username, with documents.
func (s *Store) ListUsers(ctx context.Context) ([]*flow.UserRecord, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []*flow.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, user := range users {
		docs, err := s.loadDocuments(ctx, user.Username)
		if err != nil {
			return nil, err
		}
		user.Documents = docs
	}
	return users, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*flow.UserRecord, error) {
	var (
		user     flow.UserRecord
		rawState string
	)
	if err := row.Scan(&user.Username, &user.FirstName, &user.LastName, &user.ChatID, &rawState); err != nil {
		return nil, err
	}
	state, ok := flow.ParseState(rawState)
	if !ok {
		return nil, fmt.Errorf("user %s has unknown state %q", user.Username, rawState)
	}
	user.State = state
	return &user, nil
}
