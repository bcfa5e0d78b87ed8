package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"onboardbot/internal/flow"
)

// AppendDocument adds a document to an existing user's record. The user
// must already exist; a document for an absent user is an invariant
// violation surfaced as an error.
func (s *Store) AppendDocument(ctx context.Context, username string, doc *flow.DocumentRecord) error {
	if doc == nil {
		return errors.New("document is nil")
	}
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}
	if _, err := s.execWithRetry(
		ctx,
		`INSERT INTO documents (
            id, username, class, storage_ref, original_filename,
            stored_filename, transport_file_id, thumbnail_file_id, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		doc.ID,
		username,
		doc.Class,
		doc.StorageRef,
		doc.OriginalFilename,
		doc.StoredFilename,
		doc.TransportFileID,
		doc.ThumbnailFileID,
		doc.CreatedAt.Format(time.RFC3339Nano),
	); err != nil {
		return fmt.Errorf("append document for %s: %w", username, err)
	}
	return nil
}

// UpdateDocumentClass changes a document's classification. It reports
// whether a matching document existed.
func (s *Store) UpdateDocumentClass(ctx context.Context, username, documentID string, class flow.DocumentClass) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE documents SET class = ? WHERE username = ? AND id = ?`,
		class,
		username,
		documentID,
	)
	if err != nil {
		return false, fmt.Errorf("update document class: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// ClassifyDocument records a user's classification answer together with
// the document's new storage location. It reports whether a matching
// document existed.
func (s *Store) ClassifyDocument(ctx context.Context, username, documentID string, class flow.DocumentClass, storageRef string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`UPDATE documents SET class = ?, storage_ref = ? WHERE username = ? AND id = ?`,
		class,
		storageRef,
		username,
		documentID,
	)
	if err != nil {
		return false, fmt.Errorf("classify document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// DeleteDocument removes a document. It reports whether a matching
// document existed; deleting an absent document is not an error.
func (s *Store) DeleteDocument(ctx context.Context, username, documentID string) (bool, error) {
	res, err := s.execWithRetry(
		ctx,
		`DELETE FROM documents WHERE username = ? AND id = ?`,
		username,
		documentID,
	)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

func (s *Store) loadDocuments(ctx context.Context, username string) ([]flow.DocumentRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+documentColumns+` FROM documents WHERE username = ? ORDER BY created_at, id`,
		username,
	)
	if err != nil {
		return nil, fmt.Errorf("load documents for %s: %w", username, err)
	}
	defer rows.Close()

	var docs []flow.DocumentRecord
	for rows.Next() {
		var (
			doc      flow.DocumentRecord
			rawClass string
			rawTime  string
		)
		if err := rows.Scan(
			&doc.ID,
			&rawClass,
			&doc.StorageRef,
			&doc.OriginalFilename,
			&doc.StoredFilename,
			&doc.TransportFileID,
			&doc.ThumbnailFileID,
			&rawTime,
		); err != nil {
			return nil, fmt.Errorf("scan document: %w", err)
		}
		class, ok := flow.ParseClass(rawClass)
		if !ok {
			return nil, fmt.Errorf("document %s has unknown class %q", doc.ID, rawClass)
		}
		doc.Class = class
		if doc.CreatedAt, err = time.Parse(time.RFC3339Nano, rawTime); err != nil {
			return nil, fmt.Errorf("parse document timestamp: %w", err)
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}
