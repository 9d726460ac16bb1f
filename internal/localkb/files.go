// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package localkb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdiddy/kbsync/pkg/types"
)

// PutFile stores content under a new id and returns its reference.
func (s *Store) PutFile(ctx context.Context, name string, content []byte) (types.FileRef, error) {
	return insertFile(ctx, s.db, name, content)
}

// AddFile copies the file at path into the store and appends it to
// knowledge base baseID as a file item. The file row and the item are
// written in one transaction, so an unknown base leaves no stored file.
func (s *Store) AddFile(ctx context.Context, baseID, path string) (types.Item, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.Item{}, fmt.Errorf("reading file: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Item{}, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	ref, err := insertFile(ctx, tx, filepath.Base(path), content)
	if err != nil {
		return types.Item{}, err
	}
	item := types.Item{Type: types.ItemFile, File: &ref}
	if err := appendItem(ctx, tx, baseID, &item); err != nil {
		return types.Item{}, err
	}
	if err := tx.Commit(); err != nil {
		return types.Item{}, fmt.Errorf("committing file %s: %w", ref.Name, err)
	}
	return item, nil
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insertFile(ctx context.Context, db execer, name string, content []byte) (types.FileRef, error) {
	ref := types.FileRef{ID: newID(), Name: name}
	_, err := db.ExecContext(ctx,
		`INSERT INTO files (id, name, content, created_at) VALUES (?, ?, ?, ?)`,
		ref.ID, ref.Name, content, nowMillis(),
	)
	if err != nil {
		return types.FileRef{}, fmt.Errorf("storing file %s: %w", name, err)
	}
	return ref, nil
}

// GetFile returns the content of file id, or ErrNotFound.
func (s *Store) GetFile(ctx context.Context, id string) ([]byte, error) {
	var content []byte
	err := s.db.QueryRowContext(ctx, `SELECT content FROM files WHERE id = ?`, id).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", id, err)
	}
	if content == nil {
		content = []byte{}
	}
	return content, nil
}
