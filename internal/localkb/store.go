// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package localkb persists local knowledge bases, their ordered items, and
// the content of file items in a SQLite database. Store.GetFile is the file
// lookup the cloud client uses to resolve file items before upload.
package localkb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/pdiddy/kbsync/pkg/types"
)

// ErrNotFound is returned when a knowledge base or file does not exist.
var ErrNotFound = errors.New("not found")

// Store manages the local knowledge base SQLite database.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the database at cfg.DBPath and creates the
// schema if it does not exist.
func NewStore(cfg types.LocalConfig) (*Store, error) {
	if cfg.DBPath == "" {
		return nil, fmt.Errorf("no database path configured")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &Store{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

// Close releases the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS knowledge_bases (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			description TEXT,
			model_id TEXT,
			model_name TEXT,
			dimensions INTEGER
		)`,
		`CREATE TABLE IF NOT EXISTS items (
			rowid INTEGER PRIMARY KEY AUTOINCREMENT,
			id TEXT NOT NULL,
			base_id TEXT NOT NULL REFERENCES knowledge_bases(id) ON DELETE CASCADE,
			position INTEGER NOT NULL,
			type TEXT NOT NULL,
			content TEXT,
			file_id TEXT,
			file_name TEXT,
			created_at INTEGER,
			updated_at INTEGER,
			UNIQUE(base_id, id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_items_base ON items(base_id, position)`,
		`CREATE TABLE IF NOT EXISTS files (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			content BLOB,
			created_at INTEGER
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

func newID() string {
	return ulid.Make().String()
}

func nowMillis() int64 {
	return time.Now().UnixMilli()
}

// PutBase inserts or replaces base and all of its items, preserving item
// order. Missing ids are generated.
func (s *Store) PutBase(ctx context.Context, base *types.KnowledgeBase) error {
	if base.ID == "" {
		base.ID = newID()
	}
	if base.Name == "" {
		return fmt.Errorf("knowledge base %s has no name", base.ID)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO knowledge_bases (id, name, description, model_id, model_name, dimensions)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, description=excluded.description,
			model_id=excluded.model_id, model_name=excluded.model_name,
			dimensions=excluded.dimensions`,
		base.ID, base.Name, base.Description, base.Model.ID, base.Model.Name, base.Dimensions,
	)
	if err != nil {
		return fmt.Errorf("upserting knowledge base: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM items WHERE base_id = ?`, base.ID); err != nil {
		return fmt.Errorf("deleting old items: %w", err)
	}

	for i := range base.Items {
		if err := insertItem(ctx, tx, base.ID, i, &base.Items[i]); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// AddItem appends item to knowledge base baseID. Missing ids and timestamps
// are filled in on item.
func (s *Store) AddItem(ctx context.Context, baseID string, item *types.Item) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if err := appendItem(ctx, tx, baseID, item); err != nil {
		return err
	}
	return tx.Commit()
}

// appendItem inserts item after the last item of baseID within tx.
func appendItem(ctx context.Context, tx *sql.Tx, baseID string, item *types.Item) error {
	var exists int
	if err := tx.QueryRowContext(ctx,
		`SELECT count(*) FROM knowledge_bases WHERE id = ?`, baseID,
	).Scan(&exists); err != nil {
		return fmt.Errorf("checking knowledge base: %w", err)
	}
	if exists == 0 {
		return fmt.Errorf("knowledge base %s: %w", baseID, ErrNotFound)
	}

	var next int
	if err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position) + 1, 0) FROM items WHERE base_id = ?`, baseID,
	).Scan(&next); err != nil {
		return fmt.Errorf("reading item position: %w", err)
	}
	return insertItem(ctx, tx, baseID, next, item)
}

func insertItem(ctx context.Context, tx *sql.Tx, baseID string, position int, item *types.Item) error {
	if !item.Type.Valid() {
		return fmt.Errorf("item %s: unknown type %q", item.ID, item.Type)
	}
	if item.Type == types.ItemFile && item.File == nil {
		return fmt.Errorf("item %s: file item has no file reference", item.ID)
	}
	if item.ID == "" {
		item.ID = newID()
	}
	if item.CreatedAt == 0 {
		item.CreatedAt = nowMillis()
	}
	if item.UpdatedAt == 0 {
		item.UpdatedAt = item.CreatedAt
	}

	var fileID, fileName sql.NullString
	if item.File != nil {
		fileID = sql.NullString{String: item.File.ID, Valid: true}
		fileName = sql.NullString{String: item.File.Name, Valid: true}
	}

	_, err := tx.ExecContext(ctx,
		`INSERT INTO items (id, base_id, position, type, content, file_id, file_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID, baseID, position, string(item.Type), item.Content,
		fileID, fileName, item.CreatedAt, item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("inserting item %s: %w", item.ID, err)
	}
	return nil
}

// GetBase returns knowledge base id with its items in order.
func (s *Store) GetBase(ctx context.Context, id string) (*types.KnowledgeBase, error) {
	var (
		base      types.KnowledgeBase
		desc      sql.NullString
		modelID   sql.NullString
		modelName sql.NullString
		dims      sql.NullInt64
	)
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, description, model_id, model_name, dimensions
		 FROM knowledge_bases WHERE id = ?`, id,
	).Scan(&base.ID, &base.Name, &desc, &modelID, &modelName, &dims)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("knowledge base %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("reading knowledge base: %w", err)
	}
	base.Description = desc.String
	base.Model = types.ModelRef{ID: modelID.String, Name: modelName.String}
	base.Dimensions = int(dims.Int64)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, type, content, file_id, file_name, created_at, updated_at
		 FROM items WHERE base_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying items: %w", err)
	}
	defer rows.Close()

	base.Items = []types.Item{}
	for rows.Next() {
		var (
			item             types.Item
			itemType         string
			content          sql.NullString
			fileID, fileName sql.NullString
		)
		if err := rows.Scan(&item.ID, &itemType, &content, &fileID, &fileName,
			&item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning item: %w", err)
		}
		item.Type = types.ItemType(itemType)
		item.Content = content.String
		if fileID.Valid {
			item.File = &types.FileRef{ID: fileID.String, Name: fileName.String}
		}
		base.Items = append(base.Items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating items: %w", err)
	}
	return &base, nil
}

// BaseSummary is a knowledge base row with its item count.
type BaseSummary struct {
	ID         string `json:"id" yaml:"id"`
	Name       string `json:"name" yaml:"name"`
	Model      string `json:"model" yaml:"model"`
	Dimensions int    `json:"dimensions" yaml:"dimensions"`
	Items      int    `json:"items" yaml:"items"`
}

// ListBases returns all knowledge bases sorted by name.
func (s *Store) ListBases(ctx context.Context) ([]BaseSummary, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT b.id, b.name, COALESCE(b.model_id, ''), COALESCE(b.dimensions, 0), count(i.rowid)
		 FROM knowledge_bases b
		 LEFT JOIN items i ON i.base_id = b.id
		 GROUP BY b.id
		 ORDER BY b.name, b.id`)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge bases: %w", err)
	}
	defer rows.Close()

	var out []BaseSummary
	for rows.Next() {
		var b BaseSummary
		if err := rows.Scan(&b.ID, &b.Name, &b.Model, &b.Dimensions, &b.Items); err != nil {
			return nil, fmt.Errorf("scanning knowledge base: %w", err)
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// DeleteBase removes knowledge base id and its items. Stored files are kept
// since other bases may reference them.
func (s *Store) DeleteBase(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM knowledge_bases WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting knowledge base: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("knowledge base %s: %w", id, ErrNotFound)
	}
	return nil
}
