// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package localkb

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kbsync/pkg/types"
)

// --- test helpers ---

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(types.LocalConfig{DBPath: filepath.Join(t.TempDir(), "db", "kbsync.db")})
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleBase(fileRef types.FileRef) *types.KnowledgeBase {
	return &types.KnowledgeBase{
		ID:          "kb1",
		Name:        "Research",
		Description: "papers and notes",
		Model:       types.ModelRef{ID: "text-embedding-3-small", Name: "OpenAI small"},
		Dimensions:  1536,
		Items: []types.Item{
			{ID: "i1", Type: types.ItemFile, File: &fileRef, CreatedAt: 100, UpdatedAt: 200},
			{ID: "i2", Type: types.ItemURL, Content: "https://example.com", CreatedAt: 300, UpdatedAt: 300},
			{ID: "i3", Type: types.ItemNote, Content: "remember this", CreatedAt: 400, UpdatedAt: 500},
		},
	}
}

// --- store ---

func TestPutAndGetBase(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ref, err := s.PutFile(ctx, "paper.md", []byte("# Paper"))
	require.NoError(t, err)

	want := sampleBase(ref)
	require.NoError(t, s.PutBase(ctx, want))

	got, err := s.GetBase(ctx, "kb1")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestPutBaseReplacesItems(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	base := sampleBase(types.FileRef{ID: "f", Name: "f.md"})
	require.NoError(t, s.PutBase(ctx, base))

	base.Items = base.Items[1:2]
	base.Name = "Renamed"
	require.NoError(t, s.PutBase(ctx, base))

	got, err := s.GetBase(ctx, "kb1")
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "i2", got.Items[0].ID)
}

func TestPutBaseValidation(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	assert.ErrorContains(t, s.PutBase(ctx, &types.KnowledgeBase{ID: "x"}), "no name")

	bad := &types.KnowledgeBase{ID: "x", Name: "X", Items: []types.Item{{Type: "video"}}}
	assert.ErrorContains(t, s.PutBase(ctx, bad), "unknown type")

	noRef := &types.KnowledgeBase{ID: "x", Name: "X", Items: []types.Item{{Type: types.ItemFile}}}
	assert.ErrorContains(t, s.PutBase(ctx, noRef), "no file reference")

	_, err := s.GetBase(ctx, "x")
	assert.ErrorIs(t, err, ErrNotFound, "failed put must not leave a partial base")
}

func TestPutBaseGeneratesIDs(t *testing.T) {
	s := testStore(t)
	base := &types.KnowledgeBase{Name: "Fresh", Items: []types.Item{{Type: types.ItemNote, Content: "n"}}}
	require.NoError(t, s.PutBase(context.Background(), base))

	assert.Len(t, base.ID, 26)
	assert.Len(t, base.Items[0].ID, 26)
	assert.NotZero(t, base.Items[0].CreatedAt)
	assert.Equal(t, base.Items[0].CreatedAt, base.Items[0].UpdatedAt)
}

func TestAddItemAppends(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutBase(ctx, sampleBase(types.FileRef{ID: "f", Name: "f.md"})))

	item := types.Item{Type: types.ItemNote, Content: "appended"}
	require.NoError(t, s.AddItem(ctx, "kb1", &item))
	assert.NotEmpty(t, item.ID)

	got, err := s.GetBase(ctx, "kb1")
	require.NoError(t, err)
	require.Len(t, got.Items, 4)
	assert.Equal(t, "appended", got.Items[3].Content)
}

func TestAddItemUnknownBase(t *testing.T) {
	s := testStore(t)
	err := s.AddItem(context.Background(), "missing", &types.Item{Type: types.ItemNote, Content: "n"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAndDeleteBases(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutBase(ctx, &types.KnowledgeBase{ID: "b", Name: "Beta"}))
	require.NoError(t, s.PutBase(ctx, sampleBase(types.FileRef{ID: "f", Name: "f.md"})))

	list, err := s.ListBases(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "b", list[0].ID)
	assert.Equal(t, 0, list[0].Items)
	assert.Equal(t, "kb1", list[1].ID)
	assert.Equal(t, 3, list[1].Items)
	assert.Equal(t, "text-embedding-3-small", list[1].Model)

	require.NoError(t, s.DeleteBase(ctx, "kb1"))
	_, err = s.GetBase(ctx, "kb1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.ErrorIs(t, s.DeleteBase(ctx, "kb1"), ErrNotFound)
}

// --- files ---

func TestFiles(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	ref, err := s.PutFile(ctx, "notes.txt", []byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, "notes.txt", ref.Name)

	got, err := s.GetFile(ctx, ref.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), got)

	_, err = s.GetFile(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	empty, err := s.PutFile(ctx, "empty.txt", nil)
	require.NoError(t, err)
	got, err = s.GetFile(ctx, empty.ID)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAddFile(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	require.NoError(t, s.PutBase(ctx, &types.KnowledgeBase{ID: "kb1", Name: "Research"}))

	path := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("abstract"), 0o644))

	item, err := s.AddFile(ctx, "kb1", path)
	require.NoError(t, err)
	require.NotNil(t, item.File)
	assert.Equal(t, types.ItemFile, item.Type)
	assert.Equal(t, "paper.txt", item.File.Name)

	got, err := s.GetBase(ctx, "kb1")
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, item.ID, got.Items[0].ID)

	content, err := s.GetFile(ctx, item.File.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte("abstract"), content)
}

func TestAddFileLeavesNoOrphans(t *testing.T) {
	path := filepath.Join(t.TempDir(), "paper.txt")
	require.NoError(t, os.WriteFile(path, []byte("abstract"), 0o644))

	tests := []struct {
		name   string
		baseID string
		path   string
	}{
		{"unknown base", "missing", path},
		{"unreadable path", "kb1", filepath.Join(t.TempDir(), "absent.txt")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStore(t)
			ctx := context.Background()
			require.NoError(t, s.PutBase(ctx, &types.KnowledgeBase{ID: "kb1", Name: "Research"}))

			_, err := s.AddFile(ctx, tt.baseID, tt.path)
			require.Error(t, err)
			if tt.baseID == "missing" {
				assert.ErrorIs(t, err, ErrNotFound)
			}

			var files int
			require.NoError(t, s.db.QueryRowContext(ctx, `SELECT count(*) FROM files`).Scan(&files))
			assert.Zero(t, files)
		})
	}
}

// --- manifest ---

func TestImportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "docs"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "docs", "paper.md"), []byte("# Attention"), 0o644))

	manifest := `
id: research
name: Research
model:
  id: text-embedding-3-small
dimensions: 1536
items:
  - type: file
    path: docs/paper.md
  - type: url
    content: https://example.com
  - id: note-1
    type: note
    content: remember this
`
	base, err := s.ImportYAML(ctx, strings.NewReader(manifest), dir)
	require.NoError(t, err)
	assert.Equal(t, "research", base.ID)

	got, err := s.GetBase(ctx, "research")
	require.NoError(t, err)
	require.Len(t, got.Items, 3)
	assert.Equal(t, types.ItemFile, got.Items[0].Type)
	require.NotNil(t, got.Items[0].File)
	assert.Equal(t, "paper.md", got.Items[0].File.Name)
	assert.Equal(t, "note-1", got.Items[2].ID)

	content, err := s.GetFile(ctx, got.Items[0].File.ID)
	require.NoError(t, err)
	assert.Equal(t, "# Attention", string(content))
}

func TestImportYAMLErrors(t *testing.T) {
	tests := []struct {
		name     string
		manifest string
		wantErr  string
	}{
		{"invalid yaml", "name: [", "parsing manifest"},
		{"no name", "items: []", "no name"},
		{"file without path", "name: X\nitems:\n  - type: file", "no path"},
		{"missing file", "name: X\nitems:\n  - type: file\n    path: nope.md", "reading file"},
		{"empty note", "name: X\nitems:\n  - type: note", "no content"},
		{"unknown type", "name: X\nitems:\n  - type: video\n    content: x", "unknown type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := testStore(t).ImportYAML(context.Background(), strings.NewReader(tt.manifest), t.TempDir())
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExportYAML(t *testing.T) {
	s := testStore(t)
	ctx := context.Background()
	want := sampleBase(types.FileRef{ID: "f1", Name: "paper.md"})
	require.NoError(t, s.PutBase(ctx, want))

	var buf bytes.Buffer
	require.NoError(t, s.ExportYAML(ctx, "kb1", &buf))

	var got types.KnowledgeBase
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, *want, got)

	assert.ErrorIs(t, s.ExportYAML(ctx, "missing", &buf), ErrNotFound)
}
