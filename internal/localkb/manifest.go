// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package localkb

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/kbsync/pkg/types"
)

// Manifest is the YAML form of a knowledge base accepted by ImportYAML.
// File items name a path relative to the manifest directory; the file is
// copied into the store on import.
type Manifest struct {
	ID          string         `yaml:"id,omitempty"`
	Name        string         `yaml:"name"`
	Description string         `yaml:"description,omitempty"`
	Model       types.ModelRef `yaml:"model"`
	Dimensions  int            `yaml:"dimensions"`
	Items       []ManifestItem `yaml:"items"`
}

// ManifestItem is one item of a Manifest.
type ManifestItem struct {
	ID      string         `yaml:"id,omitempty"`
	Type    types.ItemType `yaml:"type"`
	Content string         `yaml:"content,omitempty"`
	Path    string         `yaml:"path,omitempty"`
}

// ImportYAML reads a manifest from r, stores referenced files, and saves the
// knowledge base. baseDir resolves relative file paths.
func (s *Store) ImportYAML(ctx context.Context, r io.Reader, baseDir string) (*types.KnowledgeBase, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.Name == "" {
		return nil, fmt.Errorf("manifest has no name")
	}

	base := &types.KnowledgeBase{
		ID:          m.ID,
		Name:        m.Name,
		Description: m.Description,
		Model:       m.Model,
		Dimensions:  m.Dimensions,
		Items:       make([]types.Item, 0, len(m.Items)),
	}

	for i, mi := range m.Items {
		item := types.Item{ID: mi.ID, Type: mi.Type, Content: mi.Content}
		switch mi.Type {
		case types.ItemFile:
			if mi.Path == "" {
				return nil, fmt.Errorf("item %d: file item has no path", i)
			}
			ref, err := s.ImportFile(ctx, resolvePath(baseDir, mi.Path))
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			item.File = &ref
			item.Content = ""
		case types.ItemURL, types.ItemNote:
			if mi.Content == "" {
				return nil, fmt.Errorf("item %d: %s item has no content", i, mi.Type)
			}
		default:
			return nil, fmt.Errorf("item %d: unknown type %q", i, mi.Type)
		}
		base.Items = append(base.Items, item)
	}

	if err := s.PutBase(ctx, base); err != nil {
		return nil, err
	}
	return base, nil
}

// ImportFile copies the file at path into the store.
func (s *Store) ImportFile(ctx context.Context, path string) (types.FileRef, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return types.FileRef{}, fmt.Errorf("reading file: %w", err)
	}
	return s.PutFile(ctx, filepath.Base(path), content)
}

// ExportYAML writes knowledge base id to w. File items carry their stored
// reference, not their content.
func (s *Store) ExportYAML(ctx context.Context, id string, w io.Writer) error {
	base, err := s.GetBase(ctx, id)
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(base); err != nil {
		return fmt.Errorf("marshaling YAML: %w", err)
	}
	return enc.Close()
}

func resolvePath(baseDir, p string) string {
	if filepath.IsAbs(p) || baseDir == "" {
		return p
	}
	return filepath.Join(baseDir, p)
}
