// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines shared data structures for kbsync.
// Covers the local knowledge base model (KnowledgeBase, Item, FileRef)
// and the configuration structs consumed by the CLI and stores.
package types

// ItemType tags the variant of a knowledge base Item.
type ItemType string

const (
	ItemFile ItemType = "file"
	ItemURL  ItemType = "url"
	ItemNote ItemType = "note"
)

// Valid reports whether t is one of the known item variants.
func (t ItemType) Valid() bool {
	switch t {
	case ItemFile, ItemURL, ItemNote:
		return true
	}
	return false
}

// ModelRef identifies the embedding model associated with a knowledge base.
type ModelRef struct {
	// ID is the model identifier (e.g. "text-embedding-3-small").
	ID string `json:"id" yaml:"id"`

	// Name is an optional display name.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
}

// FileRef points at a file held by the local file store.
type FileRef struct {
	// ID is the opaque file store identifier.
	ID string `json:"id" yaml:"id"`

	// Name is the display name (usually the original filename).
	Name string `json:"name" yaml:"name"`
}

// Item is one entry of a knowledge base. Exactly one of Content or File is
// meaningful: File for ItemFile, Content (URL or note text) otherwise.
type Item struct {
	ID   string   `json:"id" yaml:"id"`
	Type ItemType `json:"type" yaml:"type"`

	// Content is the literal URL for ItemURL and the note text for ItemNote.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// File references stored file content for ItemFile.
	File *FileRef `json:"file,omitempty" yaml:"file,omitempty"`

	// CreatedAt and UpdatedAt are epoch milliseconds. They are carried
	// through to the remote service unchanged.
	CreatedAt int64 `json:"created_at" yaml:"created_at"`
	UpdatedAt int64 `json:"updated_at" yaml:"updated_at"`
}

// KnowledgeBase is a named, ordered collection of items tied to an
// embedding model and vector dimensionality.
type KnowledgeBase struct {
	ID          string   `json:"id" yaml:"id"`
	Name        string   `json:"name" yaml:"name"`
	Description string   `json:"description,omitempty" yaml:"description,omitempty"`
	Model       ModelRef `json:"model" yaml:"model"`
	Dimensions  int      `json:"dimensions" yaml:"dimensions"`
	Items       []Item   `json:"items" yaml:"items"`
}
