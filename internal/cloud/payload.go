// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cloud

import (
	"context"
	"encoding/base64"
	"unicode/utf8"

	"github.com/sirupsen/logrus"

	"github.com/pdiddy/kbsync/pkg/types"
)

// FileStore resolves a stored file reference to its content. A nil result
// (with or without an error) means the file could not be resolved.
type FileStore interface {
	GetFile(ctx context.Context, id string) ([]byte, error)
}

// UploadPayload is the request body of the upload operation.
type UploadPayload struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description"`
	Model       string        `json:"model"`
	Dimensions  int           `json:"dimensions"`
	Items       []PayloadItem `json:"items"`
}

// PayloadItem is one item of an UploadPayload. Content is a string for url
// and note items and for resolved files; an unresolved file carries its
// original types.FileRef instead.
type PayloadItem struct {
	ID        string         `json:"id"`
	Type      types.ItemType `json:"type"`
	Filename  string         `json:"filename,omitempty"`
	Content   any            `json:"content"`
	Encoding  string         `json:"encoding,omitempty"`
	CreatedAt int64          `json:"created_at"`
	UpdatedAt int64          `json:"updated_at"`
}

// BuildPayload converts base into an UploadPayload, resolving each file item
// through files. A file that cannot be resolved is forwarded with its
// original reference; it never fails the batch. Items of unknown type are
// dropped.
func BuildPayload(ctx context.Context, base types.KnowledgeBase, files FileStore, log logrus.FieldLogger) UploadPayload {
	p := UploadPayload{
		ID:          base.ID,
		Name:        base.Name,
		Description: base.Description,
		Model:       base.Model.ID,
		Dimensions:  base.Dimensions,
		Items:       make([]PayloadItem, 0, len(base.Items)),
	}

	for _, item := range base.Items {
		pi := PayloadItem{
			ID:        item.ID,
			Type:      item.Type,
			CreatedAt: item.CreatedAt,
			UpdatedAt: item.UpdatedAt,
		}

		switch item.Type {
		case types.ItemFile:
			if item.File == nil {
				pi.Content = item.Content
				break
			}
			pi.Filename = item.File.Name
			pi.Content = *item.File
			if data := resolveFile(ctx, files, *item.File, log); data != nil {
				pi.Content, pi.Encoding = encodeContent(data)
			}
		case types.ItemURL, types.ItemNote:
			pi.Content = item.Content
		default:
			log.WithFields(logrus.Fields{"item": item.ID, "type": item.Type}).Warn("skipping item of unknown type")
			continue
		}
		p.Items = append(p.Items, pi)
	}
	return p
}

func resolveFile(ctx context.Context, files FileStore, ref types.FileRef, log logrus.FieldLogger) []byte {
	if files == nil {
		return nil
	}
	data, err := files.GetFile(ctx, ref.ID)
	if err != nil {
		log.WithError(err).WithField("file", ref.ID).Warn("file not resolved, sending reference")
		return nil
	}
	return data
}

// encodeContent returns text content as-is and anything else as base64.
func encodeContent(data []byte) (string, string) {
	if utf8.Valid(data) {
		return string(data), ""
	}
	return base64.StdEncoding.EncodeToString(data), "base64"
}
