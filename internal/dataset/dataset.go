// Package dataset persists launch record arrays as pretty-printed JSON.
package dataset

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/JakeFAU/launch-table-crawler/internal/hash/sha256"
	"github.com/JakeFAU/launch-table-crawler/internal/metrics"
	"github.com/JakeFAU/launch-table-crawler/internal/storage"
)

// ContentType is the media type of saved datasets.
const ContentType = "application/json"

// Saved describes a dataset written by Save.
type Saved struct {
	Name    string
	URI     string
	Digest  string
	Records int
	Bytes   int
}

// Encode renders records as a two-space indented JSON array with a trailing
// newline. A nil slice encodes as an empty array.
func Encode[R any](records []R) ([]byte, error) {
	if records == nil {
		records = []R{}
	}
	raw, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode dataset: %w", err)
	}
	return append(raw, '\n'), nil
}

// Decode reads a JSON array of records.
func Decode[R any](r io.Reader) ([]R, error) {
	var records []R
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&records); err != nil {
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return records, nil
}

// Save replaces the object called name with the encoded records.
func Save[R any](ctx context.Context, store storage.BlobStore, name string, records []R) (Saved, error) {
	raw, err := Encode(records)
	if err != nil {
		return Saved{}, err
	}
	digest, err := sha256.New().Hash(raw)
	if err != nil {
		return Saved{}, fmt.Errorf("digest dataset: %w", err)
	}
	uri, err := store.PutObject(ctx, name, ContentType, bytes.NewReader(raw))
	if err != nil {
		return Saved{}, fmt.Errorf("save dataset %s: %w", name, err)
	}
	metrics.ObserveDatasetSize(name, len(raw))
	return Saved{
		Name:    name,
		URI:     uri,
		Digest:  digest,
		Records: len(records),
		Bytes:   len(raw),
	}, nil
}

// Load reads the dataset called name. A missing dataset wraps
// storage.ErrNotFound.
func Load[R any](ctx context.Context, store storage.BlobStore, name string) ([]R, error) {
	rc, err := store.GetObject(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}
	defer func() { _ = rc.Close() }()
	records, err := Decode[R](rc)
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", name, err)
	}
	return records, nil
}
