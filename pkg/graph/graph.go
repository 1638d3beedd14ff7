package graph

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/matzehuels/flownet/pkg/cache"
)

// =============================================================================
// Document Serialization API
// =============================================================================

// MarshalDocument encodes a document as indented JSON.
func MarshalDocument(d Document) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteDocument(d, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalDocument decodes JSON bytes into a Document.
func UnmarshalDocument(data []byte) (Document, error) {
	return ReadDocument(bytes.NewReader(data))
}

// WriteDocument writes a document as indented JSON to w.
func WriteDocument(d Document, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ReadDocument decodes a JSON document from r. Unknown fields are rejected so
// typos like "capactiy" do not silently become zero-capacity edges.
func ReadDocument(r io.Reader) (Document, error) {
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()

	var d Document
	if err := dec.Decode(&d); err != nil {
		return Document{}, fmt.Errorf("decode: %w", err)
	}
	return d, nil
}

// Hash returns the SHA-256 of the document's compact JSON encoding. The name
// is excluded, so renaming a graph keeps its cached results.
func (d Document) Hash() string {
	d.Name = ""
	data, _ := json.Marshal(d)
	return cache.Hash(data)
}
