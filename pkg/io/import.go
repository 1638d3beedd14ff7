package io

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flownet/pkg/graph"
)

// ErrUnknownFormat is returned for files whose extension maps to no decoder.
var ErrUnknownFormat = errors.New("unknown document format")

// FormatFromPath maps a file extension to a document format.
func FormatFromPath(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return graph.FormatJSON, nil
	case ".toml":
		return graph.FormatTOML, nil
	case ".yaml", ".yml":
		return graph.FormatYAML, nil
	default:
		return "", fmt.Errorf("%s: %w", path, ErrUnknownFormat)
	}
}

// Read decodes a document in the given format from r.
func Read(r io.Reader, format string) (graph.Document, error) {
	switch format {
	case graph.FormatJSON:
		return ReadJSON(r)
	case graph.FormatTOML:
		return ReadTOML(r)
	case graph.FormatYAML:
		return ReadYAML(r)
	default:
		return graph.Document{}, fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

// ReadJSON decodes a JSON document from r. ReadJSON does not close r.
func ReadJSON(r io.Reader) (graph.Document, error) {
	return graph.ReadDocument(r)
}

// ReadTOML decodes a TOML document from r.
func ReadTOML(r io.Reader) (graph.Document, error) {
	var doc graph.Document
	md, err := toml.NewDecoder(r).Decode(&doc)
	if err != nil {
		return graph.Document{}, fmt.Errorf("decode: %w", err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return graph.Document{}, fmt.Errorf("decode: unknown key %q", undecoded[0].String())
	}
	return doc, nil
}

// ReadYAML decodes a YAML document from r.
func ReadYAML(r io.Reader) (graph.Document, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var doc graph.Document
	if err := dec.Decode(&doc); err != nil {
		return graph.Document{}, fmt.Errorf("decode: %w", err)
	}
	return doc, nil
}

// ImportFile reads the document at path, choosing the decoder from the
// file extension.
func ImportFile(path string) (graph.Document, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return graph.Document{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		return graph.Document{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	doc, err := Read(f, format)
	if err != nil {
		return graph.Document{}, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}
