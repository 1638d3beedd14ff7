package io

import (
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/flownet/pkg/graph"
)

// Write encodes doc in the given format to w.
func Write(doc graph.Document, w io.Writer, format string) error {
	switch format {
	case graph.FormatJSON:
		return WriteJSON(doc, w)
	case graph.FormatTOML:
		return WriteTOML(doc, w)
	case graph.FormatYAML:
		return WriteYAML(doc, w)
	default:
		return fmt.Errorf("%q: %w", format, ErrUnknownFormat)
	}
}

// WriteJSON encodes doc as indented JSON.
func WriteJSON(doc graph.Document, w io.Writer) error {
	return graph.WriteDocument(doc, w)
}

// WriteTOML encodes doc as TOML.
func WriteTOML(doc graph.Document, w io.Writer) error {
	if err := toml.NewEncoder(w).Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// WriteYAML encodes doc as YAML with two-space indentation.
func WriteYAML(doc graph.Document, w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return enc.Close()
}

// ExportFile writes doc to path in the format implied by its extension.
func ExportFile(doc graph.Document, path string) error {
	format, err := FormatFromPath(path)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(doc, f, format); err != nil {
		f.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	return f.Close()
}
