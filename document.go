package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"wirecanvas/connector"
)

const documentVersion = 1

// Document is the persisted form of a canvas: nodes and the edges between them.
type Document struct {
	Version int              `json:"version" yaml:"version"`
	Nodes   []connector.Node `json:"nodes" yaml:"nodes"`
	Edges   []connector.Edge `json:"edges" yaml:"edges"`
}

// Clone returns a deep copy of the document.
func (d Document) Clone() Document {
	return Document{
		Version: d.Version,
		Nodes:   append([]connector.Node(nil), d.Nodes...),
		Edges:   connector.CloneEdges(d.Edges),
	}
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// EncodeDocument serializes doc as JSON for .json paths and YAML otherwise.
func EncodeDocument(path string, doc Document) ([]byte, error) {
	doc.Version = documentVersion
	if isJSON(path) {
		return json.MarshalIndent(doc, "", "  ")
	}
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeDocument parses data written by EncodeDocument.
func DecodeDocument(path string, data []byte) (Document, error) {
	var doc Document
	var err error
	if isJSON(path) {
		err = json.Unmarshal(data, &doc)
	} else {
		err = yaml.Unmarshal(data, &doc)
	}
	if err != nil {
		return Document{}, fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	if doc.Version > documentVersion {
		return Document{}, fmt.Errorf("parse %s: unsupported version %d", filepath.Base(path), doc.Version)
	}
	return doc, nil
}

// SaveDocument writes doc to path.
func SaveDocument(path string, doc Document) error {
	data, err := EncodeDocument(path, doc)
	if err != nil {
		return fmt.Errorf("encode %s: %w", filepath.Base(path), err)
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadDocument reads a document from path.
func LoadDocument(path string) (Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Document{}, err
	}
	return DecodeDocument(path, data)
}
