// Package planfile reads acceleration plans from JSON or YAML documents.
//
// A document looks like:
//
//	{"name": "launch", "stages": [{"accel": 2.0, "duration": 1.0}, [0.0, 2.0]]}
//
// Each stage is either an object or an [accel, duration] pair.
package planfile

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cxd309/accel-profile/internal/profile"
)

// Format identifies the encoding of a plan document.
type Format string

const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

const maxFileSize = 1 << 20

// Document is a named plan.
type Document struct {
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Stages      profile.Plan `json:"stages"`
}

// FormatFromPath picks the format from the file extension.
func FormatFromPath(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("plan file must have .json, .yaml or .yml extension, got %q", ext)
	}
}

// Load reads and validates the plan document at path.
func Load(path string) (Document, error) {
	cleanPath := filepath.Clean(path)
	format, err := FormatFromPath(cleanPath)
	if err != nil {
		return Document{}, err
	}

	info, err := os.Stat(cleanPath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to stat plan file: %w", err)
	}
	if info.Size() > maxFileSize {
		return Document{}, fmt.Errorf("plan file too large: %d bytes (max %d)", info.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return Document{}, fmt.Errorf("failed to read plan file: %w", err)
	}
	doc, err := Parse(data, format)
	if err != nil {
		return Document{}, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return doc, nil
}

// Parse decodes and validates a plan document.
func Parse(data []byte, format Format) (Document, error) {
	jsonData, err := ToJSON(data, format)
	if err != nil {
		return Document{}, err
	}

	var doc Document
	dec := json.NewDecoder(bytes.NewReader(jsonData))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decoding plan: %w", err)
	}
	if err := Validate(doc.Stages); err != nil {
		return Document{}, err
	}
	return doc, nil
}

// Validate rejects plans the executor cannot be built from, and stages with
// non-finite values or negative durations.
func Validate(p profile.Plan) error {
	if len(p) == 0 {
		return profile.ErrEmptyPlan
	}
	for i, s := range p {
		if math.IsNaN(s.Accel) || math.IsInf(s.Accel, 0) {
			return fmt.Errorf("stage %d: accel must be finite", i)
		}
		if math.IsNaN(s.Duration) || math.IsInf(s.Duration, 0) {
			return fmt.Errorf("stage %d: duration must be finite", i)
		}
		if s.Duration < 0 {
			return fmt.Errorf("stage %d: duration must be >= 0, got %v", i, s.Duration)
		}
	}
	return nil
}

// ToJSON converts a YAML document to JSON so a single strict JSON decoder serves
// both formats. JSON input is returned unchanged.
func ToJSON(data []byte, format Format) ([]byte, error) {
	switch format {
	case FormatJSON:
		return data, nil
	case FormatYAML:
		var v any
		if err := yaml.Unmarshal(data, &v); err != nil {
			return nil, fmt.Errorf("yaml unmarshal: %w", err)
		}
		j, err := json.Marshal(normalizeYAML(v))
		if err != nil {
			return nil, fmt.Errorf("yaml->json marshal: %w", err)
		}
		return j, nil
	default:
		return nil, fmt.Errorf("unknown plan format %q", format)
	}
}

// normalizeYAML ensures all map keys are strings so the result can be JSON-marshaled.
func normalizeYAML(in any) any {
	switch x := in.(type) {
	case map[any]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[fmt.Sprint(k)] = normalizeYAML(v)
		}
		return m
	case map[string]any:
		m := make(map[string]any, len(x))
		for k, v := range x {
			m[k] = normalizeYAML(v)
		}
		return m
	case []any:
		for i := range x {
			x[i] = normalizeYAML(x[i])
		}
		return x
	default:
		return in
	}
}
