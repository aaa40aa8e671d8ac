package program

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hammamikhairi/dojotimer/internal/domain"
)

// Format is a program file encoding.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatOf picks the encoding from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("%s: unsupported program file extension", path)
	}
}

// LoadFile reads, decodes and normalizes a program file. A program without
// an ID takes the file's base name.
func LoadFile(path string) (domain.Program, error) {
	format, err := FormatOf(path)
	if err != nil {
		return domain.Program{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Program{}, fmt.Errorf("reading program: %w", err)
	}

	p, err := Decode(data, format)
	if err != nil {
		return domain.Program{}, fmt.Errorf("%s: %w", path, err)
	}
	if strings.TrimSpace(p.ID) == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return Normalize(p)
}

// Decode parses a program. Unknown fields are rejected so typos in field
// names do not silently drop settings.
func Decode(data []byte, format Format) (domain.Program, error) {
	var p domain.Program
	switch format {
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&p); err != nil {
			return domain.Program{}, fmt.Errorf("decoding yaml: %w: %v", domain.ErrInvalidProgram, err)
		}
	case FormatJSON:
		dec := json.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		if err := dec.Decode(&p); err != nil {
			return domain.Program{}, fmt.Errorf("decoding json: %w: %v", domain.ErrInvalidProgram, err)
		}
	default:
		return domain.Program{}, fmt.Errorf("unknown format %q", format)
	}
	return p, nil
}

// Encode writes p in the given format.
func Encode(p domain.Program, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		return yaml.Marshal(p)
	case FormatJSON:
		return json.MarshalIndent(p, "", "  ")
	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}
}

// Files lists the program files directly inside dir, sorted by name.
func Files(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading program dir: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if _, err := FormatOf(e.Name()); err == nil {
			out = append(out, filepath.Join(dir, e.Name()))
		}
	}
	slices.Sort(out)
	return out, nil
}
