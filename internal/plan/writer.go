package plan

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/shapes2video/internal/shape"
)

// Write stores p as JSON or YAML, chosen by the file extension.
func Write(p *Plan, path string) error {
	var (
		data []byte
		err  error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		data, err = json.MarshalIndent(p, "", "  ")
	case ".yaml", ".yml":
		data, err = yaml.Marshal(p)
	default:
		return fmt.Errorf("%w: unsupported plan format %q", shape.ErrConfig, ext)
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Read loads a plan written by Write.
func Read(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var p Plan
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".json":
		err = json.Unmarshal(data, &p)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &p)
	default:
		return nil, fmt.Errorf("%w: unsupported plan format %q", shape.ErrConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", shape.ErrConfig, path, err)
	}
	if p.Content == nil {
		p.Content = map[int]Record{}
	}
	return &p, nil
}
