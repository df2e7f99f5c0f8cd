// Package loader imports world documents into a types.World. JSON and YAML
// documents and sandboxed Lua scripts all decode into the same raw entries,
// which then go through one merge step into typed entries.
package loader

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/nathoo/worldnav/types"
)

// Format identifies a world document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
	FormatLua  Format = "lua"
)

// ImportError rejects a world document. No partial world is returned with it.
type ImportError struct {
	Path   string
	Reason string
	Err    error
}

func (e *ImportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("importing %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("importing %s: %s", e.Path, e.Reason)
}

func (e *ImportError) Unwrap() error {
	return e.Err
}

// FormatOf picks the format from a file extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".lua":
		return FormatLua, nil
	default:
		return "", fmt.Errorf("unsupported world format %q", filepath.Ext(path))
	}
}

// Load reads the world at path. A directory is loaded as a set of Lua
// scripts. The returned warnings describe entries or fields that were
// skipped; they never fail the import on their own.
func Load(path string, log *zap.Logger) (*types.World, []string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, nil, &ImportError{Path: path, Reason: "cannot read world", Err: err}
	}

	var raws []rawEntry
	if info.IsDir() {
		raws, err = loadLuaDir(path)
	} else {
		var format Format
		format, err = FormatOf(path)
		if err != nil {
			return nil, nil, &ImportError{Path: path, Reason: "unknown format", Err: err}
		}
		var data []byte
		data, err = os.ReadFile(path)
		if err != nil {
			return nil, nil, &ImportError{Path: path, Reason: "cannot read world", Err: err}
		}
		raws, err = decode(path, data, format)
	}
	if err != nil {
		return nil, nil, err
	}
	return build(path, raws, log)
}

// Parse imports an in-memory document. name is used as the world source
// and in error messages.
func Parse(name string, data []byte, format Format, log *zap.Logger) (*types.World, []string, error) {
	raws, err := decode(name, data, format)
	if err != nil {
		return nil, nil, err
	}
	return build(name, raws, log)
}

func build(source string, raws []rawEntry, log *zap.Logger) (*types.World, []string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	world, warnings := compile(source, raws, log)
	if ve := Validate(world); ve != nil {
		warnings = append(warnings, ve.Warnings...)
		if len(ve.Errors) > 0 {
			return nil, warnings, ve
		}
	}

	st := Stats(world)
	log.Info("world loaded",
		zap.String("source", source),
		zap.Int("entries", st.Entries),
		zap.Int("regions", st.Regions),
		zap.Int("paths", st.Paths),
		zap.Int("landmarks", st.Landmarks),
		zap.Int("warnings", len(warnings)))
	return world, warnings, nil
}
