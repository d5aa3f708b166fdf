// Package shader loads the triangle's WGSL program and checks it with the
// naga front end before any GPU object is created from it.
package shader

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/naga"
	"github.com/gogpu/naga/ir"
)

// DefaultPath is where the shader is looked up, relative to the working
// directory and then to the executable.
const DefaultPath = "shaders/main.wgsl"

// Entry point names the pipeline binds.
const (
	VertexEntry   = "vs_main"
	FragmentEntry = "fs_main"
)

// Stage selects a shader stage.
type Stage int

const (
	// StageVertex is the vertex stage.
	StageVertex Stage = iota
	// StageFragment is the fragment stage.
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	default:
		return fmt.Sprintf("Stage(%d)", int(s))
	}
}

// Errors returned by Load and Parse.
var (
	// ErrNotFound is returned when the shader file exists in none of the
	// searched locations.
	ErrNotFound = errors.New("shader: file not found")

	// ErrInvalid wraps WGSL parse, lowering and validation failures.
	ErrInvalid = errors.New("shader: invalid WGSL")

	// ErrEntryPoint is returned when a required entry point is missing.
	ErrEntryPoint = errors.New("shader: missing entry point")
)

// Source is a WGSL program that parsed, lowered and validated cleanly.
type Source struct {
	// Name identifies the source in errors and logs (file path or label).
	Name string

	// Code is the WGSL text handed to the GPU.
	Code string

	entries map[Stage][]string
}

// Load reads and validates the WGSL file at path. Relative paths are tried
// against the working directory first and then the executable's directory.
func Load(path string) (*Source, error) {
	resolved, err := resolve(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, fmt.Errorf("read shader %s: %w", resolved, err)
	}
	return Parse(resolved, string(data))
}

func resolve(path string) (string, error) {
	candidates := []string{path}
	if !filepath.IsAbs(path) {
		if exe, err := os.Executable(); err == nil {
			candidates = append(candidates, filepath.Join(filepath.Dir(exe), path))
		}
	}
	for _, c := range candidates {
		if fi, err := os.Stat(c); err == nil && !fi.IsDir() {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, path, strings.Join(candidates, ", "))
}

// Parse validates WGSL code. name is used in error messages.
func Parse(name, code string) (*Source, error) {
	ast, err := naga.Parse(code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: parse: %w", ErrInvalid, name, err)
	}
	module, err := naga.LowerWithSource(ast, code)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: lower: %w", ErrInvalid, name, err)
	}
	verrs, err := naga.Validate(module)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: validate: %w", ErrInvalid, name, err)
	}
	if len(verrs) > 0 {
		errs := make([]error, len(verrs))
		for i := range verrs {
			errs[i] = verrs[i]
		}
		return nil, fmt.Errorf("%w: %s: %w", ErrInvalid, name, errors.Join(errs...))
	}

	src := &Source{Name: name, Code: code, entries: make(map[Stage][]string)}
	for _, ep := range module.EntryPoints {
		switch ep.Stage {
		case ir.StageVertex:
			src.entries[StageVertex] = append(src.entries[StageVertex], ep.Name)
		case ir.StageFragment:
			src.entries[StageFragment] = append(src.entries[StageFragment], ep.Name)
		}
	}
	return src, nil
}

// EntryPoint returns the entry point to bind for stage: the conventional
// name (vs_main, fs_main) when present, otherwise the only entry point of
// that stage. Missing or ambiguous entry points are an error.
func (s *Source) EntryPoint(stage Stage) (string, error) {
	names := s.entries[stage]
	want := VertexEntry
	if stage == StageFragment {
		want = FragmentEntry
	}
	for _, n := range names {
		if n == want {
			return n, nil
		}
	}
	switch len(names) {
	case 0:
		return "", fmt.Errorf("%w: %s has no %s entry point", ErrEntryPoint, s.Name, stage)
	case 1:
		return names[0], nil
	default:
		return "", fmt.Errorf("%w: %s has %d %s entry points and none is named %s",
			ErrEntryPoint, s.Name, len(names), stage, want)
	}
}

// EntryPoints lists the entry point names declared for stage.
func (s *Source) EntryPoints(stage Stage) []string {
	return append([]string(nil), s.entries[stage]...)
}
