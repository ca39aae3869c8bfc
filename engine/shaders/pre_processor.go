package shaders

import (
	"bufio"
	"bytes"
	"fmt"
	"io/fs"
	"path"
	"strconv"
	"strings"
)

const includeDirective = "#include"

// preProcessor expands #include "file" lines. Paths are relative to the
// including file. A file is expanded at most once per processed source and an
// include cycle is an error.
type preProcessor struct {
	fsys fs.FS
}

func newPreProcessor(fsys fs.FS) *preProcessor {
	return &preProcessor{fsys: fsys}
}

// Process returns the source of name with every include expanded.
func (p *preProcessor) Process(name string) (string, error) {
	var out strings.Builder
	state := &includeState{
		included: make(map[string]bool),
	}
	if err := p.expand(path.Clean(name), state, &out); err != nil {
		return "", err
	}
	return out.String(), nil
}

type includeState struct {
	// files currently being expanded, outermost first
	stack    []string
	included map[string]bool
}

func (s *includeState) onStack(name string) bool {
	for _, n := range s.stack {
		if n == name {
			return true
		}
	}
	return false
}

func (p *preProcessor) expand(name string, state *includeState, out *strings.Builder) error {
	if state.onStack(name) {
		return fmt.Errorf("include cycle: %s -> %s", strings.Join(state.stack, " -> "), name)
	}
	if state.included[name] {
		return nil
	}

	data, err := fs.ReadFile(p.fsys, name)
	if err != nil {
		return err
	}

	state.stack = append(state.stack, name)
	state.included[name] = true

	scanner := bufio.NewScanner(bytes.NewReader(data))
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Text()
		trimmed := strings.TrimSpace(line)
		if !strings.HasPrefix(trimmed, includeDirective) {
			out.WriteString(line)
			out.WriteByte('\n')
			continue
		}

		arg := strings.TrimSpace(strings.TrimPrefix(trimmed, includeDirective))
		target, err := strconv.Unquote(arg)
		if err != nil || target == "" {
			return fmt.Errorf("%s:%d: malformed include %q", name, lineNumber, trimmed)
		}
		target = path.Join(path.Dir(name), target)
		if err := p.expand(target, state, out); err != nil {
			return fmt.Errorf("%s:%d: %w", name, lineNumber, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}

	state.stack = state.stack[:len(state.stack)-1]
	return nil
}
