package shader

import (
	"errors"
	"fmt"
	"strings"
)

// annotationPrefix marks a preprocessor directive inside a WGSL line comment.
const annotationPrefix = "@oxy:"

var (
	// ErrUnknownInclude is returned when an include names a chunk that is not registered.
	ErrUnknownInclude = errors.New("shader: unknown include")

	// ErrUnknownAnnotation is returned for an @oxy: directive other than include.
	ErrUnknownAnnotation = errors.New("shader: unknown annotation")
)

type preProcessor struct {
	chunks map[string]string
}

// PreProcessor expands //@oxy:include <name> lines into the WGSL of registered chunks.
// Each chunk is emitted at most once per Process call, so two chunks may include a third.
type PreProcessor interface {
	// Process returns source with every include expanded.
	//
	// Parameters:
	//   - source: WGSL source that may contain include directives
	//
	// Returns:
	//   - string: the expanded source
	//   - error: ErrUnknownInclude or ErrUnknownAnnotation, wrapped with the line number
	Process(source string) (string, error)
}

var _ PreProcessor = &preProcessor{}

// NewPreProcessor creates a PreProcessor over the given named chunks.
//
// Parameters:
//   - chunks: WGSL snippets keyed by include name
//
// Returns:
//   - PreProcessor: the preprocessor
func NewPreProcessor(chunks map[string]string) PreProcessor {
	return &preProcessor{chunks: chunks}
}

func (p *preProcessor) Process(source string) (string, error) {
	seen := make(map[string]bool)
	return p.expand(source, seen)
}

func (p *preProcessor) expand(source string, seen map[string]bool) (string, error) {
	lines := strings.Split(source, "\n")
	out := make([]string, 0, len(lines))

	for i, line := range lines {
		directive, ok := parseDirective(line)
		if !ok {
			out = append(out, line)
			continue
		}

		kind, arg, _ := strings.Cut(directive, " ")
		if kind != "include" {
			return "", fmt.Errorf("line %d: %w %q", i+1, ErrUnknownAnnotation, kind)
		}
		name := strings.TrimSpace(arg)
		if seen[name] {
			continue
		}
		chunk, ok := p.chunks[name]
		if !ok {
			return "", fmt.Errorf("line %d: %w %q", i+1, ErrUnknownInclude, name)
		}
		seen[name] = true

		expanded, err := p.expand(chunk, seen)
		if err != nil {
			return "", fmt.Errorf("include %q: %w", name, err)
		}
		out = append(out, expanded)
	}
	return strings.Join(out, "\n"), nil
}

// parseDirective returns the text after the annotation prefix on a "//@oxy:" line.
func parseDirective(line string) (string, bool) {
	rest, ok := strings.CutPrefix(strings.TrimSpace(line), "//")
	if !ok {
		return "", false
	}
	rest, ok = strings.CutPrefix(strings.TrimSpace(rest), annotationPrefix)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(rest), true
}
