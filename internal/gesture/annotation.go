package gesture

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Span is one labeled interval of a sequence, End inclusive.
type Span struct {
	Label int
	Start int
	End   int
}

// Annotation holds every span of one sequence in file order.
type Annotation struct {
	File  string
	Spans []Span
}

// FrameLabels expands the spans into a per-frame label array of length MaxFrames.
// Later spans overwrite earlier ones where they overlap.
func (a Annotation) FrameLabels() []int {
	labels := make([]int, MaxFrames)
	for i := range labels {
		labels[i] = NonGesture
	}
	for _, s := range a.Spans {
		for f := s.Start; f <= s.End; f++ {
			labels[f] = s.Label
		}
	}
	return labels
}

// splitLine tokenizes an annotation line and drops trailing empty tokens.
func splitLine(line string) []string {
	tokens := strings.Split(strings.TrimRight(line, "\r\n"), ";")
	for i := range tokens {
		tokens[i] = strings.TrimSpace(tokens[i])
	}
	for len(tokens) > 0 && tokens[len(tokens)-1] == "" {
		tokens = tokens[:len(tokens)-1]
	}
	return tokens
}

// FileName returns the sequence name of an annotation line without parsing its spans.
func FileName(line string) string {
	tokens := splitLine(line)
	if len(tokens) == 0 {
		return ""
	}
	return tokens[0]
}

// ParseLine parses "file;label;start;end;label;start;end;...".
func ParseLine(line string) (Annotation, error) {
	tokens := splitLine(line)
	if len(tokens) == 0 || tokens[0] == "" {
		return Annotation{}, fmt.Errorf("%w: missing file name", ErrMalformedAnnotation)
	}

	ann := Annotation{File: tokens[0]}
	rest := tokens[1:]
	if len(rest)%3 != 0 {
		return Annotation{}, fmt.Errorf("%w: %s: %d tokens after file name, want triplets",
			ErrMalformedAnnotation, ann.File, len(rest))
	}

	for i := 0; i < len(rest); i += 3 {
		label, err := LabelIndex(rest[i])
		if err != nil {
			return Annotation{}, fmt.Errorf("%s: %w", ann.File, err)
		}
		start, err := strconv.Atoi(rest[i+1])
		if err != nil {
			return Annotation{}, fmt.Errorf("%w: %s: start %q", ErrMalformedAnnotation, ann.File, rest[i+1])
		}
		end, err := strconv.Atoi(rest[i+2])
		if err != nil {
			return Annotation{}, fmt.Errorf("%w: %s: end %q", ErrMalformedAnnotation, ann.File, rest[i+2])
		}
		if start < 0 || end >= MaxFrames || start > end {
			return Annotation{}, fmt.Errorf("%w: %s: %s [%d,%d]", ErrSpanOutOfRange, ann.File, rest[i], start, end)
		}
		ann.Spans = append(ann.Spans, Span{Label: label, Start: start, End: end})
	}

	return ann, nil
}

// ReadLines returns the non-blank lines of an annotation file in order.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		if strings.TrimSpace(sc.Text()) == "" {
			continue
		}
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return lines, nil
}
