package view

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Format is the output format selected with -o.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatYAML  Format = "yaml"
	FormatDOT   Format = "dot"
)

// ParseFormat validates an -o value. The empty string selects FormatHuman.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case "":
		return FormatHuman, nil
	case FormatHuman, FormatJSON, FormatYAML, FormatDOT:
		return f, nil
	default:
		return "", fmt.Errorf("unknown output format %q: expected one of human, json, yaml, dot", s)
	}
}

// Stream provides basic output operations wrapping an io.Writer.
type Stream struct {
	Writer io.Writer
}

// NewStream creates a Stream writing to w.
func NewStream(w io.Writer) *Stream {
	return &Stream{Writer: w}
}

// Println writes arguments to the stream with a newline.
func (s *Stream) Println(args ...any) {
	fmt.Fprintln(s.Writer, args...)
}

// Printf writes formatted output to the stream.
func (s *Stream) Printf(format string, args ...any) {
	fmt.Fprintf(s.Writer, format, args...)
}

// Encode writes v as indented JSON or as YAML.
func (s *Stream) Encode(format Format, v any) error {
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(s.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case FormatYAML:
		enc := yaml.NewEncoder(s.Writer)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %s is not a data encoding", format)
	}
}
