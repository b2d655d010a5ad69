// Package format writes command results as json, edn, or plain text.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
)

const (
	JSON = "json"
	EDN  = "edn"
	Text = "text"
)

// Texter is implemented by results with a human-readable rendering.
type Texter interface {
	Text() string
}

// Normalize maps an output format name to its canonical form.
func Normalize(s string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", JSON:
		return JSON, nil
	case EDN:
		return EDN, nil
	case Text, "txt", "plain":
		return Text, nil
	default:
		return "", fmt.Errorf("unknown format: %s (expected json|edn|text)", s)
	}
}

// Write writes v in format. Text falls back to pretty JSON when v is not a Texter.
func Write(w io.Writer, v any, format string, pretty bool) error {
	f, err := Normalize(format)
	if err != nil {
		return err
	}
	switch f {
	case EDN:
		return WriteEDN(w, v, pretty)
	case Text:
		if t, ok := v.(Texter); ok {
			s := t.Text()
			if !strings.HasSuffix(s, "\n") {
				s += "\n"
			}
			_, err := io.WriteString(w, s)
			return err
		}
		return WriteJSON(w, v, true)
	default:
		return WriteJSON(w, v, pretty)
	}
}

func WriteJSON(w io.Writer, v any, pretty bool) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(v)
}
