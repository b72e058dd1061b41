package metamodel

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"
)

// Format is a snapshot encoding.
type Format string

const (
	FormatJSON    Format = "json"
	FormatYAML    Format = "yaml"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatJSON, FormatYAML, FormatMsgpack:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "mp", "msgp":
		return FormatMsgpack, nil
	default:
		return "", fmt.Errorf("unsupported snapshot format: %s", s)
	}
}

// FormatFromPath picks a format from a file extension, defaulting to JSON.
func FormatFromPath(path string) Format {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if f, err := ParseFormat(ext); err == nil {
		return f
	}
	return FormatJSON
}

// Marshal encodes a document.
func Marshal(doc Document, format Format) ([]byte, error) {
	if doc == nil {
		doc = Document{}
	}
	switch format {
	case FormatJSON:
		return json.Marshal(doc)
	case FormatYAML:
		return yaml.Marshal(doc)
	case FormatMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetSortMapKeys(true)
		if err := enc.Encode(doc); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
}

// Unmarshal decodes a document.
func Unmarshal(data []byte, format Format) (Document, error) {
	var doc Document
	var err error
	switch format {
	case FormatJSON:
		err = json.Unmarshal(data, &doc)
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatMsgpack:
		err = msgpack.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("unsupported snapshot format: %s", format)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s snapshot: %w", format, err)
	}
	return doc, nil
}
