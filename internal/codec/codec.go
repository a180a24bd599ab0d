package codec

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"campusnet/internal/domain"
)

var (
	// ErrUnknownFormat is returned for a format with no codec
	ErrUnknownFormat = errors.New("unknown format")

	// ErrParse wraps every error a codec returns for malformed input
	ErrParse = errors.New("failed to parse")
)

// Importer interface for importing graph data from various formats
type Importer interface {
	Parse(r io.Reader) (*domain.GraphFragment, error)
	Format() string
}

// Exporter interface for exporting graph data to various formats
type Exporter interface {
	Export(fragment *domain.GraphFragment, w io.Writer) error
	Format() string
}

// Codec both imports and exports a format
type Codec interface {
	Importer
	Exporter
}

// ForFormat returns the codec for a format name ("json", "yaml" or "yml")
func ForFormat(format string) (Codec, error) {
	switch strings.ToLower(format) {
	case "json":
		return NewJSONCodec(), nil
	case "yaml", "yml":
		return NewYAMLCodec(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ForPath picks a codec from a file extension
func ForPath(path string) (Codec, error) {
	return ForFormat(strings.TrimPrefix(filepath.Ext(path), "."))
}

// ContentType returns the MIME type for a codec's format
func ContentType(c Codec) string {
	switch c.Format() {
	case "json":
		return "application/json"
	case "yaml":
		return "application/x-yaml"
	default:
		return "application/octet-stream"
	}
}

// fillEdgeIDs gives edges without an ID the conventional "<source>-<target>" one
func fillEdgeIDs(fragment *domain.GraphFragment) {
	for i := range fragment.Edges {
		if fragment.Edges[i].ID == "" {
			fragment.Edges[i].ID = fragment.Edges[i].GenerateID()
		}
	}
}
