package markup

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/aretw0/waypoint/pkg/domain"
)

// Format names a supported encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts "xml", "yaml" or "yml" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(s, ".")) {
	case "xml":
		return FormatXML, nil
	case "yaml", "yml":
		return FormatYAML, nil
	default:
		return "", fmt.Errorf("%w: unsupported format %q", domain.ErrConfig, s)
	}
}

// FormatFromPath derives the format from a file extension.
func FormatFromPath(path string) (Format, error) {
	ext := filepath.Ext(path)
	if ext == "" {
		return "", fmt.Errorf("%w: cannot infer format of %q", domain.ErrConfig, path)
	}
	return ParseFormat(ext)
}

// Decode reads one machine definition from r.
func Decode(format Format, r io.Reader) (*domain.Config, error) {
	switch format {
	case FormatXML:
		return decodeXML(r)
	case FormatYAML:
		return decodeYAML(r)
	default:
		return nil, fmt.Errorf("%w: unsupported format %q", domain.ErrConfig, format)
	}
}

// DecodeBytes is Decode over an in-memory document.
func DecodeBytes(format Format, data []byte) (*domain.Config, error) {
	return Decode(format, bytes.NewReader(data))
}

// Encode writes cfg to w. Transitions are always written in the explicit form.
func Encode(format Format, w io.Writer, cfg *domain.Config) error {
	switch format {
	case FormatXML:
		return encodeXML(w, cfg)
	case FormatYAML:
		return encodeYAML(w, cfg)
	default:
		return fmt.Errorf("%w: unsupported format %q", domain.ErrConfig, format)
	}
}
