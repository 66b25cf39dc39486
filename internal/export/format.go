package export

import "fmt"

// Format selects which artifact is downloaded per activity.
type Format string

const (
	// FormatGPX exports the track as GPX markup.
	FormatGPX Format = "gpx"
	// FormatTCX exports the track as TCX markup.
	FormatTCX Format = "tcx"
	// FormatOriginal downloads the originally uploaded file (a zip archive,
	// optionally unpacked after download).
	FormatOriginal Format = "original"
)

// ParseFormat validates a format name from configuration or flags.
func ParseFormat(name string) (Format, error) {
	switch Format(name) {
	case FormatGPX, FormatTCX, FormatOriginal:
		return Format(name), nil
	default:
		return "", fmt.Errorf("unrecognized format %q (want gpx, tcx, or original)", name)
	}
}

// Ext returns the artifact file extension, including the dot.
func (f Format) Ext() string {
	switch f {
	case FormatTCX:
		return ".tcx"
	case FormatOriginal:
		return ".zip"
	default:
		return ".gpx"
	}
}
