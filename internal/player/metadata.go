package player

import (
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// Metadata holds track information shown next to the ring.
type Metadata struct {
	Title  string
	Artist string
}

// Label joins artist and title for a one-line caption.
func (m Metadata) Label() string {
	if m.Artist == "" {
		return m.Title
	}
	return m.Artist + " - " + m.Title
}

// ReadMetadata reads ID3v2 tags, falling back to the file name. Files
// without a tag (wav, flac, ogg) always use the file name.
func ReadMetadata(path string) Metadata {
	if strings.EqualFold(filepath.Ext(path), ".mp3") {
		tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
		if err == nil {
			defer tag.Close()
			m := Metadata{
				Title:  strings.TrimSpace(tag.Title()),
				Artist: strings.TrimSpace(tag.Artist()),
			}
			if m.Title != "" {
				return m
			}
		}
	}

	base := filepath.Base(path)
	return Metadata{Title: strings.TrimSuffix(base, filepath.Ext(base))}
}
