// Package media knows which audio files halo can decode.
package media

import "strings"

// audioExts lists decodable extensions in display order.
var audioExts = []string{".mp3", ".wav", ".flac", ".ogg"}

// IsSupportedExt returns true if the extension is a decodable audio format.
func IsSupportedExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range audioExts {
		if e == ext {
			return true
		}
	}
	return false
}

// SupportedExtsList returns a human-readable list of supported formats.
func SupportedExtsList() string {
	return strings.Join(audioExts, ", ")
}

// Patterns returns glob patterns for file pickers, e.g. "*.mp3".
func Patterns() []string {
	out := make([]string, len(audioExts))
	for i, e := range audioExts {
		out[i] = "*" + e
	}
	return out
}
