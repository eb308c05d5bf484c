package media

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"
)

// ErrEmptyPlaylist is returned when a playlist names no playable file.
var ErrEmptyPlaylist = errors.New("playlist has no playable entries")

var playlistExts = []string{".m3u", ".m3u8", ".pls"}

// IsPlaylistExt returns true for local playlist formats.
func IsPlaylistExt(ext string) bool {
	ext = strings.ToLower(ext)
	for _, e := range playlistExts {
		if e == ext {
			return true
		}
	}
	return false
}

// ParsePlaylist parses a local .m3u/.m3u8/.pls file into path entries.
// Relative entries are resolved against the playlist's directory; remote
// entries are dropped.
func ParsePlaylist(path string) ([]string, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if !IsPlaylistExt(ext) {
		return nil, fmt.Errorf("unsupported playlist format %s", ext)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	data, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("reading playlist: %w", err)
	}
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("playlist is not valid UTF-8")
	}

	baseDir := filepath.Dir(abs)
	scanner := bufio.NewScanner(strings.NewReader(strings.TrimPrefix(string(data), "\uFEFF")))
	if ext == ".pls" {
		return parsePLS(scanner, baseDir), nil
	}
	return parseM3U(scanner, baseDir), nil
}

// FirstPlayable returns the first existing, decodable file in a playlist.
func FirstPlayable(path string) (string, error) {
	entries, err := ParsePlaylist(path)
	if err != nil {
		return "", err
	}
	for _, p := range entries {
		info, err := os.Stat(p)
		if err != nil || info.IsDir() || !IsSupportedExt(filepath.Ext(p)) {
			continue
		}
		return p, nil
	}
	return "", fmt.Errorf("%s: %w", filepath.Base(path), ErrEmptyPlaylist)
}

func parseM3U(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.Trim(strings.TrimSpace(scanner.Text()), `"`)
		if line == "" || strings.HasPrefix(line, "#") || isRemote(line) {
			continue
		}
		entries = append(entries, resolveEntry(line, baseDir))
	}
	return entries
}

func parsePLS(scanner *bufio.Scanner, baseDir string) []string {
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.TrimSpace(val)
		if val == "" || !isPLSFileKey(key) || isRemote(val) {
			continue
		}
		entries = append(entries, resolveEntry(val, baseDir))
	}
	return entries
}

// isPLSFileKey matches File1, File2, ... case-insensitively.
func isPLSFileKey(key string) bool {
	if len(key) <= len("File") || !strings.EqualFold(key[:len("File")], "File") {
		return false
	}
	for _, c := range key[len("File"):] {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func isRemote(entry string) bool {
	return strings.Contains(entry, "://")
}

func resolveEntry(raw, baseDir string) string {
	p := filepath.Clean(raw)
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(baseDir, p)
}
