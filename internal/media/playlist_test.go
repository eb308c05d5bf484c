package media

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestParsePlaylistM3U(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.m3u")
	writeFile(t, playlist, "\uFEFF#EXTM3U\n\nsong1.mp3\n#comment\n\"https://example.com/stream\"\nsub/song2.wav\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{
		filepath.Join(dir, "song1.mp3"),
		filepath.Join(dir, "sub", "song2.wav"),
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParsePlaylist() = %#v, want %#v", got, want)
	}
}

func TestParsePlaylistPLS(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.pls")
	writeFile(t, playlist, "[playlist]\n file1 = one.flac \nTitle1=One\nLength1=120\nFile2=https://example.com/live\nFileX=bad.mp3\nFile3=\n")

	got, err := ParsePlaylist(playlist)
	if err != nil {
		t.Fatalf("ParsePlaylist() error = %v", err)
	}
	want := []string{filepath.Join(dir, "one.flac")}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("ParsePlaylist() = %#v, want %#v", got, want)
	}
}

func TestParsePlaylistRejectsOtherExtensions(t *testing.T) {
	if _, err := ParsePlaylist("song.mp3"); err == nil {
		t.Fatal("expected error for non-playlist extension")
	}
}

func TestFirstPlayableSkipsMissingAndUnsupported(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "notes.txt"), "x")
	writeFile(t, filepath.Join(dir, "b.ogg"), "x")
	if err := os.Mkdir(filepath.Join(dir, "folder.mp3"), 0o755); err != nil {
		t.Fatal(err)
	}
	playlist := filepath.Join(dir, "list.m3u8")
	writeFile(t, playlist, "missing.mp3\nnotes.txt\nfolder.mp3\nb.ogg\n")

	got, err := FirstPlayable(playlist)
	if err != nil {
		t.Fatalf("FirstPlayable() error = %v", err)
	}
	if want := filepath.Join(dir, "b.ogg"); got != want {
		t.Fatalf("FirstPlayable() = %q, want %q", got, want)
	}
}

func TestFirstPlayableEmpty(t *testing.T) {
	dir := t.TempDir()
	playlist := filepath.Join(dir, "list.pls")
	writeFile(t, playlist, "[playlist]\nFile1=gone.wav\n")

	if _, err := FirstPlayable(playlist); !errors.Is(err, ErrEmptyPlaylist) {
		t.Fatalf("expected ErrEmptyPlaylist, got %v", err)
	}
}
