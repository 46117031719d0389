package export

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func TestCopyFlattensIntoDestination(t *testing.T) {
	srcDir := t.TempDir()
	dest := t.TempDir()

	a := filepath.Join(srcDir, "a.png")
	b := filepath.Join(srcDir, "sub", "b.png")
	writeFile(t, a, "alpha")
	writeFile(t, b, "bravo")

	n, err := Copy(dest, []string{a, b})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Copy() = %d, want 2", n)
	}

	if got := readFile(t, filepath.Join(dest, "a.png")); got != "alpha" {
		t.Errorf("a.png = %q", got)
	}
	if got := readFile(t, filepath.Join(dest, "b.png")); got != "bravo" {
		t.Errorf("b.png = %q", got)
	}
	if _, err := os.Stat(filepath.Join(dest, "sub")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("source directory structure was recreated in destination")
	}
}

func TestCopyOverwrites(t *testing.T) {
	srcDir := t.TempDir()
	dest := t.TempDir()

	src := filepath.Join(srcDir, "photo.jpg")
	writeFile(t, src, "new contents")
	writeFile(t, filepath.Join(dest, "photo.jpg"), "old contents that are longer")

	if _, err := Copy(dest, []string{src}); err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if got := readFile(t, filepath.Join(dest, "photo.jpg")); got != "new contents" {
		t.Errorf("destination = %q, want overwritten contents", got)
	}
}

func TestCopyStopsAtFirstFailure(t *testing.T) {
	srcDir := t.TempDir()
	dest := t.TempDir()

	first := filepath.Join(srcDir, "first.png")
	missing := filepath.Join(srcDir, "missing.png")
	last := filepath.Join(srcDir, "last.png")
	writeFile(t, first, "1")
	writeFile(t, last, "3")

	n, err := Copy(dest, []string{first, missing, last})
	if err == nil {
		t.Fatal("Copy() succeeded with a missing source")
	}
	if n != 1 {
		t.Errorf("Copy() = %d, want 1", n)
	}

	var exportErr *ExportError
	if !errors.As(err, &exportErr) {
		t.Fatalf("error %T is not *ExportError", err)
	}
	if exportErr.Path != missing {
		t.Errorf("ExportError.Path = %q, want %q", exportErr.Path, missing)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("error %v does not wrap fs.ErrNotExist", err)
	}

	if _, err := os.Stat(filepath.Join(dest, "first.png")); err != nil {
		t.Errorf("file copied before the failure was removed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dest, "last.png")); !errors.Is(err, fs.ErrNotExist) {
		t.Error("processing continued past the failure")
	}
}

func TestCopyDestination(t *testing.T) {
	srcDir := t.TempDir()
	src := filepath.Join(srcDir, "a.png")
	writeFile(t, src, "a")

	notDir := filepath.Join(srcDir, "file.txt")
	writeFile(t, notDir, "x")

	tests := []struct {
		name   string
		dest   string
		target error
	}{
		{"missing", filepath.Join(srcDir, "nope"), fs.ErrNotExist},
		{"not a directory", notDir, ErrNotDirectory},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			n, err := Copy(tt.dest, []string{src})
			if n != 0 {
				t.Errorf("Copy() = %d, want 0", n)
			}
			if !errors.Is(err, tt.target) {
				t.Errorf("Copy() error = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestCopySourceIsDirectory(t *testing.T) {
	srcDir := t.TempDir()
	dest := t.TempDir()
	sub := filepath.Join(srcDir, "album")
	if err := os.Mkdir(sub, 0o755); err != nil {
		t.Fatal(err)
	}

	if _, err := Copy(dest, []string{sub}); !errors.Is(err, ErrNotRegularFile) {
		t.Errorf("Copy(directory) error = %v, want ErrNotRegularFile", err)
	}
}

func TestCopyOntoItself(t *testing.T) {
	dest := t.TempDir()
	src := filepath.Join(dest, "same.png")
	writeFile(t, src, "unchanged")

	n, err := Copy(dest, []string{src})
	if err != nil {
		t.Fatalf("Copy() error = %v", err)
	}
	if n != 1 {
		t.Errorf("Copy() = %d, want 1", n)
	}
	if got := readFile(t, src); got != "unchanged" {
		t.Errorf("file = %q, want unchanged contents", got)
	}
}

func TestCopyEmptySelection(t *testing.T) {
	n, err := Copy(t.TempDir(), nil)
	if err != nil || n != 0 {
		t.Errorf("Copy(nil) = %d, %v; want 0, nil", n, err)
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		path    string
		want    string
		wantErr bool
	}{
		{"/a/b/photo.png", "photo.png", false},
		{"photo.png", "photo.png", false},
		{"/a/b/album/", "album", false},
		{"", "", true},
		{".", "", true},
		{"..", "", true},
		{"/a/..", "", true},
		{"/", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := BaseName(tt.path)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidFileName) {
					t.Errorf("BaseName(%q) error = %v, want ErrInvalidFileName", tt.path, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("BaseName(%q) = %q, %v; want %q", tt.path, got, err, tt.want)
			}
		})
	}
}
