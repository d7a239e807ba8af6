package archive

import (
	"archive/zip"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"testing"
)

func makeZip(t *testing.T, files map[string]string) string {
	t.Helper()
	zipPath := filepath.Join(t.TempDir(), "site.zip")

	zipFile, err := os.Create(zipPath)
	if err != nil {
		t.Fatalf("Failed to create zip file: %v", err)
	}
	w := zip.NewWriter(zipFile)
	for name, content := range files {
		fw, err := w.Create(name)
		if err != nil {
			t.Fatalf("Failed to create file %s in zip: %v", name, err)
		}
		if _, err := fw.Write([]byte(content)); err != nil {
			t.Fatalf("Failed to write content for %s: %v", name, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Failed to close zip writer: %v", err)
	}
	zipFile.Close()
	return zipPath
}

func TestOpen_RootAtArchiveTop(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"data/SCP-173.json": `{"item":"SCP-173"}`,
		"images/173.jpg":    "jpeg",
		"index.html":        "<html></html>",
	})

	b, err := Open(zipPath, "data")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if b.Root() != "." {
		t.Errorf("Root() = %q, want .", b.Root())
	}
	data, err := fs.ReadFile(b.FS(), "data/SCP-173.json")
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != `{"item":"SCP-173"}` {
		t.Errorf("unexpected content %q", data)
	}
}

func TestOpen_NestedRoot(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"site/data/SCP-173.json": `{}`,
		"site/data/SCP-096.json": `{}`,
		"site/images/096.png":    "png",
	})

	b, err := Open(zipPath, "data")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	if b.Root() != "site" {
		t.Errorf("Root() = %q, want site", b.Root())
	}
	entries, err := fs.ReadDir(b.FS(), "data")
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("ReadDir() returned %d entries, want 2", len(entries))
	}
	if _, err := fs.Stat(b.FS(), "images/096.png"); err != nil {
		t.Errorf("Stat(images/096.png) error = %v", err)
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Run("not an archive", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.zip")
		if err := os.WriteFile(path, []byte("not a zip"), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := Open(path, "data"); err == nil {
			t.Error("expected error for invalid archive")
		}
	})

	t.Run("missing archive", func(t *testing.T) {
		if _, err := Open(filepath.Join(t.TempDir(), "none.zip"), "data"); err == nil {
			t.Error("expected error for missing archive")
		}
	})

	t.Run("two roots", func(t *testing.T) {
		zipPath := makeZip(t, map[string]string{
			"a/data/X.json": `{}`,
			"b/data/Y.json": `{}`,
		})
		if _, err := Open(zipPath, "data"); err == nil {
			t.Error("expected error for ambiguous site root")
		}
	})

	t.Run("path traversal", func(t *testing.T) {
		zipPath := makeZip(t, map[string]string{
			"../data/X.json": `{}`,
		})
		if _, err := Open(zipPath, "data"); err == nil {
			t.Error("expected error for unsafe entry")
		}
	})
}

func TestBundle_Walk(t *testing.T) {
	zipPath := makeZip(t, map[string]string{
		"data/A.json":   `{}`,
		"data/B.json":   `{}`,
		"images/a.jpg":  "x",
		"templates/p.h": "y",
	})
	b, err := Open(zipPath, "data")
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	defer b.Close()

	var visited []string
	if err := b.Walk("data/", func(f *zip.File) error {
		visited = append(visited, f.Name)
		return nil
	}); err != nil {
		t.Fatalf("Walk() error = %v", err)
	}
	sort.Strings(visited)
	if len(visited) != 2 || visited[0] != "data/A.json" || visited[1] != "data/B.json" {
		t.Errorf("Walk() visited %v", visited)
	}
}

func TestIsSafePath(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"data/a.json", true},
		{"/etc/passwd", false},
		{`\windows`, false},
		{"a/../../b", false},
		{"a/..b/c", true},
	}
	for _, tt := range tests {
		if got := isSafePath(tt.name); got != tt.want {
			t.Errorf("isSafePath(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
