package testutil

import (
	"bytes"
	"os"
	"sort"
	"strings"
	"testing"

	"github.com/klauspost/compress/zip"
)

// BuildZip returns a zip archive holding files. Keys are slash-separated
// paths; a key ending in "/" adds an empty directory entry.
func BuildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	return buildZipBytes(files)
}

// WriteZip writes BuildZip(files) to path.
func WriteZip(t *testing.T, path string, files map[string]string) {
	t.Helper()

	if err := os.WriteFile(path, buildZipBytes(files), 0o644); err != nil {
		t.Fatalf("write zip %s: %v", path, err)
	}
}

// buildZipBytes panics on error: writes to a bytes.Buffer cannot fail.
func buildZipBytes(files map[string]string) []byte {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for _, name := range names {
		f, err := w.Create(name)
		if err != nil {
			panic(err)
		}
		if strings.HasSuffix(name, "/") {
			continue
		}
		if _, err := f.Write([]byte(files[name])); err != nil {
			panic(err)
		}
	}
	if err := w.Close(); err != nil {
		panic(err)
	}
	return buf.Bytes()
}
