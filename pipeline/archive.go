package pipeline

import (
	"archive/zip"
	"bytes"
	"sort"
	"time"
)

// ZipFiles packs artefacts into a zip archive. Entries are sorted by name and
// stamped with a fixed modification time so identical inputs give identical bytes.
func ZipFiles(files map[string][]byte) ([]byte, error) {
	names := SortedNames(files)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	fixedTime := time.Unix(0, 0).UTC()

	for _, name := range names {
		h := &zip.FileHeader{
			Name:   name,
			Method: zip.Deflate,
		}
		h.SetModTime(fixedTime)
		w, err := zw.CreateHeader(h)
		if err != nil {
			return nil, err
		}
		if _, err := w.Write(files[name]); err != nil {
			return nil, err
		}
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SortedNames returns the artefact names in lexical order.
func SortedNames(files map[string][]byte) []string {
	names := make([]string, 0, len(files))
	for name := range files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
