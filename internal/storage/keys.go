package storage

import (
	"path"
	"strings"
	"time"
)

// UploadKey is where an uploaded document lands:
// documents/YYYY/MM/DD/<document_id>/<filename>.
func UploadKey(now time.Time, documentID, filename string) string {
	return path.Join("documents", now.UTC().Format("2006/01/02"), documentID, SafeFilename(filename))
}

// ResultKey is where the routed result for a document is persisted.
func ResultKey(prefix, documentID string) string {
	return path.Join(strings.Trim(prefix, "/"), documentID+".json")
}

// SafeFilename strips directory components so a client cannot choose the key
// prefix.
func SafeFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	base := path.Base(name)
	if base == "." || base == "/" || base == ".." {
		return "document"
	}
	return base
}
