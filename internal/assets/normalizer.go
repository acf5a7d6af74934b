// Package assets reconciles the three asset states (empty, local-pending,
// remote) into stable preview handles and save-ready payload shapes.
package assets

import (
	"errors"
	"fmt"
	"net/url"
	"path"
	"strings"

	"github.com/forgeworks/botsmith/internal/draft"
)

// Selection errors, surfaced when the user picks a file. The field keeps
// its prior state when selection fails.
var (
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrTooLarge        = errors.New("file is too large")
)

// Kind restricts which file types a field accepts.
type Kind int

const (
	KindImage    Kind = iota // Logo and banner fields
	KindDocument             // Knowledge-base documents
	KindCSV                  // Tabular knowledge asset
)

var kindExtensions = map[Kind][]string{
	KindImage:    {".png", ".jpg", ".jpeg", ".gif"},
	KindDocument: {".pdf", ".txt", ".md", ".doc", ".docx"},
	KindCSV:      {".csv"},
}

// CheckSelection validates a file selection against the field's kind and
// the configured size cap before any bytes are attached to the draft.
func CheckSelection(name string, size int64, kind Kind, maxBytes int64) error {
	ext := strings.ToLower(path.Ext(name))
	ok := false
	for _, allowed := range kindExtensions[kind] {
		if ext == allowed {
			ok = true
			break
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnsupportedType, ext)
	}
	if maxBytes > 0 && size > maxBytes {
		return fmt.Errorf("%w: %d bytes (max %d)", ErrTooLarge, size, maxBytes)
	}
	return nil
}

// PreviewURL resolves a remote asset reference into a displayable URL.
// Absolute URLs pass through unchanged; relative references are resolved
// against the configured base origin with duplicate path separators
// collapsed. Empty and local-pending assets have no URL (local previews
// come from Decode instead).
func PreviewURL(a draft.Asset, baseOrigin string) (string, bool) {
	if a.State() != draft.AssetRemote {
		return "", false
	}

	ref := a.Ref()
	if u, err := url.Parse(ref); err == nil && u.Scheme != "" {
		// Already absolute, pass through untouched.
		return ref, true
	}

	if baseOrigin == "" {
		return collapseSlashes(ref), true
	}

	base, err := url.Parse(baseOrigin)
	if err != nil {
		return collapseSlashes(ref), true
	}
	base.Path = path.Join(base.Path, ref)
	return base.String(), true
}

// collapseSlashes reduces runs of '/' in a path to a single separator.
func collapseSlashes(p string) string {
	if p == "" {
		return p
	}
	cleaned := path.Clean(p)
	if strings.HasSuffix(p, "/") && cleaned != "/" {
		cleaned += "/"
	}
	return cleaned
}

// SavePayload is the save-ready shape of an asset for the record API:
// raw bytes for local-pending uploads, a reference string for already
// persisted assets. A remote reference is never fabricated from a binary.
type SavePayload struct {
	Filename  string
	Binary    []byte
	Reference string
}

// IsUpload reports whether the payload carries raw bytes to upload.
func (p SavePayload) IsUpload() bool { return len(p.Binary) > 0 }

// ForSave converts an asset into its save payload. The second return is
// false when the asset is empty and the field should be absent from the
// request entirely.
func ForSave(a draft.Asset) (SavePayload, bool) {
	switch a.State() {
	case draft.AssetLocalPending:
		return SavePayload{Filename: a.Name(), Binary: a.Data()}, true
	case draft.AssetRemote:
		return SavePayload{Reference: a.Ref()}, true
	default:
		return SavePayload{}, false
	}
}
