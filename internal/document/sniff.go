// AngelaMos | 2026
// sniff.go

package document

import (
	"errors"
	"fmt"
	"io"
	"mime"

	"github.com/gabriel-vasile/mimetype"
)

var ErrUnsupportedType = errors.New("unsupported file type")

// allowedTypes maps every accepted MIME type to the extension used in the
// storage key.
var allowedTypes = map[string]string{
	"application/pdf":    ".pdf",
	"application/msword": ".doc",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": ".docx",
	"application/vnd.ms-excel": ".xls",
	"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet": ".xlsx",
	"text/plain": ".txt",
}

// Legacy Office files share one container format and are not always told
// apart by content alone.
const oleContainer = "application/x-ole-storage"

// sniffType detects the content type of r and rewinds it. declared is the
// part's Content-Type header, consulted only to name an OLE container.
func sniffType(r io.ReadSeeker, declared string) (string, string, error) {
	detected, err := mimetype.DetectReader(r)
	if err != nil {
		return "", "", fmt.Errorf("detect type: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return "", "", fmt.Errorf("rewind upload: %w", err)
	}

	for allowed, ext := range allowedTypes {
		if detected.Is(allowed) {
			return allowed, ext, nil
		}
	}

	if detected.Is(oleContainer) {
		declaredType, _, _ := mime.ParseMediaType(declared)
		switch declaredType {
		case "application/msword", "application/vnd.ms-excel":
			return declaredType, allowedTypes[declaredType], nil
		}
	}

	return "", "", fmt.Errorf("%w: %s", ErrUnsupportedType, detected.String())
}
