// internal/app/features/findings/uploads.go
package findings

import (
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// maxAttachmentSize caps a single uploaded attachment.
const maxAttachmentSize = 10 << 20 // 10 MiB

// saveAttachments writes the uploaded files under the handler's upload
// directory and returns their public URLs. Files are stored as
// findings/YYYY/MM/uuid-filename so shop-floor photos with the same camera
// name never collide.
func (h *Handler) saveAttachments(files []*multipart.FileHeader) ([]string, error) {
	if len(files) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	dateDir := fmt.Sprintf("findings/%04d/%02d", now.Year(), now.Month())
	if err := os.MkdirAll(filepath.Join(h.UploadDir, dateDir), 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}

	var urls []string
	for _, fh := range files {
		if fh.Size > maxAttachmentSize {
			return nil, fmt.Errorf("attachment %q exceeds the %d MiB limit", fh.Filename, maxAttachmentSize>>20)
		}
		name := fmt.Sprintf("%s-%s", uuid.New().String()[:8], sanitizeFilename(fh.Filename))
		rel := filepath.ToSlash(filepath.Join(dateDir, name))

		if err := h.saveOne(fh, filepath.Join(h.UploadDir, dateDir, name)); err != nil {
			return nil, err
		}
		urls = append(urls, h.UploadURL+"/"+rel)
	}
	return urls, nil
}

func (h *Handler) saveOne(fh *multipart.FileHeader, dst string) error {
	src, err := fh.Open()
	if err != nil {
		return fmt.Errorf("open upload %q: %w", fh.Filename, err)
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("create %q: %w", dst, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, io.LimitReader(src, maxAttachmentSize)); err != nil {
		return fmt.Errorf("write %q: %w", dst, err)
	}
	return nil
}

// sanitizeFilename keeps only characters safe for a filename and keeps the
// result short while preserving the extension.
func sanitizeFilename(filename string) string {
	filename = filepath.Base(filename)

	result := make([]byte, 0, len(filename))
	for i := 0; i < len(filename); i++ {
		c := filename[i]
		if isAllowedFilenameChar(c) {
			result = append(result, c)
		} else {
			result = append(result, '_')
		}
	}

	if len(result) == 0 {
		return "file"
	}
	if len(result) > 100 {
		ext := filepath.Ext(string(result))
		if len(ext) > 0 && len(ext) < 10 {
			result = append(result[:100-len(ext)], ext...)
		} else {
			result = result[:100]
		}
	}
	return string(result)
}

func isAllowedFilenameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9') ||
		c == '-' || c == '_' || c == '.'
}
