package admin

import (
	"encoding/base64"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
)

// DefaultMaxImageBytes is the 5 MiB upload ceiling of the product form.
const DefaultMaxImageBytes int64 = 5 * 1024 * 1024

var allowedImageTypes = []string{"image/png", "image/jpeg", "image/webp", "image/gif"}

// ImageFile is a file picked in the product image input.
type ImageFile struct {
	Filename string
	Size     int64
	Content  []byte
}

func (f ImageFile) size() int64 {
	if f.Size > 0 {
		return f.Size
	}
	return int64(len(f.Content))
}

func sizeMessage(limit int64) string {
	const mib = 1024 * 1024
	if limit%mib == 0 {
		return fmt.Sprintf("Image size must be less than %dMB", limit/mib)
	}
	return fmt.Sprintf("Image size must be less than %d bytes", limit)
}

// sniff returns the detected image type, or "" when the content is not an accepted image.
func sniff(content []byte) string {
	mt := mimetype.Detect(content)
	for _, allowed := range allowedImageTypes {
		if mt.Is(allowed) {
			return allowed
		}
	}
	return ""
}

func dataURL(mime string, content []byte) string {
	return "data:" + mime + ";base64," + base64.StdEncoding.EncodeToString(content)
}
