package utils

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gosimple/slug"
)

// SaveUploadedFile stores an uploaded document under dir and returns the
// opaque storage ref recorded on the entity. Filenames are slugged so a
// hostile original name cannot escape the uploads directory.
func SaveUploadedFile(c *gin.Context, file *multipart.FileHeader, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating uploads dir: %w", err)
	}

	ext := strings.ToLower(filepath.Ext(file.Filename))
	base := strings.TrimSuffix(filepath.Base(file.Filename), filepath.Ext(file.Filename))
	name := fmt.Sprintf("%d_%s%s", time.Now().UnixNano(), slug.Make(base), ext)

	dst := filepath.Join(dir, name)
	if err := c.SaveUploadedFile(file, dst); err != nil {
		return "", fmt.Errorf("saving upload: %w", err)
	}
	return dst, nil
}
