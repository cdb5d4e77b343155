package handler

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"crazzzytube/apperror"
)

// uploads stores multipart files as request-scoped temporary files. The
// services that receive the paths own their removal.
type uploads struct {
	dir      string
	maxBytes int64
}

func newUploads(tempDir string, maxBytes int64) uploads {
	return uploads{dir: filepath.Join(tempDir, "uploads"), maxBytes: maxBytes}
}

func (u uploads) parse(c *gin.Context) error {
	if u.maxBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, u.maxBytes)
	}
	if err := c.Request.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperror.Validation(fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
		}
		return apperror.Validation("request must be multipart/form-data")
	}
	return nil
}

// save writes the named form file to disk. A missing field yields an empty
// path so that validation reports it together with the other fields.
func (u uploads) save(c *gin.Context, field string) (string, error) {
	header, err := c.FormFile(field)
	if errors.Is(err, http.ErrMissingFile) {
		return "", nil
	}
	if err != nil {
		return "", apperror.Validation(field + " could not be read")
	}

	if err := os.MkdirAll(u.dir, 0o755); err != nil {
		return "", apperror.New(apperror.KindInternal, "failed to store upload", err)
	}
	dst := filepath.Join(u.dir, uuid.NewString()+strings.ToLower(filepath.Ext(header.Filename)))
	if err := c.SaveUploadedFile(header, dst); err != nil {
		return "", apperror.New(apperror.KindInternal, "failed to store upload", err)
	}
	return dst, nil
}

func removeUploads(c *gin.Context, paths ...string) {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			zerolog.Ctx(c.Request.Context()).Warn().Err(err).Str("path", p).Msg("failed to remove upload")
		}
	}
}
