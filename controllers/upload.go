package controllers

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/digital-menu/services"
	"github.com/yeremiapane/digital-menu/utils"
)

const maxImageSize = 5 << 20

var imageExtensions = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true}

// IsImagePath reports whether name ends in an image extension. Uploads are
// stored under their original extension, so only such files are accepted and
// served.
func IsImagePath(name string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(name))]
}

// readImage opens the image file sent in the given multipart field. The
// returned closer must be called once the upload is stored. On failure the
// 400 response has already been written.
func readImage(c *gin.Context, field string) (*services.Upload, io.Closer, bool) {
	header, err := c.FormFile(field)
	if err != nil {
		utils.RespondMessage(c, http.StatusBadRequest, fmt.Sprintf("please upload an image in the %q field", field))
		return nil, nil, false
	}
	if header.Size > maxImageSize {
		utils.RespondMessage(c, http.StatusBadRequest, "image must be 5MB or smaller")
		return nil, nil, false
	}
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") || !IsImagePath(header.Filename) {
		utils.RespondMessage(c, http.StatusBadRequest, "only image files are allowed")
		return nil, nil, false
	}

	file, err := header.Open()
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return nil, nil, false
	}
	return &services.Upload{Filename: header.Filename, Reader: file}, file, true
}
