package v1

import (
	"io"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/gfdmit/web-forum/blog-service/internal/handlers/http/httperr"
	"github.com/gfdmit/web-forum/blog-service/internal/service"
)

type uploadsHandler struct {
	svc *service.Service
}

// PostUpload stores the multipart "file" field and answers with its public url.
func (uh *uploadsHandler) PostUpload(c *gin.Context) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Upload interrupted"})
		return
	}

	stored, err := uh.svc.Store(c.Request.Context(), data, header.Filename)
	if err != nil {
		uh.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"filename": stored.StoredName,
		"url":      stored.PublicPath,
		"size":     stored.Size,
	})
}

// GetUpload streams a stored file back by its generated name.
func (uh *uploadsHandler) GetUpload(c *gin.Context) {
	name := c.Param("name")

	rc, err := uh.svc.Open(c.Request.Context(), name)
	if err != nil {
		uh.fail(c, err)
		return
	}
	defer rc.Close()

	contentType := mime.TypeByExtension(path.Ext(name))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.DataFromReader(http.StatusOK, -1, contentType, rc, servingHeaders(contentType))
}

// servingHeaders keeps uploaded documents and scripts from rendering on this
// origin. Only raster images are shown inline.
func servingHeaders(contentType string) map[string]string {
	headers := map[string]string{"X-Content-Type-Options": "nosniff"}
	mediaType, _, _ := mime.ParseMediaType(contentType)
	if !strings.HasPrefix(mediaType, "image/") || mediaType == "image/svg+xml" {
		headers["Content-Disposition"] = "attachment"
	}
	return headers
}

func (uh *uploadsHandler) fail(c *gin.Context, err error) {
	status := httperr.Status(err)
	if status == http.StatusInternalServerError {
		c.Error(err)
	}
	c.JSON(status, gin.H{"error": httperr.Message(err)})
}
