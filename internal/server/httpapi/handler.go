// Package httpapi exposes the transfer service over HTTP: multipart upload,
// metadata lookup and ciphertext download. The server only ever handles
// opaque envelopes; encryption and decryption happen on the client.
package httpapi

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dmitrijs2005/guardianbox/internal/common"
	"github.com/dmitrijs2005/guardianbox/internal/logging"
	"github.com/dmitrijs2005/guardianbox/internal/server/transfer"
)

// Handler bundles the route handlers around the transfer service.
type Handler struct {
	svc    *transfer.Service
	logger logging.Logger
}

// NewRouter builds the gin engine with all GuardianBox routes attached.
func NewRouter(svc *transfer.Service, logger logging.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(corsMiddleware())

	h := &Handler{svc: svc, logger: logger}
	r.POST("/upload", h.Upload)
	r.GET("/file/:fid", h.Metadata)
	r.GET("/file/:fid/download", h.Download)

	return r
}

// Upload accepts a multipart form with the envelope under "file" and
// optional expires_seconds / download_limit fields.
func (h *Handler) Upload(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "missing file field"})
		return
	}

	expiresIn, err := optionalInt64(c.PostForm("expires_seconds"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid expires_seconds"})
		return
	}
	limit, err := optionalInt64(c.PostForm("download_limit"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "invalid download_limit"})
		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "unreadable file field"})
		return
	}
	defer f.Close()

	id, err := h.svc.Upload(c.Request.Context(), f, fh.Size, expiresIn, limit)
	if err != nil {
		h.logger.Error(c.Request.Context(), "upload failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"detail": "upload failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           id,
		"download_url": "/file/" + id,
	})
}

// Metadata returns the object's public metadata or a 404 explaining why
// it is gone.
func (h *Handler) Metadata(c *gin.Context) {
	view, err := h.svc.GetMetadata(c.Request.Context(), c.Param("fid"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrExpired):
			c.JSON(http.StatusNotFound, gin.H{"detail": "file expired"})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "file not found"})
		default:
			h.logger.Error(c.Request.Context(), "metadata lookup failed", "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "internal error"})
		}
		return
	}
	c.JSON(http.StatusOK, view)
}

// Download streams the ciphertext blob. The attachment filename is always
// "<id>.enc"; the real filename travels inside the envelope.
func (h *Handler) Download(c *gin.Context) {
	id := c.Param("fid")

	rc, size, err := h.svc.Download(c.Request.Context(), id)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrExpired):
			c.JSON(http.StatusNotFound, gin.H{"detail": "file expired"})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"detail": "file not found"})
		case errors.Is(err, common.ErrLimitReached):
			c.JSON(http.StatusForbidden, gin.H{"detail": "download limit reached"})
		default:
			h.logger.Error(c.Request.Context(), "download failed", "id", id, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"detail": "storage fetch failed"})
		}
		return
	}
	defer rc.Close()

	c.DataFromReader(http.StatusOK, size, "application/octet-stream", rc, map[string]string{
		"Content-Disposition": fmt.Sprintf(`attachment; filename="%s.enc"`, id),
	})
}

func optionalInt64(s string) (*int64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil || v < 0 {
		return nil, errors.New("invalid integer")
	}
	return &v, nil
}

// corsMiddleware enables CORS for the browser frontend, exposing
// Content-Disposition so downloads keep their attachment name.
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin != "" {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
		} else {
			c.Header("Access-Control-Allow-Origin", "*")
		}
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, Accept")
		c.Header("Access-Control-Expose-Headers", "Content-Disposition")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
