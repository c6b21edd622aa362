package handlers

import (
	"bufio"
	"errors"
	"io"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/minio/minio-go/v7"

	"github.com/agrilink/agrichat-backend/internal/httpx"
	"github.com/agrilink/agrichat-backend/internal/storage"
)

const maxAttachmentBytes = 10 << 20 // 10 MiB

// MediaHandler stores and serves chat attachments (crop photos, receipts).
// Storage is optional; without S3 configured the endpoints answer 503.
type MediaHandler struct {
	s3 *storage.S3Storage
}

func NewMediaHandler(s3 *storage.S3Storage) *MediaHandler {
	return &MediaHandler{s3: s3}
}

func normalizeETag(v string) string {
	v = strings.TrimSpace(v)
	v = strings.TrimPrefix(v, "W/")
	v = strings.Trim(v, "\"")
	return v
}

func (h *MediaHandler) UploadAttachment(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}
	if _, err := httpx.LocalUint(c, "userID"); err != nil {
		return httpx.Unauthorized(c, "unauthorized", "Unauthorized")
	}

	conversationID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || conversationID == 0 {
		return httpx.BadRequest(c, "invalid_conversation_id", "Invalid conversation id")
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		return httpx.BadRequest(c, "missing_file", "A file field is required")
	}
	if fileHeader.Size <= 0 || fileHeader.Size > maxAttachmentBytes {
		return httpx.BadRequest(c, "invalid_file_size", "File must be between 1 byte and 10 MiB")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return httpx.Internal(c, "attachment_open_failed")
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key := storage.AttachmentKey(uint(conversationID), fileHeader.Filename)
	if _, err := h.s3.PutObject(c.Context(), key, file, fileHeader.Size, contentType); err != nil {
		log.Printf("[media] attachment put error key=%q err=%v", key, err)
		return httpx.Internal(c, "attachment_upload_failed")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"key": key,
		"url": "/api/media/" + key,
	})
}

func (h *MediaHandler) GetAttachment(c *fiber.Ctx) error {
	if h.s3 == nil {
		return httpx.Error(c, fiber.StatusServiceUnavailable, "storage_not_configured", "Storage not configured")
	}

	keyParam := strings.TrimSpace(c.Params("*"))
	key, err := storage.SafeJoinAttachmentPath(keyParam)
	if err != nil {
		return httpx.NotFound(c, "not_found", "Not found")
	}

	obj, st, err := h.s3.GetObject(c.Context(), key)
	if err != nil {
		log.Printf("[media] attachment get error key=%q err=%v", key, err)
		// Hide details.
		var resp minio.ErrorResponse
		if errors.As(err, &resp) {
			if resp.StatusCode == 404 || resp.Code == "NoSuchKey" || resp.Code == "NoSuchObject" {
				return httpx.NotFound(c, "not_found", "Not found")
			}
		}
		return httpx.Internal(c, "media_fetch_failed")
	}

	etag := st.ETag
	if etag != "" {
		c.Set("ETag", "\""+etag+"\"")
		if inm := normalizeETag(c.Get("If-None-Match")); inm != "" && inm == normalizeETag(etag) {
			_ = obj.Close()
			return c.SendStatus(fiber.StatusNotModified)
		}
	}
	if !st.LastModified.IsZero() {
		c.Set("Last-Modified", st.LastModified.UTC().Format(time.RFC1123))
	}

	// Keys are immutable, so clients may cache aggressively.
	c.Set("Cache-Control", "private, max-age=31536000, immutable")
	if st.ContentType != "" {
		c.Type(st.ContentType)
	} else {
		c.Type("application/octet-stream")
	}
	if st.Size > 0 {
		c.Set("Content-Length", strconv.FormatInt(st.Size, 10))
	}

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer func() {
			_ = obj.Close()
		}()

		n, copyErr := io.Copy(w, obj)
		if copyErr != nil {
			log.Printf("[media] attachment stream error key=%q copied=%d err=%v", key, n, copyErr)
			return
		}
		if err := w.Flush(); err != nil {
			log.Printf("[media] attachment stream flush error key=%q copied=%d err=%v", key, n, err)
		}
	})
	return nil
}
