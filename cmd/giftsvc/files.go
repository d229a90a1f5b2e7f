package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"gift-tracker/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// uploadFile accepts a multipart file upload and returns the stored reference
// and resolved URL. Pass is_private=1 to keep the file behind the download
// endpoint.
func uploadFile(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respondError(c, apperrors.Validationf("file is required"))
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	private := c.PostForm("is_private") == "1" || strings.EqualFold(c.PostForm("is_private"), "true")

	// Prefix with a random id so concurrent uploads of the same filename
	// never clobber each other.
	ext := filepath.Ext(fileHeader.Filename)
	base := strings.TrimSuffix(filepath.Base(fileHeader.Filename), ext)
	stored := fmt.Sprintf("%s_%s%s", base, uuid.New().String()[:8], ext)

	ref, err := fileStore.Save(stored, data, private)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"file_url":   ref,
		"url":        fileStore.ResolveURL(ref),
		"file_name":  stored,
		"is_private": private,
	})
}

// downloadFile serves a stored file by its reference. Private references are
// only reachable through here, never via the static file tree.
func downloadFile(c *gin.Context) {
	ref := c.Query("file_url")
	if ref == "" {
		respondError(c, apperrors.Validationf("file_url is required"))
		return
	}

	path, err := fileStore.Open(ref)
	if err != nil {
		respondError(c, apperrors.Validationf("invalid file reference"))
		return
	}
	if _, err := os.Stat(path); err != nil {
		respondError(c, apperrors.NotFoundf("file not found"))
		return
	}

	c.FileAttachment(path, filepath.Base(path))
}
