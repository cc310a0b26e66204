// ABOUTME: Attachment is a file copied into private storage and linked to an activity
// ABOUTME: The local path is owned exclusively by its attachment row
package models

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// AttachmentType is the kind of attached file
type AttachmentType string

const (
	AttachmentImage    AttachmentType = "image"
	AttachmentPDF      AttachmentType = "pdf"
	AttachmentDocument AttachmentType = "document"
	AttachmentVideo    AttachmentType = "video"
)

// Valid reports whether t is a known attachment type
func (t AttachmentType) Valid() bool {
	switch t {
	case AttachmentImage, AttachmentPDF, AttachmentDocument, AttachmentVideo:
		return true
	}
	return false
}

// ParseAttachmentType converts a string into an AttachmentType
func ParseAttachmentType(s string) (AttachmentType, error) {
	t := AttachmentType(strings.ToLower(s))
	if !t.Valid() {
		return "", fmt.Errorf("unknown attachment type %q", s)
	}
	return t, nil
}

// GuessAttachmentType infers a type from a file extension, defaulting to document
func GuessAttachmentType(name string) AttachmentType {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp", ".heic":
		return AttachmentImage
	case ".pdf":
		return AttachmentPDF
	case ".mp4", ".mov", ".m4v", ".webm", ".mkv":
		return AttachmentVideo
	default:
		return AttachmentDocument
	}
}

// Attachment is a stored attachment row
type Attachment struct {
	ID             string         `json:"id"`
	ActivityID     string         `json:"activity_id"`
	Type           AttachmentType `json:"type"`
	LocalPath      string         `json:"local_path"`
	FileName       string         `json:"file_name"`
	FileSize       int64          `json:"file_size"`
	UploadedAt     time.Time      `json:"uploaded_at"`
	OCRText        string         `json:"ocr_text,omitempty"`
	OCRProcessedAt *time.Time     `json:"ocr_processed_at,omitempty"`
}
