// Package models holds the session entity and the request/response shapes
// of the save-editor API.
package models

import (
	"time"

	"saveedit/internal/savefile"
)

// Session is one uploaded save being edited. Sessions are ephemeral: keyed
// by a random UUID, expired after a TTL, never tied to an account. The
// ciphertext is kept only so the original upload can be recovered; all
// edits operate on the decoded document bytes.
type Session struct {
	ID         string             `json:"id"`
	Filename   string             `json:"filename"`
	Platform   savefile.Platform  `json:"platform"`
	PlatformID string             `json:"platform_id"`
	Ciphertext []byte             `json:"ciphertext"`
	Document   []byte             `json:"document"`
	CreatedAt  time.Time          `json:"created_at"`
}

// UploadResult is returned after a save is decoded and a session created.
type UploadResult struct {
	SessionID string                           `json:"session_id"`
	Filename  string                           `json:"filename"`
	Items     map[string]savefile.DecodedItem  `json:"items"`
}

// DownloadResult is a re-encrypted save ready to serve.
type DownloadResult struct {
	Filename string `json:"filename"`
	Data     []byte `json:"-"`
}

// EditRequest is the PATCH body: per-path partial stat edits. Only the
// fields present in a StatEdit are written back into the serial; everything
// else keeps its original bytes.
type EditRequest struct {
	Edits map[string]savefile.Stats `json:"edits"`
}

// EditResult reports non-fatal fallbacks alongside the refreshed items.
type EditResult struct {
	Items    map[string]savefile.DecodedItem `json:"items"`
	Warnings []string                        `json:"warnings,omitempty"`
}

// BulkDownloadRequest names the sessions to bundle into one archive.
type BulkDownloadRequest struct {
	SessionIDs []string `json:"session_ids"`
}
