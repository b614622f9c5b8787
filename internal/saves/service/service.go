// Package service orchestrates the save-editing flow: decode an upload
// into a session, re-scan and edit items, and re-encrypt for download with
// a mandatory self-verification pass.
package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/klauspost/compress/zip"
	"golang.org/x/sync/errgroup"

	"saveedit/internal/platform/metrics"
	"saveedit/internal/savefile"
	"saveedit/internal/saves/models"
	"saveedit/internal/saves/store"
	dErrors "saveedit/pkg/domain-errors"
)

// Service implements the save-editing operations over a session store.
type Service struct {
	logger   *slog.Logger
	sessions store.SessionStore
	metrics  *metrics.Metrics
}

func New(sessions store.SessionStore, logger *slog.Logger, m *metrics.Metrics) (*Service, error) {
	if sessions == nil {
		return nil, errors.New("session store is required")
	}
	if logger == nil {
		return nil, errors.New("logger is required")
	}
	return &Service{logger: logger, sessions: sessions, metrics: m}, nil
}

// Upload decodes an encrypted save, creates an ephemeral session around it,
// and returns the items found in the document.
func (s *Service) Upload(ctx context.Context, filename string, data []byte, platformID string, platform savefile.Platform) (*models.UploadResult, error) {
	start := time.Now()
	document, err := savefile.DecodeContainer(data, platformID, platform)
	if err != nil {
		return nil, s.decodeError(ctx, err)
	}
	s.metrics.ObserveDecode(time.Since(start))

	items, err := s.scanDocument(document)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		s.metrics.IncItemsDecoded(string(item.Category))
	}

	session := models.Session{
		ID:         uuid.NewString(),
		Filename:   filename,
		Platform:   platform,
		PlatformID: platformID,
		Ciphertext: data,
		Document:   document,
		CreatedAt:  time.Now(),
	}
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
	}

	s.logger.InfoContext(ctx, "save decoded",
		"session_id", session.ID,
		"filename", filename,
		"platform", platform,
		"items", len(items),
	)
	return &models.UploadResult{
		SessionID: session.ID,
		Filename:  filename,
		Items:     items,
	}, nil
}

// Items re-scans the session's current document.
func (s *Service) Items(ctx context.Context, sessionID string) (map[string]savefile.DecodedItem, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return s.scanDocument(session.Document)
}

// ApplyEdits writes per-path stat edits into the session's document. Only
// the stats present in each edit are written back; edits that cannot be
// applied keep the original serial and surface as warnings, not errors.
func (s *Service) ApplyEdits(ctx context.Context, sessionID string, edits map[string]savefile.Stats) (*models.EditResult, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	doc, err := savefile.ParseDocument(session.Document)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "session document unparseable")
	}
	items := savefile.FindSerials(doc)

	itemEdits := make(map[string]savefile.DecodedItem, len(edits))
	for path, stats := range edits {
		item, ok := items[path]
		if !ok {
			return nil, dErrors.New(dErrors.CodeNotFound, fmt.Sprintf("no item at path %q", path))
		}
		// Carry only the submitted stats so untouched fields keep their
		// original payload bytes.
		item.Stats = stats
		itemEdits[path] = item
	}

	edited, warnings, err := savefile.ApplyEdits(doc, itemEdits)
	if err != nil {
		if errors.Is(err, savefile.ErrPathNotFound) {
			return nil, dErrors.Wrap(err, dErrors.CodeNotFound, "edit path not in document")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply edits")
	}
	s.metrics.IncEncodeFallbacks(len(warnings))
	for _, warning := range warnings {
		s.logger.WarnContext(ctx, "item edit fell back to original serial",
			"session_id", sessionID,
			"detail", warning,
		)
	}

	document, err := savefile.MarshalDocument(edited)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to serialize document")
	}
	session.Document = document
	if err := s.sessions.Save(ctx, session); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to store session")
	}

	return &models.EditResult{
		Items:    savefile.FindSerials(edited),
		Warnings: warnings,
	}, nil
}

// Download re-encrypts the session's current document. The fresh
// ciphertext is decoded again and compared byte-for-byte against the
// document before anything is returned; a mismatch discards the write.
func (s *Service) Download(ctx context.Context, sessionID string) (models.DownloadResult, error) {
	session, err := s.findSession(ctx, sessionID)
	if err != nil {
		return models.DownloadResult{}, err
	}

	data, err := s.encodeVerified(ctx, session)
	if err != nil {
		return models.DownloadResult{}, err
	}
	return models.DownloadResult{Filename: session.Filename, Data: data}, nil
}

// Delete discards a session before its TTL runs out.
func (s *Service) Delete(ctx context.Context, sessionID string) error {
	if _, err := s.findSession(ctx, sessionID); err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to delete session")
	}
	s.logger.InfoContext(ctx, "session deleted", "session_id", sessionID)
	return nil
}

// BulkDownload re-encrypts several sessions into one ZIP archive. The
// sessions are encoded concurrently with shared context cancellation;
// every member is individually verified before it is added.
func (s *Service) BulkDownload(ctx context.Context, sessionIDs []string) ([]byte, error) {
	if len(sessionIDs) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "no session ids given")
	}

	type member struct {
		filename string
		data     []byte
	}
	members := make([]member, len(sessionIDs))

	g, ctx := errgroup.WithContext(ctx)
	for i, id := range sessionIDs {
		g.Go(func() error {
			session, err := s.findSession(ctx, id)
			if err != nil {
				return err
			}
			data, err := s.encodeVerified(ctx, session)
			if err != nil {
				return err
			}
			members[i] = member{filename: session.Filename, data: data}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// The archive itself is written sequentially so member order matches
	// the request and duplicate filenames stay deterministic.
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	seen := make(map[string]int)
	for _, m := range members {
		name := m.filename
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%d-%s", n, name)
		}
		seen[m.filename]++

		f, err := zw.Create(name)
		if err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build archive")
		}
		if _, err := f.Write(m.data); err != nil {
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build archive")
		}
	}
	if err := zw.Close(); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to build archive")
	}
	return buf.Bytes(), nil
}

// encodeVerified is the one place ciphertext leaves the service: encode,
// decode again, and byte-compare against the intended document.
func (s *Service) encodeVerified(ctx context.Context, session models.Session) ([]byte, error) {
	ciphertext, err := savefile.EncodeContainer(session.Document, session.PlatformID, session.Platform)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to encode container")
	}

	roundTripped, err := savefile.DecodeContainer(ciphertext, session.PlatformID, session.Platform)
	if err != nil || !bytes.Equal(roundTripped, session.Document) {
		s.logger.ErrorContext(ctx, "container verification failed",
			"session_id", session.ID,
			"error", err,
		)
		return nil, dErrors.Wrap(savefile.ErrVerificationFailed,
			dErrors.CodeVerificationFailed, "re-encoded save did not round trip")
	}
	s.metrics.IncSavesEncoded()
	return ciphertext, nil
}

func (s *Service) findSession(ctx context.Context, sessionID string) (models.Session, error) {
	session, err := s.sessions.FindByID(ctx, sessionID)
	if errors.Is(err, store.ErrNotFound) {
		return models.Session{}, dErrors.New(dErrors.CodeNotFound, "session not found or expired")
	}
	if err != nil {
		return models.Session{}, dErrors.Wrap(err, dErrors.CodeInternal, "session lookup failed")
	}
	return session, nil
}

func (s *Service) scanDocument(document []byte) (map[string]savefile.DecodedItem, error) {
	doc, err := savefile.ParseDocument(document)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeDecryptionFailed,
			"decrypted save is not a parseable document")
	}
	return savefile.FindSerials(doc), nil
}

func (s *Service) decodeError(ctx context.Context, err error) error {
	switch {
	case errors.Is(err, savefile.ErrCorruptedContainer):
		s.metrics.IncDecodeFailure("corrupted")
		return dErrors.Wrap(err, dErrors.CodeCorruptedContainer, "save file is structurally invalid")
	case errors.Is(err, savefile.ErrDecryptionFailed):
		s.metrics.IncDecodeFailure("decryption")
		return dErrors.Wrap(err, dErrors.CodeDecryptionFailed,
			"could not decrypt save; check the platform identifier")
	default:
		s.metrics.IncDecodeFailure("internal")
		s.logger.ErrorContext(ctx, "unexpected decode failure", "error", err)
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to decode save")
	}
}
