package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/rs/zerolog/log"

	"github.com/quickfetch/quickfetch/internal/audit"
	"github.com/quickfetch/quickfetch/internal/clipboard"
	apperrors "github.com/quickfetch/quickfetch/internal/errors"
	"github.com/quickfetch/quickfetch/internal/model"
	"github.com/quickfetch/quickfetch/internal/qr"
	"github.com/quickfetch/quickfetch/internal/repository"
	"github.com/quickfetch/quickfetch/internal/session"
)

// QRPayload is what the desktop UI needs to show a scannable join code.
type QRPayload struct {
	URL     string `json:"url"`
	QRImage string `json:"qrImage"`
}

// Delivery is the result of claiming received content for its target.
type Delivery struct {
	TargetFieldID string `json:"targetFieldId"`
	Content       string `json:"content"`
}

// PairingService drives the transfer session: QR generation on the
// desktop side, submission on the mobile side, and final delivery of the
// received content.
type PairingService struct {
	store  *session.Store
	fields repository.FieldRepository
	scheme string
	port   int

	// CopyToClipboard handles the reserved CLIPBOARD target. Swappable in
	// tests; defaults to the platform clipboard.
	CopyToClipboard func(string) error
}

func NewPairingService(
	store *session.Store,
	fields repository.FieldRepository,
	scheme string,
	port int,
) *PairingService {
	return &PairingService{
		store:           store,
		fields:          fields,
		scheme:          scheme,
		port:            port,
		CopyToClipboard: clipboard.Copy,
	}
}

// GenerateQR returns the join URL and QR image for targetFieldID,
// advertised at the given local address. An open session for the same
// target is reused, so switching the displayed address never invalidates
// the session; any other prior session is replaced.
func (s *PairingService) GenerateQR(ctx context.Context, targetFieldID, address string) (*QRPayload, error) {
	if targetFieldID == "" {
		return nil, apperrors.MissingRequired("targetId")
	}
	if address == "" {
		return nil, apperrors.MissingRequired("address")
	}

	cur, ok := s.store.Current()
	if !ok || cur.State != session.StateOpen || cur.TargetFieldID != targetFieldID {
		cur = s.store.Create(targetFieldID)

		log.Info().
			Str("sessionId", cur.ID).
			Str("targetFieldId", targetFieldID).
			Msg("pairing session created")
		audit.Log(audit.Event{
			Type:      audit.EventSessionCreate,
			SessionID: cur.ID,
			FieldID:   targetFieldID,
		})
	}

	url := qr.BuildJoinURL(s.scheme, address, s.port)
	image, err := qr.Render(url)
	if err != nil {
		return nil, err
	}

	return &QRPayload{URL: url, QRImage: image}, nil
}

// Submit records content from the mobile device. Only the first
// submission against the open session succeeds.
func (s *PairingService) Submit(ctx context.Context, content, remoteIP string) error {
	if content == "" {
		return apperrors.MissingRequired("content")
	}

	if err := s.store.Submit(content); err != nil {
		audit.Log(audit.Event{
			Type:     audit.EventStaleSubmission,
			RemoteIP: remoteIP,
		})
		return err
	}

	cur, _ := s.store.Current()
	log.Info().Str("sessionId", cur.ID).Msg("content received")
	audit.Log(audit.Event{
		Type:      audit.EventContentReceived,
		SessionID: cur.ID,
		FieldID:   cur.TargetFieldID,
		RemoteIP:  remoteIP,
	})
	return nil
}

// Poll reports whether content has arrived. Side-effect-free.
func (s *PairingService) Poll() session.Status {
	return s.store.Poll()
}

// Cancel tears down the active session so no late submission can be
// accepted after the user has abandoned the pairing UI. Idempotent.
func (s *PairingService) Cancel() {
	cur, ok := s.store.Current()
	s.store.Close()

	if ok && cur.State != session.StateClosed {
		audit.Log(audit.Event{
			Type:      audit.EventSessionReset,
			SessionID: cur.ID,
		})
	}
}

// Deliver claims the received content exactly once and routes it to its
// target: the stored field, or the system clipboard for the reserved
// CLIPBOARD target. The session ends up closed either way.
func (s *PairingService) Deliver(ctx context.Context) (*Delivery, error) {
	sess, ok := s.store.TakeReceived()
	if !ok {
		return nil, apperrors.StaleSession()
	}

	if sess.TargetFieldID == model.ClipboardTarget {
		if err := s.CopyToClipboard(sess.Content); err != nil {
			log.Warn().Err(err).Msg("clipboard copy failed")
		}
	} else if err := s.fields.SetText(ctx, sess.TargetFieldID, sess.Content); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, apperrors.NotFound("Field")
		}
		return nil, err
	}

	audit.Log(audit.Event{
		Type:      audit.EventContentDelivered,
		SessionID: sess.ID,
		FieldID:   sess.TargetFieldID,
	})

	return &Delivery{TargetFieldID: sess.TargetFieldID, Content: sess.Content}, nil
}
