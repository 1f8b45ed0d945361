// internal/services/session_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/draft"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/normalize"
	"github.com/opencustoms/trade-portal/internal/upload"
	"github.com/opencustoms/trade-portal/internal/wizard"
)

var (
	ErrSessionNotFound = errors.New("wizard session not found")
	ErrNotEditable     = errors.New("application is no longer editable")
)

// WizardSession is one open wizard: its draft store, step controller and
// upload coordinator. Exactly one wizard owns a session; there is no
// cross-tab or cross-user sharing.
type WizardSession struct {
	ID          string
	Kind        models.FlowKind
	OwnerTin    string
	OwnerUserID string
	Rules       wizard.Rules
	Store       *draft.Store
	Uploads     *upload.Coordinator

	controller *wizard.Controller

	mu     sync.Mutex
	appID  *int
	status models.ApplicationStatus
	closed bool
}

func (s *WizardSession) AppID() *int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appID == nil {
		return nil
	}
	id := *s.appID
	return &id
}

func (s *WizardSession) SetAppID(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.appID = &id
}

func (s *WizardSession) Status() models.ApplicationStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

func (s *WizardSession) SetStatus(status models.ApplicationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = status
}

// Alive reports whether results may still be written back into the
// session. Upload completions check this instead of writing into a closed
// session.
func (s *WizardSession) Alive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.closed
}

func (s *WizardSession) close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Step returns the current wizard step.
func (s *WizardSession) Step() wizard.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Step()
}

// Next attempts the forward transition under the session lock.
func (s *WizardSession) Next(ctx context.Context) wizard.Transition {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Next(ctx)
}

// Back moves backwards; it never validates.
func (s *WizardSession) Back() wizard.Step {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.controller.Back()
}

type sessionAPI interface {
	GetApplication(ctx context.Context, sc client.SessionContext, id int) (map[string]interface{}, error)
	UploadAttachment(ctx context.Context, sc client.SessionContext, fileName, contentType string, content []byte) (*client.UploadResult, error)
}

// TransportFactory builds the upload transport for one session's
// credentials. When unset the coordinator routes bytes through the
// upstream multipart endpoint.
type TransportFactory func(sc client.SessionContext) upload.Transport

// SessionService owns the registry of open wizard sessions.
type SessionService struct {
	api       sessionAPI
	refs      *ReferenceService
	maxSize   int64
	transport TransportFactory
	log       *logrus.Entry

	mu       sync.Mutex
	sessions map[string]*WizardSession
}

func NewSessionService(api sessionAPI, refs *ReferenceService, maxUploadSize int64) *SessionService {
	return &SessionService{
		api:      api,
		refs:     refs,
		maxSize:  maxUploadSize,
		log:      logrus.WithField("component", "session_service"),
		sessions: make(map[string]*WizardSession),
	}
}

// SetTransportFactory swaps in an alternate upload transport (direct to
// S3). Call before serving traffic.
func (s *SessionService) SetTransportFactory(f TransportFactory) {
	s.transport = f
}

// Open starts a wizard session. When existingID is set, the draft is
// hydrated from the upstream before the session is handed out; a hydration
// failure yields an error and no session, so the caller can fall back to
// its list view instead of opening a broken wizard. The wizard never
// renders until hydration settles.
func (s *SessionService) Open(ctx context.Context, sc client.SessionContext, kind models.FlowKind, ownerUserID string, existingID *int) (*WizardSession, error) {
	rules := wizard.RulesFor(kind)
	store := draft.NewStore(rules.ListSpecs)

	sess := &WizardSession{
		ID:          uuid.New().String(),
		Kind:        kind,
		OwnerTin:    sc.Tin,
		OwnerUserID: ownerUserID,
		Rules:       rules,
		Store:       store,
		status:      models.ApplicationStatusDraft,
	}

	// The required-type set is fetched once per session and memoized by the
	// reference service underneath. The fetch runs on the transition
	// request's context, not a detached one.
	catalog := func(ctx context.Context) ([]models.AttachmentType, error) {
		return s.refs.AttachmentTypes(ctx, sc)
	}
	sess.controller = wizard.NewController(rules, store, catalog)
	var transport upload.Transport = &apiTransport{api: s.api, sc: sc}
	if s.transport != nil {
		transport = s.transport(sc)
	}
	sess.Uploads = upload.NewCoordinator(transport, s.maxSize)

	if existingID != nil {
		raw, err := s.api.GetApplication(ctx, sc, *existingID)
		if err != nil {
			return nil, fmt.Errorf("failed to load application %d: %w", *existingID, err)
		}
		doc := normalize.SchemaFor(kind).Normalize(raw)
		if !doc.Status.Editable() {
			return nil, ErrNotEditable
		}
		store.Hydrate(doc)
		if doc.ID != nil {
			sess.SetAppID(*doc.ID)
		}
		sess.SetStatus(doc.Status)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"kind":    kind,
		"hydrate": existingID != nil,
	}).Info("wizard session opened")

	return sess, nil
}

func (s *SessionService) Get(id string) (*WizardSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Close abandons a session. In-flight uploads keep running but their
// completions find the session no longer alive and drop their results.
func (s *SessionService) Close(id string) error {
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if !ok {
		return ErrSessionNotFound
	}
	sess.close()
	return nil
}

// UploadAttachment runs one attachment upload through the session's
// coordinator and, on success, writes the record id back into the matching
// ref. Until the write-back happens the ref stays incomplete.
func (s *SessionService) UploadAttachment(ctx context.Context, sess *WizardSession, localID, fileName, contentType string, content []byte) (*upload.Result, error) {
	result, err := sess.Uploads.Upload(ctx, fileName, contentType, content)
	if err != nil {
		return nil, err
	}

	if !sess.Alive() {
		// Session was abandoned mid-upload; nothing to write back into.
		return result, nil
	}

	if err := sess.Store.UpdateField(models.ListAttachments, localID, "uploadedRecordId", float64(result.AttachmentRecordID)); err != nil {
		return nil, err
	}
	if err := sess.Store.UpdateField(models.ListAttachments, localID, "relativePath", result.RelativePath); err != nil {
		return nil, err
	}
	if err := sess.Store.UpdateField(models.ListAttachments, localID, "fileName", fileName); err != nil {
		return nil, err
	}
	return result, nil
}

// apiTransport bridges the upload coordinator onto the upstream multipart
// endpoint for one session's credentials.
type apiTransport struct {
	api sessionAPI
	sc  client.SessionContext
}

func (t *apiTransport) Upload(ctx context.Context, name, contentType string, content []byte, report func(int)) (*upload.Result, error) {
	report(0)
	res, err := t.api.UploadAttachment(ctx, t.sc, name, contentType, content)
	if err != nil {
		return nil, err
	}
	report(100)
	return &upload.Result{AttachmentRecordID: res.AttachmentRecordID, RelativePath: res.RelativePath}, nil
}
