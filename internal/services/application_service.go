// internal/services/application_service.go
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/normalize"
	"github.com/opencustoms/trade-portal/internal/validation"
)

type applicationAPI interface {
	CreateApplication(ctx context.Context, sc client.SessionContext, payload models.Record) (int, error)
	UpdateApplication(ctx context.Context, sc client.SessionContext, id int, payload models.Record) (int, error)
	SubmitApplication(ctx context.Context, sc client.SessionContext, id int) error
}

// ApplicationService is the submission orchestrator: it assembles the
// outbound payload, decides create-vs-update and writes the assigned id
// back into the session so repeat submissions become updates. That
// write-back is the only idempotency guarantee; concurrent submission of
// one draft from two different sessions is last-write-wins at the
// upstream and is deliberately not deduplicated here.
type ApplicationService struct {
	api applicationAPI
	log *logrus.Entry
}

func NewApplicationService(api applicationAPI) *ApplicationService {
	return &ApplicationService{
		api: api,
		log: logrus.WithField("component", "application_service"),
	}
}

// Submit sends the draft with the intended status (draft or submitted).
// A non-nil application id routes to update, including id 0, which is a
// valid assigned id rather than "absent". Errors pass through verbatim.
func (s *ApplicationService) Submit(ctx context.Context, sc client.SessionContext, sess *WizardSession, intended models.ApplicationStatus) (int, error) {
	if intended != models.ApplicationStatusDraft && intended != models.ApplicationStatusSubmitted {
		return 0, fmt.Errorf("unsupported submission status %q", intended)
	}

	if err := validateDeclarations(sess); err != nil {
		return 0, err
	}

	payload := s.buildPayload(sess, intended)

	existing := sess.AppID()
	var (
		id  int
		err error
	)
	if existing != nil {
		id, err = s.api.UpdateApplication(ctx, sc, *existing, payload)
	} else {
		id, err = s.api.CreateApplication(ctx, sc, payload)
	}
	if err != nil {
		return 0, err
	}

	sess.SetAppID(id)
	sess.SetStatus(intended)

	s.log.WithFields(logrus.Fields{
		"session": sess.ID,
		"app_id":  id,
		"status":  intended,
		"update":  existing != nil,
	}).Info("application submitted")

	return id, nil
}

// SubmitForReview transitions an already-saved draft to submitted without
// resending the payload.
func (s *ApplicationService) SubmitForReview(ctx context.Context, sc client.SessionContext, sess *WizardSession) error {
	existing := sess.AppID()
	if existing == nil {
		return errors.New("application has not been saved yet")
	}
	if err := s.api.SubmitApplication(ctx, sc, *existing); err != nil {
		return err
	}
	sess.SetStatus(models.ApplicationStatusSubmitted)
	return nil
}

// validateDeclarations rejects declaration rows dated in the future before
// anything leaves the service. Rows without a date are still being edited
// and pass; the upstream enforces completeness on its side.
func validateDeclarations(sess *WizardSession) error {
	for _, row := range sess.Store.Records(models.ListDeclarations) {
		date, ok := row["declarationDate"].(string)
		if !ok || date == "" {
			continue
		}
		if res := validation.DateNotFuture(date); !res.OK {
			return fmt.Errorf("declarationDate: %s", res.Message)
		}
	}
	return nil
}

func (s *ApplicationService) buildPayload(sess *WizardSession, intended models.ApplicationStatus) models.Record {
	snapshot := sess.Store.Snapshot()

	schema := normalize.SchemaFor(sess.Kind)
	strip := []string{models.LocalIDField}
	if schema.ParentKey != "" {
		strip = append(strip, schema.ParentKey)
	}

	payload := normalize.Sanitize(map[string]interface{}(snapshot), strip...).(map[string]interface{})
	payload["status"] = string(intended)
	payload["ownerTin"] = sess.OwnerTin
	payload["ownerUserId"] = sess.OwnerUserID
	return models.Record(payload)
}
