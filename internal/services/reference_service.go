// internal/services/reference_service.go
package services

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/models"
)

type referenceAPI interface {
	ApplicationTypes(ctx context.Context, sc client.SessionContext) ([]models.ApplicationType, error)
	Districts(ctx context.Context, sc client.SessionContext) ([]models.District, error)
	UnitsOfMeasure(ctx context.Context, sc client.SessionContext) ([]models.UnitOfMeasure, error)
	AttachmentTypes(ctx context.Context, sc client.SessionContext) ([]models.AttachmentType, error)
}

// ReferenceService memoizes the upstream's static lookups. Each resource is
// fetched at most once per process lifetime and shared read-only afterwards;
// the loaded guard avoids duplicate network calls when several sessions ask
// at the same time.
type ReferenceService struct {
	api referenceAPI
	log *logrus.Entry

	mu sync.Mutex

	appTypes       []models.ApplicationType
	appTypesLoaded bool

	districts       []models.District
	districtsLoaded bool

	uoms       []models.UnitOfMeasure
	uomsLoaded bool

	attachTypes       []models.AttachmentType
	attachTypesLoaded bool
}

func NewReferenceService(api referenceAPI) *ReferenceService {
	return &ReferenceService{
		api: api,
		log: logrus.WithField("component", "reference_service"),
	}
}

func (s *ReferenceService) ApplicationTypes(ctx context.Context, sc client.SessionContext) ([]models.ApplicationType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.appTypesLoaded {
		return s.appTypes, nil
	}
	types, err := s.api.ApplicationTypes(ctx, sc)
	if err != nil {
		return nil, err
	}
	s.appTypes = types
	s.appTypesLoaded = true
	s.log.WithField("count", len(types)).Debug("application types loaded")
	return types, nil
}

func (s *ReferenceService) Districts(ctx context.Context, sc client.SessionContext) ([]models.District, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.districtsLoaded {
		return s.districts, nil
	}
	districts, err := s.api.Districts(ctx, sc)
	if err != nil {
		return nil, err
	}
	s.districts = districts
	s.districtsLoaded = true
	return districts, nil
}

func (s *ReferenceService) UnitsOfMeasure(ctx context.Context, sc client.SessionContext) ([]models.UnitOfMeasure, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uomsLoaded {
		return s.uoms, nil
	}
	uoms, err := s.api.UnitsOfMeasure(ctx, sc)
	if err != nil {
		return nil, err
	}
	s.uoms = uoms
	s.uomsLoaded = true
	return uoms, nil
}

func (s *ReferenceService) AttachmentTypes(ctx context.Context, sc client.SessionContext) ([]models.AttachmentType, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attachTypesLoaded {
		return s.attachTypes, nil
	}
	types, err := s.api.AttachmentTypes(ctx, sc)
	if err != nil {
		return nil, err
	}
	s.attachTypes = types
	s.attachTypesLoaded = true
	return types, nil
}

// DistrictNames builds the id-to-label map the UI renders from.
func (s *ReferenceService) DistrictNames(ctx context.Context, sc client.SessionContext) (map[int]string, error) {
	districts, err := s.Districts(ctx, sc)
	if err != nil {
		return nil, err
	}
	out := make(map[int]string, len(districts))
	for _, d := range districts {
		out[d.ID] = d.Name
	}
	return out, nil
}

// RequiredAttachmentTypes filters the catalog down to the mandatory set.
func (s *ReferenceService) RequiredAttachmentTypes(ctx context.Context, sc client.SessionContext) ([]models.AttachmentType, error) {
	types, err := s.AttachmentTypes(ctx, sc)
	if err != nil {
		return nil, err
	}
	out := make([]models.AttachmentType, 0, len(types))
	for _, at := range types {
		if at.Required {
			out = append(out, at)
		}
	}
	return out, nil
}
