// internal/services/reference_service_test.go
package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencustoms/trade-portal/internal/client"
	"github.com/opencustoms/trade-portal/internal/models"
)

type fakeReferenceAPI struct {
	appTypeCalls  int
	districtCalls int
	uomCalls      int
	attachCalls   int
	attachErr     error
}

func (f *fakeReferenceAPI) ApplicationTypes(ctx context.Context, sc client.SessionContext) ([]models.ApplicationType, error) {
	f.appTypeCalls++
	return []models.ApplicationType{{ID: 1, Name: "Duty Waiver"}}, nil
}

func (f *fakeReferenceAPI) Districts(ctx context.Context, sc client.SessionContext) ([]models.District, error) {
	f.districtCalls++
	return []models.District{{ID: 1, Name: "Lilongwe"}, {ID: 2, Name: "Blantyre"}}, nil
}

func (f *fakeReferenceAPI) UnitsOfMeasure(ctx context.Context, sc client.SessionContext) ([]models.UnitOfMeasure, error) {
	f.uomCalls++
	return []models.UnitOfMeasure{{ID: 7, Name: "Kilogram"}}, nil
}

func (f *fakeReferenceAPI) AttachmentTypes(ctx context.Context, sc client.SessionContext) ([]models.AttachmentType, error) {
	f.attachCalls++
	if f.attachErr != nil {
		return nil, f.attachErr
	}
	return []models.AttachmentType{
		{ID: 1, Name: "Tax clearance", Required: true},
		{ID: 2, Name: "Cover letter", Required: false},
	}, nil
}

func TestReferenceLookupsAreMemoized(t *testing.T) {
	api := &fakeReferenceAPI{}
	svc := NewReferenceService(api)
	ctx := context.Background()
	sc := client.SessionContext{}

	for i := 0; i < 3; i++ {
		_, err := svc.Districts(ctx, sc)
		require.NoError(t, err)
		_, err = svc.AttachmentTypes(ctx, sc)
		require.NoError(t, err)
	}

	assert.Equal(t, 1, api.districtCalls)
	assert.Equal(t, 1, api.attachCalls)
}

func TestReferenceFailureIsNotCached(t *testing.T) {
	api := &fakeReferenceAPI{attachErr: errors.New("timeout")}
	svc := NewReferenceService(api)

	_, err := svc.AttachmentTypes(context.Background(), client.SessionContext{})
	require.Error(t, err)

	// A later call retries instead of serving the failure.
	api.attachErr = nil
	types, err := svc.AttachmentTypes(context.Background(), client.SessionContext{})
	require.NoError(t, err)
	assert.Len(t, types, 2)
	assert.Equal(t, 2, api.attachCalls)
}

func TestDistrictNames(t *testing.T) {
	svc := NewReferenceService(&fakeReferenceAPI{})

	names, err := svc.DistrictNames(context.Background(), client.SessionContext{})
	require.NoError(t, err)
	assert.Equal(t, map[int]string{1: "Lilongwe", 2: "Blantyre"}, names)
}

func TestRequiredAttachmentTypes(t *testing.T) {
	svc := NewReferenceService(&fakeReferenceAPI{})

	required, err := svc.RequiredAttachmentTypes(context.Background(), client.SessionContext{})
	require.NoError(t, err)
	require.Len(t, required, 1)
	assert.Equal(t, "Tax clearance", required[0].Name)
}
