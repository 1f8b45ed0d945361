// internal/wizard/controller_test.go
package wizard

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencustoms/trade-portal/internal/draft"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/validation"
)

func newWaiverController(t *testing.T, catalog CatalogFunc) (*Controller, *draft.Store) {
	t.Helper()
	rules := RulesFor(models.FlowDutyWaiver)
	store := draft.NewStore(rules.ListSpecs)
	if catalog == nil {
		catalog = func(ctx context.Context) ([]models.AttachmentType, error) { return nil, nil }
	}
	return NewController(rules, store, catalog), store
}

func validWaiverDetails() models.Record {
	start := time.Now().AddDate(0, 1, 0)
	return models.Record{
		"tin":                "12345678",
		"projectName":        "Solar Plant",
		"projectDescription": "Grid-scale solar installation",
		"district":           "Lilongwe",
		"projectValue":       "2500000",
		"startDate":          start.Format(validation.DateLayout),
		"endDate":            start.AddDate(1, 0, 0).Format(validation.DateLayout),
		"reasonForApplying":  "Imported equipment qualifies for the industrial rebate scheme",
	}
}

func TestNextBlocksOnInvalidDetails(t *testing.T) {
	c, store := newWaiverController(t, nil)

	details := validWaiverDetails()
	delete(details, "projectName")
	details["tin"] = "123" // wrong format
	store.MergeDetails(details)

	tr := c.Next(context.Background())

	assert.False(t, tr.Moved)
	assert.Equal(t, StepDetails, tr.Step)
	assert.Equal(t, StepDetails, c.Step())
	require.NotEmpty(t, tr.FieldErrors)
	assert.Contains(t, tr.FieldErrors, "projectName")
	assert.Contains(t, tr.FieldErrors, "tin")
	assert.NotContains(t, tr.FieldErrors, "district")
}

func TestNextAdvancesOnValidDetails(t *testing.T) {
	c, store := newWaiverController(t, nil)
	store.MergeDetails(validWaiverDetails())

	tr := c.Next(context.Background())

	assert.True(t, tr.Moved)
	assert.Equal(t, StepItems, tr.Step)
	assert.Empty(t, tr.FieldErrors)
}

func TestStartDateInPastBlocked(t *testing.T) {
	c, store := newWaiverController(t, nil)
	details := validWaiverDetails()
	details["startDate"] = "2020-01-01"
	store.MergeDetails(details)

	tr := c.Next(context.Background())

	assert.False(t, tr.Moved)
	assert.Contains(t, tr.FieldErrors, "startDate")
}

func TestDateRangeGate(t *testing.T) {
	c, store := newWaiverController(t, nil)
	details := validWaiverDetails()
	details["endDate"] = details["startDate"].(string) // zero-length span is fine
	store.MergeDetails(details)
	assert.True(t, c.Next(context.Background()).Moved)

	c, store = newWaiverController(t, nil)
	details = validWaiverDetails()
	start, err := time.Parse(validation.DateLayout, details["startDate"].(string))
	require.NoError(t, err)
	details["endDate"] = start.AddDate(0, 0, -1).Format(validation.DateLayout) // before start
	store.MergeDetails(details)

	tr := c.Next(context.Background())

	assert.False(t, tr.Moved)
	assert.Contains(t, tr.FieldErrors, "endDate")
}

func TestItemsGateIsGeneric(t *testing.T) {
	c, store := newWaiverController(t, nil)
	store.MergeDetails(validWaiverDetails())
	require.True(t, c.Next(context.Background()).Moved)

	// The store seeds one default item row; remove it to empty the list.
	rows := store.Records(models.ListItems)
	require.Len(t, rows, 1)
	require.NoError(t, store.RemoveRecord(models.ListItems, rows[0][models.LocalIDField].(string)))

	tr := c.Next(context.Background())
	assert.False(t, tr.Moved)
	assert.Equal(t, StepItems, tr.Step)
	assert.Empty(t, tr.FieldErrors, "items gate is a single generic error")
	assert.NotEmpty(t, tr.Message)

	_, err := store.AddRecord(models.ListItems, nil)
	require.NoError(t, err)
	assert.True(t, c.Next(context.Background()).Moved)
}

func TestRequiredAttachmentGate(t *testing.T) {
	catalog := func(ctx context.Context) ([]models.AttachmentType, error) {
		return []models.AttachmentType{
			{ID: 1, Name: "Tax clearance", Required: true},
			{ID: 2, Name: "Site photos", Required: false},
		}, nil
	}
	c, store := newWaiverController(t, catalog)
	store.MergeDetails(validWaiverDetails())
	require.True(t, c.Next(context.Background()).Moved) // -> items
	require.True(t, c.Next(context.Background()).Moved) // -> attachments

	// A ref of the required type without an uploadedRecordId does not count.
	ref, err := store.AddRecord(models.ListAttachments, models.Record{"attachmentTypeId": 1.0})
	require.NoError(t, err)

	tr := c.Next(context.Background())
	assert.False(t, tr.Moved)
	assert.Equal(t, StepAttachments, tr.Step)
	assert.Contains(t, tr.Message, "Tax clearance")

	// Completing the upload unblocks even though optional types are missing.
	localID := ref[models.LocalIDField].(string)
	require.NoError(t, store.UpdateField(models.ListAttachments, localID, "uploadedRecordId", 55.0))

	tr = c.Next(context.Background())
	assert.True(t, tr.Moved)
	assert.Equal(t, StepReview, tr.Step)
}

func TestCatalogErrorSurfaces(t *testing.T) {
	c, store := newWaiverController(t, func(ctx context.Context) ([]models.AttachmentType, error) {
		return nil, errors.New("attachment types unavailable")
	})
	store.MergeDetails(validWaiverDetails())
	require.True(t, c.Next(context.Background()).Moved)
	require.True(t, c.Next(context.Background()).Moved)

	_, err := store.AddRecord(models.ListAttachments, models.Record{"attachmentTypeId": 1.0})
	require.NoError(t, err)

	tr := c.Next(context.Background())
	assert.False(t, tr.Moved)
	assert.Equal(t, "attachment types unavailable", tr.Message)
}

func TestCatalogReceivesCallerContext(t *testing.T) {
	c, store := newWaiverController(t, func(ctx context.Context) ([]models.AttachmentType, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, nil
	})
	store.MergeDetails(validWaiverDetails())
	require.True(t, c.Next(context.Background()).Moved)
	require.True(t, c.Next(context.Background()).Moved)

	_, err := store.AddRecord(models.ListAttachments, models.Record{"attachmentTypeId": 1.0})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tr := c.Next(ctx)
	assert.False(t, tr.Moved)
	assert.Equal(t, context.Canceled.Error(), tr.Message)
}

func TestBackNeverValidatesOrDiscards(t *testing.T) {
	c, store := newWaiverController(t, nil)
	store.MergeDetails(validWaiverDetails())
	require.True(t, c.Next(context.Background()).Moved)

	// Corrupt the details, then go back and forth.
	store.SetDetail("tin", "bad")
	assert.Equal(t, StepDetails, c.Back())
	assert.Equal(t, "bad", store.Details()["tin"], "Back must not discard entered data")

	// Back at the first step is a no-op.
	assert.Equal(t, StepDetails, c.Back())
}

func TestReviewIsTerminal(t *testing.T) {
	rules := RulesFor(models.FlowCompanyProfile)
	store := draft.NewStore(rules.ListSpecs)
	c := NewController(rules, store, func(ctx context.Context) ([]models.AttachmentType, error) { return nil, nil })

	store.MergeDetails(models.Record{
		"tin":         "12345678",
		"companyName": "Acme Traders",
		"district":    "Blantyre",
		"email":       "ops@acme.example",
		"phoneNumber": "0999123456",
	})

	tr := c.Next(context.Background())
	require.True(t, tr.Moved)
	require.Equal(t, StepReview, tr.Step)

	tr = c.Next(context.Background())
	assert.False(t, tr.Moved)
	assert.Equal(t, StepReview, tr.Step)
}
