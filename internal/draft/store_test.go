// internal/draft/store_test.go
package draft

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/normalize"
)

func testSpecs() []ListSpec {
	return []ListSpec{
		{Name: models.ListItems, Template: models.Record{"hsCode": "", "quantity": 0.0}},
		{Name: models.ListCustomsAgents, Template: models.Record{"agentCode": ""}},
		{Name: models.ListCompanyContacts, Template: models.Record{"firstName": ""}},
		{Name: models.ListAttachments, Template: models.Record{"attachmentTypeId": 0.0}, AllowEmpty: true},
		{Name: models.ListDeclarations, Template: models.Record{"isConfirmed": false}, AllowEmpty: true},
	}
}

func TestNewStoreDefaultRows(t *testing.T) {
	s := NewStore(testSpecs())

	// Record sections render one editable row on first view...
	assert.Equal(t, 1, s.Count(models.ListItems))
	// ...except attachments and declarations, which start empty.
	assert.Equal(t, 0, s.Count(models.ListAttachments))
	assert.Equal(t, 0, s.Count(models.ListDeclarations))
}

func TestAddRecordDoesNotAliasTemplate(t *testing.T) {
	s := NewStore(testSpecs())
	template := models.Record{"hsCode": ""}

	first, err := s.AddRecord(models.ListItems, template)
	require.NoError(t, err)
	second, err := s.AddRecord(models.ListItems, template)
	require.NoError(t, err)

	require.NoError(t, s.UpdateField(models.ListItems, first[models.LocalIDField].(string), "hsCode", "11111111"))

	rows := s.Records(models.ListItems)
	for _, row := range rows {
		if row[models.LocalIDField] == second[models.LocalIDField] {
			assert.Equal(t, "", row["hsCode"], "sibling row must not share state")
		}
	}
	assert.Equal(t, "", template["hsCode"], "template must not be mutated")
	assert.NotEqual(t, first[models.LocalIDField], second[models.LocalIDField])
}

func TestAddThenRemovePreservesOthers(t *testing.T) {
	s := NewStore([]ListSpec{{Name: "rows", Template: models.Record{}, AllowEmpty: true}})

	a, _ := s.AddRecord("rows", models.Record{"n": 1.0})
	b, _ := s.AddRecord("rows", models.Record{"n": 2.0})
	c, _ := s.AddRecord("rows", models.Record{"n": 3.0})

	require.NoError(t, s.RemoveRecord("rows", b[models.LocalIDField].(string)))

	rows := s.Records("rows")
	require.Len(t, rows, 2)
	assert.Equal(t, a[models.LocalIDField], rows[0][models.LocalIDField])
	assert.Equal(t, c[models.LocalIDField], rows[1][models.LocalIDField])
	assert.Equal(t, 1.0, rows[0]["n"])
	assert.Equal(t, 3.0, rows[1]["n"])
}

func TestRemoveUnknownRow(t *testing.T) {
	s := NewStore(testSpecs())
	assert.ErrorIs(t, s.RemoveRecord(models.ListItems, "nope"), ErrRowNotFound)
	assert.Error(t, s.RemoveRecord("unknownList", "x"))
}

func TestUpdateFieldReplacesRowOnly(t *testing.T) {
	s := NewStore(testSpecs())
	rows := s.Records(models.ListItems)
	localID := rows[0][models.LocalIDField].(string)

	require.NoError(t, s.UpdateField(models.ListItems, localID, "hsCode", "12345678"))

	updated := s.Records(models.ListItems)
	require.Len(t, updated, 1)
	assert.Equal(t, "12345678", updated[0]["hsCode"])
	assert.Equal(t, localID, updated[0][models.LocalIDField])
	assert.Equal(t, 0.0, updated[0]["quantity"])
}

func TestHydrateFallbackRules(t *testing.T) {
	s := NewStore(testSpecs())

	doc := normalize.SchemaFor(models.FlowCompanyProfile).Normalize(map[string]interface{}{
		"Tin":           "12345678",
		"customsAgents": []interface{}{},
		"companyContacts": []interface{}{
			map[string]interface{}{"title": "Mr", "firstName": "A"},
		},
	})
	s.Hydrate(doc)

	assert.Equal(t, "12345678", s.Details()["tin"])

	// Empty list falls back to one default template row.
	agents := s.Records(models.ListCustomsAgents)
	require.Len(t, agents, 1)
	assert.Equal(t, "", agents[0]["agentCode"])
	assert.NotEmpty(t, agents[0][models.LocalIDField])

	// Non-empty list keeps exactly the supplied rows, no fallback injected.
	contacts := s.Records(models.ListCompanyContacts)
	require.Len(t, contacts, 1)
	assert.Equal(t, "A", contacts[0]["firstName"])

	// Attachments may stay empty.
	assert.Equal(t, 0, s.Count(models.ListAttachments))
}

func TestSnapshotIsDetached(t *testing.T) {
	s := NewStore(testSpecs())
	s.SetDetail("projectName", "solar plant")
	s.SetSingleton("companyActivity", models.Record{"importer": true})

	snap := s.Snapshot()
	snap["projectName"] = "changed"

	assert.Equal(t, "solar plant", s.Details()["projectName"])
	assert.Equal(t, true, s.Singleton("companyActivity")["importer"])
	assert.Contains(t, snap, models.ListItems)
}
