// internal/normalize/schema_test.go
package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opencustoms/trade-portal/internal/models"
)

func TestNormalizeProfileAliasAndLists(t *testing.T) {
	schema := SchemaFor(models.FlowCompanyProfile)

	doc := schema.Normalize(map[string]interface{}{
		"Tin":           "12345678",
		"customsAgents": []interface{}{},
		"companyContacts": []interface{}{
			map[string]interface{}{"title": "Mr", "firstName": "A", "companyProfileId": 3.0},
		},
		"companyActivity": []interface{}{
			map[string]interface{}{"importer": true, "createdAt": "stale"},
		},
	})

	assert.Equal(t, "12345678", doc.Details["tin"])

	// Present-but-empty lists stay empty here; the draft store applies the
	// default-row fallback on hydrate.
	assert.Empty(t, doc.Lists[models.ListCustomsAgents])

	contacts := doc.Lists[models.ListCompanyContacts]
	require.Len(t, contacts, 1)
	assert.Equal(t, "A", contacts[0]["firstName"])
	assert.NotContains(t, contacts[0], "companyProfileId")

	activity := doc.Singletons["companyActivity"]
	assert.Equal(t, true, activity["importer"])
	assert.NotContains(t, activity, "createdAt")
}

func TestNormalizeIdempotent(t *testing.T) {
	schema := SchemaFor(models.FlowCompanyProfile)

	raw := map[string]interface{}{
		"tin":             "12345678",
		"companyName":     "Acme Traders",
		"companyActivity": map[string]interface{}{"importer": true},
		"companyContacts": []interface{}{map[string]interface{}{"firstName": "A"}},
	}

	first := schema.Normalize(raw)

	// Recompose the canonical document as a raw object and normalize again.
	recomposed := map[string]interface{}{}
	for k, v := range first.Details {
		recomposed[k] = v
	}
	recomposed["companyActivity"] = map[string]interface{}(first.Singletons["companyActivity"])
	contacts := make([]interface{}, 0, len(first.Lists[models.ListCompanyContacts]))
	for _, c := range first.Lists[models.ListCompanyContacts] {
		contacts = append(contacts, map[string]interface{}(c))
	}
	recomposed["companyContacts"] = contacts

	second := schema.Normalize(recomposed)

	assert.Equal(t, first.Details, second.Details)
	assert.Equal(t, first.Singletons["companyActivity"], second.Singletons["companyActivity"])
	assert.Equal(t, first.Lists[models.ListCompanyContacts], second.Lists[models.ListCompanyContacts])
}

func TestIDOfZeroIsValid(t *testing.T) {
	id := IDOf(map[string]interface{}{"id": 0.0})
	require.NotNil(t, id)
	assert.Equal(t, 0, *id)

	assert.Nil(t, IDOf(map[string]interface{}{}))
	assert.Nil(t, IDOf(map[string]interface{}{"id": nil}))

	id = IDOf(map[string]interface{}{"Id": 42.0})
	require.NotNil(t, id)
	assert.Equal(t, 42, *id)
}

func TestStatusOfDefaultsToDraft(t *testing.T) {
	doc := SchemaFor(models.FlowDutyWaiver).Normalize(map[string]interface{}{})
	assert.Equal(t, models.ApplicationStatusDraft, doc.Status)

	doc = SchemaFor(models.FlowDutyWaiver).Normalize(map[string]interface{}{"Status": "Submitted"})
	assert.Equal(t, models.ApplicationStatusSubmitted, doc.Status)
}
