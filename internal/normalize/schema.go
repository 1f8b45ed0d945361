// internal/normalize/schema.go
package normalize

import (
	"strings"

	"github.com/opencustoms/trade-portal/internal/models"
)

// FieldAliases is an explicit, ordered alias table for one canonical field.
// The first entry is the canonical name; lookup checks every entry in order
// and the first present value wins.
type FieldAliases struct {
	Canonical string
	Aliases   []string
}

// Aliases builds a table whose lookup order is the canonical name, any
// explicit extras, then the PascalCase variant the upstream sometimes emits.
func Aliases(canonical string, extra ...string) FieldAliases {
	order := append([]string{canonical}, extra...)
	if pascal := capitalize(canonical); pascal != canonical {
		order = append(order, pascal)
	}
	return FieldAliases{Canonical: canonical, Aliases: order}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// Schema describes how one flow's raw upstream payload maps onto canonical
// editable state.
type Schema struct {
	// Fields are scalar detail fields.
	Fields []FieldAliases
	// Singletons are one-per-application sub-records the upstream may wrap
	// in a one-element array.
	Singletons []FieldAliases
	// Lists are zero-or-more sub-resources, defaulting to empty.
	Lists []FieldAliases
	// ParentKey is the foreign key the upstream stamps on child records;
	// it is stripped along with the server timestamps.
	ParentKey string
}

// Document is the canonical client-side shape produced by normalization.
type Document struct {
	ID         *int
	Status     models.ApplicationStatus
	Details    models.Record
	Singletons map[string]models.Record
	Lists      map[string][]models.Record
}

// Normalize reconciles a raw upstream object into a Document. It is
// idempotent: feeding back an already-canonical object yields the same
// result.
func (s Schema) Normalize(raw map[string]interface{}) Document {
	doc := Document{
		ID:         IDOf(raw),
		Status:     statusOf(raw),
		Details:    models.Record{},
		Singletons: make(map[string]models.Record, len(s.Singletons)),
		Lists:      make(map[string][]models.Record, len(s.Lists)),
	}

	strip := []string{}
	if s.ParentKey != "" {
		strip = append(strip, s.ParentKey, capitalize(s.ParentKey))
	}

	for _, f := range s.Fields {
		if v, ok := FirstDefined(raw, f.Aliases...); ok {
			doc.Details[f.Canonical] = v
		}
	}

	for _, f := range s.Singletons {
		v, _ := FirstDefined(raw, f.Aliases...)
		rec := UnwrapSingleton(v)
		doc.Singletons[f.Canonical] = models.Record(omitDeepMap(rec, keySet(strip), false))
	}

	for _, f := range s.Lists {
		v, _ := FirstDefined(raw, f.Aliases...)
		entries := ListOrEmpty(v)
		out := make([]models.Record, 0, len(entries))
		for _, entry := range entries {
			out = append(out, models.Record(omitDeepMap(entry, keySet(strip), false)))
		}
		doc.Lists[f.Canonical] = out
	}

	return doc
}

// IDOf extracts the server-assigned id if present. Zero is a valid
// assigned id, not "absent"; only a missing or null field yields nil.
func IDOf(raw map[string]interface{}) *int {
	v, ok := FirstDefined(raw, "id", "Id", "ID")
	if !ok {
		return nil
	}
	switch n := v.(type) {
	case float64:
		id := int(n)
		return &id
	case int:
		id := n
		return &id
	default:
		return nil
	}
}

func statusOf(raw map[string]interface{}) models.ApplicationStatus {
	if v, ok := FirstDefined(raw, "status", "Status"); ok {
		if s, ok := v.(string); ok {
			return models.ApplicationStatus(strings.ToLower(s))
		}
	}
	return models.ApplicationStatusDraft
}

// SchemaFor returns the alias schema for one wizard flow.
func SchemaFor(kind models.FlowKind) Schema {
	switch kind {
	case models.FlowCompanyProfile:
		return Schema{
			Fields: []FieldAliases{
				Aliases("tin"),
				Aliases("companyName"),
				Aliases("tradingName"),
				Aliases("businessRegistrationNumber"),
				Aliases("district"),
				Aliases("physicalAddress"),
				Aliases("postalAddress"),
				Aliases("email"),
				Aliases("phoneNumber"),
				Aliases("website"),
			},
			Singletons: []FieldAliases{
				Aliases("companyActivity"),
				Aliases("recordKeepings", "recordKeeping"),
			},
			Lists: []FieldAliases{
				Aliases(models.ListCompanyContacts),
				Aliases(models.ListCustomsAgents),
				Aliases(models.ListLicenses),
				Aliases(models.ListExemptions),
				Aliases(models.ListDrawbacks),
				Aliases(models.ListBankingArrangements),
				Aliases(models.ListOverseasParties),
				Aliases(models.ListAttachments),
				Aliases(models.ListDeclarations),
			},
			ParentKey: "companyProfileId",
		}
	case models.FlowDutyWaiver:
		return Schema{
			Fields: []FieldAliases{
				Aliases("tin"),
				Aliases("projectName"),
				Aliases("projectDescription"),
				Aliases("applicationTypeId"),
				Aliases("district"),
				Aliases("projectValue"),
				Aliases("durationMonths"),
				Aliases("startDate"),
				Aliases("endDate"),
				Aliases("reasonForApplying"),
			},
			Lists: []FieldAliases{
				Aliases(models.ListItems),
				Aliases(models.ListAttachments),
				Aliases(models.ListDeclarations),
			},
			ParentKey: "applicationId",
		}
	default: // FlowAEOLicence
		return Schema{
			Fields: []FieldAliases{
				Aliases("tin"),
				Aliases("companyName"),
				Aliases("applicationTypeId"),
				Aliases("district"),
				Aliases("email"),
				Aliases("phoneNumber"),
				Aliases("startDate"),
				Aliases("endDate"),
				Aliases("reasonForApplying"),
			},
			Singletons: []FieldAliases{
				Aliases("companyActivity"),
				Aliases("recordKeepings", "recordKeeping"),
			},
			Lists: []FieldAliases{
				Aliases(models.ListCompanyContacts),
				Aliases(models.ListCustomsAgents),
				Aliases(models.ListAttachments),
				Aliases(models.ListDeclarations),
			},
			ParentKey: "applicationId",
		}
	}
}
