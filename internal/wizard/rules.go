// internal/wizard/rules.go
package wizard

// Per-flow rule tables. Detail fields are an explicit ordered list of
// (field, checks) tuples so rendering order and field names are fixed at
// compile time instead of iterating arbitrary object keys.

import (
	"github.com/opencustoms/trade-portal/internal/draft"
	"github.com/opencustoms/trade-portal/internal/models"
	"github.com/opencustoms/trade-portal/internal/validation"
)

type DetailRule struct {
	Field  string
	Label  string
	Checks []validation.Check
}

type RangeRule struct {
	StartField string
	EndField   string
}

type Rules struct {
	Kind  models.FlowKind
	Steps []Step
	// DetailRules gate Details -> next.
	DetailRules []DetailRule
	RangeRules  []RangeRule
	// RequireItems gates Items -> Attachments.
	RequireItems bool
	// RequireAttachmentTypes enforces the required-type catalog on
	// Attachments -> Review. On for both AEO and duty-waiver flows.
	RequireAttachmentTypes bool
	// ListSpecs configure the draft store sections for this flow.
	ListSpecs []draft.ListSpec
}

func RulesFor(kind models.FlowKind) Rules {
	switch kind {
	case models.FlowDutyWaiver:
		return Rules{
			Kind:  kind,
			Steps: []Step{StepDetails, StepItems, StepAttachments, StepReview},
			DetailRules: []DetailRule{
				{Field: "tin", Label: "TPIN", Checks: []validation.Check{validation.Required, validation.EightDigitCode}},
				{Field: "projectName", Label: "Project name", Checks: []validation.Check{validation.Required}},
				{Field: "projectDescription", Label: "Project description", Checks: []validation.Check{validation.Required}},
				{Field: "district", Label: "District", Checks: []validation.Check{validation.Required}},
				{Field: "projectValue", Label: "Project value", Checks: []validation.Check{validation.Required}},
				{Field: "startDate", Label: "Start date", Checks: []validation.Check{validation.Required, validation.DateNotPast}},
				{Field: "endDate", Label: "End date", Checks: []validation.Check{validation.Required}},
				{Field: "reasonForApplying", Label: "Reason for applying", Checks: []validation.Check{validation.Required, validation.MinLength(20)}},
			},
			RangeRules:             []RangeRule{{StartField: "startDate", EndField: "endDate"}},
			RequireItems:           true,
			RequireAttachmentTypes: true,
			ListSpecs: []draft.ListSpec{
				{Name: models.ListItems, Template: models.Record{"hsCode": "", "description": "", "quantity": 0.0, "unitOfMeasure": "", "value": 0.0}},
				{Name: models.ListAttachments, Template: models.Record{"attachmentTypeId": 0.0}, AllowEmpty: true},
				{Name: models.ListDeclarations, Template: models.Record{"isConfirmed": false, "declarantFullName": "", "declarantCapacity": "", "declarationDate": ""}, AllowEmpty: true},
			},
		}
	case models.FlowCompanyProfile:
		return Rules{
			Kind:  kind,
			Steps: []Step{StepDetails, StepReview},
			DetailRules: []DetailRule{
				{Field: "tin", Label: "TPIN", Checks: []validation.Check{validation.Required, validation.EightDigitCode}},
				{Field: "companyName", Label: "Company name", Checks: []validation.Check{validation.Required}},
				{Field: "district", Label: "District", Checks: []validation.Check{validation.Required}},
				{Field: "email", Label: "Email", Checks: []validation.Check{validation.Required, validation.Email}},
				{Field: "phoneNumber", Label: "Phone number", Checks: []validation.Check{validation.Required, validation.Phone}},
			},
			ListSpecs: []draft.ListSpec{
				{Name: models.ListCompanyContacts, Template: models.Record{"title": "", "firstName": "", "lastName": "", "email": "", "phoneNumber": ""}},
				{Name: models.ListCustomsAgents, Template: models.Record{"agentCode": "", "agentName": "", "agentTpin": ""}},
				{Name: models.ListLicenses, Template: models.Record{"licenseNumber": "", "issuingAuthority": ""}},
				{Name: models.ListExemptions, Template: models.Record{"exemptionNumber": "", "description": ""}},
				{Name: models.ListDrawbacks, Template: models.Record{"drawbackNumber": "", "description": ""}},
				{Name: models.ListBankingArrangements, Template: models.Record{"bankName": "", "branch": "", "accountNumber": ""}},
				{Name: models.ListOverseasParties, Template: models.Record{"partyName": "", "country": ""}},
				{Name: models.ListAttachments, Template: models.Record{"attachmentTypeId": 0.0}, AllowEmpty: true},
				{Name: models.ListDeclarations, Template: models.Record{"isConfirmed": false, "declarantFullName": "", "declarantCapacity": "", "declarationDate": ""}, AllowEmpty: true},
			},
		}
	default: // FlowAEOLicence
		return Rules{
			Kind:  kind,
			Steps: []Step{StepDetails, StepItems, StepAttachments, StepReview},
			DetailRules: []DetailRule{
				{Field: "tin", Label: "TPIN", Checks: []validation.Check{validation.Required, validation.EightDigitCode}},
				{Field: "companyName", Label: "Company name", Checks: []validation.Check{validation.Required}},
				{Field: "district", Label: "District", Checks: []validation.Check{validation.Required}},
				{Field: "email", Label: "Email", Checks: []validation.Check{validation.Required, validation.Email}},
				{Field: "phoneNumber", Label: "Phone number", Checks: []validation.Check{validation.Required, validation.Phone}},
				{Field: "reasonForApplying", Label: "Reason for applying", Checks: []validation.Check{validation.Required, validation.MinLength(20)}},
			},
			RangeRules:             []RangeRule{{StartField: "startDate", EndField: "endDate"}},
			RequireItems:           false,
			RequireAttachmentTypes: true,
			ListSpecs: []draft.ListSpec{
				{Name: models.ListItems, Template: models.Record{"hsCode": "", "description": "", "quantity": 0.0, "unitOfMeasure": "", "value": 0.0}, AllowEmpty: true},
				{Name: models.ListCompanyContacts, Template: models.Record{"title": "", "firstName": "", "lastName": "", "email": "", "phoneNumber": ""}},
				{Name: models.ListCustomsAgents, Template: models.Record{"agentCode": "", "agentName": "", "agentTpin": ""}},
				{Name: models.ListAttachments, Template: models.Record{"attachmentTypeId": 0.0}, AllowEmpty: true},
				{Name: models.ListDeclarations, Template: models.Record{"isConfirmed": false, "declarantFullName": "", "declarantCapacity": "", "declarationDate": ""}, AllowEmpty: true},
			},
		}
	}
}
