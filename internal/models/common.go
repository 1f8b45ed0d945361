// internal/models/common.go
package models

import "encoding/json"

// Record is the dynamic map shape used for wizard details and row
// sub-records. The upstream API exchanges these as free-form JSON objects
// whose field set varies per application kind.
type Record map[string]interface{}

// Clone returns a deep copy. Rows handed to callers must never alias the
// store's internal state or a shared template.
func (r Record) Clone() Record {
	if r == nil {
		return nil
	}
	raw, err := json.Marshal(r)
	if err != nil {
		return Record{}
	}
	var out Record
	if err := json.Unmarshal(raw, &out); err != nil {
		return Record{}
	}
	return out
}

// Enums
type ApplicationStatus string

const (
	ApplicationStatusDraft       ApplicationStatus = "draft"
	ApplicationStatusSubmitted   ApplicationStatus = "submitted"
	ApplicationStatusUnderReview ApplicationStatus = "under_review"
	ApplicationStatusProcessing  ApplicationStatus = "processing"
	ApplicationStatusApproved    ApplicationStatus = "approved"
	ApplicationStatusRejected    ApplicationStatus = "rejected"
)

// Editable reports whether the client may still change the application.
// Everything past draft is owned by the customs authority and rendered
// read-only.
func (s ApplicationStatus) Editable() bool {
	return s == "" || s == ApplicationStatusDraft
}

type FlowKind string

const (
	FlowAEOLicence     FlowKind = "aeo_licence"
	FlowDutyWaiver     FlowKind = "duty_waiver"
	FlowCompanyProfile FlowKind = "company_profile"
)

func ParseFlowKind(s string) (FlowKind, bool) {
	switch FlowKind(s) {
	case FlowAEOLicence, FlowDutyWaiver, FlowCompanyProfile:
		return FlowKind(s), true
	}
	return "", false
}

type UploadStatus string

const (
	UploadStatusPending   UploadStatus = "pending"
	UploadStatusUploading UploadStatus = "uploading"
	UploadStatusCompleted UploadStatus = "completed"
	UploadStatusFailed    UploadStatus = "failed"
)

// Terminal reports whether the upload reached a final state and may be
// dismissed from the progress map.
func (s UploadStatus) Terminal() bool {
	return s == UploadStatusCompleted || s == UploadStatusFailed
}

// Canonical list names used by the draft store and the normalizer.
const (
	ListItems               = "items"
	ListAttachments         = "attachments"
	ListDeclarations        = "declarations"
	ListCompanyContacts     = "companyContacts"
	ListCustomsAgents       = "customsAgents"
	ListLicenses            = "licenses"
	ListExemptions          = "exemptions"
	ListDrawbacks           = "drawbacks"
	ListBankingArrangements = "bankingArrangements"
	ListOverseasParties     = "overseasParties"
)

// LocalIDField carries the client-session row identifier. It is distinct
// from any server-assigned id and never leaves the service.
const LocalIDField = "localId"
