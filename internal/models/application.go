// internal/models/application.go
package models

import "time"

// ApplicationDraft is the root aggregate for one in-progress or submitted
// application. While a wizard session is open this service owns the draft;
// after submission the upstream API is the owner of record.
type ApplicationDraft struct {
	ID          *int              `json:"id,omitempty"`
	Status      ApplicationStatus `json:"status"`
	Kind        FlowKind          `json:"kind"`
	OwnerTin    string            `json:"ownerTin"`
	OwnerUserID string            `json:"ownerUserId"`
	Details     Record            `json:"details"`
	Items       []Record          `json:"items"`
	Attachments []Record          `json:"attachments"`
	SubRecords  map[string][]Record `json:"subRecords"`
}

// LineItem is the typed view of one row in the items list. Rows travel as
// Records; this struct documents the expected fields.
type LineItem struct {
	LocalID       string  `json:"localId"`
	HSCode        string  `json:"hsCode"`
	Description   string  `json:"description"`
	Quantity      float64 `json:"quantity"`
	UnitOfMeasure string  `json:"unitOfMeasure"`
	Value         float64 `json:"value"`
}

// AttachmentRef tracks one attachment slot through its lifecycle:
// created empty, file selected, upload in flight, uploadedRecordId set on
// success. A ref whose required type has no uploadedRecordId blocks
// submission.
type AttachmentRef struct {
	LocalID          string `json:"localId"`
	AttachmentTypeID int    `json:"attachmentTypeId"`
	FileName         string `json:"fileName,omitempty"`
	UploadedRecordID *int   `json:"uploadedRecordId,omitempty"`
	RelativePath     string `json:"relativePath,omitempty"`
}

// Declaration is signed once or more per application; declarationDate must
// not be in the future.
type Declaration struct {
	LocalID           string    `json:"localId"`
	IsConfirmed       bool      `json:"isConfirmed"`
	DeclarantFullName string    `json:"declarantFullName"`
	DeclarantCapacity string    `json:"declarantCapacity"`
	SignatureImage    string    `json:"signatureImage,omitempty"`
	DeclarationDate   time.Time `json:"declarationDate"`
}
