// internal/models/reference.go
package models

// Reference lookups fetched once per page lifetime from the upstream API
// and shared read-only afterwards.

type ApplicationType struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type District struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type UnitOfMeasure struct {
	ID   int    `json:"id"`
	Code string `json:"code"`
	Name string `json:"name"`
}

type AttachmentType struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Required bool   `json:"required"`
}

// AgentInfo is the result of an agent-code lookup. It validates a
// reference, it is not persisted state.
type AgentInfo struct {
	AgentName            string `json:"agentName"`
	AgentTpin            string `json:"agentTpin"`
	AgentTelephoneNumber string `json:"agentTelephoneNumber"`
}
