package httptransport

import "encoding/json"

type EvidenceDTO struct {
	EvidenceID  string          `json:"evidence_id"`
	ItemID      string          `json:"item_id"`
	SkillID     string          `json:"skill_id,omitempty"`
	Kind        string          `json:"kind"`
	Fingerprint string          `json:"fingerprint"`
	CreatedAt   string          `json:"created_at"`
	Payload     json.RawMessage `json:"payload"`
}

type ListEvidenceResponse struct {
	Items []EvidenceDTO `json:"items"`
}

type OutcomeDTO struct {
	ItemID      string `json:"item_id"`
	Attempt     int    `json:"attempt"`
	Status      string `json:"status"`
	SkillID     string `json:"skill_id,omitempty"`
	ErrorCode   string `json:"error_code,omitempty"`
	ErrorDetail string `json:"error_detail,omitempty"`
	Retryable   bool   `json:"retryable"`
	CompletedAt string `json:"completed_at"`
}

type ListItemsResponse struct {
	Items []OutcomeDTO `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
