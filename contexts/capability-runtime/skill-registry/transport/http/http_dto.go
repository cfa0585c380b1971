package httptransport

type SkillDTO struct {
	ID           string   `json:"id"`
	Version      string   `json:"version,omitempty"`
	Description  string   `json:"description,omitempty"`
	Capabilities []string `json:"capabilities,omitempty"`
	Source       string   `json:"source"`
	Concurrency  int      `json:"concurrency"`
	Health       string   `json:"health"`
}

type ListSkillsResponse struct {
	Items []SkillDTO `json:"items"`
}

type InvokeSkillRequest struct {
	SkillID string         `json:"skill_id"`
	Payload map[string]any `json:"payload"`
}

type InvokeEvidenceDTO struct {
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload"`
}

type InvokeSkillResponse struct {
	SkillID  string              `json:"skill_id"`
	Output   map[string]any      `json:"output,omitempty"`
	Evidence []InvokeEvidenceDTO `json:"evidence,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
