package httptransport

type SubmitItemRequest struct {
	ItemID  string         `json:"item_id,omitempty"`
	Kind    string         `json:"kind"`
	Payload map[string]any `json:"payload,omitempty"`
}

type TicketResponse struct {
	ItemID  string `json:"item_id"`
	State   string `json:"state"`
	Attempt int    `json:"attempt"`
}

type StatusResponse struct {
	ItemID      string         `json:"item_id"`
	State       string         `json:"state"`
	Attempt     int            `json:"attempt"`
	SkillID     string         `json:"skill_id,omitempty"`
	Output      map[string]any `json:"output,omitempty"`
	ErrorCode   string         `json:"error_code,omitempty"`
	ErrorDetail string         `json:"error_detail,omitempty"`
	Retryable   bool           `json:"retryable"`
	UpdatedAt   string         `json:"updated_at"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
