package httptransport

type SnapshotResponse struct {
	Version   uint64 `json:"version"`
	LoadedAt  string `json:"loaded_at"`
	RuleCount int    `json:"rule_count"`
	Enabled   int    `json:"enabled"`
}

type ReloadResponse struct {
	Snapshot SnapshotResponse `json:"snapshot"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
