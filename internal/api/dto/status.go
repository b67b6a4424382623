package dto

type StatusResponse struct {
	Running      bool    `json:"running"`
	RunID        string  `json:"run_id,omitempty"`
	LastRun      *string `json:"last_run"`
	Progress     int     `json:"progress"`
	CurrentRoute string  `json:"current_route"`
	Error        *string `json:"error"`
	Completed    int     `json:"completed"`
	Total        int     `json:"total"`
	Succeeded    int     `json:"succeeded"`
	Failed       int     `json:"failed"`
	ETASeconds   int64   `json:"eta_seconds"`
}

type StartSweepResponse struct {
	Accepted bool   `json:"accepted"`
	RunID    string `json:"run_id,omitempty"`
	Reason   string `json:"reason,omitempty"`
}
