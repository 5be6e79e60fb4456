package dto

// ConectividadeRequest is how the UI process reports a transition of the
// runtime's network-reachability signal across the bridge.
type ConectividadeRequest struct {
	Online *bool `json:"online" validate:"required"`
}

type SyncStatusResponse struct {
	Online         bool   `json:"online"`
	Estado         string `json:"estado"` // idle | draining
	Pendentes      int64  `json:"pendentes"`
	CircuitBreaker string `json:"circuit_breaker"`
}
