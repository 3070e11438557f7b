package api

// StepRequest matches the POST /v1/step body schema. Dt defaults to 1
// when omitted.
type StepRequest struct {
	Dt float64 `json:"dt,omitempty"`
}

// PhaseRequest matches the POST /v1/phase body schema.
type PhaseRequest struct {
	Phase string `json:"phase"`
}

// VehiclesRequest matches the POST /v1/vehicles body schema.
type VehiclesRequest struct {
	Count int `json:"count"`
}

// RunRequest matches the POST /v1/run body schema.
type RunRequest struct {
	Running bool `json:"running"`
}

// ErrorResponse is the JSON body for 4xx/5xx responses.
type ErrorResponse struct {
	Error string `json:"error"`
}
