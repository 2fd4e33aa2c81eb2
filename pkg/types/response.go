package types

type SuccessEnvelope struct {
	Data     any       `json:"data"`
	Warnings []Warning `json:"warnings,omitempty"`
}

// Warning reports a non-fatal problem with an otherwise committed operation.
type Warning struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

const WarningPartialFailure = "PARTIAL_FAILURE"

type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}
