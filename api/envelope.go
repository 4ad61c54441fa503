package api

import (
	"encoding/json"
)

// envelope is the uniform response shape every endpoint returns:
// {success, message, data}. The server is inconsistent about field
// casing; encoding/json's case-insensitive matching absorbs both
// "success" and "Success" variants.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Error   string          `json:"error"`
	Data    json.RawMessage `json:"data"`
}

const noMessageFallback = "no message provided"

// failureMessage extracts the human-readable failure string with the
// documented fallback chain: message, then error, then a fixed default.
func (e envelope) failureMessage() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Error != "" {
		return e.Error
	}
	return noMessageFallback
}
