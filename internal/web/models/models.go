package models

import (
	"encoding/json"

	domain "energydash/internal/models"
)

// SuccessResponse is the envelope for every successful API call
type SuccessResponse struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Meta    string          `json:"meta,omitempty"`
	Message string          `json:"message,omitempty"`
}

// ErrorBody describes a failed API call
type ErrorBody struct {
	Code    string `json:"code"`
	Status  int    `json:"status"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// ErrorResponse is the envelope for every failed API call
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorBody `json:"error"`
}

// SelectionRequest sets or clears the selected device. A null or empty
// deviceId clears the selection.
type SelectionRequest struct {
	DeviceID *string `json:"deviceId"`
}

// SelectionResponse reports the selected device, if any
type SelectionResponse struct {
	SelectedDeviceID *string        `json:"selectedDeviceId"`
	Device           *domain.Device `json:"device"`
}
