package handler

import "time"

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Error string `json:"error"`
}

type locationFixRequest struct {
	Latitude  *float64   `json:"latitude"  validate:"required,gte=-90,lte=90"`
	Longitude *float64   `json:"longitude" validate:"required,gte=-180,lte=180"`
	Timestamp *time.Time `json:"timestamp"`
}

type locationBatchRequest struct {
	Fixes []locationFixRequest `json:"fixes" validate:"required,min=1,max=100,dive"`
}

// Error kinds accepted by POST /v1/locations/errors.
const (
	errorKindPermissionDenied = "permission_denied"
	errorKindLocationUnknown  = "location_unknown"
	errorKindOther            = "other"
)

type locationErrorRequest struct {
	Kind    string `json:"kind"    validate:"required,oneof=permission_denied location_unknown other"`
	Message string `json:"message" validate:"max=256"`
}

type authorizationRequest struct {
	Status string `json:"status" validate:"required"`
}

type acceptedResponse struct {
	Message string `json:"message"`
	Count   int    `json:"count,omitempty"`
	// Updating reports whether a tracking session currently wants fixes.
	Updating bool `json:"updating"`
}

type authorizationResponse struct {
	Status string `json:"status"`
}
