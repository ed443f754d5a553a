// models/api_models.go
package models

// ErrorResponse is the JSON body of every API error.
type ErrorResponse struct {
	Error string `json:"error"`
}

// IngestAcceptedResponse is returned when an admin-triggered run is started.
type IngestAcceptedResponse struct {
	Message string `json:"message"`
}
