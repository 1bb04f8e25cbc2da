package api

import (
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// SearchRequest is the request body for POST /recipes/search.
type SearchRequest struct {
	Query string `json:"query"`
}

// Validate enforces the hard request constraints. The 3-character minimum on
// the trimmed query is additionally soft-checked by the service, which turns
// it into an empty result rather than an error.
func (r SearchRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.Length(3, 100)),
	)
}
