package models

import "strings"

// UpdateUserRequest is the JSON body for PATCH /users/{username}. All fields
// are optional; nil means "leave unchanged". Unknown fields are rejected at
// decode time with DisallowUnknownFields.
type UpdateUserRequest struct {
	FirstName *string `json:"firstName"`
	LastName  *string `json:"lastName"`
	Password  *string `json:"password"`
	Email     *string `json:"email"`
}

// Validate returns one message per field-level violation. An empty result
// means the request is well formed; whether it names at least one field is
// checked by the store, which owns the empty-update error.
func (r *UpdateUserRequest) Validate() []string {
	var errs []string
	if r.FirstName != nil && *r.FirstName == "" {
		errs = append(errs, "firstName must not be empty")
	}
	if r.LastName != nil && *r.LastName == "" {
		errs = append(errs, "lastName must not be empty")
	}
	if r.Password != nil && len(*r.Password) < 5 {
		errs = append(errs, "password must be at least 5 characters")
	}
	if r.Email != nil && !strings.Contains(*r.Email, "@") {
		errs = append(errs, "email must be a valid address")
	}
	return errs
}
