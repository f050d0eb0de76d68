// Warden - Relational Query Builder and Session Authentication
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/warden

// Package validation validates decoded API request bodies with
// go-playground/validator v10.
//
// One validator instance is shared (it caches struct metadata). Errors name
// fields by their json tag and convert to the API's VALIDATION_ERROR body:
//
//	type LoginRequest struct {
//	    Username string `json:"username" validate:"required,max=64,username"`
//	    Password string `json:"password" validate:"required,max=72"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
