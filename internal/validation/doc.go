// ctftracker - CTF Team Progress Tracker
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ctftracker

// Package validation wraps go-playground/validator v10 with a shared
// instance, tracker-specific tags and API-friendly error messages.
//
// Command requests and identity mappings carry validate tags:
//
//	type StartRequest struct {
//	    Name    string `json:"name" validate:"required,challengename,max=100"`
//	    BaseURL string `json:"base_url" validate:"required,httpurl"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    return verr
//	}
//
// Errors name fields by their json tag.
package validation
