// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package log

// Canonical field name constants for structured logging.
const (
	// Identity fields
	FieldService = "service"
	FieldVersion = "version"
	FieldRunID   = "run_id"
	FieldJobID   = "job_id"

	// Process / pipeline fields
	FieldEvent     = "event"
	FieldComponent = "component"
	FieldPhase     = "phase"
	FieldAttempt   = "attempt"
	FieldDelay     = "delay"

	// Media fields
	FieldTitle     = "title"
	FieldItem      = "item"
	FieldRendition = "rendition"
	FieldJobKind   = "job_kind"
	FieldBandwidth = "bandwidth"

	// Path / URL fields
	FieldPath       = "path"
	FieldRemotePath = "remote_path"
	FieldURL        = "url"
	FieldEndpoint   = "endpoint"
	FieldStatus     = "status"
)
