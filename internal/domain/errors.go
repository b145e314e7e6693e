package domain

import "errors"

// Sentinel errors surfaced synchronously from Ingest and the admin façade.
// Past Ingest, delivery outcomes are only observable via message row
// inspection; a Store error inside Dispatch is returned to Dispatch's caller
// (Bus subscriber, scheduler or admin command) so the work is redelivered.
var (
	ErrConfigNotFound  = errors.New("webhook config not found or inactive")
	ErrPayloadRejected = errors.New("payload empty or exceeds size limit")
	ErrMessageNotFound = errors.New("message not found")
	ErrNotCancellable  = errors.New("message is not in a cancellable state")
	ErrNotClaimed      = errors.New("message could not be claimed for processing")
	ErrConfigExists    = errors.New("webhook config with that name already exists")
	ErrInvalidConfig   = errors.New("webhook config is invalid")
)
