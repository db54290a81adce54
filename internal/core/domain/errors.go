package domain

import "errors"

// Domain Errors
var (
	ErrInvalidArea       = errors.New("area must have an id and a congestion within [0,100]")
	ErrDuplicateArea     = errors.New("duplicate area id")
	ErrNoAreas           = errors.New("at least one area is required")
	ErrAreaNotFound      = errors.New("area not found")
	ErrSubscriberClosed  = errors.New("subscriber closed")
	ErrSubscriberLagging = errors.New("subscriber send buffer full")
	ErrHubStopped        = errors.New("subscription hub stopped")
	ErrInvalidAction     = errors.New("invalid session action")
	ErrMissingSubscriber = errors.New("subscriber id is required for session events")
)
