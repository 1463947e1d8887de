package domain

import "errors"

// ErrNoCatalog is returned when no ordered trial list has been prepared.
var ErrNoCatalog = errors.New("no task catalog loaded")

// ErrParamNotFound is returned when a session parameter key is absent from the store.
var ErrParamNotFound = errors.New("session parameter not found")

// ErrUnknownTrigger is returned when a trigger kind has no encoding.
var ErrUnknownTrigger = errors.New("unknown trigger kind")

// ErrEmitterClosed is returned when emitting on a closed emitter.
var ErrEmitterClosed = errors.New("trigger emitter closed")
