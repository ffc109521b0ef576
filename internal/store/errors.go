package store

import "errors"

var (
	ErrNotFound      = errors.New("not found")
	ErrDuplicateSlot = errors.New("duplicate slot")
	ErrOwnerBooked   = errors.New("owner already has an active booking")
	ErrOverlap       = errors.New("slot overlaps an existing booking")
)
