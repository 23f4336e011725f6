package services

import "errors"

// Registry error taxonomy. The HTTP boundary maps these onto status
// codes: not found 404, expired 410, wrong password 403, exists and
// invalid expiry 400.
var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrRoomExists    = errors.New("room name already exists")
	ErrRoomExpired   = errors.New("room has expired")
	ErrWrongPassword = errors.New("incorrect password")
	ErrInvalidExpiry = errors.New("expire_minutes must be a positive integer")
)
