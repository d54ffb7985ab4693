package domain

import "errors"

var (
	ErrInvalidToken    = errors.New("invalid token")
	ErrExpiredToken    = errors.New("token expired")
	ErrNotConnected    = errors.New("user is not connected")
	ErrCalleeOffline   = errors.New("callee is offline")
	ErrCallerOffline   = errors.New("caller is offline")
	ErrSessionNotFound = errors.New("call session not found")
	ErrStreamNotFound  = errors.New("stream not found")
)
