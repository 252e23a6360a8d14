package domain

import "errors"

var (
	// ErrUnauthenticated means no valid identity could be derived. Connections
	// are refused before registration.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrUnauthorized means the identity lacks project membership or the
	// required role for the operation.
	ErrUnauthorized = errors.New("not authorized for this resource")

	ErrRoomNotFound         = errors.New("chat room not found")
	ErrMessageNotFound      = errors.New("message not found")
	ErrNotificationNotFound = errors.New("notification not found")

	// ErrPersistence wraps store failures. Nothing is broadcast when it is returned.
	ErrPersistence = errors.New("persistence failure")
	// ErrDelivery is a single connection refusing an event during a publish.
	ErrDelivery = errors.New("delivery failure")
)
