package util

import "errors"

var (
	ErrUserNotFound         = errors.New("user not found")
	ErrEmailRegistered      = errors.New("email already registered")
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrNoUser               = errors.New("no authenticated user")
	ErrInvalidInput         = errors.New("invalid input")
	ErrConfirmationRequired = errors.New("deleting a course requires confirmation")
	ErrCourseNotFound       = errors.New("course not found")
	ErrProgressNotFound     = errors.New("learning progress not found")
	ErrUnknownCollection    = errors.New("unknown collection")
	ErrUnknownColumn        = errors.New("unknown column")
)
