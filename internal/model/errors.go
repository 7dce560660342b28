package model

import "errors"

var (
	// ErrNotValid is returned when an input or configuration is not valid.
	ErrNotValid = errors.New("not valid")
	// ErrLaunch is returned when an external process could not be started at all
	// (missing binary, permission denied, missing working directory...).
	ErrLaunch = errors.New("could not launch process")
	// ErrSandbox is returned when a sandbox could not be created or seeded.
	ErrSandbox = errors.New("sandbox failure")
	// ErrNoResult is returned when a pipeline stage finished without error and without a result.
	ErrNoResult = errors.New("no result")
	// ErrTimeout marks a process that was killed after exceeding its timeout.
	ErrTimeout = errors.New("timeout")
)
