package trucklog

import "errors"

var (
	ErrLogLocked     = errors.New("truck log is locked")
	ErrLogNotFound   = errors.New("truck log not found")
	ErrMissingDate   = errors.New("log date is required")
	ErrNegativeValue = errors.New("odometer, mileage, gallons and fuel cost must not be negative")
)
