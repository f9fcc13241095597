package models

import "errors"

var (
	ErrInsufficientData      = errors.New("insufficient training data")
	ErrMissingFutureFeatures = errors.New("missing future feature table")
	ErrMissingExogenousData  = errors.New("missing future exogenous data")
	ErrModelTraining         = errors.New("model training failure")
)
