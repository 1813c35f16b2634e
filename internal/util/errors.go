package util

import "errors"

var (
	ErrItemNotFound       = errors.New("item not found")
	ErrNoActiveQuiz       = errors.New("no active quiz session")
	ErrQuizFinished       = errors.New("quiz session already finished")
	ErrQuizSubjectUnknown = errors.New("no quiz available for this subject")
	ErrBadOption          = errors.New("option index out of range")
	ErrUnsupportedClass   = errors.New("unsupported class")
	ErrBackupDisabled     = errors.New("backup storage not configured")
)
