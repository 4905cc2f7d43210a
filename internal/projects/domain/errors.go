package domain

import "errors"

var (
	ErrNotFound      = errors.New("project not found")
	ErrItemNotFound  = errors.New("checklist item not found")
	ErrInvalidStatus = errors.New("invalid project status")
	ErrPastReminder  = errors.New("reminder must be in the future")
	ErrEmptyTask     = errors.New("task text must not be empty")
)
