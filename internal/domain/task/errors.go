package task

import "errors"

var (
	ErrTaskNotFound    = errors.New("task not found")
	ErrTaskAlreadySent = errors.New("task has already been sent")
)
