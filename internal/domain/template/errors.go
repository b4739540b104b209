package template

import "errors"

var (
	ErrTemplateNotFound = errors.New("template not found")
	ErrTemplateInactive = errors.New("template is not active")
	ErrTemplateInUse    = errors.New("template is referenced by active subscriptions")
)
