package orchestrator

import (
	"github.com/bruhlabs/flowrun/service/validator"
)

// Option customises the orchestrator.
type Option func(*Service)

// WithValidator replaces the graph validator.
func WithValidator(v *validator.Service) Option {
	return func(s *Service) {
		s.validator = v
	}
}

// WithoutValidation disables the pre-run structural validation; leveling
// still guards against cycles at execution time.
func WithoutValidation() Option {
	return func(s *Service) {
		s.validate = false
	}
}
