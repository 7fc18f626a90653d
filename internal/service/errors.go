package service

import (
	"errors"
	"fmt"

	"github.com/thatlq1812/sitetools/internal/domain"
)

func isNotFound(err error) bool {
	return errors.Is(err, domain.ErrNotFound)
}

// invalid wraps a validation failure so callers can match domain.ErrInvalidInput
func invalid(err error) error {
	return fmt.Errorf("validation failed: %w: %w", domain.ErrInvalidInput, err)
}
