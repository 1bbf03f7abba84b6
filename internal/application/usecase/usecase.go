// Package usecase holds the application rules of the platform: accounts, enrollment,
// course progress, quizzes, certificates, reviews and the study assistant.
package usecase

import (
	"fmt"

	"careermate/internal/domain"
)

// storeErr keeps classified errors as they are and marks everything else as a storage failure.
func storeErr(op string, err error) error {
	if domain.KindOf(err) != domain.KindInternal {
		return err
	}
	return &domain.UpstreamError{Service: "store", Err: fmt.Errorf("%s: %w", op, err)}
}
