package usecase

import (
	"context"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

// EnrollmentUseCase owns the set of courses a user is enrolled in.
type EnrollmentUseCase struct {
	customerRepo CustomerRepository
}

func NewEnrollmentUseCase(cr CustomerRepository) *EnrollmentUseCase {
	return &EnrollmentUseCase{customerRepo: cr}
}

// Enroll adds the course to the caller's set, creating the customer record if needed.
// Enrolling twice is not an error.
func (uc *EnrollmentUseCase) Enroll(ctx context.Context, caller domain.Identity, courseID string) ([]string, error) {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return nil, err
	}

	seed := &domain.Customer{
		UserID:          caller.UserID,
		Username:        caller.Username,
		EnrolledCourses: []string{},
		Progress:        map[string]*domain.CourseProgress{},
	}
	courses, err := uc.customerRepo.AddEnrollment(ctx, seed, courseID)
	if err != nil {
		return nil, storeErr("add enrollment", err)
	}
	return courses, nil
}

// Unenroll removes the course; a missing enrollment or customer is a no-op.
func (uc *EnrollmentUseCase) Unenroll(ctx context.Context, userID uuid.UUID, courseID string) error {
	if err := domain.ValidateCourseID(courseID); err != nil {
		return err
	}
	if err := uc.customerRepo.RemoveEnrollment(ctx, userID, courseID); err != nil {
		return storeErr("remove enrollment", err)
	}
	return nil
}

func (uc *EnrollmentUseCase) ListEnrolled(ctx context.Context, userID uuid.UUID) ([]string, error) {
	courses, err := uc.customerRepo.ListEnrollments(ctx, userID)
	if err != nil {
		return nil, storeErr("list enrollments", err)
	}
	if courses == nil {
		courses = []string{}
	}
	return courses, nil
}

func (uc *EnrollmentUseCase) IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	ok, err := uc.customerRepo.IsEnrolled(ctx, userID, courseID)
	if err != nil {
		return false, storeErr("check enrollment", err)
	}
	return ok, nil
}
