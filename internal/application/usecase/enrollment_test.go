package usecase

import (
	"context"
	"testing"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollIsIdempotent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")

	courses, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)
	assert.Equal(t, []string{"go-101"}, courses)

	courses, err = f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)
	assert.Len(t, courses, 1)

	courses, err = f.enroll.Enroll(ctx, caller, "rust-201")
	require.NoError(t, err)
	assert.Equal(t, []string{"go-101", "rust-201"}, courses)
}

func TestEnrollCreatesCustomerWhenAbsent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := domain.Identity{UserID: uuid.New(), Username: "ghost"}

	courses, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)
	assert.Equal(t, []string{"go-101"}, courses)

	customer, err := f.store.Customers().GetByUserID(ctx, caller.UserID)
	require.NoError(t, err)
	assert.Equal(t, "ghost", customer.Username)
}

func TestEnrollRejectsBadCourseID(t *testing.T) {
	f := newFixture()
	caller := f.signup("a@example.com")

	_, err := f.enroll.Enroll(context.Background(), caller, "")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
	_, err = f.enroll.Enroll(context.Background(), caller, "a.b")
	assert.Equal(t, domain.KindValidation, domain.KindOf(err))
}

func TestUnenrollIsNoOpWhenAbsent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	caller := f.signup("a@example.com")

	assert.NoError(t, f.enroll.Unenroll(ctx, caller.UserID, "never-enrolled"))
	assert.NoError(t, f.enroll.Unenroll(ctx, uuid.New(), "go-101"))

	_, err := f.enroll.Enroll(ctx, caller, "go-101")
	require.NoError(t, err)
	require.NoError(t, f.enroll.Unenroll(ctx, caller.UserID, "go-101"))

	ok, err := f.enroll.IsEnrolled(ctx, caller.UserID, "go-101")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestListEnrolledWithoutCustomer(t *testing.T) {
	f := newFixture()
	courses, err := f.enroll.ListEnrolled(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.NotNil(t, courses)
	assert.Empty(t, courses)
}
