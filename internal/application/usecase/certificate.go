package usecase

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
)

const maxCodeAttempts = 5

type CertificatePolicy struct {
	PassingRatio float64
	// AllowDuplicates lets a user hold several certificates for the same course.
	AllowDuplicates bool
}

// CertificateUseCase issues a certificate once enrollment and a passing quiz are both in place.
type CertificateUseCase struct {
	customerRepo CustomerRepository
	certRepo     CertificateRepository
	codes        CodeGenerator
	policy       CertificatePolicy
	now          func() time.Time
}

func NewCertificateUseCase(cr CustomerRepository, certs CertificateRepository, codes CodeGenerator, policy CertificatePolicy) *CertificateUseCase {
	if policy.PassingRatio <= 0 {
		policy.PassingRatio = domain.DefaultPassingRatio
	}
	return &CertificateUseCase{
		customerRepo: cr,
		certRepo:     certs,
		codes:        codes,
		policy:       policy,
		now:          time.Now,
	}
}

type IssueRequest struct {
	CourseID string
	// Score and Total, when both set, are recorded as a fresh quiz attempt before issuing.
	Score *float64
	Total *float64
}

func (uc *CertificateUseCase) Issue(ctx context.Context, caller domain.Identity, req IssueRequest) (*domain.Certificate, error) {
	if err := domain.ValidateCourseID(req.CourseID); err != nil {
		return nil, err
	}

	enrolled, err := uc.customerRepo.IsEnrolled(ctx, caller.UserID, req.CourseID)
	if err != nil {
		return nil, storeErr("check enrollment", err)
	}
	if !enrolled {
		return nil, domain.ErrNotEnrolledCert
	}

	if req.Score != nil && req.Total != nil {
		quiz := domain.NewQuizResult(*req.Score, *req.Total, uc.policy.PassingRatio, uc.now())
		// The attempt is kept even when it fails.
		if err := uc.customerRepo.SetQuizResult(ctx, caller.UserID, req.CourseID, quiz); err != nil {
			return nil, storeErr("set quiz result", err)
		}
		if !quiz.Passed {
			return nil, domain.ErrQuizNotPassed
		}
	} else {
		progress, err := uc.customerRepo.GetProgress(ctx, caller.UserID, req.CourseID)
		if err != nil {
			return nil, storeErr("get progress", err)
		}
		if progress == nil || progress.Quiz == nil || !progress.Quiz.Passed {
			return nil, domain.ErrQuizNotPassed
		}
	}

	if !uc.policy.AllowDuplicates {
		existing, err := uc.existing(ctx, caller.UserID, req.CourseID)
		if err != nil || existing != nil {
			return existing, err
		}
	}

	cert, err := uc.create(ctx, caller, req.CourseID)
	if errors.Is(err, domain.ErrCertificateExists) {
		// a concurrent request issued it first
		existing, ferr := uc.existing(ctx, caller.UserID, req.CourseID)
		if ferr != nil || existing != nil {
			return existing, ferr
		}
		return nil, err
	}
	if err != nil {
		return nil, err
	}
	log.Printf("certificate issued: code=%s user=%s course=%s", cert.Code, caller.UserID, req.CourseID)
	return cert, nil
}

// create retries with a fresh code when the store reports a collision.
func (uc *CertificateUseCase) create(ctx context.Context, caller domain.Identity, courseID string) (*domain.Certificate, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := uc.codes.Generate()
		if err != nil {
			return nil, fmt.Errorf("generate certificate code: %w", err)
		}

		cert := &domain.Certificate{
			ID:       uuid.New(),
			Code:     code,
			UserID:   caller.UserID,
			Username: caller.Username,
			CourseID: courseID,
			IssuedAt: uc.now(),
		}
		if uc.policy.AllowDuplicates {
			err = uc.certRepo.Create(ctx, cert)
		} else {
			err = uc.certRepo.CreateExclusive(ctx, cert)
		}
		if err == nil {
			return cert, nil
		}
		if errors.Is(err, domain.ErrCertificateExists) {
			return nil, err
		}
		if !errors.Is(err, domain.ErrDuplicateCode) {
			return nil, storeErr("create certificate", err)
		}
		log.Printf("certificate code collision on %s, retrying", code)
	}
	return nil, &domain.UpstreamError{Service: "store", Err: fmt.Errorf("no free certificate code after %d attempts", maxCodeAttempts)}
}

func (uc *CertificateUseCase) existing(ctx context.Context, userID uuid.UUID, courseID string) (*domain.Certificate, error) {
	cert, err := uc.certRepo.FindFor(ctx, userID, courseID)
	if err != nil {
		return nil, storeErr("find certificate", err)
	}
	return cert, nil
}

// Lookup finds a certificate by its exact, case-sensitive code.
func (uc *CertificateUseCase) Lookup(ctx context.Context, code string) (*domain.Certificate, error) {
	if code == "" {
		return nil, domain.ErrCertificateNotFound
	}
	cert, err := uc.certRepo.GetByCode(ctx, code)
	if err != nil {
		return nil, storeErr("get certificate", err)
	}
	return cert, nil
}
