package repository

import (
	"context"
	"errors"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type certificateDocument struct {
	ID       string    `bson:"_id"`
	Code     string    `bson:"code"`
	UserID   string    `bson:"userId"`
	Username string    `bson:"username"`
	CourseID string    `bson:"courseId"`
	IssuedAt time.Time `bson:"issuedAt"`

	ExclusiveKey string `bson:"exclusiveKey,omitempty"`
}

func (d *certificateDocument) toDomain() *domain.Certificate {
	id, _ := uuid.Parse(d.ID)
	userID, _ := uuid.Parse(d.UserID)
	return &domain.Certificate{
		ID:       id,
		Code:     d.Code,
		UserID:   userID,
		Username: d.Username,
		CourseID: d.CourseID,
		IssuedAt: d.IssuedAt,
	}
}

type MongoCertificateRepository struct {
	coll *mongo.Collection
}

func toCertificateDocument(cert *domain.Certificate) certificateDocument {
	return certificateDocument{
		ID:       cert.ID.String(),
		Code:     cert.Code,
		UserID:   cert.UserID.String(),
		Username: cert.Username,
		CourseID: cert.CourseID,
		IssuedAt: cert.IssuedAt,
	}
}

// Create relies on the unique index on code to detect collisions.
func (r *MongoCertificateRepository) Create(ctx context.Context, cert *domain.Certificate) error {
	return r.insert(ctx, toCertificateDocument(cert))
}

func (r *MongoCertificateRepository) CreateExclusive(ctx context.Context, cert *domain.Certificate) error {
	doc := toCertificateDocument(cert)
	doc.ExclusiveKey = exclusiveKey(cert.UserID, cert.CourseID)
	return r.insert(ctx, doc)
}

func (r *MongoCertificateRepository) insert(ctx context.Context, doc certificateDocument) error {
	_, err := r.coll.InsertOne(ctx, doc)
	switch {
	case duplicateOn(err, exclusiveKeyIndex):
		return domain.ErrCertificateExists
	case mongo.IsDuplicateKeyError(err):
		return domain.ErrDuplicateCode
	}
	return err
}

func (r *MongoCertificateRepository) GetByCode(ctx context.Context, code string) (*domain.Certificate, error) {
	var doc certificateDocument
	if err := r.coll.FindOne(ctx, bson.M{"code": code}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCertificateNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoCertificateRepository) FindFor(ctx context.Context, userID uuid.UUID, courseID string) (*domain.Certificate, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "issuedAt", Value: 1}})
	var doc certificateDocument
	err := r.coll.FindOne(ctx, bson.M{"userId": userID.String(), "courseId": courseID}, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.toDomain(), nil
}
