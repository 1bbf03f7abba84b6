package repository

import (
	"context"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type reviewDocument struct {
	ID        string    `bson:"_id"`
	UserID    string    `bson:"userId"`
	Username  string    `bson:"username"`
	CourseID  string    `bson:"courseId"`
	Rating    int       `bson:"rating"`
	Comment   string    `bson:"comment"`
	CreatedAt time.Time `bson:"createdAt"`

	ExclusiveKey string `bson:"exclusiveKey,omitempty"`
}

func (d *reviewDocument) toDomain() domain.Review {
	// ids are written by this package; a malformed one decodes as uuid.Nil
	id, _ := uuid.Parse(d.ID)
	userID, _ := uuid.Parse(d.UserID)
	return domain.Review{
		ID:        id,
		UserID:    userID,
		Username:  d.Username,
		CourseID:  d.CourseID,
		Rating:    d.Rating,
		Comment:   d.Comment,
		CreatedAt: d.CreatedAt,
	}
}

type MongoReviewRepository struct {
	coll *mongo.Collection
}

func toReviewDocument(review *domain.Review) reviewDocument {
	return reviewDocument{
		ID:        review.ID.String(),
		UserID:    review.UserID.String(),
		Username:  review.Username,
		CourseID:  review.CourseID,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

func (r *MongoReviewRepository) Create(ctx context.Context, review *domain.Review) error {
	_, err := r.coll.InsertOne(ctx, toReviewDocument(review))
	return err
}

func (r *MongoReviewRepository) CreateExclusive(ctx context.Context, review *domain.Review) error {
	doc := toReviewDocument(review)
	doc.ExclusiveKey = exclusiveKey(review.UserID, review.CourseID)
	_, err := r.coll.InsertOne(ctx, doc)
	if duplicateOn(err, exclusiveKeyIndex) {
		return domain.ErrAlreadyReviewed
	}
	return err
}

func (r *MongoReviewRepository) ListByCourse(ctx context.Context, courseID string, limit int) ([]domain.Review, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})
	if limit > 0 {
		opts.SetLimit(int64(limit))
	}

	cursor, err := r.coll.Find(ctx, bson.M{"courseId": courseID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var docs []reviewDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	reviews := make([]domain.Review, 0, len(docs))
	for i := range docs {
		reviews = append(reviews, docs[i].toDomain())
	}
	return reviews, nil
}

func (r *MongoReviewRepository) Summary(ctx context.Context, courseID string) (domain.ReviewSummary, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: bson.D{{Key: "courseId", Value: courseID}}}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avg", Value: bson.D{{Key: "$avg", Value: "$rating"}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return domain.ReviewSummary{}, err
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Avg   float64 `bson:"avg"`
		Count int64   `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return domain.ReviewSummary{}, err
	}
	if len(rows) == 0 {
		return domain.ReviewSummary{}, nil
	}
	return domain.ReviewSummary{Average: rows[0].Avg, Count: rows[0].Count}, nil
}

func (r *MongoReviewRepository) ExistsFor(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"userId": userID.String(), "courseId": courseID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
