package repository

import (
	"context"
	"errors"
	"time"

	"careermate/internal/domain"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type userDocument struct {
	ID        string    `bson:"_id"`
	Username  string    `bson:"username"`
	Email     string    `bson:"email"`
	Password  string    `bson:"password"`
	AvatarURL string    `bson:"avatarUrl,omitempty"`
	CreatedAt time.Time `bson:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (d *userDocument) toDomain() (*domain.User, error) {
	id, err := uuid.Parse(d.ID)
	if err != nil {
		return nil, err
	}
	return &domain.User{
		ID:        id,
		Username:  d.Username,
		Email:     d.Email,
		Password:  d.Password,
		AvatarURL: d.AvatarURL,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}, nil
}

type MongoUserRepository struct {
	coll *mongo.Collection
}

func (r *MongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.coll.InsertOne(ctx, userDocument{
		ID:        user.ID.String(),
		Username:  user.Username,
		Email:     user.Email,
		Password:  user.Password,
		AvatarURL: user.AvatarURL,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrUserAlreadyExists
	}
	return err
}

func (r *MongoUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id.String()})
}

func (r *MongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *MongoUserRepository) UpdateEmail(ctx context.Context, id uuid.UUID, email string) error {
	err := r.set(ctx, id, bson.M{"email": email})
	if mongo.IsDuplicateKeyError(err) {
		return domain.ErrEmailInUse
	}
	return err
}

func (r *MongoUserRepository) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	return r.set(ctx, id, bson.M{"password": passwordHash})
}

func (r *MongoUserRepository) UpdateAvatar(ctx context.Context, id uuid.UUID, avatarURL string) error {
	return r.set(ctx, id, bson.M{"avatarUrl": avatarURL})
}

func (r *MongoUserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, err
	}
	return doc.toDomain()
}

func (r *MongoUserRepository) set(ctx context.Context, id uuid.UUID, fields bson.M) error {
	fields["updatedAt"] = time.Now()
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id.String()}, bson.M{"$set": fields})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
