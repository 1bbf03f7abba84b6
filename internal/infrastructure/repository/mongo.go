package repository

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	usersCollection        = "users"
	customersCollection    = "customers"
	reviewsCollection      = "reviews"
	certificatesCollection = "certificates"

	exclusiveKeyIndex = "exclusive_key_unique"
)

// MongoConfig points the document backend at two logical databases: one for
// login identities and one for learning data (customers, reviews, certificates).
type MongoConfig struct {
	UsersURI       string
	CustomersURI   string
	UsersDB        string
	CustomersDB    string
	ConnectTimeout time.Duration
}

type MongoStore struct {
	usersClient     *mongo.Client
	customersClient *mongo.Client
	users           *mongo.Database
	customers       *mongo.Database
}

// ConnectMongo opens both databases. When the two URIs match a single client is shared.
func ConnectMongo(ctx context.Context, cfg MongoConfig) (*MongoStore, error) {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	usersClient, err := connectMongoClient(ctx, cfg.UsersURI)
	if err != nil {
		return nil, fmt.Errorf("connect users database: %w", err)
	}

	customersClient := usersClient
	if cfg.CustomersURI != "" && cfg.CustomersURI != cfg.UsersURI {
		customersClient, err = connectMongoClient(ctx, cfg.CustomersURI)
		if err != nil {
			_ = usersClient.Disconnect(context.Background())
			return nil, fmt.Errorf("connect customers database: %w", err)
		}
	}

	s := &MongoStore{
		usersClient:     usersClient,
		customersClient: customersClient,
		users:           usersClient.Database(cfg.UsersDB),
		customers:       customersClient.Database(cfg.CustomersDB),
	}
	if err := s.EnsureIndexes(ctx); err != nil {
		_ = s.Disconnect(context.Background())
		return nil, err
	}
	return s, nil
}

func connectMongoClient(ctx context.Context, uri string) (*mongo.Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	return client, nil
}

// EnsureIndexes creates the unique and lookup indexes the repositories rely on.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	indexes := []struct {
		coll  *mongo.Collection
		model mongo.IndexModel
	}{
		{s.users.Collection(usersCollection), mongo.IndexModel{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.customers.Collection(reviewsCollection), mongo.IndexModel{
			Keys: bson.D{{Key: "courseId", Value: 1}, {Key: "createdAt", Value: -1}},
		}},
		{s.customers.Collection(certificatesCollection), mongo.IndexModel{
			Keys:    bson.D{{Key: "code", Value: 1}},
			Options: options.Index().SetUnique(true),
		}},
		{s.customers.Collection(certificatesCollection), mongo.IndexModel{
			Keys: bson.D{{Key: "userId", Value: 1}, {Key: "courseId", Value: 1}},
		}},
		{s.customers.Collection(reviewsCollection), exclusiveKeyModel()},
		{s.customers.Collection(certificatesCollection), exclusiveKeyModel()},
	}
	for _, idx := range indexes {
		if _, err := idx.coll.Indexes().CreateOne(ctx, idx.model); err != nil {
			return fmt.Errorf("create index on %s: %w", idx.coll.Name(), err)
		}
	}
	return nil
}

// exclusiveKeyModel only covers documents that carry the key, so reviews and
// certificates written while duplicates are allowed never collide.
func exclusiveKeyModel() mongo.IndexModel {
	return mongo.IndexModel{
		Keys: bson.D{{Key: "exclusiveKey", Value: 1}},
		Options: options.Index().
			SetName(exclusiveKeyIndex).
			SetUnique(true).
			SetPartialFilterExpression(bson.M{"exclusiveKey": bson.M{"$exists": true}}),
	}
}

// duplicateOn reports a duplicate-key error raised by the named index.
func duplicateOn(err error, index string) bool {
	return mongo.IsDuplicateKeyError(err) && strings.Contains(err.Error(), index)
}

func (s *MongoStore) Users() *MongoUserRepository {
	return &MongoUserRepository{coll: s.users.Collection(usersCollection)}
}

func (s *MongoStore) Customers() *MongoCustomerRepository {
	return &MongoCustomerRepository{coll: s.customers.Collection(customersCollection)}
}

func (s *MongoStore) Reviews() *MongoReviewRepository {
	return &MongoReviewRepository{coll: s.customers.Collection(reviewsCollection)}
}

func (s *MongoStore) Certificates() *MongoCertificateRepository {
	return &MongoCertificateRepository{coll: s.customers.Collection(certificatesCollection)}
}

func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.usersClient.Ping(ctx, readpref.Primary()); err != nil {
		return err
	}
	if s.customersClient != s.usersClient {
		return s.customersClient.Ping(ctx, readpref.Primary())
	}
	return nil
}

func (s *MongoStore) Disconnect(ctx context.Context) error {
	err := s.usersClient.Disconnect(ctx)
	if s.customersClient != s.usersClient {
		if cerr := s.customersClient.Disconnect(ctx); err == nil {
			err = cerr
		}
	}
	return err
}
