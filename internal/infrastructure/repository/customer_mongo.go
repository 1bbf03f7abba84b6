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

type customerDocument struct {
	UserID          string                       `bson:"_id"`
	Username        string                       `bson:"username"`
	Email           string                       `bson:"email"`
	EnrolledCourses []string                     `bson:"enrolledCourses"`
	Progress        map[string]*progressDocument `bson:"progress"`
	CreatedAt       time.Time                    `bson:"createdAt"`
	UpdatedAt       time.Time                    `bson:"updatedAt"`
}

type progressDocument struct {
	LastLessonID     string             `bson:"lastLessonId,omitempty"`
	LastPosition     float64            `bson:"lastPosition"`
	CompletedLessons []string           `bson:"completedLessons"`
	Bookmarks        []bookmarkDocument `bson:"bookmarks"`
	Quiz             *quizDocument      `bson:"quiz,omitempty"`
	UpdatedAt        time.Time          `bson:"updatedAt"`
}

type bookmarkDocument struct {
	Note     string    `bson:"note"`
	Position float64   `bson:"position"`
	At       time.Time `bson:"at"`
}

type quizDocument struct {
	Score  float64   `bson:"score"`
	Total  float64   `bson:"total"`
	Passed bool      `bson:"passed"`
	At     time.Time `bson:"at"`
}

func (d *customerDocument) toDomain() (*domain.Customer, error) {
	id, err := uuid.Parse(d.UserID)
	if err != nil {
		return nil, err
	}
	c := &domain.Customer{
		UserID:          id,
		Username:        d.Username,
		Email:           d.Email,
		EnrolledCourses: append([]string{}, d.EnrolledCourses...),
		Progress:        make(map[string]*domain.CourseProgress, len(d.Progress)),
		CreatedAt:       d.CreatedAt,
		UpdatedAt:       d.UpdatedAt,
	}
	for courseID, p := range d.Progress {
		if p != nil {
			c.Progress[courseID] = p.toDomain()
		}
	}
	return c, nil
}

// toDomain fills in empty collections; partially created sub-records may lack them.
func (d *progressDocument) toDomain() *domain.CourseProgress {
	p := domain.NewCourseProgress()
	p.LastLessonID = d.LastLessonID
	p.LastPosition = d.LastPosition
	p.UpdatedAt = d.UpdatedAt
	p.CompletedLessons = append(p.CompletedLessons, d.CompletedLessons...)
	for _, b := range d.Bookmarks {
		p.Bookmarks = append(p.Bookmarks, domain.Bookmark{Note: b.Note, Position: b.Position, At: b.At})
	}
	if d.Quiz != nil {
		p.Quiz = &domain.QuizResult{Score: d.Quiz.Score, Total: d.Quiz.Total, Passed: d.Quiz.Passed, At: d.Quiz.At}
	}
	return p
}

// MongoCustomerRepository applies every change as a single-document update on a field
// path, so concurrent writers to different fields of the same customer never clobber each other.
type MongoCustomerRepository struct {
	coll *mongo.Collection
}

func (r *MongoCustomerRepository) Ensure(ctx context.Context, customer *domain.Customer) (*domain.Customer, error) {
	now := time.Now()
	courses := customer.EnrolledCourses
	if courses == nil {
		courses = []string{}
	}
	update := bson.M{"$setOnInsert": bson.M{
		"username":        customer.Username,
		"email":           customer.Email,
		"enrolledCourses": courses,
		"progress":        bson.M{},
		"createdAt":       now,
		"updatedAt":       now,
	}}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var doc customerDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": customer.UserID.String()}, update, opts).Decode(&doc)
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *MongoCustomerRepository) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Customer, error) {
	doc, err := r.find(ctx, userID, nil)
	if err != nil {
		return nil, err
	}
	return doc.toDomain()
}

func (r *MongoCustomerRepository) UpdateEmail(ctx context.Context, userID uuid.UUID, email string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{"$set": bson.M{"email": email, "updatedAt": time.Now()}},
	)
	return err
}

func (r *MongoCustomerRepository) AddEnrollment(ctx context.Context, seed *domain.Customer, courseID string) ([]string, error) {
	now := time.Now()
	update := bson.M{
		"$addToSet": bson.M{"enrolledCourses": courseID},
		"$setOnInsert": bson.M{
			"username":  seed.Username,
			"email":     seed.Email,
			"progress":  bson.M{},
			"createdAt": now,
		},
		"$set": bson.M{"updatedAt": now},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After).
		SetProjection(bson.M{"enrolledCourses": 1})

	var doc customerDocument
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": seed.UserID.String()}, update, opts).Decode(&doc); err != nil {
		return nil, err
	}
	return append([]string{}, doc.EnrolledCourses...), nil
}

func (r *MongoCustomerRepository) RemoveEnrollment(ctx context.Context, userID uuid.UUID, courseID string) error {
	_, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": userID.String()},
		bson.M{
			"$pull": bson.M{"enrolledCourses": courseID},
			"$set":  bson.M{"updatedAt": time.Now()},
		},
	)
	return err
}

func (r *MongoCustomerRepository) ListEnrollments(ctx context.Context, userID uuid.UUID) ([]string, error) {
	doc, err := r.find(ctx, userID, bson.M{"enrolledCourses": 1})
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	return append([]string{}, doc.EnrolledCourses...), nil
}

func (r *MongoCustomerRepository) IsEnrolled(ctx context.Context, userID uuid.UUID, courseID string) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": userID.String(), "enrolledCourses": courseID})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoCustomerRepository) GetProgress(ctx context.Context, userID uuid.UUID, courseID string) (*domain.CourseProgress, error) {
	doc, err := r.find(ctx, userID, bson.M{"progress": 1})
	if errors.Is(err, domain.ErrCustomerNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	p, ok := doc.Progress[courseID]
	if !ok || p == nil {
		return nil, nil
	}
	return p.toDomain(), nil
}

func (r *MongoCustomerRepository) SaveResumePoint(ctx context.Context, userID uuid.UUID, courseID, lessonID string, position float64, at time.Time) (*domain.CourseProgress, error) {
	path := progressPath(courseID)
	doc, err := r.updateProgress(ctx, userID, courseID, at, bson.M{
		"$set": bson.M{
			path + ".lastLessonId": lessonID,
			path + ".lastPosition": position,
		},
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *MongoCustomerRepository) AddCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	doc, err := r.updateProgress(ctx, userID, courseID, at, bson.M{
		"$addToSet": bson.M{progressPath(courseID) + ".completedLessons": lessonID},
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain().CompletedLessons, nil
}

func (r *MongoCustomerRepository) RemoveCompletedLesson(ctx context.Context, userID uuid.UUID, courseID, lessonID string, at time.Time) ([]string, error) {
	doc, err := r.updateProgress(ctx, userID, courseID, at, bson.M{
		"$pull": bson.M{progressPath(courseID) + ".completedLessons": lessonID},
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain().CompletedLessons, nil
}

func (r *MongoCustomerRepository) AppendBookmark(ctx context.Context, userID uuid.UUID, courseID string, bookmark domain.Bookmark) ([]domain.Bookmark, error) {
	doc, err := r.updateProgress(ctx, userID, courseID, bookmark.At, bson.M{
		"$push": bson.M{progressPath(courseID) + ".bookmarks": bookmarkDocument{
			Note:     bookmark.Note,
			Position: bookmark.Position,
			At:       bookmark.At,
		}},
	})
	if err != nil {
		return nil, err
	}
	return doc.toDomain().Bookmarks, nil
}

func (r *MongoCustomerRepository) SetQuizResult(ctx context.Context, userID uuid.UUID, courseID string, quiz domain.QuizResult) error {
	_, err := r.updateProgress(ctx, userID, courseID, quiz.At, bson.M{
		"$set": bson.M{progressPath(courseID) + ".quiz": quizDocument{
			Score:  quiz.Score,
			Total:  quiz.Total,
			Passed: quiz.Passed,
			At:     quiz.At,
		}},
	})
	return err
}

// updateProgress runs one atomic update against a course sub-record and returns it as stored afterwards.
// It never creates the customer itself.
func (r *MongoCustomerRepository) updateProgress(ctx context.Context, userID uuid.UUID, courseID string, at time.Time, update bson.M) (*progressDocument, error) {
	path := progressPath(courseID)
	set, _ := update["$set"].(bson.M)
	if set == nil {
		set = bson.M{}
	}
	set[path+".updatedAt"] = at
	set["updatedAt"] = at
	update["$set"] = set

	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetProjection(bson.M{path: 1})

	var doc customerDocument
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": userID.String()}, update, opts).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	p := doc.Progress[courseID]
	if p == nil {
		p = &progressDocument{UpdatedAt: at}
	}
	return p, nil
}

func (r *MongoCustomerRepository) find(ctx context.Context, userID uuid.UUID, projection bson.M) (*customerDocument, error) {
	opts := options.FindOne()
	if projection != nil {
		opts.SetProjection(projection)
	}
	var doc customerDocument
	if err := r.coll.FindOne(ctx, bson.M{"_id": userID.String()}, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrCustomerNotFound
		}
		return nil, err
	}
	return &doc, nil
}

// progressPath is safe to build from a course id because ids with '.' or a leading '$' are rejected upstream.
func progressPath(courseID string) string {
	return "progress." + courseID
}
