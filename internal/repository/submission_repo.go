package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formbox/internal/model"
)

// SubmissionRepo handles MongoDB operations for form submissions.
type SubmissionRepo interface {
	Insert(ctx context.Context, submission *model.FormSubmission) (string, error)
	GetByID(ctx context.Context, id string) (*model.FormSubmission, error)
	List(ctx context.Context, query model.ListSubmissionsQuery) ([]*model.FormSubmission, int64, error)
	FindRecentBySession(ctx context.Context, sessionID string, since time.Time) ([]*model.FormSubmission, error)
	CountRecentByIP(ctx context.Context, ipAddress string, since time.Time) (int64, error)
	RegisterAttempt(ctx context.Context, id string, at time.Time) error
	MarkProcessed(ctx context.Context, id string, at time.Time) (bool, error)
	Statistics(ctx context.Context, formID string) (*model.SubmissionStats, error)
}

type submissionRepo struct {
	collection *mongo.Collection
}

// NewSubmissionRepo creates a new submission repository.
func NewSubmissionRepo(db *mongo.Database) SubmissionRepo {
	return &submissionRepo{
		collection: db.Collection("submissions"),
	}
}

func (r *submissionRepo) Insert(ctx context.Context, submission *model.FormSubmission) (string, error) {
	result, err := r.collection.InsertOne(ctx, submission)
	if err != nil {
		return "", err
	}

	oid, ok := result.InsertedID.(primitive.ObjectID)
	if !ok {
		return "", fmt.Errorf("unexpected inserted id type %T", result.InsertedID)
	}
	submission.ID = oid
	return oid.Hex(), nil
}

func (r *submissionRepo) GetByID(ctx context.Context, id string) (*model.FormSubmission, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		// A malformed id cannot match any document.
		return nil, nil
	}

	var submission model.FormSubmission
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&submission)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &submission, nil
}

func (r *submissionRepo) List(ctx context.Context, query model.ListSubmissionsQuery) ([]*model.FormSubmission, int64, error) {
	filter := bson.M{}
	if query.FormID != "" {
		filter["formId"] = query.FormID
	}
	if query.UserEmail != "" {
		filter["userEmail"] = query.UserEmail
	}

	total, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "submittedAt", Value: -1}}).
		SetLimit(int64(query.Limit)).
		SetSkip(int64(query.Offset))

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var submissions []*model.FormSubmission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, 0, err
	}
	return submissions, total, nil
}

func (r *submissionRepo) FindRecentBySession(ctx context.Context, sessionID string, since time.Time) ([]*model.FormSubmission, error) {
	filter := bson.M{
		"sessionId":             sessionID,
		"lastSubmissionAttempt": bson.M{"$gte": since},
	}
	opts := options.Find().SetSort(bson.D{{Key: "lastSubmissionAttempt", Value: -1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var submissions []*model.FormSubmission
	if err := cursor.All(ctx, &submissions); err != nil {
		return nil, err
	}
	return submissions, nil
}

// CountRecentByIP matches on the metadata field, which the submission service
// always populates, rather than the top-level ipAddress.
func (r *submissionRepo) CountRecentByIP(ctx context.Context, ipAddress string, since time.Time) (int64, error) {
	filter := bson.M{
		"metadata.ipAddress": ipAddress,
		"submittedAt":        bson.M{"$gte": since},
	}
	return r.collection.CountDocuments(ctx, filter)
}

// RegisterAttempt bumps the attempt counter and refreshes the timestamp on an
// existing record in a single atomic update.
func (r *submissionRepo) RegisterAttempt(ctx context.Context, id string, at time.Time) error {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return err
	}

	update := bson.M{
		"$inc": bson.M{"submissionAttempts": 1},
		"$set": bson.M{"lastSubmissionAttempt": at},
	}
	_, err = r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (r *submissionRepo) MarkProcessed(ctx context.Context, id string, at time.Time) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, nil
	}

	update := bson.M{"$set": bson.M{"isProcessed": true, "processedAt": at}}
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return false, err
	}
	return result.MatchedCount > 0, nil
}

func (r *submissionRepo) Statistics(ctx context.Context, formID string) (*model.SubmissionStats, error) {
	match := bson.M{}
	if formID != "" {
		match["formId"] = formID
	}

	total, err := r.collection.CountDocuments(ctx, match)
	if err != nil {
		return nil, err
	}

	byDate, err := r.submissionsByDate(ctx, match)
	if err != nil {
		return nil, err
	}

	avgQuestions, err := r.averageQuestions(ctx, match)
	if err != nil {
		return nil, err
	}

	return &model.SubmissionStats{
		TotalSubmissions:              total,
		SubmissionsByDate:             byDate,
		AverageQuestionsPerSubmission: round2(avgQuestions),
	}, nil
}

// submissionsByDate groups by UTC calendar day, ascending.
func (r *submissionRepo) submissionsByDate(ctx context.Context, match bson.M) ([]model.DateCount, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: bson.D{{Key: "$dateToString", Value: bson.D{
				{Key: "format", Value: "%Y-%m-%d"},
				{Key: "date", Value: "$submittedAt"},
			}}}},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		bson.D{{Key: "$sort", Value: bson.D{{Key: "_id", Value: 1}}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var byDate []model.DateCount
	if err := cursor.All(ctx, &byDate); err != nil {
		return nil, err
	}
	return byDate, nil
}

func (r *submissionRepo) averageQuestions(ctx context.Context, match bson.M) (float64, error) {
	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "avgQuestions", Value: bson.D{{Key: "$avg", Value: bson.D{
				{Key: "$size", Value: "$questions"},
			}}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		AvgQuestions float64 `bson:"avgQuestions"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return 0, err
	}
	if len(results) == 0 {
		return 0, nil
	}
	return results[0].AvgQuestions, nil
}
