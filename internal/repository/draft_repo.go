package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"formbox/internal/model"
)

// DraftRepo handles MongoDB operations for draft submissions.
type DraftRepo interface {
	Upsert(ctx context.Context, draft *model.DraftSubmission) error
	GetBySession(ctx context.Context, sessionID string) (*model.DraftSubmission, error)
	DeleteBySession(ctx context.Context, sessionID string) (bool, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	Statistics(ctx context.Context, formID string, now time.Time) (*model.DraftStats, error)
}

type draftRepo struct {
	collection *mongo.Collection
}

// NewDraftRepo creates a new draft repository.
func NewDraftRepo(db *mongo.Database) DraftRepo {
	return &draftRepo{
		collection: db.Collection("drafts"),
	}
}

// Upsert fully overwrites the draft for its session, creating it if absent.
// A single atomic replace keeps concurrent saves last-writer-wins.
func (r *draftRepo) Upsert(ctx context.Context, draft *model.DraftSubmission) error {
	filter := bson.M{"sessionId": draft.SessionID}
	opts := options.Replace().SetUpsert(true)
	_, err := r.collection.ReplaceOne(ctx, filter, draft, opts)
	return err
}

func (r *draftRepo) GetBySession(ctx context.Context, sessionID string) (*model.DraftSubmission, error) {
	var draft model.DraftSubmission
	err := r.collection.FindOne(ctx, bson.M{"sessionId": sessionID}).Decode(&draft)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &draft, nil
}

func (r *draftRepo) DeleteBySession(ctx context.Context, sessionID string) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"sessionId": sessionID})
	if err != nil {
		return false, err
	}
	return result.DeletedCount > 0, nil
}

func (r *draftRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"expiresAt": bson.M{"$lt": now}})
	if err != nil {
		return 0, err
	}
	return result.DeletedCount, nil
}

func (r *draftRepo) Statistics(ctx context.Context, formID string, now time.Time) (*model.DraftStats, error) {
	match := bson.M{"expiresAt": bson.M{"$gt": now}}
	if formID != "" {
		match["formId"] = formID
	}

	pipeline := mongo.Pipeline{
		bson.D{{Key: "$match", Value: match}},
		bson.D{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
			{Key: "avgStep", Value: bson.D{{Key: "$avg", Value: "$currentStep"}}},
			{Key: "avgAnswers", Value: bson.D{{Key: "$avg", Value: "$metadata.answerCount"}}},
			{Key: "oldest", Value: bson.D{{Key: "$min", Value: "$lastModified"}}},
			{Key: "newest", Value: bson.D{{Key: "$max", Value: "$lastModified"}}},
		}}},
	}

	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var results []struct {
		Count      int64     `bson:"count"`
		AvgStep    float64   `bson:"avgStep"`
		AvgAnswers float64   `bson:"avgAnswers"`
		Oldest     time.Time `bson:"oldest"`
		Newest     time.Time `bson:"newest"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return &model.DraftStats{}, nil
	}

	res := results[0]
	return &model.DraftStats{
		TotalDrafts:        res.Count,
		AverageStep:        round2(res.AvgStep),
		AverageAnswerCount: round2(res.AvgAnswers),
		OldestDraft:        &res.Oldest,
		NewestDraft:        &res.Newest,
	}, nil
}
