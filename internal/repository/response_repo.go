package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauti/internal/model"
)

type ResponseRepo interface {
	SaveBatch(ctx context.Context, surveyID string, records []*model.ResponseRecord) error
	ListBySurvey(ctx context.Context, surveyID string) ([]*model.ResponseRecord, error)
	DeleteBySurvey(ctx context.Context, surveyID string) error
}

// storedResponse wraps a record with the survey it belongs to.
type storedResponse struct {
	SurveyID string                `bson:"surveyId"`
	Seq      int                   `bson:"seq"` // preserves run order on read-back
	Record   *model.ResponseRecord `bson:"record"`
}

type responseRepo struct {
	collection *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{collection: db.Collection("responses")}
}

func (r *responseRepo) SaveBatch(ctx context.Context, surveyID string, records []*model.ResponseRecord) error {
	if len(records) == 0 {
		return nil
	}

	// run order matters downstream; find the current tail
	last := struct {
		Seq int `bson:"seq"`
	}{}
	opts := options.FindOne().SetSort(bson.M{"seq": -1})
	err := r.collection.FindOne(ctx, bson.M{"surveyId": surveyID}, opts).Decode(&last)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return err
	}

	docs := make([]interface{}, 0, len(records))
	for i, rec := range records {
		docs = append(docs, storedResponse{
			SurveyID: surveyID,
			Seq:      last.Seq + 1 + i,
			Record:   rec,
		})
	}
	_, err = r.collection.InsertMany(ctx, docs)
	return err
}

func (r *responseRepo) ListBySurvey(ctx context.Context, surveyID string) ([]*model.ResponseRecord, error) {
	opts := options.Find().SetSort(bson.M{"seq": 1})
	cursor, err := r.collection.Find(ctx, bson.M{"surveyId": surveyID}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var stored []storedResponse
	if err = cursor.All(ctx, &stored); err != nil {
		return nil, err
	}

	records := make([]*model.ResponseRecord, 0, len(stored))
	for _, s := range stored {
		records = append(records, s.Record)
	}
	return records, nil
}

func (r *responseRepo) DeleteBySurvey(ctx context.Context, surveyID string) error {
	_, err := r.collection.DeleteMany(ctx, bson.M{"surveyId": surveyID})
	return err
}
