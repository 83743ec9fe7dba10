package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauti/internal/model"
)

type SurveyRepo interface {
	Upsert(ctx context.Context, survey *model.Survey) error
	GetByID(ctx context.Context, surveyID string) (*model.Survey, error)
	List(ctx context.Context) ([]*model.Survey, error)
}

type surveyRepo struct {
	collection *mongo.Collection
}

func NewSurveyRepo(db *mongo.Database) SurveyRepo {
	return &surveyRepo{collection: db.Collection("surveys")}
}

func (r *surveyRepo) Upsert(ctx context.Context, survey *model.Survey) error {
	filter := bson.M{"_id": survey.SurveyID}
	update := bson.M{"$set": survey}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *surveyRepo) GetByID(ctx context.Context, surveyID string) (*model.Survey, error) {
	var survey model.Survey
	err := r.collection.FindOne(ctx, bson.M{"_id": surveyID}).Decode(&survey)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &survey, nil
}

func (r *surveyRepo) List(ctx context.Context) ([]*model.Survey, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var surveys []*model.Survey
	if err = cursor.All(ctx, &surveys); err != nil {
		return nil, err
	}
	return surveys, nil
}
