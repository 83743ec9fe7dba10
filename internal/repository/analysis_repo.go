package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"sauti/internal/model"
)

type AnalysisRepo interface {
	Save(ctx context.Context, report *model.AnalysisReport) error
	GetBySurvey(ctx context.Context, surveyID string) (*model.AnalysisReport, error)
}

type analysisRepo struct {
	collection *mongo.Collection
}

func NewAnalysisRepo(db *mongo.Database) AnalysisRepo {
	return &analysisRepo{collection: db.Collection("analyses")}
}

// Save keeps one report per survey: the latest run replaces the previous.
func (r *analysisRepo) Save(ctx context.Context, report *model.AnalysisReport) error {
	filter := bson.M{"surveyId": report.SurveyID}
	update := bson.M{"$set": report}
	_, err := r.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func (r *analysisRepo) GetBySurvey(ctx context.Context, surveyID string) (*model.AnalysisReport, error) {
	var report model.AnalysisReport
	err := r.collection.FindOne(ctx, bson.M{"surveyId": surveyID}).Decode(&report)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &report, nil
}
