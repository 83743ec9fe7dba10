package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"sauti/internal/model"
)

// AnalysisCache keeps computed analysis reports in Redis so repeated reads
// do not recompute or hit Mongo.
type AnalysisCache interface {
	Get(ctx context.Context, surveyID string) (*model.AnalysisReport, error)
	Set(ctx context.Context, report *model.AnalysisReport) error
	Invalidate(ctx context.Context, surveyID string) error
}

type analysisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewAnalysisCache(client *redis.Client) AnalysisCache {
	return &analysisCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func (c *analysisCache) key(surveyID string) string {
	return fmt.Sprintf("survey:%s:analysis", surveyID)
}

func (c *analysisCache) Get(ctx context.Context, surveyID string) (*model.AnalysisReport, error) {
	data, err := c.client.Get(ctx, c.key(surveyID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var report model.AnalysisReport
	if err := json.Unmarshal([]byte(data), &report); err != nil {
		return nil, err
	}
	return &report, nil
}

func (c *analysisCache) Set(ctx context.Context, report *model.AnalysisReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.key(report.SurveyID), data, c.ttl).Err()
}

func (c *analysisCache) Invalidate(ctx context.Context, surveyID string) error {
	return c.client.Del(ctx, c.key(surveyID)).Err()
}
