package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"telegramdw/internal/models"
)

// AnalyticsRepository answers the analytical questions served by the API.
type AnalyticsRepository interface {
	TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error)
	ChannelActivity(ctx context.Context, channel string) ([]models.ActivityPoint, error)
	SearchMessages(ctx context.Context, query string, limit int) ([]models.MessageResult, error)
}

type analyticsRepository struct {
	db     *sqlx.DB
	logger *zap.Logger
}

// NewAnalyticsRepository creates a repository over the marts schema.
func NewAnalyticsRepository(db *sqlx.DB, logger *zap.Logger) AnalyticsRepository {
	return &analyticsRepository{db: db, logger: logger}
}

func (r *analyticsRepository) TopProducts(ctx context.Context, limit int) ([]models.TopProduct, error) {
	query := `
	SELECT object_class AS product, COUNT(*) AS mentions
	FROM marts.fct_image_detections
	GROUP BY object_class
	ORDER BY mentions DESC, product
	LIMIT $1`

	var rows []models.TopProduct
	if err := r.db.SelectContext(ctx, &rows, query, limit); err != nil {
		return nil, fmt.Errorf("failed to fetch top products: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) ChannelActivity(ctx context.Context, channel string) ([]models.ActivityPoint, error) {
	query := `
	SELECT f.message_date::date AS date, COUNT(*) AS messages
	FROM marts.fct_messages f
	JOIN marts.dim_channels c ON f.channel_id = c.channel_id
	WHERE c.channel = $1 AND f.message_date IS NOT NULL
	GROUP BY f.message_date::date
	ORDER BY date`

	var rows []models.ActivityPoint
	if err := r.db.SelectContext(ctx, &rows, query, channel); err != nil {
		return nil, fmt.Errorf("failed to fetch channel activity: %w", err)
	}
	return rows, nil
}

func (r *analyticsRepository) SearchMessages(ctx context.Context, query string, limit int) ([]models.MessageResult, error) {
	sqlQuery := `
	SELECT f.message_id,
	       COALESCE(c.channel, '') AS channel,
	       f.message_text AS text,
	       f.message_date AS date
	FROM marts.fct_messages f
	LEFT JOIN marts.dim_channels c ON f.channel_id = c.channel_id
	WHERE f.message_text ILIKE $1
	ORDER BY f.message_date DESC NULLS LAST
	LIMIT $2`

	var rows []models.MessageResult
	if err := r.db.SelectContext(ctx, &rows, sqlQuery, "%"+query+"%", limit); err != nil {
		return nil, fmt.Errorf("failed to search messages: %w", err)
	}
	return rows, nil
}
