package api

import (
	"context"
	"encoding/json"

	"twintrack/internal/domain"
	"twintrack/internal/normalize"
)

// AnalyticsRequest selects the dashboard reporting window.
type AnalyticsRequest struct {
	StartDate string `json:"StartDate"`
	EndDate   string `json:"EndDate"`
	GroupBy   string `json:"GroupBy"`
}

// Analytics returns activity counters bucketed by the requested
// grouping (day, week, or month).
func (c *Client) Analytics(ctx context.Context, req AnalyticsRequest) ([]domain.AnalyticsBucket, error) {
	var raw json.RawMessage
	if err := c.post(ctx, "api/v1/dashboard/analytics", req, &raw); err != nil {
		return nil, err
	}
	raws, err := decodeList[normalize.RawAnalyticsBucket](raw)
	if err != nil {
		return nil, err
	}
	return normalize.AnalyticsBuckets(raws), nil
}
