package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	analytics "github.com/goliatone/go-admin-reports/components/analytics"
)

type reportService interface {
	Refresh(ctx context.Context, days int) (*analytics.Report, error)
}

// ReportRequest selects the trailing day window to aggregate.
type ReportRequest struct {
	Days int `json:"days"`
}

// ReportQuery executes a read-only report refresh.
type ReportQuery struct {
	service reportService
}

// NewReportQuery builds the query.
func NewReportQuery(service reportService) *ReportQuery {
	return &ReportQuery{service: service}
}

var _ gocommand.Querier[ReportRequest, *analytics.Report] = (*ReportQuery)(nil)

// Query aggregates the report for the requested window.
func (q *ReportQuery) Query(ctx context.Context, req ReportRequest) (*analytics.Report, error) {
	return q.service.Refresh(ctx, req.Days)
}
