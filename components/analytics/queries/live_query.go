package queries

import (
	"context"

	gocommand "github.com/goliatone/go-command"

	analytics "github.com/goliatone/go-admin-reports/components/analytics"
)

// LiveRequest asks for the current live-visitor view.
type LiveRequest struct{}

type liveService interface {
	Live() analytics.LiveView
}

// LiveQuery reads the in-memory live-visitor view.
type LiveQuery struct {
	service liveService
}

// NewLiveQuery builds the query.
func NewLiveQuery(service liveService) *LiveQuery {
	return &LiveQuery{service: service}
}

var _ gocommand.Querier[LiveRequest, analytics.LiveView] = (*LiveQuery)(nil)

// Query returns the latest live-visitor view.
func (q *LiveQuery) Query(_ context.Context, _ LiveRequest) (analytics.LiveView, error) {
	return q.service.Live(), nil
}
