package metrics

import (
	"context"

	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	usersRegistered       metric.Int64Counter
	logins                metric.Int64Counter
	applicationsSubmitted metric.Int64Counter
	applicationsViewed    metric.Int64Counter
}

func New(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.usersRegistered, err = meter.Int64Counter(
		"scholarship_service.users.registered",
		metric.WithDescription("Total number of users registered"),
		metric.WithUnit("{user}"),
	)
	if err != nil {
		return nil, err
	}

	m.logins, err = meter.Int64Counter(
		"scholarship_service.logins",
		metric.WithDescription("Total number of successful logins"),
		metric.WithUnit("{login}"),
	)
	if err != nil {
		return nil, err
	}

	m.applicationsSubmitted, err = meter.Int64Counter(
		"scholarship_service.applications.submitted",
		metric.WithDescription("Total number of scholarship applications submitted"),
		metric.WithUnit("{application}"),
	)
	if err != nil {
		return nil, err
	}

	m.applicationsViewed, err = meter.Int64Counter(
		"scholarship_service.applications.viewed",
		metric.WithDescription("Total number of times applicants viewed their application"),
		metric.WithUnit("{view}"),
	)
	if err != nil {
		return nil, err
	}

	return m, nil
}

func (m *Metrics) RecordUserRegistered(ctx context.Context) {
	if m != nil && m.usersRegistered != nil {
		m.usersRegistered.Add(ctx, 1)
	}
}

func (m *Metrics) RecordLogin(ctx context.Context) {
	if m != nil && m.logins != nil {
		m.logins.Add(ctx, 1)
	}
}

func (m *Metrics) RecordApplicationSubmitted(ctx context.Context) {
	if m != nil && m.applicationsSubmitted != nil {
		m.applicationsSubmitted.Add(ctx, 1)
	}
}

func (m *Metrics) RecordApplicationViewed(ctx context.Context) {
	if m != nil && m.applicationsViewed != nil {
		m.applicationsViewed.Add(ctx, 1)
	}
}

// NewMock creates a no-op Metrics instance for testing
// The returned Metrics will safely ignore all Record* calls
func NewMock() *Metrics {
	return &Metrics{}
}
