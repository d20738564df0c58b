package application

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"

	"scholarship-service/internal/messaging"
)

var (
	ErrAlreadySubmitted = errors.New("application already submitted")
	ErrNotFound         = errors.New("no application found for this user")
)

// PlaceholderDocument stands in for attachments that arrived as an empty
// JSON object, an artifact of a failed file attach on the client.
// Behavior-compatible callers depend on this exact value.
const PlaceholderDocument = "file_placeholder.pdf"

// EventPublisher publishes domain events; satisfied by messaging.Producer.
type EventPublisher interface {
	SendMessage(value interface{}) error
}

type Service interface {
	Submit(ctx context.Context, userID int, req SubmitRequest) (*Application, error)
	GetOwn(ctx context.Context, userID int) (*Application, error)
}

type service struct {
	repo      Repository
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher EventPublisher, logger *slog.Logger) Service {
	return &service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Submit creates the caller's application. userID comes from a verified
// session, never from the request body. Status is forced to submitted
// regardless of caller input.
func (s *service) Submit(ctx context.Context, userID int, req SubmitRequest) (*Application, error) {
	app := &Application{
		UserID:                       userID,
		FullName:                     req.FullName,
		DateOfBirth:                  req.DateOfBirth,
		Address:                      req.Address,
		PhoneNumber:                  req.PhoneNumber,
		CurrentInstitution:           req.CurrentInstitution,
		ProgramOfStudy:               req.ProgramOfStudy,
		GPA:                          req.GPA,
		Essay:                        req.Essay,
		HouseholdIncome:              req.HouseholdIncome,
		IncomeProofDocument:          normalizeDocument(req.IncomeProofDocument),
		TranscriptDocument:           normalizeDocument(req.TranscriptDocument),
		RecommendationLetterDocument: normalizeDocument(req.RecommendationLetterDocument),
		Status:                       StatusSubmitted,
	}

	created, err := s.repo.Insert(ctx, app)
	if err != nil {
		return nil, err
	}

	s.logger.InfoContext(ctx, "application submitted", "application_id", created.ID, "user_id", userID)

	// Best effort: the admin review subsystem consumes these, but a broker
	// outage must not fail the submission.
	if s.publisher != nil {
		event := messaging.ApplicationSubmitted{
			ApplicationID: created.ID,
			UserID:        userID,
			SubmittedAt:   created.SubmittedAt,
		}
		if err := s.publisher.SendMessage(event); err != nil {
			s.logger.WarnContext(ctx, "failed to publish application.submitted event", "error", err)
		}
	}

	return created, nil
}

// GetOwn fetches the caller's application. Lookup is scoped to the verified
// identity; there is no fetch-by-arbitrary-id.
func (s *service) GetOwn(ctx context.Context, userID int) (*Application, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// normalizeDocument maps the document field shapes clients send to a
// stored handle:
//   - empty object {} -> the placeholder handle (failed file attach)
//   - empty or blank string -> absent
//   - any other string -> passed through unchanged
//   - anything else (null, numbers, non-empty objects) -> absent
func normalizeDocument(raw json.RawMessage) *string {
	if len(raw) == 0 {
		return nil
	}

	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err == nil && obj != nil && len(obj) == 0 {
		placeholder := PlaceholderDocument
		return &placeholder
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if strings.TrimSpace(s) == "" {
			return nil
		}
		return &s
	}

	return nil
}
