package application

import (
	"encoding/json"
	"time"

	"github.com/uptrace/bun"
)

// StatusSubmitted is the only status this service writes. Later states are
// owned by the admin review subsystem, which updates rows directly.
const StatusSubmitted = "submitted"

// Application is a scholarship application. The unique index on user_id
// enforces the one-application-per-user invariant at the storage layer.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:a"`

	ID                           int       `bun:"id,pk,autoincrement" json:"id"`
	UserID                       int       `bun:"user_id,unique,notnull" json:"userId"`
	FullName                     string    `bun:"full_name,notnull" json:"fullName"`
	DateOfBirth                  string    `bun:"date_of_birth,notnull" json:"dateOfBirth"`
	Address                      string    `bun:"address" json:"address"`
	PhoneNumber                  string    `bun:"phone_number" json:"phoneNumber"`
	CurrentInstitution           string    `bun:"current_institution" json:"currentInstitution"`
	ProgramOfStudy               string    `bun:"program_of_study" json:"programOfStudy"`
	GPA                          *float64  `bun:"gpa" json:"gpa"`
	Essay                        string    `bun:"essay,notnull" json:"essay"`
	HouseholdIncome              *int      `bun:"household_income" json:"householdIncome"`
	IncomeProofDocument          *string   `bun:"income_proof_document" json:"incomeProofDocument"`
	TranscriptDocument           *string   `bun:"transcript_document" json:"transcriptDocument"`
	RecommendationLetterDocument *string   `bun:"recommendation_letter_document" json:"recommendationLetterDocument"`
	Status                       string    `bun:"status,notnull,default:'submitted'" json:"status"`
	SubmittedAt                  time.Time `bun:"submitted_at,notnull,default:current_timestamp" json:"submittedAt"`
	UpdatedAt                    time.Time `bun:"updated_at,notnull,default:current_timestamp" json:"updatedAt"`
}

// SubmitRequest is the request body for submitting an application.
// Document fields are kept raw because clients send them in several shapes
// (handle string, empty string, or an empty object left over from a failed
// file attach); normalization happens in the service.
type SubmitRequest struct {
	FullName                     string          `json:"fullName" validate:"required"`
	DateOfBirth                  string          `json:"dateOfBirth" validate:"required"`
	Address                      string          `json:"address"`
	PhoneNumber                  string          `json:"phoneNumber"`
	CurrentInstitution           string          `json:"currentInstitution"`
	ProgramOfStudy               string          `json:"programOfStudy"`
	GPA                          *float64        `json:"gpa"`
	Essay                        string          `json:"essay" validate:"required"`
	HouseholdIncome              *int            `json:"householdIncome"`
	IncomeProofDocument          json.RawMessage `json:"incomeProofDocument"`
	TranscriptDocument           json.RawMessage `json:"transcriptDocument"`
	RecommendationLetterDocument json.RawMessage `json:"recommendationLetterDocument"`
}

// SubmitResponse returns the id of the newly created application
type SubmitResponse struct {
	Message       string `json:"message"`
	ApplicationID int    `json:"applicationId"`
}
