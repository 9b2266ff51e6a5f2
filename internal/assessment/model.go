package assessment

import (
	"context"
	"errors"
	"time"

	"github.com/skillfolio/profile-service/internal/profile"
)

// Assessment is a generated multiple-choice test for one skill at one
// difficulty. Correct answers are persisted but never serialized to the
// client.
type Assessment struct {
	ID        string     `json:"id" firestore:"id"`
	Title     string     `json:"title" firestore:"title"`
	Skill     string     `json:"skill" firestore:"skill"`
	Level     string     `json:"level" firestore:"level"`
	Questions []Question `json:"questions" firestore:"questions"`
	CreatedAt time.Time  `json:"createdAt" firestore:"created_at"`
}

type Question struct {
	Prompt  string   `json:"prompt" firestore:"prompt"`
	Options []string `json:"options" firestore:"options"`
	Answer  int      `json:"-" firestore:"answer"`
}

// GradeResult reports a scored submission and the profile it updated.
type GradeResult struct {
	AssessmentID string           `json:"assessmentId"`
	Skill        string           `json:"skill"`
	Level        string           `json:"level"`
	Correct      int              `json:"correct"`
	Total        int              `json:"total"`
	Score        float64          `json:"score"`
	Profile      *profile.Profile `json:"profile"`
}

// ErrNotFound indicates the assessment does not exist or was already graded.
var ErrNotFound = errors.New("assessment not found")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Generator produces the question set for a skill/difficulty pair.
type Generator interface {
	Generate(ctx context.Context, skill, level string, count int) ([]Question, error)
}

// Store persists pending assessments between generation and grading.
// Graded assessments are deleted; PurgeOlderThan sweeps the abandoned ones.
type Store interface {
	Save(ctx context.Context, a *Assessment) error
	Get(ctx context.Context, id string) (*Assessment, error)
	Delete(ctx context.Context, id string) error
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// Service defines the assessment operations exposed over HTTP.
type Service interface {
	Generate(ctx context.Context, skill, level string, count int) (*Assessment, error)
	Grade(ctx context.Context, profileID, assessmentID string, answers []int) (*GradeResult, error)
}
