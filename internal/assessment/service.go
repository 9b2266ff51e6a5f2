package assessment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/skillfolio/profile-service/internal/profile"
)

const defaultQuestionCount = 5

type service struct {
	store     Store
	generator Generator
	profiles  profile.Service
	maxCount  int
}

// NewService wires the assessment service with persistence, a question
// generator, and the profile service that records graded results.
func NewService(store Store, generator Generator, profiles profile.Service, maxCount int) (Service, error) {
	if store == nil {
		return nil, errors.New("store is required")
	}
	if profiles == nil {
		return nil, errors.New("profile service is required")
	}
	if generator == nil {
		generator = NewTemplateGenerator()
	}
	if maxCount <= 0 {
		maxCount = 20
	}
	return &service{store: store, generator: generator, profiles: profiles, maxCount: maxCount}, nil
}

func (s *service) Generate(ctx context.Context, skill, level string, count int) (*Assessment, error) {
	skill = strings.TrimSpace(skill)
	if skill == "" {
		return nil, fmt.Errorf("%w: missing skill", ErrInvalidInput)
	}
	level = profile.NormalizeLevel(level)
	if count <= 0 {
		count = defaultQuestionCount
	}
	if count > s.maxCount {
		count = s.maxCount
	}

	questions, err := s.generator.Generate(ctx, skill, level, count)
	if err != nil {
		// Degrade to the deterministic set rather than failing the request.
		questions, _ = NewTemplateGenerator().Generate(ctx, skill, level, count)
	}

	a := &Assessment{
		ID:        uuid.New().String(),
		Title:     fmt.Sprintf("%s Assessment (%s)", cases.Title(language.English).String(skill), level),
		Skill:     skill,
		Level:     level,
		Questions: questions,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.Save(ctx, a); err != nil {
		return nil, fmt.Errorf("save assessment: %w", err)
	}
	return a, nil
}

func (s *service) Grade(ctx context.Context, profileID, assessmentID string, answers []int) (*GradeResult, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, fmt.Errorf("%w: missing profile id", ErrInvalidInput)
	}
	if strings.TrimSpace(assessmentID) == "" {
		return nil, fmt.Errorf("%w: missing assessment id", ErrInvalidInput)
	}

	a, err := s.store.Get(ctx, assessmentID)
	if err != nil {
		return nil, err
	}

	correct := 0
	for i, q := range a.Questions {
		if i < len(answers) && answers[i] == q.Answer {
			correct++
		}
	}
	total := len(a.Questions)
	score := 0.0
	if total > 0 {
		score = float64(correct) / float64(total) * 100
	}

	updated, err := s.profiles.UpsertTestedSkill(ctx, profileID, profile.TestedSkillInput{
		Skill:    a.Skill,
		Level:    a.Level,
		Score:    score,
		TestType: "ai-mcq",
	})
	if err != nil {
		return nil, err
	}

	// Assessments are single use; a second grade of the same ID is a replay.
	if err := s.store.Delete(ctx, assessmentID); err != nil {
		return nil, fmt.Errorf("delete graded assessment: %w", err)
	}

	return &GradeResult{
		AssessmentID: a.ID,
		Skill:        a.Skill,
		Level:        a.Level,
		Correct:      correct,
		Total:        total,
		Score:        score,
		Profile:      updated,
	}, nil
}
