package profile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/skillfolio/profile-service/internal/envconfig"
)

// fieldPaths maps the API field names a client may update to their storage
// paths. Anything outside this set is rejected.
var fieldPaths = map[string]string{
	"name":            "name",
	"aboutMe":         "about_me",
	"projects":        "projects",
	"experience":      "experience",
	"certification":   "certification",
	"education":       "education",
	"extracurricular": "extracurricular",
	"subject":         "subject_of_interest",
	"phone":           "phone",
	"email":           "email",
	"skills":          "skills",
	"github":          "github",
	"linkedin":        "linkedin",
	"currentGoal":     "current_goal",
	"badges":          "badges",
	"codeChef":        "code_chef",
	"leetCode":        "leet_code",
	"profilePicture":  "profile_picture",
}

type service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a new profile service.
func NewService(repo Repository) (Service, error) {
	if repo == nil {
		return nil, errors.New("repository is required")
	}
	return &service{repo: repo, now: func() time.Time { return time.Now().UTC() }}, nil
}

func (s *service) GetOrCreate(ctx context.Context, profileID string) (*Profile, error) {
	if strings.TrimSpace(profileID) == "" {
		return nil, fmt.Errorf("%w: missing profile id", ErrInvalidInput)
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if errors.Is(err, ErrProfileNotFound) {
		p = newProfile(profileID, s.now())
		if createErr := s.repo.CreateProfile(ctx, p); createErr != nil {
			return nil, createErr
		}
		return p, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) UpdateField(ctx context.Context, profileID, field string, value []byte) (*Profile, error) {
	path, ok := fieldPaths[field]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrInvalidField, field)
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	typed, err := s.decodeFieldValue(field, value, p)
	if err != nil {
		return nil, err
	}

	if err := s.repo.SetField(ctx, profileID, path, typed); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profileID)
}

// decodeFieldValue unmarshals a raw JSON value into the type the field
// stores. Badges set through the generic path still get their tiers
// rederived against the current tested skills, and a bare github string is
// folded into the stats block as a username.
func (s *service) decodeFieldValue(field string, value []byte, current *Profile) (any, error) {
	switch field {
	case "name", "aboutMe", "subject", "phone", "email", "linkedin", "profilePicture":
		var v string
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return strings.TrimSpace(v), nil
	case "skills", "extracurricular":
		var v []string
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "projects":
		var v []Project
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "experience":
		var v []Experience
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "education":
		var v []Education
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "certification":
		var v []Certification
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "currentGoal":
		var v Goal
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "badges":
		var v []Badge
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		for i := range v {
			if v[i].IssuedDate.IsZero() {
				v[i].IssuedDate = s.now()
			}
		}
		recomputeBadgeLevels(v, current.TestedSkills)
		return v, nil
	case "github":
		var username string
		if err := json.Unmarshal(value, &username); err == nil {
			stats := current.GitHub
			stats.Username = githubUsername(username)
			return stats, nil
		}
		var v GitHubStats
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "codeChef":
		var v CodeChefStats
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	case "leetCode":
		var v LeetCodeStats
		if err := unmarshalField(field, value, &v); err != nil {
			return nil, err
		}
		return v, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrInvalidField, field)
}

func unmarshalField(field string, value []byte, dst any) error {
	if err := json.Unmarshal(value, dst); err != nil {
		return fmt.Errorf("%w: malformed value for %s", ErrInvalidInput, field)
	}
	return nil
}

// githubUsername strips a full GitHub URL down to the bare username.
func githubUsername(value string) string {
	v := strings.TrimSpace(value)
	v = strings.TrimPrefix(v, "https://github.com/")
	v = strings.TrimPrefix(v, "http://github.com/")
	return strings.Trim(v, "/")
}

func (s *service) AttachBadges(ctx context.Context, profileID string, incoming []BadgeInput) (*Profile, error) {
	for _, in := range incoming {
		if err := envconfig.Validate(in); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
		}
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	badges := make([]Badge, 0, len(incoming))
	for _, in := range incoming {
		badges = append(badges, Badge{
			Name:        in.Name,
			Skills:      in.Skills,
			Description: in.Description,
			Icon:        in.Icon,
			IssuedDate:  now,
		})
	}

	merged := mergeBadges(p.Badges, badges)
	recomputeBadgeLevels(merged, p.TestedSkills)

	if err := s.repo.SetField(ctx, profileID, "badges", merged); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profileID)
}

func (s *service) UpsertTestedSkill(ctx context.Context, profileID string, input TestedSkillInput) (*Profile, error) {
	input.Skill = strings.TrimSpace(input.Skill)
	if err := envconfig.Validate(input); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidInput, err.Error())
	}

	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	ts := s.normalizeTestedSkill(input)
	updated := upsertTestedSkill(p.TestedSkills, ts)

	badges := cloneBadges(p.Badges)
	recomputeBadgeLevels(badges, updated)

	if err := s.repo.SetSkillsAndBadges(ctx, profileID, updated, badges); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profileID)
}

func (s *service) DeleteTestedSkill(ctx context.Context, profileID, skill string) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	idx := findTestedSkill(p.TestedSkills, skill)
	if idx < 0 {
		return nil, ErrSkillNotFound
	}

	updated := make([]TestedSkill, 0, len(p.TestedSkills)-1)
	updated = append(updated, p.TestedSkills[:idx]...)
	updated = append(updated, p.TestedSkills[idx+1:]...)

	badges := cloneBadges(p.Badges)
	recomputeBadgeLevels(badges, updated)

	if err := s.repo.SetSkillsAndBadges(ctx, profileID, updated, badges); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profileID)
}

func (s *service) DeleteSectionItem(ctx context.Context, profileID, field string, index int) (*Profile, error) {
	p, err := s.repo.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	var (
		value any
		ok    bool
	)
	switch field {
	case "projects":
		value, ok = removeAt(p.Projects, index)
	case "experience":
		value, ok = removeAt(p.Experience, index)
	case "education":
		value, ok = removeAt(p.Education, index)
	case "certification":
		value, ok = removeAt(p.Certification, index)
	case "extracurricular":
		value, ok = removeAt(p.Extracurricular, index)
	case "skills":
		value, ok = removeAt(p.Skills, index)
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidField, field)
	}
	if !ok {
		return nil, fmt.Errorf("%w: index out of range", ErrInvalidInput)
	}

	if err := s.repo.SetField(ctx, profileID, fieldPaths[field], value); err != nil {
		return nil, err
	}
	return s.repo.GetProfile(ctx, profileID)
}

// normalizeTestedSkill produces the stored record: trimmed name, canonical
// level, and a test date defaulting to now.
func (s *service) normalizeTestedSkill(input TestedSkillInput) TestedSkill {
	ts := TestedSkill{
		Skill:            strings.TrimSpace(input.Skill),
		Level:            NormalizeLevel(input.Level),
		Score:            input.Score,
		DateTested:       s.now(),
		TestType:         input.TestType,
		CertificationURL: input.CertificationURL,
	}
	if input.DateTested != nil {
		ts.DateTested = *input.DateTested
	}
	return ts
}

func removeAt[T any](items []T, index int) ([]T, bool) {
	if index < 0 || index >= len(items) {
		return nil, false
	}
	out := make([]T, 0, len(items)-1)
	out = append(out, items[:index]...)
	out = append(out, items[index+1:]...)
	return out, true
}

func cloneBadges(badges []Badge) []Badge {
	out := make([]Badge, len(badges))
	copy(out, badges)
	return out
}

// newProfile returns an empty profile with every container initialized, so
// later field-scoped writes never have to special-case missing arrays.
func newProfile(profileID string, now time.Time) *Profile {
	return &Profile{
		ProfileID:       profileID,
		Skills:          []string{},
		TestedSkills:    []TestedSkill{},
		Badges:          []Badge{},
		Projects:        []Project{},
		Experience:      []Experience{},
		Education:       []Education{},
		Certification:   []Certification{},
		Extracurricular: []string{},
		CurrentGoal:     Goal{Skills: []string{}},
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}
