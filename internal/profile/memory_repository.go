package profile

import (
	"context"
	"fmt"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	store map[string]*Profile
}

// NewMemoryRepository returns an in-memory repository intended for local development and tests.
func NewMemoryRepository() Repository {
	return &memoryRepository{store: make(map[string]*Profile)}
}

func (r *memoryRepository) GetProfile(_ context.Context, profileID string) (*Profile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.store[profileID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	out := cloneProfile(p)
	out.ensureContainers()
	return out, nil
}

func (r *memoryRepository) CreateProfile(_ context.Context, p *Profile) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.store[p.ProfileID]; exists {
		return nil
	}
	r.store[p.ProfileID] = cloneProfile(p)
	return nil
}

func (r *memoryRepository) SetField(_ context.Context, profileID, path string, value any) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[profileID]
	if !ok {
		return ErrProfileNotFound
	}
	if err := setField(p, path, value); err != nil {
		return err
	}
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) SetSkillsAndBadges(_ context.Context, profileID string, testedSkills []TestedSkill, badges []Badge) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.store[profileID]
	if !ok {
		return ErrProfileNotFound
	}
	p.TestedSkills = append([]TestedSkill(nil), testedSkills...)
	p.Badges = cloneBadges(badges)
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memoryRepository) SetCodeChefStats(ctx context.Context, profileID string, stats CodeChefStats) error {
	return r.SetField(ctx, profileID, "code_chef", stats)
}

func (r *memoryRepository) SetLeetCodeStats(ctx context.Context, profileID string, stats LeetCodeStats) error {
	return r.SetField(ctx, profileID, "leet_code", stats)
}

func (r *memoryRepository) SetGitHubStats(ctx context.Context, profileID string, stats GitHubStats) error {
	return r.SetField(ctx, profileID, "github", stats)
}

// setField mirrors the storage paths the Firestore repository accepts.
func setField(p *Profile, path string, value any) error {
	switch path {
	case "name":
		return assign(&p.Name, path, value)
	case "about_me":
		return assign(&p.AboutMe, path, value)
	case "subject_of_interest":
		return assign(&p.Subject, path, value)
	case "phone":
		return assign(&p.Phone, path, value)
	case "email":
		return assign(&p.Email, path, value)
	case "linkedin":
		return assign(&p.LinkedIn, path, value)
	case "profile_picture":
		return assign(&p.ProfilePicture, path, value)
	case "skills":
		return assign(&p.Skills, path, value)
	case "extracurricular":
		return assign(&p.Extracurricular, path, value)
	case "projects":
		return assign(&p.Projects, path, value)
	case "experience":
		return assign(&p.Experience, path, value)
	case "education":
		return assign(&p.Education, path, value)
	case "certification":
		return assign(&p.Certification, path, value)
	case "current_goal":
		return assign(&p.CurrentGoal, path, value)
	case "badges":
		return assign(&p.Badges, path, value)
	case "github":
		return assign(&p.GitHub, path, value)
	case "code_chef":
		return assign(&p.CodeChef, path, value)
	case "leet_code":
		return assign(&p.LeetCode, path, value)
	}
	return fmt.Errorf("unknown field path %q", path)
}

func assign[T any](dst *T, path string, value any) error {
	typed, ok := value.(T)
	if !ok {
		return fmt.Errorf("unexpected value type %T for %s", value, path)
	}
	*dst = typed
	return nil
}

func cloneProfile(p *Profile) *Profile {
	out := *p
	out.Skills = append([]string(nil), p.Skills...)
	out.TestedSkills = append([]TestedSkill(nil), p.TestedSkills...)
	out.Badges = cloneBadges(p.Badges)
	for i := range out.Badges {
		out.Badges[i].Skills = append([]string(nil), out.Badges[i].Skills...)
	}
	out.Projects = append([]Project(nil), p.Projects...)
	out.Experience = append([]Experience(nil), p.Experience...)
	out.Education = append([]Education(nil), p.Education...)
	out.Certification = append([]Certification(nil), p.Certification...)
	out.Extracurricular = append([]string(nil), p.Extracurricular...)
	out.CurrentGoal.Skills = append([]string(nil), p.CurrentGoal.Skills...)
	return &out
}
