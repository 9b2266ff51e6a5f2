package profile

import (
	"context"
	"errors"
	"time"
)

// Profile is the persisted portfolio document, one per user, keyed by ProfileID.
type Profile struct {
	ProfileID      string    `json:"profileId" firestore:"profile_id"`
	Name           string    `json:"name" firestore:"name"`
	ProfilePicture string    `json:"profilePicture" firestore:"profile_picture"`
	Role           string    `json:"role" firestore:"role"`
	Subject        string    `json:"subject" firestore:"subject_of_interest"`
	AboutMe        string    `json:"aboutMe" firestore:"about_me"`
	Phone          string    `json:"phone" firestore:"phone"`
	Email          string    `json:"email" firestore:"email"`
	LinkedIn       string    `json:"linkedin" firestore:"linkedin"`
	CurrentGoal    Goal      `json:"currentGoal" firestore:"current_goal"`
	CreatedAt      time.Time `json:"createdAt" firestore:"created_at"`
	UpdatedAt      time.Time `json:"updatedAt" firestore:"updated_at"`

	// Skill data. Skills are free-text declarations; TestedSkills carry a
	// verified level and score and are unique per normalized skill name.
	Skills       []string      `json:"skills" firestore:"skills"`
	TestedSkills []TestedSkill `json:"testedSkills" firestore:"tested_skills"`
	Badges       []Badge       `json:"badges" firestore:"badges"`

	// Portfolio sections.
	Projects        []Project       `json:"projects" firestore:"projects"`
	Experience      []Experience    `json:"experience" firestore:"experience"`
	Education       []Education     `json:"education" firestore:"education"`
	Certification   []Certification `json:"certification" firestore:"certification"`
	Extracurricular []string        `json:"extracurricular" firestore:"extracurricular"`

	// External platform stats.
	CodeChef CodeChefStats `json:"codeChef" firestore:"code_chef"`
	LeetCode LeetCodeStats `json:"leetCode" firestore:"leet_code"`
	GitHub   GitHubStats   `json:"github" firestore:"github"`
}

// TestedSkill records a verified proficiency for a single skill. The skill
// name is unique per profile under trim+casefold comparison.
type TestedSkill struct {
	Skill            string    `json:"skill" firestore:"skill"`
	Level            string    `json:"level" firestore:"level"`
	Score            float64   `json:"score" firestore:"score"`
	DateTested       time.Time `json:"dateTested" firestore:"date_tested"`
	TestType         string    `json:"testType,omitempty" firestore:"test_type"`
	CertificationURL string    `json:"certificationUrl,omitempty" firestore:"certification_url"`
}

// Badge names a set of skills and carries a tier that is always derived from
// the profile's tested skills, never set by a client.
type Badge struct {
	Name        string    `json:"name" firestore:"name"`
	Skills      []string  `json:"skills" firestore:"skills"`
	Level       string    `json:"level" firestore:"level"`
	IssuedDate  time.Time `json:"issuedDate" firestore:"issued_date"`
	Description string    `json:"description,omitempty" firestore:"description"`
	Icon        string    `json:"icon,omitempty" firestore:"icon"`
}

// Goal captures the role a user is working toward and the skills it needs.
type Goal struct {
	Role   string   `json:"role" firestore:"role"`
	Skills []string `json:"skill" firestore:"skills"`
}

type Project struct {
	Title       string   `json:"title" firestore:"title"`
	Description string   `json:"description" firestore:"description"`
	Link        string   `json:"link" firestore:"link"`
	Technology  []string `json:"technology" firestore:"technology"`
	IsActive    bool     `json:"isActive" firestore:"is_active"`
}

type Experience struct {
	Company   string `json:"company" firestore:"company"`
	Position  string `json:"position" firestore:"position"`
	StartDate string `json:"startDate" firestore:"start_date"`
	EndDate   string `json:"endDate" firestore:"end_date"`
	IsCurrent bool   `json:"isCurrent" firestore:"is_current"`
}

type Education struct {
	Institution string `json:"institution" firestore:"institution"`
	Degree      string `json:"degree" firestore:"degree"`
	StartYear   string `json:"startYear" firestore:"start_year"`
	EndYear     string `json:"endYear" firestore:"end_year"`
	IsCurrent   bool   `json:"isCurrent" firestore:"is_current"`
}

type Certification struct {
	Name     string `json:"name" firestore:"name"`
	Issuer   string `json:"issuer" firestore:"issuer"`
	IssuedOn string `json:"issuedOn" firestore:"issued_on"`
	URL      string `json:"url" firestore:"url"`
}

// CodeChefStats mirrors the data scraped from a CodeChef profile page.
type CodeChefStats struct {
	Username    string    `json:"username" firestore:"username"`
	Rating      int       `json:"rating" firestore:"rating"`
	Stars       int       `json:"stars" firestore:"stars"`
	GlobalRank  int       `json:"globalRank" firestore:"global_rank"`
	CountryRank int       `json:"countryRank" firestore:"country_rank"`
	LastUpdated time.Time `json:"lastUpdated" firestore:"last_updated"`
}

// LeetCodeStats mirrors the solve counts returned by the LeetCode GraphQL API.
type LeetCodeStats struct {
	Username           string    `json:"username" firestore:"username"`
	TotalSolved        int       `json:"totalSolved" firestore:"total_solved"`
	EasySolved         int       `json:"easySolved" firestore:"easy_solved"`
	MediumSolved       int       `json:"mediumSolved" firestore:"medium_solved"`
	HardSolved         int       `json:"hardSolved" firestore:"hard_solved"`
	Ranking            int       `json:"ranking" firestore:"ranking"`
	ContributionPoints int       `json:"contributionPoints" firestore:"contribution_points"`
	LastUpdated        time.Time `json:"lastUpdated" firestore:"last_updated"`
}

type GitHubStats struct {
	Username     string    `json:"username" firestore:"username"`
	Repositories int       `json:"repositories" firestore:"repositories"`
	Followers    int       `json:"followers" firestore:"followers"`
	Following    int       `json:"following" firestore:"following"`
	Stars        int       `json:"stars" firestore:"stars"`
	LastUpdated  time.Time `json:"lastUpdated" firestore:"last_updated"`
}

// TestedSkillInput is the write shape accepted by the tested-skill upsert.
type TestedSkillInput struct {
	Skill            string     `json:"skill" validate:"required"`
	Level            string     `json:"level"`
	Score            float64    `json:"score" validate:"min=0,max=100"`
	DateTested       *time.Time `json:"dateTested"`
	TestType         string     `json:"testType"`
	CertificationURL string     `json:"certificationUrl"`
}

// BadgeInput is the write shape accepted by the badge attachment endpoint.
// Level is intentionally absent: tiers are always derived.
type BadgeInput struct {
	Name        string   `json:"name" validate:"required"`
	Skills      []string `json:"skills"`
	Description string   `json:"description"`
	Icon        string   `json:"icon"`
}

// ensureContainers replaces nil slices with empty ones so legacy documents
// read back with the same shape newly created profiles have.
func (p *Profile) ensureContainers() {
	if p.Skills == nil {
		p.Skills = []string{}
	}
	if p.TestedSkills == nil {
		p.TestedSkills = []TestedSkill{}
	}
	if p.Badges == nil {
		p.Badges = []Badge{}
	}
	if p.Projects == nil {
		p.Projects = []Project{}
	}
	if p.Experience == nil {
		p.Experience = []Experience{}
	}
	if p.Education == nil {
		p.Education = []Education{}
	}
	if p.Certification == nil {
		p.Certification = []Certification{}
	}
	if p.Extracurricular == nil {
		p.Extracurricular = []string{}
	}
	if p.CurrentGoal.Skills == nil {
		p.CurrentGoal.Skills = []string{}
	}
}

// ErrProfileNotFound indicates the requested profile does not exist.
var ErrProfileNotFound = errors.New("profile not found")

// ErrSkillNotFound indicates the named skill is not in the profile's tested skills.
var ErrSkillNotFound = errors.New("skill not found in testedSkills")

// ErrInvalidField indicates the field name is not part of the updatable set.
var ErrInvalidField = errors.New("invalid field name")

// ErrInvalidInput indicates the provided data failed validation.
var ErrInvalidInput = errors.New("invalid input")

// Repository defines the persistence interface for profile documents. Writes
// after creation are field-scoped: they touch only the named paths so a
// partially filled legacy document can never block an unrelated update.
type Repository interface {
	GetProfile(ctx context.Context, profileID string) (*Profile, error)
	CreateProfile(ctx context.Context, p *Profile) error
	SetField(ctx context.Context, profileID, path string, value any) error
	SetSkillsAndBadges(ctx context.Context, profileID string, testedSkills []TestedSkill, badges []Badge) error
	SetCodeChefStats(ctx context.Context, profileID string, stats CodeChefStats) error
	SetLeetCodeStats(ctx context.Context, profileID string, stats LeetCodeStats) error
	SetGitHubStats(ctx context.Context, profileID string, stats GitHubStats) error
}

// Service defines the profile operations exposed over HTTP.
type Service interface {
	GetOrCreate(ctx context.Context, profileID string) (*Profile, error)
	UpdateField(ctx context.Context, profileID, field string, value []byte) (*Profile, error)
	AttachBadges(ctx context.Context, profileID string, incoming []BadgeInput) (*Profile, error)
	UpsertTestedSkill(ctx context.Context, profileID string, input TestedSkillInput) (*Profile, error)
	DeleteTestedSkill(ctx context.Context, profileID, skill string) (*Profile, error)
	DeleteSectionItem(ctx context.Context, profileID, field string, index int) (*Profile, error)
}
