package platforms

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/skillfolio/profile-service/internal/profile"
)

// githubDisabledMessage explains why GitHub sync returns stored data only.
const githubDisabledMessage = "GitHub statistics are temporarily disabled to avoid API rate limits. Add a GitHub token to enable."

// ProfileStore is the slice of profile persistence the platform sync needs.
// profile.Repository satisfies it.
type ProfileStore interface {
	GetProfile(ctx context.Context, profileID string) (*profile.Profile, error)
	SetCodeChefStats(ctx context.Context, profileID string, stats profile.CodeChefStats) error
	SetLeetCodeStats(ctx context.Context, profileID string, stats profile.LeetCodeStats) error
	SetGitHubStats(ctx context.Context, profileID string, stats profile.GitHubStats) error
}

// SyncResult is the response shape of a single-platform sync.
type SyncResult struct {
	ProfileID string           `json:"profileId"`
	Username  string           `json:"username"`
	Platform  string           `json:"platform"`
	Stats     any              `json:"stats"`
	Message   string           `json:"message,omitempty"`
	Profile   *profile.Profile `json:"profile"`
}

// PlatformOutcome is one platform's slot in a refresh-all response. A failed
// platform records its error here instead of failing the whole request.
type PlatformOutcome struct {
	Success  bool   `json:"success"`
	Username string `json:"username,omitempty"`
	Stats    any    `json:"stats,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

// RefreshResult is the response shape of refresh-all.
type RefreshResult struct {
	ProfileID string                     `json:"profileId"`
	Results   map[string]PlatformOutcome `json:"results"`
	Profile   *profile.Profile           `json:"profile"`
}

// Service syncs external platform stats into profiles.
type Service interface {
	SyncCodeChef(ctx context.Context, profileID, username string) (*SyncResult, error)
	SyncLeetCode(ctx context.Context, profileID, username string) (*SyncResult, error)
	SyncGitHub(ctx context.Context, profileID, username string) (*SyncResult, error)
	RefreshAll(ctx context.Context, profileID string) (*RefreshResult, error)
}

type service struct {
	store    ProfileStore
	codechef *CodeChefClient
	leetcode *LeetCodeClient
	now      func() time.Time
}

// NewService wires the platform sync service.
func NewService(store ProfileStore, codechef *CodeChefClient, leetcode *LeetCodeClient) (Service, error) {
	if store == nil {
		return nil, errors.New("profile store is required")
	}
	if codechef == nil {
		codechef = NewCodeChefClient("", nil)
	}
	if leetcode == nil {
		leetcode = NewLeetCodeClient("", nil)
	}
	return &service{store: store, codechef: codechef, leetcode: leetcode, now: time.Now}, nil
}

func (s *service) SyncCodeChef(ctx context.Context, profileID, username string) (*SyncResult, error) {
	profileID, username, err := cleanSyncInput(profileID, username)
	if err != nil {
		return nil, err
	}

	// The external fetch and the profile read are independent.
	g, gctx := errgroup.WithContext(ctx)
	var snap CodeChefSnapshot
	var prof *profile.Profile
	g.Go(func() error {
		var err error
		snap, err = s.codechef.FetchStats(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		prof, err = s.store.GetProfile(gctx, profileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := profile.CodeChefStats{
		Username:    username,
		Rating:      snap.Rating,
		Stars:       snap.Stars,
		LastUpdated: s.now().UTC(),
	}
	if err := s.store.SetCodeChefStats(ctx, profileID, stats); err != nil {
		return nil, err
	}
	prof.CodeChef = stats

	return &SyncResult{
		ProfileID: profileID,
		Username:  username,
		Platform:  "CodeChef",
		Stats:     stats,
		Profile:   prof,
	}, nil
}

func (s *service) SyncLeetCode(ctx context.Context, profileID, username string) (*SyncResult, error) {
	profileID, username, err := cleanSyncInput(profileID, username)
	if err != nil {
		return nil, err
	}

	g, gctx := errgroup.WithContext(ctx)
	var snap LeetCodeSnapshot
	var prof *profile.Profile
	g.Go(func() error {
		var err error
		snap, err = s.leetcode.FetchStats(gctx, username)
		return err
	})
	g.Go(func() error {
		var err error
		prof, err = s.store.GetProfile(gctx, profileID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	stats := leetCodeStats(username, snap, s.now().UTC())
	if err := s.store.SetLeetCodeStats(ctx, profileID, stats); err != nil {
		return nil, err
	}
	prof.LeetCode = stats

	return &SyncResult{
		ProfileID: profileID,
		Username:  username,
		Platform:  "LeetCode",
		Stats:     stats,
		Profile:   prof,
	}, nil
}

// SyncGitHub records the username only. The API call stays disabled, so
// counters reset to zero and the response explains why.
func (s *service) SyncGitHub(ctx context.Context, profileID, username string) (*SyncResult, error) {
	profileID, username, err := cleanSyncInput(profileID, username)
	if err != nil {
		return nil, err
	}

	prof, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	stats := profile.GitHubStats{Username: username, LastUpdated: s.now().UTC()}
	if err := s.store.SetGitHubStats(ctx, profileID, stats); err != nil {
		return nil, err
	}
	prof.GitHub = stats

	return &SyncResult{
		ProfileID: profileID,
		Username:  username,
		Platform:  "GitHub",
		Stats:     stats,
		Message:   githubDisabledMessage,
		Profile:   prof,
	}, nil
}

// RefreshAll re-fetches every platform the profile has a username for. The
// platforms run in order and a failure fills that platform's result slot
// without aborting the rest.
func (s *service) RefreshAll(ctx context.Context, profileID string) (*RefreshResult, error) {
	profileID = strings.TrimSpace(profileID)
	if profileID == "" {
		return nil, fmt.Errorf("%w: missing profile id", profile.ErrInvalidInput)
	}

	prof, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	results := make(map[string]PlatformOutcome)

	if username := prof.CodeChef.Username; username != "" {
		snap, err := s.codechef.FetchStats(ctx, username)
		if err != nil {
			results["codeChef"] = PlatformOutcome{Success: false, Username: username, Error: err.Error()}
		} else {
			stats := profile.CodeChefStats{
				Username:    username,
				Rating:      snap.Rating,
				Stars:       snap.Stars,
				LastUpdated: s.now().UTC(),
			}
			if err := s.store.SetCodeChefStats(ctx, profileID, stats); err != nil {
				results["codeChef"] = PlatformOutcome{Success: false, Username: username, Error: err.Error()}
			} else {
				results["codeChef"] = PlatformOutcome{Success: true, Username: username, Stats: stats}
			}
		}
	}

	if username := prof.LeetCode.Username; username != "" {
		snap, err := s.leetcode.FetchStats(ctx, username)
		if err != nil {
			results["leetCode"] = PlatformOutcome{Success: false, Username: username, Error: err.Error()}
		} else {
			stats := leetCodeStats(username, snap, s.now().UTC())
			if err := s.store.SetLeetCodeStats(ctx, profileID, stats); err != nil {
				results["leetCode"] = PlatformOutcome{Success: false, Username: username, Error: err.Error()}
			} else {
				results["leetCode"] = PlatformOutcome{Success: true, Username: username, Stats: stats}
			}
		}
	}

	if username := prof.GitHub.Username; username != "" {
		results["github"] = PlatformOutcome{
			Success:  true,
			Username: username,
			Stats:    prof.GitHub,
			Message:  githubDisabledMessage,
		}
	}

	updated, err := s.store.GetProfile(ctx, profileID)
	if err != nil {
		return nil, err
	}

	return &RefreshResult{ProfileID: profileID, Results: results, Profile: updated}, nil
}

func leetCodeStats(username string, snap LeetCodeSnapshot, at time.Time) profile.LeetCodeStats {
	return profile.LeetCodeStats{
		Username:     username,
		TotalSolved:  snap.TotalSolved,
		EasySolved:   snap.EasySolved,
		MediumSolved: snap.MediumSolved,
		HardSolved:   snap.HardSolved,
		Ranking:      snap.Ranking,
		LastUpdated:  at,
	}
}

func cleanSyncInput(profileID, username string) (string, string, error) {
	profileID = strings.TrimSpace(profileID)
	username = strings.TrimSpace(username)
	if profileID == "" {
		return "", "", fmt.Errorf("%w: missing profile id", profile.ErrInvalidInput)
	}
	if username == "" {
		return "", "", fmt.Errorf("%w: missing username", profile.ErrInvalidInput)
	}
	return profileID, username, nil
}
