package platforms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const defaultLeetCodeGraphQLURL = "https://leetcode.com/graphql"

const problemsSolvedQuery = `query userProblemsSolved($username: String!) {
  matchedUser(username: $username) {
    profile { ranking }
    submitStatsGlobal {
      acSubmissionNum {
        difficulty
        count
      }
    }
  }
}`

// ErrUserNotFound indicates the platform does not know the username.
var ErrUserNotFound = errors.New("platform user not found")

// LeetCodeClient reads solve counts from the public GraphQL endpoint.
type LeetCodeClient struct {
	httpClient *http.Client
	url        string
}

// NewLeetCodeClient creates a client. url and httpClient may be zero for
// production defaults.
func NewLeetCodeClient(url string, httpClient *http.Client) *LeetCodeClient {
	if strings.TrimSpace(url) == "" {
		url = defaultLeetCodeGraphQLURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &LeetCodeClient{httpClient: httpClient, url: url}
}

// LeetCodeSnapshot holds the solve counts a sync stores.
type LeetCodeSnapshot struct {
	TotalSolved  int
	EasySolved   int
	MediumSolved int
	HardSolved   int
	Ranking      int
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type problemsSolvedResponse struct {
	Data struct {
		MatchedUser *struct {
			Profile struct {
				Ranking int `json:"ranking"`
			} `json:"profile"`
			SubmitStatsGlobal struct {
				ACSubmissionNum []struct {
					Difficulty string `json:"difficulty"`
					Count      int    `json:"count"`
				} `json:"acSubmissionNum"`
			} `json:"submitStatsGlobal"`
		} `json:"matchedUser"`
	} `json:"data"`
}

// FetchStats queries userProblemsSolved for the username.
func (c *LeetCodeClient) FetchStats(ctx context.Context, username string) (LeetCodeSnapshot, error) {
	payload, err := json.Marshal(graphqlRequest{
		Query:     problemsSolvedQuery,
		Variables: map[string]any{"username": username},
	})
	if err != nil {
		return LeetCodeSnapshot{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return LeetCodeSnapshot{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return LeetCodeSnapshot{}, fmt.Errorf("fetch leetcode stats: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return LeetCodeSnapshot{}, fmt.Errorf("fetch leetcode stats: unexpected status %d", resp.StatusCode)
	}

	var body problemsSolvedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return LeetCodeSnapshot{}, fmt.Errorf("decode leetcode response: %w", err)
	}
	if body.Data.MatchedUser == nil {
		return LeetCodeSnapshot{}, fmt.Errorf("%w: %s", ErrUserNotFound, username)
	}

	snap := LeetCodeSnapshot{Ranking: body.Data.MatchedUser.Profile.Ranking}
	for _, entry := range body.Data.MatchedUser.SubmitStatsGlobal.ACSubmissionNum {
		switch entry.Difficulty {
		case "All":
			snap.TotalSolved = entry.Count
		case "Easy":
			snap.EasySolved = entry.Count
		case "Medium":
			snap.MediumSolved = entry.Count
		case "Hard":
			snap.HardSolved = entry.Count
		}
	}
	return snap, nil
}
