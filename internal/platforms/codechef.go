package platforms

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"
)

const defaultCodeChefBaseURL = "https://www.codechef.com"

// CodeChefClient scrapes public profile pages. CodeChef has no stats API, so
// the rating is read straight out of the profile HTML.
type CodeChefClient struct {
	httpClient *http.Client
	baseURL    string
}

// NewCodeChefClient creates a client. baseURL and httpClient may be zero for
// production defaults.
func NewCodeChefClient(baseURL string, httpClient *http.Client) *CodeChefClient {
	if strings.TrimSpace(baseURL) == "" {
		baseURL = defaultCodeChefBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	return &CodeChefClient{httpClient: httpClient, baseURL: strings.TrimRight(baseURL, "/")}
}

// CodeChefSnapshot is the subset of profile-page data the sync stores.
type CodeChefSnapshot struct {
	Rating int
	Stars  int
}

var (
	ratingNumberPattern = regexp.MustCompile(`class="rating-number"[^>]*>\s*(\d+)`)
	ratingStarsPattern  = regexp.MustCompile(`class="rating"[^>]*>\s*(★+)`)
)

// FetchStats loads the user's profile page and extracts rating and stars.
func (c *CodeChefClient) FetchStats(ctx context.Context, username string) (CodeChefSnapshot, error) {
	url := fmt.Sprintf("%s/users/%s", c.baseURL, username)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return CodeChefSnapshot{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return CodeChefSnapshot{}, fmt.Errorf("fetch codechef profile: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return CodeChefSnapshot{}, fmt.Errorf("fetch codechef profile: unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return CodeChefSnapshot{}, fmt.Errorf("read codechef profile: %w", err)
	}

	var snap CodeChefSnapshot
	if m := ratingNumberPattern.FindSubmatch(body); m != nil {
		snap.Rating, _ = strconv.Atoi(string(m[1]))
	}
	if m := ratingStarsPattern.FindSubmatch(body); m != nil {
		snap.Stars = strings.Count(string(m[1]), "★")
	}
	return snap, nil
}
