package platforms

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/skillfolio/profile-service/internal/profile"
)

const codechefProfileHTML = `<html><body>
<div class="rating-header text-center">
  <div class="rating-number">1663<span class="rating-arrow">?</span></div>
  <div class="rating-star"><span class="rating">★★★</span></div>
</div>
</body></html>`

func codechefTestServer(t *testing.T, wantUser string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/users/"+wantUser {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, codechefProfileHTML)
	}))
}

func leetcodeTestServer(t *testing.T, wantUser string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req graphqlRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		if !strings.Contains(req.Query, "userProblemsSolved") {
			http.Error(w, "unexpected query", http.StatusBadRequest)
			return
		}
		if req.Variables["username"] != wantUser {
			io.WriteString(w, `{"data":{"matchedUser":null}}`)
			return
		}
		io.WriteString(w, `{"data":{"matchedUser":{
			"profile":{"ranking":51342},
			"submitStatsGlobal":{"acSubmissionNum":[
				{"difficulty":"All","count":412},
				{"difficulty":"Easy","count":180},
				{"difficulty":"Medium","count":190},
				{"difficulty":"Hard","count":42}
			]}}}}`)
	}))
}

func TestCodeChefClient_FetchStats(t *testing.T) {
	srv := codechefTestServer(t, "chef42")
	defer srv.Close()

	client := NewCodeChefClient(srv.URL, srv.Client())
	snap, err := client.FetchStats(context.Background(), "chef42")
	if err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
	if snap.Rating != 1663 {
		t.Fatalf("expected rating 1663, got %d", snap.Rating)
	}
	if snap.Stars != 3 {
		t.Fatalf("expected 3 stars, got %d", snap.Stars)
	}
}

func TestCodeChefClient_UnknownUser(t *testing.T) {
	srv := codechefTestServer(t, "chef42")
	defer srv.Close()

	client := NewCodeChefClient(srv.URL, srv.Client())
	if _, err := client.FetchStats(context.Background(), "nobody"); err == nil {
		t.Fatal("expected error for unknown user")
	}
}

func TestLeetCodeClient_FetchStats(t *testing.T) {
	srv := leetcodeTestServer(t, "leet42")
	defer srv.Close()

	client := NewLeetCodeClient(srv.URL, srv.Client())
	snap, err := client.FetchStats(context.Background(), "leet42")
	if err != nil {
		t.Fatalf("FetchStats: %v", err)
	}
	want := LeetCodeSnapshot{TotalSolved: 412, EasySolved: 180, MediumSolved: 190, HardSolved: 42, Ranking: 51342}
	if snap != want {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
}

func TestLeetCodeClient_UnknownUser(t *testing.T) {
	srv := leetcodeTestServer(t, "leet42")
	defer srv.Close()

	client := NewLeetCodeClient(srv.URL, srv.Client())
	if _, err := client.FetchStats(context.Background(), "nobody"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func newSyncTestService(t *testing.T, codechefURL, leetcodeURL string) (Service, profile.Repository) {
	t.Helper()
	repo := profile.NewMemoryRepository()
	svc, err := NewService(repo, NewCodeChefClient(codechefURL, nil), NewLeetCodeClient(leetcodeURL, nil))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc, repo
}

func seedProfile(t *testing.T, repo profile.Repository, p *profile.Profile) {
	t.Helper()
	if err := repo.CreateProfile(context.Background(), p); err != nil {
		t.Fatalf("CreateProfile: %v", err)
	}
}

func TestSyncCodeChef_StoresStats(t *testing.T) {
	srv := codechefTestServer(t, "chef42")
	defer srv.Close()

	svc, repo := newSyncTestService(t, srv.URL, "")
	seedProfile(t, repo, &profile.Profile{ProfileID: "user-1"})

	result, err := svc.SyncCodeChef(context.Background(), "user-1", "chef42")
	if err != nil {
		t.Fatalf("SyncCodeChef: %v", err)
	}
	if result.Platform != "CodeChef" {
		t.Fatalf("unexpected platform %q", result.Platform)
	}
	if result.Profile.CodeChef.Rating != 1663 {
		t.Fatalf("expected rating on returned profile, got %+v", result.Profile.CodeChef)
	}

	stored, err := repo.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if stored.CodeChef.Username != "chef42" || stored.CodeChef.Rating != 1663 || stored.CodeChef.Stars != 3 {
		t.Fatalf("stats not persisted: %+v", stored.CodeChef)
	}
	if stored.CodeChef.LastUpdated.IsZero() {
		t.Fatal("expected lastUpdated to be set")
	}
}

func TestSyncCodeChef_MissingProfile(t *testing.T) {
	srv := codechefTestServer(t, "chef42")
	defer srv.Close()

	svc, _ := newSyncTestService(t, srv.URL, "")
	if _, err := svc.SyncCodeChef(context.Background(), "ghost", "chef42"); !errors.Is(err, profile.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestSyncLeetCode_StoresStats(t *testing.T) {
	srv := leetcodeTestServer(t, "leet42")
	defer srv.Close()

	svc, repo := newSyncTestService(t, "", srv.URL)
	seedProfile(t, repo, &profile.Profile{ProfileID: "user-1"})

	result, err := svc.SyncLeetCode(context.Background(), "user-1", "leet42")
	if err != nil {
		t.Fatalf("SyncLeetCode: %v", err)
	}
	if result.Profile.LeetCode.TotalSolved != 412 {
		t.Fatalf("expected totals on returned profile, got %+v", result.Profile.LeetCode)
	}

	stored, err := repo.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if stored.LeetCode.HardSolved != 42 || stored.LeetCode.Ranking != 51342 {
		t.Fatalf("stats not persisted: %+v", stored.LeetCode)
	}
}

func TestSyncGitHub_RecordsUsernameOnly(t *testing.T) {
	svc, repo := newSyncTestService(t, "", "")
	seedProfile(t, repo, &profile.Profile{ProfileID: "user-1"})

	result, err := svc.SyncGitHub(context.Background(), "user-1", "octocat")
	if err != nil {
		t.Fatalf("SyncGitHub: %v", err)
	}
	if result.Message == "" {
		t.Fatal("expected an explanatory message")
	}

	stored, err := repo.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if stored.GitHub.Username != "octocat" || stored.GitHub.Repositories != 0 {
		t.Fatalf("unexpected stored stats: %+v", stored.GitHub)
	}
}

func TestSync_RejectsBlankInput(t *testing.T) {
	svc, _ := newSyncTestService(t, "", "")
	if _, err := svc.SyncCodeChef(context.Background(), "user-1", "  "); !errors.Is(err, profile.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank username, got %v", err)
	}
	if _, err := svc.SyncLeetCode(context.Background(), "", "leet42"); !errors.Is(err, profile.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank profile id, got %v", err)
	}
}

func TestRefreshAll_ContinuesPastFailures(t *testing.T) {
	// CodeChef server is closed up front so that fetch fails; LeetCode stays up.
	ccSrv := codechefTestServer(t, "chef42")
	ccURL := ccSrv.URL
	ccSrv.Close()
	lcSrv := leetcodeTestServer(t, "leet42")
	defer lcSrv.Close()

	svc, repo := newSyncTestService(t, ccURL, lcSrv.URL)
	seedProfile(t, repo, &profile.Profile{
		ProfileID: "user-1",
		CodeChef:  profile.CodeChefStats{Username: "chef42", Rating: 1500},
		LeetCode:  profile.LeetCodeStats{Username: "leet42"},
		GitHub:    profile.GitHubStats{Username: "octocat", Repositories: 7},
	})

	result, err := svc.RefreshAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}

	cc, ok := result.Results["codeChef"]
	if !ok || cc.Success || cc.Error == "" {
		t.Fatalf("expected failed codeChef slot with error, got %+v", cc)
	}
	lc, ok := result.Results["leetCode"]
	if !ok || !lc.Success {
		t.Fatalf("expected successful leetCode slot, got %+v", lc)
	}
	gh, ok := result.Results["github"]
	if !ok || !gh.Success || gh.Message == "" {
		t.Fatalf("expected stored github slot with message, got %+v", gh)
	}

	// The failed platform keeps its previous stats.
	stored, err := repo.GetProfile(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("GetProfile: %v", err)
	}
	if stored.CodeChef.Rating != 1500 {
		t.Fatalf("expected codechef stats untouched, got %+v", stored.CodeChef)
	}
	if stored.LeetCode.TotalSolved != 412 {
		t.Fatalf("expected leetcode stats refreshed, got %+v", stored.LeetCode)
	}
}

func TestRefreshAll_SkipsPlatformsWithoutUsernames(t *testing.T) {
	svc, repo := newSyncTestService(t, "", "")
	seedProfile(t, repo, &profile.Profile{ProfileID: "user-1"})

	result, err := svc.RefreshAll(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("RefreshAll: %v", err)
	}
	if len(result.Results) != 0 {
		t.Fatalf("expected no result slots, got %+v", result.Results)
	}
}
