package ci

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/randalmurphal/depsync/testutil"
)

const (
	testOwner    = "FNA-XNA"
	testRepo     = "fnalibs-dailies"
	testWorkflow = "main.yml"
	testToken    = "ghp_test"
)

var runsPath = fmt.Sprintf("/repos/%s/%s/actions/workflows/%s/runs", testOwner, testRepo, testWorkflow)

func newTestClient(t *testing.T, fake *testutil.FakeActions, now time.Time) *Client {
	t.Helper()

	c, err := NewClient(Config{
		Token:   testToken,
		Owner:   testOwner,
		Repo:    testRepo,
		BaseURL: fake.BaseURL(),
		Now:     testutil.FixedClock(now),
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func newFake(t *testing.T) *testutil.FakeActions {
	t.Helper()
	fake := testutil.NewFakeActions(t, testOwner, testRepo)
	fake.Token = testToken
	return fake
}

func TestNewClient_Validation(t *testing.T) {
	if _, err := NewClient(Config{Owner: testOwner}); err == nil {
		t.Error("expected error without repo")
	}
	if _, err := NewClient(Config{Repo: testRepo}); err == nil {
		t.Error("expected error without owner")
	}
	c, err := NewClient(Config{Owner: testOwner, Repo: testRepo})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if c.Repository() != "FNA-XNA/fnalibs-dailies" {
		t.Errorf("Repository() = %q", c.Repository())
	}
}

func TestLatestCompletedRun_Today(t *testing.T) {
	now := time.Date(2024, 3, 10, 15, 0, 0, 0, time.UTC)
	fake := newFake(t)
	fake.AddRun(100, now.Add(-10*time.Hour))
	fake.AddRun(101, now.Add(-1*time.Hour))
	fake.AddRun(90, now.Add(-24*time.Hour))

	run, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	if err != nil {
		t.Fatalf("LatestCompletedRun: %v", err)
	}
	if run.ID != 101 {
		t.Errorf("run.ID = %d, want newest run of today (101)", run.ID)
	}
	if run.Status != "completed" {
		t.Errorf("run.Status = %q", run.Status)
	}

	reqs := fake.Requests()
	if len(reqs) != 1 {
		t.Fatalf("requests = %d, want 1", len(reqs))
	}
	req := reqs[0]
	if req.Path != runsPath {
		t.Errorf("path = %q, want %q", req.Path, runsPath)
	}
	wantQuery := map[string]string{"status": "completed", "created": "2024-03-10", "per_page": "1"}
	for k, v := range wantQuery {
		if req.Query[k] != v {
			t.Errorf("query %s = %q, want %q", k, req.Query[k], v)
		}
	}
	if req.Authorization != "Bearer "+testToken {
		t.Errorf("Authorization = %q", req.Authorization)
	}
	if req.APIVersion != "2022-11-28" {
		t.Errorf("X-GitHub-Api-Version = %q", req.APIVersion)
	}
}

func TestLatestCompletedRun_FallsBackToYesterday(t *testing.T) {
	now := time.Date(2024, 3, 10, 0, 30, 0, 0, time.UTC)
	fake := newFake(t)
	fake.AddRun(55, time.Date(2024, 3, 9, 23, 0, 0, 0, time.UTC))

	run, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	if err != nil {
		t.Fatalf("LatestCompletedRun: %v", err)
	}
	if run.ID != 55 {
		t.Errorf("run.ID = %d, want 55", run.ID)
	}

	reqs := fake.Requests()
	if len(reqs) != 2 {
		t.Fatalf("requests = %d, want 2", len(reqs))
	}
	if reqs[0].Query["created"] != "2024-03-10" || reqs[1].Query["created"] != "2024-03-09" {
		t.Errorf("created = %q then %q", reqs[0].Query["created"], reqs[1].Query["created"])
	}
}

func TestLatestCompletedRun_UsesUTCDates(t *testing.T) {
	// 02:00 at UTC+5 is still the previous day in UTC.
	now := time.Date(2024, 3, 10, 2, 0, 0, 0, time.FixedZone("UTC+5", 5*60*60))
	fake := newFake(t)
	fake.AddRun(7, time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC))

	run, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	if err != nil {
		t.Fatalf("LatestCompletedRun: %v", err)
	}
	if run.ID != 7 {
		t.Errorf("run.ID = %d, want 7", run.ID)
	}
	if got := fake.Requests()[0].Query["created"]; got != "2024-03-09" {
		t.Errorf("first created = %q, want 2024-03-09", got)
	}
}

func TestLatestCompletedRun_OutsideWindow(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fake := newFake(t)
	fake.AddRun(1, now.AddDate(0, 0, -2))

	_, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	if !errors.Is(err, ErrRunNotFound) {
		t.Fatalf("err = %v, want ErrRunNotFound", err)
	}
	if n := fake.CountPath(runsPath); n != LookbackDays {
		t.Errorf("run queries = %d, want %d", n, LookbackDays)
	}
}

func TestLatestCompletedRun_ServerErrorIsFatal(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fake := newFake(t)
	fake.RunsStatus = http.StatusInternalServerError
	fake.AddRun(1, now.AddDate(0, 0, -1))

	_, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	if !errors.Is(err, ErrListingFailed) {
		t.Fatalf("err = %v, want ErrListingFailed", err)
	}
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusInternalServerError {
		t.Errorf("err = %#v, want RequestError with 500", err)
	}
	if n := fake.CountPath(runsPath); n != 1 {
		t.Errorf("run queries = %d, want 1 (no fallback after a failed request)", n)
	}
}

func TestLatestCompletedRun_BadToken(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	fake := newFake(t)
	fake.Token = "something-else"

	_, err := newTestClient(t, fake, now).LatestCompletedRun(context.Background(), testWorkflow)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusUnauthorized {
		t.Fatalf("err = %v, want RequestError with 401", err)
	}
}

func TestListArtifacts_OrderAndFields(t *testing.T) {
	fake := newFake(t)
	fake.AddArtifact(42, testutil.FakeArtifact{Name: "fnalibs-windows", Files: map[string]string{"x64/SDL2.dll": "dll"}})
	fake.AddArtifact(42, testutil.FakeArtifact{Name: "fnalibs-linux", Files: map[string]string{"lib64/libSDL2.so": "so"}})
	fake.AddArtifact(42, testutil.FakeArtifact{Name: "fnalibs-macos", Raw: []byte("zip")})

	artifacts, err := newTestClient(t, fake, time.Now()).ListArtifacts(context.Background(), 42)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}

	want := []string{"fnalibs-windows", "fnalibs-linux", "fnalibs-macos"}
	if len(artifacts) != len(want) {
		t.Fatalf("got %d artifacts, want %d", len(artifacts), len(want))
	}
	for i, a := range artifacts {
		if a.Name != want[i] {
			t.Errorf("artifacts[%d].Name = %q, want %q", i, a.Name, want[i])
		}
		if a.DownloadURL != fake.Server.URL+"/download/"+want[i] {
			t.Errorf("artifacts[%d].DownloadURL = %q", i, a.DownloadURL)
		}
		if a.ID != 42000+int64(i+1) {
			t.Errorf("artifacts[%d].ID = %d", i, a.ID)
		}
	}
	if artifacts[2].SizeInBytes != 3 {
		t.Errorf("SizeInBytes = %d, want 3", artifacts[2].SizeInBytes)
	}

	req := fake.Requests()[0]
	if req.Path != "/repos/FNA-XNA/fnalibs-dailies/actions/runs/42/artifacts" {
		t.Errorf("path = %q", req.Path)
	}
	if req.Query["per_page"] != "100" {
		t.Errorf("per_page = %q, want 100", req.Query["per_page"])
	}
}

func TestListArtifacts_FollowsPages(t *testing.T) {
	fake := newFake(t)
	fake.ArtifactPageSize = 2
	for i := 1; i <= 5; i++ {
		fake.AddArtifact(9, testutil.FakeArtifact{Name: fmt.Sprintf("lib-%d", i), Raw: []byte("x")})
	}

	artifacts, err := newTestClient(t, fake, time.Now()).ListArtifacts(context.Background(), 9)
	if err != nil {
		t.Fatalf("ListArtifacts: %v", err)
	}
	if len(artifacts) != 5 {
		t.Fatalf("got %d artifacts, want 5", len(artifacts))
	}
	for i, a := range artifacts {
		if want := fmt.Sprintf("lib-%d", i+1); a.Name != want {
			t.Errorf("artifacts[%d] = %q, want %q", i, a.Name, want)
		}
	}
	if n := fake.CountPath("/repos/FNA-XNA/fnalibs-dailies/actions/runs/9/artifacts"); n != 3 {
		t.Errorf("page requests = %d, want 3", n)
	}
}

func TestListArtifacts_Empty(t *testing.T) {
	fake := newFake(t)

	_, err := newTestClient(t, fake, time.Now()).ListArtifacts(context.Background(), 5)
	if !errors.Is(err, ErrListingFailed) {
		t.Fatalf("err = %v, want ErrListingFailed", err)
	}
}

func TestListArtifacts_ServerError(t *testing.T) {
	fake := newFake(t)
	fake.ArtifactsStatus = http.StatusForbidden
	fake.AddArtifact(5, testutil.FakeArtifact{Name: "a", Raw: []byte("x")})

	_, err := newTestClient(t, fake, time.Now()).ListArtifacts(context.Background(), 5)
	var reqErr *RequestError
	if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusForbidden {
		t.Fatalf("err = %v, want RequestError with 403", err)
	}
	if !errors.Is(err, ErrListingFailed) {
		t.Error("RequestError should match ErrListingFailed")
	}
}

func TestRequests_NotFoundIsFatal(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name  string
		setup func(f *testutil.FakeActions)
		call  func(c *Client) error
	}{
		{
			name:  "run listing",
			setup: func(f *testutil.FakeActions) { f.RunsStatus = http.StatusNotFound },
			call: func(c *Client) error {
				_, err := c.LatestCompletedRun(context.Background(), testWorkflow)
				return err
			},
		},
		{
			name:  "artifact listing",
			setup: func(f *testutil.FakeActions) { f.ArtifactsStatus = http.StatusNotFound },
			call: func(c *Client) error {
				_, err := c.ListArtifacts(context.Background(), 1)
				return err
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := newFake(t)
			fake.AddRun(1, now)
			fake.AddArtifact(1, testutil.FakeArtifact{Name: "fnalibs", Raw: []byte("x")})
			tt.setup(fake)

			err := tt.call(newTestClient(t, fake, now))
			if !errors.Is(err, ErrListingFailed) {
				t.Fatalf("err = %v, want ErrListingFailed", err)
			}
			if errors.Is(err, ErrRunNotFound) {
				t.Error("a 404 is a failed request, not an empty lookback window")
			}
			var reqErr *RequestError
			if !errors.As(err, &reqErr) || reqErr.StatusCode != http.StatusNotFound {
				t.Errorf("err = %#v, want RequestError with 404", err)
			}
			if n := fake.CountPath(runsPath); n > 1 {
				t.Errorf("run queries = %d, want no fallback after a 404", n)
			}
		})
	}
}

func TestRequestError_Error(t *testing.T) {
	tests := []struct {
		err  *RequestError
		want string
	}{
		{&RequestError{Op: "list artifacts", StatusCode: 404}, "list artifacts: listing failed (HTTP 404)"},
		{&RequestError{Op: "list workflow runs", Err: errors.New("connection refused")}, "list workflow runs: listing failed: connection refused"},
		{&RequestError{Op: "list artifacts"}, "list artifacts: listing failed"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}
}

func TestParseRepoFromURL(t *testing.T) {
	tests := []struct {
		url       string
		wantOwner string
		wantRepo  string
		wantErr   bool
	}{
		{"https://github.com/FNA-XNA/FNA", "FNA-XNA", "FNA", false},
		{"https://github.com/FNA-XNA/FNA.git", "FNA-XNA", "FNA", false},
		{"https://github.com/FNA-XNA/FNA/", "FNA-XNA", "FNA", false},
		{"git@github.com:FNA-XNA/fnalibs-dailies.git", "FNA-XNA", "fnalibs-dailies", false},
		{"git@github.com:nope", "", "", true},
		{"https://github.com", "", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			owner, repo, err := ParseRepoFromURL(tt.url)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if owner != tt.wantOwner || repo != tt.wantRepo {
				t.Errorf("got %s/%s, want %s/%s", owner, repo, tt.wantOwner, tt.wantRepo)
			}
		})
	}
}
