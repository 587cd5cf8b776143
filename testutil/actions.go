package testutil

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"
)

// FakeRun is a completed workflow run served by FakeActions.
type FakeRun struct {
	ID        int64
	CreatedAt time.Time
}

// FakeArtifact is an artifact served by FakeActions. Files become the zip
// body unless Raw is set.
type FakeArtifact struct {
	ID    int64
	Name  string
	Files map[string]string
	Raw   []byte
}

// RecordedRequest is one request FakeActions received.
type RecordedRequest struct {
	Method        string
	Path          string
	Query         map[string]string
	Authorization string
	APIVersion    string
}

// FakeActions is an httptest server speaking the subset of the GitHub
// Actions REST API depsync uses.
type FakeActions struct {
	Server *httptest.Server
	Owner  string
	Repo   string

	// Token, when set, is the only bearer token accepted.
	Token string

	// RunsStatus, ArtifactsStatus and DownloadStatus force a status code on
	// the matching endpoint. Zero means serve normally.
	RunsStatus      int
	ArtifactsStatus int
	DownloadStatus  map[string]int

	// ArtifactPageSize caps artifacts per page regardless of per_page.
	ArtifactPageSize int

	mu        sync.Mutex
	runs      map[string][]FakeRun // keyed by YYYY-MM-DD
	artifacts map[int64][]FakeArtifact
	requests  []RecordedRequest
}

// NewFakeActions starts a fake API for owner/repo, closed when the test ends.
func NewFakeActions(t *testing.T, owner, repo string) *FakeActions {
	t.Helper()

	f := &FakeActions{
		Owner:          owner,
		Repo:           repo,
		DownloadStatus: make(map[string]int),
		runs:           make(map[string][]FakeRun),
		artifacts:      make(map[int64][]FakeArtifact),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/workflows/{workflow}/runs", f.handleRuns)
	mux.HandleFunc("GET /repos/{owner}/{repo}/actions/runs/{run}/artifacts", f.handleArtifacts)
	mux.HandleFunc("GET /download/{name}", f.handleDownload)

	f.Server = httptest.NewServer(f.record(mux))
	t.Cleanup(f.Server.Close)
	return f
}

// BaseURL is the API root with a trailing slash, as go-github expects.
func (f *FakeActions) BaseURL() string {
	return f.Server.URL + "/"
}

// AddRun registers a completed run created at the given time.
func (f *FakeActions) AddRun(id int64, createdAt time.Time) {
	f.mu.Lock()
	defer f.mu.Unlock()

	day := createdAt.UTC().Format("2006-01-02")
	f.runs[day] = append(f.runs[day], FakeRun{ID: id, CreatedAt: createdAt})
}

// AddArtifact attaches an artifact to a run, preserving insertion order.
func (f *FakeActions) AddArtifact(runID int64, a FakeArtifact) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if a.ID == 0 {
		a.ID = runID*1000 + int64(len(f.artifacts[runID])+1)
	}
	f.artifacts[runID] = append(f.artifacts[runID], a)
}

// Requests returns a copy of every request received so far.
func (f *FakeActions) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([]RecordedRequest(nil), f.requests...)
}

// CountPath returns how many requests hit a path exactly.
func (f *FakeActions) CountPath(path string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Path == path {
			n++
		}
	}
	return n
}

func (f *FakeActions) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query := make(map[string]string)
		for k, v := range r.URL.Query() {
			if len(v) > 0 {
				query[k] = v[0]
			}
		}

		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{
			Method:        r.Method,
			Path:          r.URL.Path,
			Query:         query,
			Authorization: r.Header.Get("Authorization"),
			APIVersion:    r.Header.Get("X-GitHub-Api-Version"),
		})
		token := f.Token
		f.mu.Unlock()

		if token != "" && r.Header.Get("Authorization") != "Bearer "+token {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (f *FakeActions) handleRuns(w http.ResponseWriter, r *http.Request) {
	if !f.matchesRepo(w, r) {
		return
	}
	if f.RunsStatus != 0 {
		writeJSON(w, f.RunsStatus, map[string]string{"message": http.StatusText(f.RunsStatus)})
		return
	}

	q := r.URL.Query()
	f.mu.Lock()
	var runs []FakeRun
	if q.Get("status") == "completed" {
		runs = append(runs, f.runs[q.Get("created")]...)
	}
	f.mu.Unlock()

	// Newest first, like the real API.
	sort.SliceStable(runs, func(i, j int) bool { return runs[i].CreatedAt.After(runs[j].CreatedAt) })
	total := len(runs)
	if perPage, err := strconv.Atoi(q.Get("per_page")); err == nil && perPage > 0 && perPage < len(runs) {
		runs = runs[:perPage]
	}

	items := make([]map[string]any, 0, len(runs))
	for _, run := range runs {
		items = append(items, map[string]any{
			"id":         run.ID,
			"status":     "completed",
			"conclusion": "success",
			"created_at": run.CreatedAt.UTC().Format(time.RFC3339),
		})
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_count": total, "workflow_runs": items})
}

func (f *FakeActions) handleArtifacts(w http.ResponseWriter, r *http.Request) {
	if !f.matchesRepo(w, r) {
		return
	}
	if f.ArtifactsStatus != 0 {
		writeJSON(w, f.ArtifactsStatus, map[string]string{"message": http.StatusText(f.ArtifactsStatus)})
		return
	}

	runID, err := strconv.ParseInt(r.PathValue("run"), 10, 64)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	f.mu.Lock()
	all := append([]FakeArtifact(nil), f.artifacts[runID]...)
	f.mu.Unlock()

	q := r.URL.Query()
	perPage, _ := strconv.Atoi(q.Get("per_page"))
	if perPage <= 0 {
		perPage = 30
	}
	if f.ArtifactPageSize > 0 && f.ArtifactPageSize < perPage {
		perPage = f.ArtifactPageSize
	}
	page, _ := strconv.Atoi(q.Get("page"))
	if page <= 0 {
		page = 1
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > len(all) {
		start = len(all)
	}
	if end > len(all) {
		end = len(all)
	}

	items := make([]map[string]any, 0, end-start)
	for _, a := range all[start:end] {
		size := len(a.Raw)
		if a.Raw == nil {
			size = len(buildZipBytes(a.Files))
		}
		items = append(items, map[string]any{
			"id":                   a.ID,
			"name":                 a.Name,
			"size_in_bytes":        size,
			"archive_download_url": f.Server.URL + "/download/" + a.Name,
		})
	}

	if end < len(all) {
		next := fmt.Sprintf("%s%s?per_page=%d&page=%d", f.Server.URL, r.URL.Path, perPage, page+1)
		w.Header().Set("Link", fmt.Sprintf(`<%s>; rel="next"`, next))
	}
	writeJSON(w, http.StatusOK, map[string]any{"total_count": len(all), "artifacts": items})
}

func (f *FakeActions) handleDownload(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	f.mu.Lock()
	status := f.DownloadStatus[name]
	var found *FakeArtifact
	for _, list := range f.artifacts {
		for i := range list {
			if list[i].Name == name {
				found = &list[i]
			}
		}
	}
	f.mu.Unlock()

	if status != 0 {
		writeJSON(w, status, map[string]string{"message": http.StatusText(status)})
		return
	}
	if found == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	body := found.Raw
	if body == nil {
		body = buildZipBytes(found.Files)
	}
	w.Header().Set("Content-Type", "application/zip")
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func (f *FakeActions) matchesRepo(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("owner") != f.Owner || r.PathValue("repo") != f.Repo {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
