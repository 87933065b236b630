//go:build unit

package github_test

import (
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-git/go-git/v5/plumbing"
	"github.com/golang-jwt/jwt/v5"
)

const (
	testOwner = "acme"
	testRepo  = "widgets"
	testToken = "test-token"
)

type treeRequest struct {
	BaseTree string `json:"base_tree"`
	Tree     []struct {
		Path    string `json:"path"`
		Mode    string `json:"mode"`
		Type    string `json:"type"`
		Content string `json:"content"`
	} `json:"tree"`
}

type commitRequest struct {
	Message string   `json:"message"`
	Tree    string   `json:"tree"`
	Parents []string `json:"parents"`
}

type refRequest struct {
	SHA   string `json:"sha"`
	Force bool   `json:"force"`
}

// fakeGitHub serves the subset of the REST API the publisher uses. Reference
// updates follow GitHub's rule: without force, only fast-forwards are accepted.
type fakeGitHub struct {
	mu sync.Mutex

	defaultBranch string
	refs          map[string]string   // "main" -> commit sha
	commits       map[string][]string // commit sha -> parents
	nextTreeSHA   string
	nextCommitSHA string
	counter       int

	// failures queues status codes returned for "METHOD /path" before it succeeds
	failures map[string][]int
	// beforeUpdate runs once, right before a reference update is evaluated
	beforeUpdate func(f *fakeGitHub)

	// app authentication
	appKey         *rsa.PublicKey
	installationID int64
	appToken       string

	requests       []string
	treeRequests   []treeRequest
	commitRequests []commitRequest
	refRequests    []refRequest
	authHeaders    []string
}

func newFakeGitHub(t *testing.T) (*fakeGitHub, *httptest.Server) {
	t.Helper()

	fake := &fakeGitHub{
		defaultBranch: "main",
		refs:          map[string]string{"main": "abc123"},
		commits:       map[string][]string{"abc123": nil},
		failures:      map[string][]int{},
	}
	server := httptest.NewServer(fake)
	t.Cleanup(server.Close)
	return fake, server
}

func (f *fakeGitHub) setRef(branch, sha string, parents ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refs[branch] = sha
	f.commits[sha] = parents
}

func (f *fakeGitHub) ref(branch string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.refs[branch]
}

func (f *fakeGitHub) requestLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.requests...)
}

func (f *fakeGitHub) id(prefix string) string {
	f.counter++
	return fmt.Sprintf("%s%03d", prefix, f.counter)
}

func (f *fakeGitHub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()

	key := r.Method + " " + r.URL.Path
	f.requests = append(f.requests, key)
	f.authHeaders = append(f.authHeaders, r.Header.Get("Authorization"))

	if queued := f.failures[key]; len(queued) > 0 {
		f.failures[key] = queued[1:]
		writeJSON(w, queued[0], map[string]string{"message": http.StatusText(queued[0])})
		return
	}

	repoPrefix := fmt.Sprintf("/repos/%s/%s", testOwner, testRepo)
	if strings.HasPrefix(r.URL.Path, "/app/") || r.URL.Path == repoPrefix+"/installation" {
		f.serveApp(w, r)
		return
	}

	if r.Header.Get("Authorization") != "Bearer "+f.validToken() {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Bad credentials"})
		return
	}

	path := strings.TrimPrefix(r.URL.Path, repoPrefix)
	if path == r.URL.Path {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	switch {
	case r.Method == http.MethodGet && path == "":
		writeJSON(w, http.StatusOK, map[string]any{"name": testRepo, "default_branch": f.defaultBranch})
	case r.Method == http.MethodGet && strings.HasPrefix(path, "/git/ref/heads/"):
		f.serveGetRef(w, strings.TrimPrefix(path, "/git/ref/heads/"))
	case r.Method == http.MethodPost && path == "/git/trees":
		f.serveCreateTree(w, r)
	case r.Method == http.MethodPost && path == "/git/commits":
		f.serveCreateCommit(w, r)
	case r.Method == http.MethodPatch && strings.HasPrefix(path, "/git/refs/heads/"):
		f.serveUpdateRef(w, r, strings.TrimPrefix(path, "/git/refs/heads/"))
	default:
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
	}
}

func (f *fakeGitHub) validToken() string {
	if f.appToken != "" {
		return f.appToken
	}
	return testToken
}

func (f *fakeGitHub) serveGetRef(w http.ResponseWriter, branch string) {
	sha, ok := f.refs[branch]
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":    "refs/heads/" + branch,
		"object": map[string]string{"sha": sha, "type": "commit"},
	})
}

func (f *fakeGitHub) serveCreateTree(w http.ResponseWriter, r *http.Request) {
	var req treeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	f.treeRequests = append(f.treeRequests, req)

	if _, ok := f.commits[req.BaseTree]; !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Invalid tree info"})
		return
	}

	entries := make([]map[string]string, 0, len(req.Tree))
	for _, e := range req.Tree {
		if e.Mode != "100644" || strings.HasPrefix(e.Path, "/") {
			writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "tree.path contains a malformed path component"})
			return
		}
		entries = append(entries, map[string]string{
			"path": e.Path,
			"mode": e.Mode,
			"type": e.Type,
			"sha":  plumbing.ComputeHash(plumbing.BlobObject, []byte(e.Content)).String(),
		})
	}

	sha := f.nextTreeSHA
	if sha == "" {
		sha = f.id("tree")
	}
	writeJSON(w, http.StatusCreated, map[string]any{"sha": sha, "tree": entries})
}

func (f *fakeGitHub) serveCreateCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	f.commitRequests = append(f.commitRequests, req)

	sha := f.nextCommitSHA
	if sha == "" {
		sha = f.id("commit")
	}
	f.commits[sha] = req.Parents

	parents := make([]map[string]string, 0, len(req.Parents))
	for _, p := range req.Parents {
		parents = append(parents, map[string]string{"sha": p})
	}
	writeJSON(w, http.StatusCreated, map[string]any{
		"sha":     sha,
		"message": req.Message,
		"tree":    map[string]string{"sha": req.Tree},
		"parents": parents,
	})
}

func (f *fakeGitHub) serveUpdateRef(w http.ResponseWriter, r *http.Request, branch string) {
	var req refRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "Problems parsing JSON"})
		return
	}
	f.refRequests = append(f.refRequests, req)

	if f.beforeUpdate != nil {
		hook := f.beforeUpdate
		f.beforeUpdate = nil
		hook(f)
	}

	current, ok := f.refs[branch]
	if !ok {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Reference does not exist"})
		return
	}
	if !req.Force && req.SHA != current && !contains(f.commits[req.SHA], current) {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"message": "Update is not a fast forward"})
		return
	}

	f.refs[branch] = req.SHA
	writeJSON(w, http.StatusOK, map[string]any{
		"ref":    "refs/heads/" + branch,
		"object": map[string]string{"sha": req.SHA, "type": "commit"},
	})
}

func (f *fakeGitHub) serveApp(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return f.appKey, nil
	})
	if err != nil || f.appKey == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "A JSON web token could not be decoded"})
		return
	}

	if r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/installation") {
		writeJSON(w, http.StatusOK, map[string]any{"id": f.installationID})
		return
	}

	want := fmt.Sprintf("/app/installations/%d/access_tokens", f.installationID)
	if r.Method != http.MethodPost || r.URL.Path != want {
		writeJSON(w, http.StatusNotFound, map[string]string{"message": "Not Found"})
		return
	}

	f.appToken = "ghs_installation"
	writeJSON(w, http.StatusCreated, map[string]any{
		"token":      f.appToken,
		"expires_at": time.Now().Add(time.Hour).UTC().Format(time.RFC3339),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func contains(values []string, want string) bool {
	for _, v := range values {
		if v == want {
			return true
		}
	}
	return false
}
