package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/mr-enhancer/internal/annotate"
	"github.com/vilaca/mr-enhancer/internal/api"
	"github.com/vilaca/mr-enhancer/internal/api/gitlab"
	"github.com/vilaca/mr-enhancer/internal/domain"
	enherrors "github.com/vilaca/mr-enhancer/internal/errors"
	"github.com/vilaca/mr-enhancer/internal/logging"
	"github.com/vilaca/mr-enhancer/internal/notify"
	"github.com/vilaca/mr-enhancer/internal/page"
	"github.com/vilaca/mr-enhancer/internal/page/pagetest"
	"github.com/vilaca/mr-enhancer/internal/preferences"
)

// fakeGitLab serves the two merge request endpoints from an in-memory set.
type fakeGitLab struct {
	mu       sync.Mutex
	records  map[string]map[string]any
	requests []*http.Request
	fail     bool
}

func newFakeGitLab(t *testing.T) (*fakeGitLab, *httptest.Server) {
	t.Helper()
	f := &fakeGitLab{records: map[string]map[string]any{
		"1": {"id": 101, "iid": 1, "title": "Fix login", "web_url": "https://gitlab.example.com/group/project/-/merge_requests/1",
			"state": "opened", "source_branch": "PROJ-42-fix", "target_branch": "main", "author": map[string]any{"name": "Ada"}},
	}}
	server := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(server.Close)
	return f, server
}

func (f *fakeGitLab) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, r)

	if f.fail {
		http.Error(w, `{"message":"500 Internal Server Error"}`, http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch r.Method {
	case http.MethodGet:
		out := []map[string]any{}
		for _, iid := range r.URL.Query()["iids[]"] {
			if record, ok := f.records[iid]; ok {
				out = append(out, record)
			}
		}
		_ = json.NewEncoder(w).Encode(out)
	case http.MethodPut:
		iid := r.URL.Path[strings.LastIndex(r.URL.Path, "/")+1:]
		var body map[string]any
		_ = json.NewDecoder(r.Body).Decode(&body)
		record := f.records[iid]
		record["title"] = body["title"]
		record["draft"] = strings.HasPrefix(body["title"].(string), domain.WIPPrefix)
		_ = json.NewEncoder(w).Encode(record)
	}
}

func (f *fakeGitLab) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.requests)
}

type memoryClipboard struct{ text string }

func (m *memoryClipboard) WriteAll(text string) error {
	m.text = text
	return nil
}

func immediately(time.Duration) <-chan time.Time {
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

func newEnhancer(server *httptest.Server, notifier notify.Notifier, clip *memoryClipboard, prefs domain.Preferences) *Enhancer {
	return NewEnhancer(Config{
		Catalog:     page.DefaultCatalog,
		Preferences: preferences.Static(prefs),
		NewClient: func(cfg api.ClientConfig) api.RecordClient {
			return gitlab.NewClient(cfg, server.Client(), logging.Nop(), notifier)
		},
		Clipboard: clip,
		Notifier:  notifier,
		PollAfter: immediately,
		Logger:    logging.Nop(),
	})
}

func pageFor(server *httptest.Server, items ...pagetest.Item) pagetest.Page {
	p := pagetest.Default(items...)
	p.GitLabURL = server.URL
	return p
}

// TestRun_Scenario tests a full page view: one record among two items.
// Follows AAA (Arrange, Act, Assert) pattern.
func TestRun_Scenario(t *testing.T) {
	// Arrange
	gl, server := newFakeGitLab(t)
	notifier := notify.NewRecorder()
	clip := &memoryClipboard{}
	enhancer := newEnhancer(server, notifier, clip, domain.Preferences{
		DisplaySourceAndTargetBranches: true,
		DisplayActionButtons:           true,
		BaseJiraURL:                    "https://jira.example.com",
		CopyMRInfoFormat:               "{MR_JIRA_TICKET_ID}: {MR_TITLE}",
	})
	src := page.NewStaticSource(pageFor(server, pagetest.Item{Reference: "1"}, pagetest.Item{Reference: "2"}).HTML())

	// Act
	session, err := enhancer.Run(context.Background(), src)

	// Assert
	require.NoError(t, err)
	assert.NotEmpty(t, session.Run.ID)
	assert.Equal(t, "42", session.Run.Page.ProjectID)
	assert.Equal(t, []string{"1", "2"}, session.Run.FetchedIIDs)
	assert.Equal(t, 1, session.Report.Matched)
	assert.Equal(t, 1, gl.count())
	assert.Equal(t, "/api/v4/projects/42/merge_requests", gl.requests[0].URL.Path)

	items := session.Run.Document.Find(annotate.Selector)
	require.Equal(t, 1, items.Length())
	state, ok := annotate.Read(items)
	require.True(t, ok)
	assert.Equal(t, "PROJ-42-fix", state.SourceBranch)
	assert.Equal(t, 4, session.Bindings.Len())

	require.NoError(t, session.Act(context.Background(), "1", page.ActionCopyInfo, ""))
	assert.Equal(t, "PROJ-42: Fix login", clip.text)
	assert.Empty(t, notifier.Messages())
}

// TestRun_MissingProject tests that a page without project context is left untouched.
func TestRun_MissingProject(t *testing.T) {
	// Arrange
	gl, server := newFakeGitLab(t)
	p := pageFor(server, pagetest.Item{Reference: "1"})
	p.ProjectID = ""
	enhancer := newEnhancer(server, notify.NewRecorder(), &memoryClipboard{}, domain.DefaultPreferences())

	// Act
	session, err := enhancer.Run(context.Background(), page.NewStaticSource(p.HTML()))

	// Assert
	assert.Nil(t, session)
	assert.ErrorIs(t, err, enherrors.ErrInitialization)
	assert.Contains(t, err.Error(), "project id")
	assert.Equal(t, 0, gl.count())
}

// TestRun_NoItems tests that exhaustion never reaches the API.
func TestRun_NoItems(t *testing.T) {
	// Arrange
	gl, server := newFakeGitLab(t)
	enhancer := newEnhancer(server, notify.NewRecorder(), &memoryClipboard{}, domain.DefaultPreferences())

	// Act
	_, err := enhancer.Run(context.Background(), page.NewStaticSource(pageFor(server).HTML()))

	// Assert
	assert.ErrorIs(t, err, enherrors.ErrDiscoveryExhausted)
	var exhausted *enherrors.DiscoveryExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 10, exhausted.Attempts)
	assert.Equal(t, 0, gl.count())
}

// TestRun_FetchFailure tests that a failed fetch aborts before any mutation.
func TestRun_FetchFailure(t *testing.T) {
	// Arrange
	gl, server := newFakeGitLab(t)
	gl.fail = true
	notifier := notify.NewRecorder()
	enhancer := newEnhancer(server, notifier, &memoryClipboard{}, domain.DefaultPreferences())
	src := page.NewStaticSource(pageFor(server, pagetest.Item{Reference: "1"}).HTML())

	// Act
	session, err := enhancer.Run(context.Background(), src)

	// Assert
	assert.Nil(t, session)
	assert.True(t, enherrors.IsTransport(err))
	assert.Len(t, notifier.Messages(), 1, "failure is alerted exactly once")

	doc, loadErr := src.Load(context.Background())
	require.NoError(t, loadErr)
	assert.Equal(t, 0, doc.Find(annotate.Selector).Length())
}

// TestSession_ToggleWIP tests the write path through the real client.
func TestSession_ToggleWIP(t *testing.T) {
	// Arrange
	gl, server := newFakeGitLab(t)
	enhancer := newEnhancer(server, notify.NewRecorder(), &memoryClipboard{}, domain.DefaultPreferences())
	session, err := enhancer.Run(context.Background(), page.NewStaticSource(pageFor(server, pagetest.Item{Reference: "1"}).HTML()))
	require.NoError(t, err)

	// Act
	err = session.Act(context.Background(), "1", page.ActionToggleWIP, "")

	// Assert
	require.NoError(t, err)
	require.Equal(t, 2, gl.count())
	put := gl.requests[1]
	assert.Equal(t, http.MethodPut, put.Method)
	assert.Equal(t, "csrf-token", put.Header.Get("X-CSRF-Token"))

	state, _ := annotate.Read(session.Run.Document.Find(annotate.Selector))
	assert.Equal(t, "WIP: Fix login", state.Title)
	assert.True(t, state.WorkInProgress)
}

// TestSession_Render tests that the serialized page carries the injected markup.
func TestSession_Render(t *testing.T) {
	_, server := newFakeGitLab(t)
	enhancer := newEnhancer(server, notify.NewRecorder(), &memoryClipboard{}, domain.DefaultPreferences())
	session, err := enhancer.Run(context.Background(), page.NewStaticSource(pageFor(server, pagetest.Item{Reference: "1"}).HTML()))
	require.NoError(t, err)

	out, err := session.Render()

	require.NoError(t, err)
	assert.Contains(t, out, page.BranchPathClass)
	assert.Contains(t, out, page.ActionsClass)
	assert.Contains(t, out, `data-mr-enhancer-source-branch="PROJ-42-fix"`)
}

// TestSession_State tests reading back the annotated state of an item.
func TestSession_State(t *testing.T) {
	_, server := newFakeGitLab(t)
	enhancer := newEnhancer(server, notify.NewRecorder(), &memoryClipboard{}, domain.DefaultPreferences())
	session, err := enhancer.Run(context.Background(), page.NewStaticSource(
		pageFor(server, pagetest.Item{Reference: "1"}, pagetest.Item{Reference: "2"}).HTML()))
	require.NoError(t, err)

	state, ok := session.State("1")
	require.True(t, ok)
	assert.Equal(t, "Fix login", state.Title)

	_, ok = session.State("2")
	assert.False(t, ok, "item 2 has no record")
}
