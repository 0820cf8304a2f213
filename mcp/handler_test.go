package mcp

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/foomo/mdclip/locate"
	"github.com/foomo/mdclip/persist"
	"github.com/foomo/mdclip/service"
	"github.com/foomo/mdclip/service/vo"
	"github.com/foomo/mdclip/settings"
	"github.com/foomo/mdclip/tags"
)

var testHTML = `<html><head><title>Hello | Site</title></head><body><nav>menu</nav><article><p>` +
	strings.Repeat("some words here ", 40) +
	`</p><blockquote id="quote">quoted line</blockquote></article></body></html>`

func newTestService(t *testing.T) (service.Service, string) {
	return newTestServiceWithAutoSave(t, true)
}

func newTestServiceWithAutoSave(t *testing.T, autoSave bool) (service.Service, string) {
	t.Helper()
	dir := t.TempDir()
	prefs := settings.New(filepath.Join(dir, "settings.yaml"))
	require.NoError(t, prefs.SetAutoSave(autoSave))
	saver := persist.NewSaver(filepath.Join(dir, "out"), persist.WithClock(func() time.Time {
		return time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	}))
	store := tags.NewFileStore(filepath.Join(dir, "tags.yaml"))
	return service.NewService(nil, locate.DefaultOptions(), store, prefs, saver), dir
}

func toolRequest(name string, args any) mcp.CallToolRequest {
	return mcp.CallToolRequest{
		Request: mcp.Request{
			Method: "tools/call",
		},
		Params: mcp.CallToolParams{
			Name:      name,
			Arguments: args,
		},
	}
}

func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestNewServer(t *testing.T) {
	assert.NotNil(t, NewServer(nil))

	s, _ := newTestService(t)
	assert.NotNil(t, NewServer(s))
}

func TestLocateHandler(t *testing.T) {
	args := LocateRequest{HTML: testHTML, URL: "https://example.com/hello", Selection: "#quote"}

	result, err := locateHandler(context.Background(), toolRequest("locate", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError)

	var snapshot vo.PageSnapshot
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &snapshot))
	assert.Equal(t, "Hello", snapshot.Title)
	assert.Equal(t, "https://example.com/hello", snapshot.URL)
	assert.Equal(t, "quoted line", snapshot.Selection)
	assert.True(t, strings.HasPrefix(snapshot.HTML, "<article>"))
	assert.NotContains(t, snapshot.HTML, "menu")
}

func TestLocateHandlerValidation(t *testing.T) {
	tests := []struct {
		name string
		args LocateRequest
	}{
		{name: "missing html", args: LocateRequest{URL: "https://example.com"}},
		{name: "bad selector", args: LocateRequest{HTML: testHTML, Selection: "a > b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := locateHandler(context.Background(), toolRequest("locate", tt.args), tt.args)
			require.NoError(t, err)
			assert.True(t, result.IsError)
		})
	}
}

func TestComposeHandler(t *testing.T) {
	args := ComposeRequest{
		Snapshot: vo.PageSnapshot{
			HTML:      "<article><p>Body</p></article>",
			Selection: "<p>Part</p>",
			Title:     "T",
			URL:       "https://example.com",
		},
		UseSelection: true,
	}

	result, err := composeHandler(context.Background(), toolRequest("compose", args), args)
	require.NoError(t, err)

	var response ComposeResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, "# T (Selected Excerpt)\n\nSource: https://example.com\n\nPart", response.Markdown)
}

func TestComposeHandlerExcerptFlag(t *testing.T) {
	snapshot := vo.PageSnapshot{HTML: "<p>Body</p>", Selection: "<p>Part</p>", Title: "T", URL: "u"}
	tests := []struct {
		name         string
		useSelection bool
		isExcerpt    *bool
		want         string
	}{
		{name: "selection not marked", useSelection: true, isExcerpt: boolPtr(false), want: "# T\n\nSource: u\n\nPart"},
		{name: "article marked", useSelection: false, isExcerpt: boolPtr(true), want: "# T (Selected Excerpt)\n\nSource: u\n\nBody"},
		{name: "default follows selection", useSelection: false, want: "# T\n\nSource: u\n\nBody"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := ComposeRequest{Snapshot: snapshot, UseSelection: tt.useSelection, IsExcerpt: tt.isExcerpt}

			result, err := composeHandler(context.Background(), toolRequest("compose", args), args)
			require.NoError(t, err)

			var response ComposeResponse
			require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
			assert.Equal(t, tt.want, response.Markdown)
		})
	}
}

func boolPtr(b bool) *bool {
	return &b
}

func TestComposeHandlerWithoutSelection(t *testing.T) {
	args := ComposeRequest{Snapshot: vo.PageSnapshot{HTML: "<p>x</p>"}, UseSelection: true}

	result, err := composeHandler(context.Background(), toolRequest("compose", args), args)
	require.NoError(t, err)
	assert.True(t, result.IsError)
}

func TestPreviewHandler(t *testing.T) {
	args := PreviewRequest{Markdown: "# Title"}

	result, err := previewHandler(context.Background(), toolRequest("preview", args), args)
	require.NoError(t, err)

	var response PreviewResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Contains(t, response.HTML, "<h1>Title</h1>")
}

func TestClipHandlerSaves(t *testing.T) {
	s, dir := newTestService(t)
	args := ClipRequest{
		LocateRequest: LocateRequest{HTML: testHTML, URL: "https://example.com/hello"},
		Tags:          []string{"reading"},
		Save:          true,
	}

	result, err := getClipHandler(s)(context.Background(), toolRequest("clip", args), args)
	require.NoError(t, err)
	require.False(t, result.IsError, resultText(t, result))

	var response ClipResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, filepath.Join(dir, "out", "Hello-2024-05-06T07-08-09.md"), response.Path)
	assert.False(t, response.Clip.Selection)

	data, err := os.ReadFile(response.Path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "---\ntags: reading\n---\n\n# Hello\n\nSource: https://example.com/hello\n\n"))
}

func TestClipHandlerSaveWithoutAutoSave(t *testing.T) {
	s, dir := newTestServiceWithAutoSave(t, false)
	args := ClipRequest{
		LocateRequest: LocateRequest{HTML: testHTML, URL: "https://example.com/hello"},
		Save:          true,
	}

	result, err := getClipHandler(s)(context.Background(), toolRequest("clip", args), args)
	require.NoError(t, err)

	assert.True(t, result.IsError)
	assert.Contains(t, resultText(t, result), persist.ErrNoPrompter.Error())
	assert.NoDirExists(t, filepath.Join(dir, "out"))
}

func TestTagsHandler(t *testing.T) {
	s, _ := newTestService(t)
	handler := getTagsHandler(s)

	args := TagsRequest{Add: []string{"b", "a", "b"}}
	result, err := handler(context.Background(), toolRequest("tags", args), args)
	require.NoError(t, err)

	var response TagsResponse
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, []string{"b", "a"}, response.Tags)

	args = TagsRequest{}
	result, err = handler(context.Background(), toolRequest("tags", args), args)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(resultText(t, result)), &response))
	assert.Equal(t, []string{"b", "a"}, response.Tags)
}

func TestClipSSE(t *testing.T) {
	s, _ := newTestService(t)
	srv := NewMcpHTTPSSEServer(nil, NewServer(s), s, "/mcp", nil)

	body, err := json.Marshal(ClipRequest{LocateRequest: LocateRequest{HTML: testHTML, URL: "https://example.com/hello", Selection: "#quote"}})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/sse/clip", strings.NewReader(string(body))))

	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))
	out := rec.Body.String()
	start := strings.Index(out, "event: clip_start")
	res := strings.Index(out, "event: clip_result")
	done := strings.Index(out, "event: clip_complete")
	assert.True(t, start >= 0 && start < res && res < done, out)
	assert.Contains(t, out, `(Selected Excerpt)`)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/sse/stats", nil))
	var stats map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &stats))
	assert.EqualValues(t, 1, stats["clips"])
	assert.EqualValues(t, 0, stats["connectedClients"])
}

func TestClipSSEValidation(t *testing.T) {
	s, _ := newTestService(t)
	srv := NewMcpHTTPSSEServer(nil, NewServer(s), s, "/mcp", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/sse/clip", strings.NewReader(`{"url":"x"}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/mcp/sse/clip", strings.NewReader(`{`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSSEClients(t *testing.T) {
	srv := NewMcpHTTPSSEServer(nil, NewServer(nil), nil, "/mcp", nil)

	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/mcp/sse/clients", nil))

	var clients map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &clients))
	assert.EqualValues(t, 0, clients["connectedClients"])
}

func TestSSEEventIDsAreUnique(t *testing.T) {
	a := newEvent("x", nil)
	b := newEvent("x", nil)

	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 26)
}

func TestRemovedClientGetsNoEvents(t *testing.T) {
	srv := NewMCPSSEServer(nil, NewServer(nil), nil, nil)
	rec := httptest.NewRecorder()

	client := srv.addClient(rec)
	require.NotNil(t, client)
	connected := rec.Body.String()
	assert.Contains(t, connected, "event: connected")

	srv.removeClient(client.ID)
	require.NoError(t, writeEvent(client, newEvent("clip_result", nil)))

	assert.Equal(t, connected, rec.Body.String())
	assert.Empty(t, srv.GetConnectedClients())
}
