package page

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHTTPClient is a test double for HTTPClient.
type mockHTTPClient struct {
	doFunc func(req *http.Request) (*http.Response, error)
}

func (m *mockHTTPClient) Do(req *http.Request) (*http.Response, error) {
	return m.doFunc(req)
}

func TestStaticSource_SameDocument(t *testing.T) {
	// Arrange
	src := NewStaticSource(`<html><body><p>x</p></body></html>`)

	// Act
	first, err1 := src.Load(context.Background())
	second, err2 := src.Load(context.Background())

	// Assert
	require.NoError(t, err1)
	require.NoError(t, err2)
	assert.Same(t, first, second)
}

func TestFileSource_Load(t *testing.T) {
	// Arrange
	path := filepath.Join(t.TempDir(), "page.html")
	require.NoError(t, os.WriteFile(path, []byte(`<html><body><p class="x">hello</p></body></html>`), 0o644))

	// Act
	doc, err := NewFileSource(path).Load(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "hello", doc.Find(".x").Text())
}

func TestFileSource_Missing(t *testing.T) {
	_, err := NewFileSource(filepath.Join(t.TempDir(), "nope.html")).Load(context.Background())
	assert.Error(t, err)
}

func TestHTTPSource_SendsSessionCookie(t *testing.T) {
	// Arrange
	var gotCookie string
	client := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		if c, err := req.Cookie("_gitlab_session"); err == nil {
			gotCookie = c.Value
		}
		return &http.Response{
			StatusCode: http.StatusOK,
			Body:       io.NopCloser(bytes.NewBufferString(`<html><body data-project-id="9"></body></html>`)),
		}, nil
	}}
	src := NewHTTPSource("https://gitlab.example.com/g/p/-/merge_requests", "s3cr3t", client)

	// Act
	doc, err := src.Load(context.Background())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", gotCookie)
	assert.Equal(t, "9", doc.Find("body").AttrOr("data-project-id", ""))
}

func TestHTTPSource_ErrorStatus(t *testing.T) {
	client := &mockHTTPClient{doFunc: func(req *http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: http.StatusForbidden,
			Body:       io.NopCloser(bytes.NewBufferString("forbidden")),
		}, nil
	}}

	_, err := NewHTTPSource("https://gitlab.example.com/x", "", client).Load(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestPrimed_FirstThenDelegates(t *testing.T) {
	// Arrange
	first, err := Parse(`<html><body><p>first</p></body></html>`)
	require.NoError(t, err)
	next := NewStaticSource(`<html><body><p>next</p></body></html>`)
	src := Primed(first, next)

	// Act
	a, _ := src.Load(context.Background())
	b, _ := src.Load(context.Background())

	// Assert
	assert.Equal(t, "first", a.Find("p").Text())
	assert.Equal(t, "next", b.Find("p").Text())
}
