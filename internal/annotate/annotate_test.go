package annotate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/mr-enhancer/internal/domain"
	"github.com/vilaca/mr-enhancer/internal/page"
)

func TestWriteRead(t *testing.T) {
	// Arrange
	doc, err := page.Parse(`<ul><li id="row"><button class="b">x</button></li></ul>`)
	require.NoError(t, err)
	item := doc.Find("#row")
	mr := domain.MergeRequest{
		ID: 1001, IID: 1, Title: "WIP: Fix", WebURL: "https://gitlab.example.com/g/p/-/merge_requests/1",
		AuthorName: "Ada", State: "opened", SourceBranch: "PROJ-42-fix", TargetBranch: "main", WorkInProgress: true,
	}

	// Act
	Write(item, mr)
	state, ok := Read(item)

	// Assert
	require.True(t, ok)
	assert.Equal(t, domain.AnnotatedState{
		Title:          "WIP: Fix",
		IID:            "1",
		URL:            "https://gitlab.example.com/g/p/-/merge_requests/1",
		DiffsURL:       "https://gitlab.example.com/g/p/-/merge_requests/1/diffs",
		AuthorName:     "Ada",
		Status:         "opened",
		SourceBranch:   "PROJ-42-fix",
		TargetBranch:   "main",
		WorkInProgress: true,
	}, state)

	closest := Closest(doc.Find(".b"))
	assert.Equal(t, "row", closest.AttrOr("id", ""))
}

func TestWrite_TotalOverwrite(t *testing.T) {
	// Arrange
	doc, err := page.Parse(`<div id="row"></div>`)
	require.NoError(t, err)
	item := doc.Find("#row")
	Write(item, domain.MergeRequest{IID: 1, Title: "old", AuthorName: "Ada", WorkInProgress: true})

	// Act
	Write(item, domain.MergeRequest{IID: 1, Title: "new"})
	state, _ := Read(item)

	// Assert
	assert.Equal(t, "new", state.Title)
	assert.Empty(t, state.AuthorName, "absent optional fields are written as empty")
	assert.False(t, state.WorkInProgress)
}

func TestRead_NotAnnotated(t *testing.T) {
	doc, err := page.Parse(`<div id="row"></div>`)
	require.NoError(t, err)

	_, ok := Read(doc.Find("#row"))

	assert.False(t, ok)
}
