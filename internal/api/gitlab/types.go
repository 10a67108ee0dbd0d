package gitlab

import (
	"fmt"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

// gitlabMergeRequest is the wire shape of a merge request.
// Required fields are pointers so absence can be told from zero values.
type gitlabMergeRequest struct {
	ID             *int64        `json:"id"`
	IID            *int64        `json:"iid"`
	Title          *string       `json:"title"`
	WebURL         *string       `json:"web_url"`
	State          string        `json:"state"`
	SourceBranch   string        `json:"source_branch"`
	TargetBranch   string        `json:"target_branch"`
	Author         *gitlabAuthor `json:"author"`
	WorkInProgress bool          `json:"work_in_progress"`
	Draft          bool          `json:"draft"`
}

type gitlabAuthor struct {
	Name     string `json:"name"`
	Username string `json:"username"`
}

// toDomain validates required fields and converts to the domain model.
func (g gitlabMergeRequest) toDomain() (domain.MergeRequest, error) {
	switch {
	case g.ID == nil:
		return domain.MergeRequest{}, fmt.Errorf("missing field id")
	case g.IID == nil:
		return domain.MergeRequest{}, fmt.Errorf("missing field iid")
	case g.Title == nil:
		return domain.MergeRequest{}, fmt.Errorf("missing field title")
	case g.WebURL == nil:
		return domain.MergeRequest{}, fmt.Errorf("missing field web_url")
	}

	mr := domain.MergeRequest{
		ID:             *g.ID,
		IID:            *g.IID,
		Title:          *g.Title,
		WebURL:         *g.WebURL,
		State:          g.State,
		SourceBranch:   g.SourceBranch,
		TargetBranch:   g.TargetBranch,
		WorkInProgress: g.WorkInProgress || g.Draft,
	}
	if g.Author != nil {
		mr.AuthorName = g.Author.Name
	}
	return mr, nil
}
