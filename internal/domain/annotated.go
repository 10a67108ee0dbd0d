package domain

// AnnotatedState is the set of fields written onto a matched list item.
// Once written, action handlers read these fields and never the
// MergeRequest they were derived from.
type AnnotatedState struct {
	Title          string
	IID            string
	URL            string
	DiffsURL       string
	AuthorName     string
	Status         string
	SourceBranch   string
	TargetBranch   string
	WorkInProgress bool
}

// NewAnnotatedState derives the annotation fields from a fetched merge request.
func NewAnnotatedState(mr MergeRequest) AnnotatedState {
	return AnnotatedState{
		Title:          mr.Title,
		IID:            mr.MatchKey(),
		URL:            mr.WebURL,
		DiffsURL:       mr.DiffsURL(),
		AuthorName:     mr.AuthorName,
		Status:         mr.State,
		SourceBranch:   mr.SourceBranch,
		TargetBranch:   mr.TargetBranch,
		WorkInProgress: mr.WorkInProgress,
	}
}
