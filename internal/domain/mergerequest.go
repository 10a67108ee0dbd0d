package domain

import "strconv"

// MergeRequest is a merge request fetched from the GitLab API.
// It is immutable for the lifetime of a page view; a successful
// update returns a new value that supersedes it.
type MergeRequest struct {
	ID             int64  // global internal id
	IID            int64  // project-scoped sequence number shown as !IID
	Title          string
	WebURL         string
	AuthorName     string
	State          string // "opened", "closed", "merged", "locked"
	SourceBranch   string
	TargetBranch   string
	WorkInProgress bool
}

// MatchKey is the identity token a rendered list item must carry to match this record.
func (mr MergeRequest) MatchKey() string {
	return strconv.FormatInt(mr.IID, 10)
}

// DiffsURL is the changes tab of the merge request.
func (mr MergeRequest) DiffsURL() string {
	if mr.WebURL == "" {
		return ""
	}
	return mr.WebURL + "/diffs"
}
