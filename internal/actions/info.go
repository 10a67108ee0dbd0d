package actions

import (
	"regexp"
	"strings"

	"github.com/vilaca/mr-enhancer/internal/domain"
)

// ticketPattern matches Jira-style keys such as PROJ-42.
var ticketPattern = regexp.MustCompile(`[A-Z]{1,10}-\d+`)

// wipMarker matches the work-in-progress prefixes GitLab understands.
var wipMarker = regexp.MustCompile(`(?i)^\s*(wip:|draft:|\[wip\]|\[draft\])\s*`)

// TicketID finds a ticket key in the source branch, then in the title.
func TicketID(state domain.AnnotatedState) string {
	if id := ticketPattern.FindString(state.SourceBranch); id != "" {
		return id
	}
	return ticketPattern.FindString(state.Title)
}

// TicketURL builds <base>/browse/<id>. Empty when either part is missing.
func TicketURL(baseURL, ticketID string) string {
	if baseURL == "" || ticketID == "" {
		return ""
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	return baseURL + "browse/" + ticketID
}

// FormatInfo substitutes the {NAME} placeholders of format.
// Unknown placeholders are left as written.
func FormatInfo(format string, state domain.AnnotatedState, baseJiraURL string) string {
	if format == "" {
		format = domain.DefaultCopyMRInfoFormat
	}
	ticket := TicketID(state)

	return strings.NewReplacer(
		"{MR_TITLE}", state.Title,
		"{MR_IID}", state.IID,
		"{MR_URL}", state.URL,
		"{MR_DIFFS_URL}", state.DiffsURL,
		"{MR_AUTHOR_NAME}", state.AuthorName,
		"{MR_STATUS}", state.Status,
		"{MR_SOURCE_BRANCH_NAME}", state.SourceBranch,
		"{MR_TARGET_BRANCH_NAME}", state.TargetBranch,
		"{MR_JIRA_TICKET_ID}", ticket,
		"{MR_JIRA_TICKET_URL}", TicketURL(baseJiraURL, ticket),
	).Replace(format)
}

// ToggledTitle strips the WIP marker from a WIP title or prepends it otherwise.
func ToggledTitle(title string, wip bool) string {
	if wip {
		return wipMarker.ReplaceAllString(title, "")
	}
	return domain.WIPPrefix + title
}
