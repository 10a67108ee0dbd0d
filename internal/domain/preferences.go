package domain

// Preferences are the user settings consulted during a run.
// They are loaded once, before reconciliation starts.
type Preferences struct {
	DisplaySourceAndTargetBranches bool   `json:"display_source_and_target_branches" yaml:"display_source_and_target_branches"`
	DisplayActionButtons           bool   `json:"display_action_buttons" yaml:"display_action_buttons"`
	BaseJiraURL                    string `json:"base_jira_url" yaml:"base_jira_url"`
	CopyMRInfoFormat               string `json:"copy_mr_info_format" yaml:"copy_mr_info_format"`
}

// DefaultCopyMRInfoFormat is used when no copy format is configured.
const DefaultCopyMRInfoFormat = "{MR_TITLE} - {MR_URL}"

// DefaultPreferences returns the settings used when nothing is stored.
func DefaultPreferences() Preferences {
	return Preferences{
		DisplaySourceAndTargetBranches: true,
		DisplayActionButtons:           true,
		CopyMRInfoFormat:               DefaultCopyMRInfoFormat,
	}
}
