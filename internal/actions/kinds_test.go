package actions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vilaca/mr-enhancer/internal/page"
)

func TestParseKind(t *testing.T) {
	tests := []struct {
		kind   string
		action string
		branch string
	}{
		{KindCopyInfo, page.ActionCopyInfo, ""},
		{KindCopySourceBranch, page.ActionCopyBranch, page.BranchSource},
		{KindCopyTargetBranch, page.ActionCopyBranch, page.BranchTarget},
		{KindToggleWIP, page.ActionToggleWIP, ""},
	}

	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			action, branch, err := ParseKind(tt.kind)

			require.NoError(t, err)
			assert.Equal(t, tt.action, action)
			assert.Equal(t, tt.branch, branch)
		})
	}
}

func TestParseKind_Unknown(t *testing.T) {
	_, _, err := ParseKind("merge")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "merge")
}
