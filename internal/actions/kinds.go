package actions

import (
	"fmt"

	"github.com/vilaca/mr-enhancer/internal/page"
)

// User-facing action kinds accepted by the CLI and the HTTP surface.
const (
	KindCopyInfo         = "copy-info"
	KindCopySourceBranch = "copy-source-branch"
	KindCopyTargetBranch = "copy-target-branch"
	KindToggleWIP        = "toggle-wip"
)

// Kinds lists every accepted kind.
var Kinds = []string{KindCopyInfo, KindCopySourceBranch, KindCopyTargetBranch, KindToggleWIP}

// ParseKind maps a kind to the trigger action and branch it clicks.
func ParseKind(kind string) (action, branch string, err error) {
	switch kind {
	case KindCopyInfo:
		return page.ActionCopyInfo, "", nil
	case KindCopySourceBranch:
		return page.ActionCopyBranch, page.BranchSource, nil
	case KindCopyTargetBranch:
		return page.ActionCopyBranch, page.BranchTarget, nil
	case KindToggleWIP:
		return page.ActionToggleWIP, "", nil
	default:
		return "", "", fmt.Errorf("unknown action kind %q (expected one of %v)", kind, Kinds)
	}
}
