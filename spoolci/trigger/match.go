package trigger

import (
	"path"
	"strings"

	"github.com/vikavorkin/Spoolman/spoolci/schema"
)

const (
	refBranchPrefix = "refs/heads/"
	refTagPrefix    = "refs/tags/"
)

func hasRefPrefix(ref, prefix string) bool {
	return strings.HasPrefix(ref, prefix)
}

// Matches reports whether an event satisfies a workflow's trigger
// filters. A workflow with no filter for the event's kind never runs.
func Matches(on schema.Triggers, event Event) bool {
	switch event.Kind {
	case EventPush:
		if on.Push == nil {
			return false
		}
		if event.IsBranch() {
			return matchAny(on.Push.Branches, event.Ref[len(refBranchPrefix):])
		}
		if event.IsTag() {
			return matchAny(on.Push.Tags, event.Ref[len(refTagPrefix):])
		}
		return false
	case EventPullRequest:
		if on.PullRequest == nil {
			return false
		}
		target := strings.TrimPrefix(event.BaseRef, refBranchPrefix)
		return matchAny(on.PullRequest.Branches, target)
	default:
		return false
	}
}

// matchAny checks a name against glob patterns (v*, release/*, ...).
// An empty pattern list matches nothing: push triggers must name the
// branches or tags they care about.
func matchAny(patterns []string, name string) bool {
	for _, pattern := range patterns {
		ok, err := path.Match(pattern, name)
		if err != nil {
			continue
		}
		if ok {
			return true
		}
	}
	return false
}
