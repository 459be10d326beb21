package trigger

type EventKind string

const (
	EventPush        EventKind = "push"
	EventPullRequest EventKind = "pull_request"
)

// Event is what the external platform delivers to the runner: the
// kind of repository event and the refs it concerns. Trigger state
// itself stays with the platform; the runner only ever sees events.
type Event struct {
	Kind       EventKind
	Ref        string // full ref, e.g. refs/heads/master or refs/tags/v1.2.0
	BaseRef    string // pull_request target branch ref
	Repository string // URL or local path of the repository to build
	Commit     string // optional commit hash the ref points at
}

func (e Event) IsTag() bool {
	return hasRefPrefix(e.Ref, refTagPrefix)
}

func (e Event) IsBranch() bool {
	return hasRefPrefix(e.Ref, refBranchPrefix)
}

// ShortRef strips the refs/heads/ or refs/tags/ prefix for display.
func (e Event) ShortRef() string {
	if e.IsBranch() {
		return e.Ref[len(refBranchPrefix):]
	}
	if e.IsTag() {
		return e.Ref[len(refTagPrefix):]
	}
	return e.Ref
}
