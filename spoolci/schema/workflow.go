package schema

type Workflow struct {
	Name string         `yaml:"name"`
	On   Triggers       `yaml:"on"`
	Jobs map[string]Job `yaml:"jobs"`
}

type Triggers struct {
	Push        *PushTrigger        `yaml:"push,omitempty"`
	PullRequest *PullRequestTrigger `yaml:"pull_request,omitempty"`
}

type PushTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
	Tags     []string `yaml:"tags,omitempty"`
}

type PullRequestTrigger struct {
	Branches []string `yaml:"branches,omitempty"`
}
