package trigger

import (
	"testing"

	"github.com/vikavorkin/Spoolman/spoolci/schema"
)

func clientTriggers() schema.Triggers {
	return schema.Triggers{
		Push: &schema.PushTrigger{
			Branches: []string{"master"},
			Tags:     []string{"v*"},
		},
		PullRequest: &schema.PullRequestTrigger{
			Branches: []string{"master"},
		},
	}
}

func TestMatches(t *testing.T) {
	tests := []struct {
		name     string
		on       schema.Triggers
		event    Event
		expected bool
	}{
		{
			name:     "push to configured branch",
			on:       clientTriggers(),
			event:    Event{Kind: EventPush, Ref: "refs/heads/master"},
			expected: true,
		},
		{
			name:     "push to other branch",
			on:       clientTriggers(),
			event:    Event{Kind: EventPush, Ref: "refs/heads/develop"},
			expected: false,
		},
		{
			name:     "push of matching tag",
			on:       clientTriggers(),
			event:    Event{Kind: EventPush, Ref: "refs/tags/v1.2.0"},
			expected: true,
		},
		{
			name:     "push of non-matching tag",
			on:       clientTriggers(),
			event:    Event{Kind: EventPush, Ref: "refs/tags/release-1"},
			expected: false,
		},
		{
			name:     "pull request targeting configured branch",
			on:       clientTriggers(),
			event:    Event{Kind: EventPullRequest, BaseRef: "refs/heads/master"},
			expected: true,
		},
		{
			name:     "pull request targeting develop",
			on:       clientTriggers(),
			event:    Event{Kind: EventPullRequest, BaseRef: "refs/heads/develop"},
			expected: false,
		},
		{
			name:     "pull request with bare branch name as base",
			on:       clientTriggers(),
			event:    Event{Kind: EventPullRequest, BaseRef: "master"},
			expected: true,
		},
		{
			name:     "push when workflow has no push trigger",
			on:       schema.Triggers{PullRequest: &schema.PullRequestTrigger{Branches: []string{"master"}}},
			event:    Event{Kind: EventPush, Ref: "refs/heads/master"},
			expected: false,
		},
		{
			name:     "pull request when workflow has no pull_request trigger",
			on:       schema.Triggers{Push: &schema.PushTrigger{Branches: []string{"master"}}},
			event:    Event{Kind: EventPullRequest, BaseRef: "refs/heads/master"},
			expected: false,
		},
		{
			name:     "branch push does not match tag patterns",
			on:       schema.Triggers{Push: &schema.PushTrigger{Tags: []string{"v*"}}},
			event:    Event{Kind: EventPush, Ref: "refs/heads/v1-feature"},
			expected: false,
		},
		{
			name:     "unknown event kind",
			on:       clientTriggers(),
			event:    Event{Kind: "schedule", Ref: "refs/heads/master"},
			expected: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Matches(tt.on, tt.event)
			if result != tt.expected {
				t.Errorf("Expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestShortRef(t *testing.T) {
	tests := []struct {
		name     string
		event    Event
		expected string
	}{
		{
			name:     "branch ref",
			event:    Event{Ref: "refs/heads/master"},
			expected: "master",
		},
		{
			name:     "tag ref",
			event:    Event{Ref: "refs/tags/v1.0.0"},
			expected: "v1.0.0",
		},
		{
			name:     "bare ref",
			event:    Event{Ref: "master"},
			expected: "master",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.ShortRef(); got != tt.expected {
				t.Errorf("Expected %q, got %q", tt.expected, got)
			}
		})
	}
}
