package steps

import (
	"context"
	"fmt"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/vikavorkin/Spoolman/spoolci/types"
)

// CheckoutStep clones the triggering repository into the workspace at
// the ref the event points at.
type CheckoutStep struct {
	Repository string
	Ref        string
	Path       string
}

func NewCheckoutStep(with map[string]string) Step {
	return &CheckoutStep{
		Repository: with["repository"],
		Ref:        with["ref"],
		Path:       with["path"],
	}
}

func (a *CheckoutStep) Execute(ctx context.Context, runtime *types.Runtime) error {
	repoURL := a.Repository
	if repoURL == "" {
		repoURL = runtime.Event.Repository
	}
	if repoURL == "" {
		return fmt.Errorf("no repository to check out: event carries none and the step names none")
	}

	ref := a.Ref
	if ref == "" {
		ref = runtime.Event.Ref
	}

	dest := runtime.Workspace.Path(a.Path)

	opts := &git.CloneOptions{
		URL: repoURL,
	}
	if ref != "" {
		opts.ReferenceName = plumbing.ReferenceName(ref)
		opts.SingleBranch = true
	}

	repo, err := git.PlainCloneContext(ctx, dest, false, opts)
	if err != nil {
		return fmt.Errorf("failed to clone %s at %s: %w", repoURL, ref, err)
	}

	// Pin to the exact commit when the event names one
	if runtime.Event.Commit != "" && a.Ref == "" {
		wt, err := repo.Worktree()
		if err != nil {
			return fmt.Errorf("failed to open worktree: %w", err)
		}
		err = wt.Checkout(&git.CheckoutOptions{
			Hash: plumbing.NewHash(runtime.Event.Commit),
		})
		if err != nil {
			return fmt.Errorf("failed to check out commit %s: %w", runtime.Event.Commit, err)
		}
	}

	return nil
}

func (a *CheckoutStep) DryRun(ctx context.Context, runtime *types.Runtime) string {
	repoURL := a.Repository
	if repoURL == "" {
		repoURL = runtime.Event.Repository
	}
	ref := a.Ref
	if ref == "" {
		ref = runtime.Event.Ref
	}
	return fmt.Sprintf("checkout: %s at %s", repoURL, ref)
}
