package steps

import (
	"io"
	"testing"

	"github.com/vikavorkin/Spoolman/spoolci/artifacts"
	"github.com/vikavorkin/Spoolman/spoolci/shell"
	"github.com/vikavorkin/Spoolman/spoolci/trigger"
	"github.com/vikavorkin/Spoolman/spoolci/types"
	"github.com/vikavorkin/Spoolman/spoolci/workspace"
)

func testRuntime(t *testing.T, event trigger.Event) *types.Runtime {
	t.Helper()

	ws, err := workspace.New("test-run")
	if err != nil {
		t.Fatalf("Failed to create workspace: %v", err)
	}
	t.Cleanup(func() { ws.Destroy() })

	store := artifacts.NewStoreAt(t.TempDir())

	return types.NewRuntime("test-run", shell.NewRunner(), store, ws, "build-client", "build", event, nil, io.Discard, io.Discard)
}

func pushEvent() trigger.Event {
	return trigger.Event{Kind: trigger.EventPush, Ref: "refs/heads/master"}
}
