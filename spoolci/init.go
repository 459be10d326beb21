package spoolci

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/wzshiming/ctc"
)

type templateFile struct {
	filename string
	content  string
}

func (s *SpoolCI) buildInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Initialize a workflow directory with the Spoolman client build pipeline",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return s.runInit()
		},
	}
}

func (s *SpoolCI) runInit() error {
	files := []templateFile{
		{filename: ".spoolci/build-client.yaml", content: buildClientTemplate},
	}

	// Compute max filename length for aligned output
	maxLen := 0
	for _, f := range files {
		if len(f.filename) > maxLen {
			maxLen = len(f.filename)
		}
	}

	for _, f := range files {
		padding := strings.Repeat(" ", maxLen-len(f.filename))

		if _, err := os.Stat(f.filename); err == nil {
			fmt.Fprintf(s.stdout, "  %s%s   ..%sskipped%s\n", f.filename, padding, ctc.ForegroundYellow, ctc.Reset)
			continue
		}

		if dir := filepath.Dir(f.filename); dir != "." {
			if err := os.MkdirAll(dir, 0755); err != nil {
				fmt.Fprintf(s.stdout, "  %s%s   ..%sfailed%s (%s)\n", f.filename, padding, ctc.ForegroundRed, ctc.Reset, err)
				continue
			}
		}

		if err := os.WriteFile(f.filename, []byte(f.content), 0644); err != nil {
			fmt.Fprintf(s.stdout, "  %s%s   ..%sfailed%s (%s)\n", f.filename, padding, ctc.ForegroundRed, ctc.Reset, err)
			continue
		}

		fmt.Fprintf(s.stdout, "  %s%s   ..%screated%s\n", f.filename, padding, ctc.ForegroundGreen, ctc.Reset)
	}

	return nil
}

var buildClientTemplate = `name: build-client

on:
  push:
    branches: [master]
    tags: ["v*"]
  pull_request:
    branches: [master]

jobs:
  build:
    steps:
      - name: Checkout
        uses: checkout

      - name: Setup Node
        uses: setup-node
        with:
          node-version: "16"

      - name: Install dependencies
        run: npm ci
        working-directory: client

      - name: Write production env
        uses: write-file
        with:
          path: client/.env.production
          content: VITE_APIURL=/api/v1

      - name: Build
        run: npm run build
        working-directory: client

      - name: Package client
        uses: archive
        with:
          path: client/dist
          dest: client/dist/spoolman-client.zip

      - name: Upload artifact
        uses: upload-artifact
        with:
          name: spoolman-client.zip
          path: client/dist/spoolman-client.zip
`
