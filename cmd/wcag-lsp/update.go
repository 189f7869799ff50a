package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"wcaglsp/internal/updater"
	"wcaglsp/internal/version"
)

var (
	updateRepo  string
	updateCheck bool
)

func init() {
	updateCmd.Flags().StringVar(&updateRepo, "repo", updater.DefaultRepo, "GitHub repository to fetch releases from")
	updateCmd.Flags().BoolVar(&updateCheck, "check", false, "only report whether a newer release exists")
}

var updateCmd = &cobra.Command{
	Use:          "update",
	Short:        "Update wcag-lsp to the latest release",
	SilenceUsage: true,
	RunE:         runUpdate,
}

func runUpdate(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	opts := updater.Options{Repo: updateRepo}

	if updateCheck {
		release, err := updater.Latest(cmd.Context(), opts)
		if err != nil {
			return err
		}
		if updater.IsNewer(version.Version, release.TagName) {
			fmt.Fprintf(out, "update available: %s (current %s)\n", release.TagName, version.Version)
		} else {
			fmt.Fprintf(out, "wcag-lsp %s is up to date\n", version.Version)
		}
		return nil
	}

	updated, latest, err := updater.SelfUpdate(cmd.Context(), version.Version, opts)
	if err != nil {
		if errors.Is(err, updater.ErrNoAsset) {
			return fmt.Errorf("release %s has no prebuilt binary for this platform", latest)
		}
		return err
	}
	if updated {
		fmt.Fprintf(out, "updated to %s\n", latest)
	} else {
		fmt.Fprintf(out, "wcag-lsp %s is up to date\n", version.Version)
	}
	return nil
}
