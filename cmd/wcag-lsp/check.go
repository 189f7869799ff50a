package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"wcaglsp/internal/config"
	"wcaglsp/internal/diagfmt"
	"wcaglsp/internal/driver"
)

var (
	checkFormat   string
	checkConfig   string
	checkJobs     int
	checkNoCache  bool
	checkDocsURLs bool
)

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "pretty", "output format (pretty|json)")
	checkCmd.Flags().StringVar(&checkConfig, "config", "", "path to a .wcag-lsp.toml file (default: search the current directory)")
	checkCmd.Flags().IntVar(&checkJobs, "jobs", 0, "parallel workers (0 = number of CPUs)")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "disable the on-disk result cache")
	checkCmd.Flags().BoolVar(&checkDocsURLs, "docs-urls", false, "include WCAG reference links in JSON output")
}

var checkCmd = &cobra.Command{
	Use:          "check [paths...]",
	Short:        "Check files or directories for accessibility violations",
	Long:         "Analyzes HTML and JSX/TSX files against the WCAG rule set and reports violations. Exits with status 1 when error-severity violations are found.",
	SilenceUsage: true,
	Args:         cobra.MinimumNArgs(0),
	RunE:         runCheck,
}

func runCheck(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		args = []string{"."}
	}

	var cfg config.Snapshot
	if checkConfig != "" {
		cfg = config.LoadFile(checkConfig)
	} else {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		cfg = config.LoadWorkspace(wd)
	}

	maxDiagnostics, _ := cmd.Flags().GetInt("max-diagnostics")
	timings, _ := cmd.Flags().GetBool("timings")
	quiet, _ := cmd.Flags().GetBool("quiet")

	results, err := driver.CheckPaths(cmd.Context(), args, driver.Options{
		Config:         cfg,
		MaxDiagnostics: maxDiagnostics,
		Jobs:           checkJobs,
		NoCache:        checkNoCache,
		Timings:        timings,
	})
	if err != nil {
		return err
	}

	baseDir, _ := os.Getwd()
	switch checkFormat {
	case "json":
		if err := diagfmt.JSON(cmd.OutOrStdout(), results, diagfmt.JSONOpts{
			BaseDir:         baseDir,
			IncludeTimings:  timings,
			IncludeDocsURLs: checkDocsURLs,
		}); err != nil {
			return err
		}
	case "pretty":
		diagfmt.Pretty(cmd.OutOrStdout(), results, diagfmt.PrettyOpts{
			Color:       colorEnabled(cmd, os.Stdout),
			BaseDir:     baseDir,
			ShowTimings: timings,
			Quiet:       quiet,
		})
	default:
		return fmt.Errorf("unsupported format %q (must be pretty or json)", checkFormat)
	}

	if driver.Summarize(results).HasErrors() {
		// Diagnostics already printed; signal failure through the exit code.
		cmd.SilenceErrors = true
		return errViolationsFound
	}
	return nil
}

var errViolationsFound = errors.New("accessibility violations found")
