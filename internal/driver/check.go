// Package driver runs batch accessibility analysis outside the language
// server: it expands paths, parses each file once, runs the rule engine
// and caches per-file results on disk.
package driver

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strconv"

	"golang.org/x/sync/errgroup"

	"wcaglsp/internal/config"
	"wcaglsp/internal/diag"
	"wcaglsp/internal/dialect"
	"wcaglsp/internal/engine"
	"wcaglsp/internal/observ"
	"wcaglsp/internal/syntax"
)

// Options configures a batch check run.
type Options struct {
	Config         config.Snapshot
	MaxDiagnostics int // per-file cap, 0 means no cap
	Jobs           int // parallel workers, 0 means GOMAXPROCS
	NoCache        bool
	Timings        bool
}

// FileResult is the outcome of analyzing one file.
type FileResult struct {
	Path        string
	Skipped     bool // matched an ignore pattern
	FromCache   bool
	Diagnostics []diag.Diagnostic
	Failures    []engine.RuleFailure
	Timing      *observ.Report
	Err         error // read or parse failure; diagnostics are empty
}

// Summary aggregates a run over all files.
type Summary struct {
	Files    int
	Skipped  int
	Errors   int
	Warnings int
	Failures int
}

// HasErrors reports whether any error-severity diagnostic was produced.
func (s Summary) HasErrors() bool { return s.Errors > 0 }

// Summarize tallies results for exit-code and footer reporting.
func Summarize(results []FileResult) Summary {
	var sum Summary
	for _, r := range results {
		sum.Files++
		if r.Skipped {
			sum.Skipped++
			continue
		}
		sum.Failures += len(r.Failures)
		for _, d := range r.Diagnostics {
			switch d.Severity {
			case diag.SevError:
				sum.Errors++
			default:
				sum.Warnings++
			}
		}
	}
	return sum
}

// ListFiles expands the given paths into a sorted, deduplicated list of
// analyzable files. Directories are walked recursively; files with
// unsupported extensions are kept only when named explicitly.
func ListFiles(paths []string) ([]string, error) {
	seen := make(map[string]bool)
	var files []string
	add := func(path string) {
		if abs, err := filepath.Abs(path); err == nil {
			path = abs
		}
		if !seen[path] {
			seen[path] = true
			files = append(files, path)
		}
	}
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(path)
			continue
		}
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && dialect.FromPath(p).Supported() {
				add(p)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	sort.Strings(files)
	return files, nil
}

// CheckPaths analyzes every file under the given paths in parallel and
// returns per-file results in path order.
func CheckPaths(ctx context.Context, paths []string, opts Options) ([]FileResult, error) {
	files, err := ListFiles(paths)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, nil
	}

	var cache *DiskCache
	if !opts.NoCache {
		// A broken cache dir degrades to cacheless operation.
		if c, err := OpenDiskCache("wcag-lsp"); err == nil {
			cache = c
		}
	}
	cfgHash := ConfigFingerprint(opts.Config)

	jobs := opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	results := make([]FileResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(min(jobs, len(files)))
	for i, path := range files {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			results[i] = checkFile(path, cache, cfgHash, opts)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func checkFile(path string, cache *DiskCache, cfgHash Digest, opts Options) FileResult {
	result := FileResult{Path: path}
	timer := observ.NewTimer()

	if opts.Config.Ignored(path) {
		result.Skipped = true
		return result
	}

	endRead := timer.Start("read")
	content, err := os.ReadFile(path)
	endRead("")
	if err != nil {
		result.Err = err
		return result
	}

	key := FileDigest(content, cfgHash)
	if cache != nil {
		var payload DiskPayload
		if ok, err := cache.Get(key, &payload); err == nil && ok {
			result.FromCache = true
			result.Diagnostics = fromCached(payload.Diagnostics)
			if opts.Timings {
				report := timer.Report()
				result.Timing = &report
			}
			return result
		}
	}

	d := dialect.FromPath(path)
	pool := syntax.NewPool()
	defer pool.Close()

	endParse := timer.Start("parse")
	tree, err := pool.Parse(d, content, nil)
	endParse(d.String())
	if err != nil {
		result.Err = fmt.Errorf("parse %s: %w", path, err)
		return result
	}
	defer tree.Close()

	endAnalyze := timer.Start("analyze")
	run := engine.Run(tree.RootNode(), content, d, engine.Enabled(opts.Config))
	diagnostics := engine.Resolve(run.Findings, opts.Config)
	endAnalyze(strconv.Itoa(len(diagnostics)) + " findings")

	if opts.MaxDiagnostics > 0 && len(diagnostics) > opts.MaxDiagnostics {
		diagnostics = diagnostics[:opts.MaxDiagnostics]
	}
	result.Diagnostics = diagnostics
	result.Failures = run.Failures

	if cache != nil && len(run.Failures) == 0 {
		payload := DiskPayload{
			Schema:      diskCacheSchemaVersion,
			Diagnostics: toCached(diagnostics),
		}
		if err := cache.Put(key, &payload); err != nil {
			fmt.Fprintf(os.Stderr, "cache write failed: %v\n", err)
		}
	}
	if opts.Timings {
		report := timer.Report()
		result.Timing = &report
	}
	return result
}
