package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"wcaglsp/internal/config"
	"wcaglsp/internal/diag"
	"wcaglsp/internal/rules"
)

// Current schema version - increment when DiskPayload format changes.
const diskCacheSchemaVersion uint16 = 1

// Digest identifies a file's analysis inputs: its content plus the
// configuration fingerprint. Two files with equal digests produce equal
// diagnostics.
type Digest [sha256.Size]byte

// DiskCache stores per-file diagnostic results keyed by digest.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedSpan mirrors diag.Span for serialization.
type CachedSpan struct {
	StartLine int
	StartCol  int
	EndLine   int
	EndCol    int
	StartByte int
	EndByte   int
}

// CachedDiagnostic mirrors diag.Diagnostic for serialization.
type CachedDiagnostic struct {
	RuleID   string
	Span     CachedSpan
	Message  string
	Severity uint8
	DocsURL  string
}

// DiskPayload stores one file's cached diagnostics.
type DiskPayload struct {
	// Schema version for safe invalidation when the format changes.
	Schema      uint16
	Diagnostics []CachedDiagnostic
}

// OpenDiskCache initializes and returns a disk cache at the standard location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	hexKey := hex.EncodeToString(key[:])
	// Subdirectory keeps results easy to inspect and wipe.
	return filepath.Join(c.dir, "results", hexKey+".mp")
}

// Put serializes and writes a payload to the disk cache.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if err := os.Remove(f.Name()); err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "failed to remove temp file: %v\n", err)
		}
	}()

	enc := msgpack.NewEncoder(f)
	if err := enc.Encode(payload); err != nil {
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Atomic replace.
	return os.Rename(f.Name(), p)
}

// Get reads and deserializes a payload from the disk cache. A payload
// written under an older schema reads as a miss.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()
	dec := msgpack.NewDecoder(f)
	if err := dec.Decode(out); err != nil {
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll invalidates the cache, useful after format changes.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return os.RemoveAll(old)
}

// ConfigFingerprint hashes everything about the configuration and rule
// set that can change a file's diagnostics. It feeds the cache key, so
// a config edit or a rule change invalidates every cached result.
func ConfigFingerprint(snap config.Snapshot) Digest {
	h := sha256.New()
	for _, level := range []diag.Level{diag.LevelA, diag.LevelAA, diag.LevelAAA} {
		fmt.Fprintf(h, "level:%s=%s\n", level, snap.LevelSeverity[level])
	}
	ids := make([]string, 0, len(snap.Overrides))
	for id := range snap.Overrides {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		o := snap.Overrides[id]
		fmt.Fprintf(h, "rule:%s=off:%t,sev:%s\n", id, o.Off, o.Severity)
	}
	for _, pattern := range snap.IgnorePatterns {
		fmt.Fprintf(h, "ignore:%s\n", pattern)
	}
	for _, r := range rules.All() {
		fmt.Fprintf(h, "registered:%s=%s,%s\n", r.ID, r.Level, r.DefaultSeverity)
	}
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// FileDigest derives the cache key of one file from its content and the
// configuration fingerprint.
func FileDigest(content []byte, cfg Digest) Digest {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	h.Write(schema[:])
	h.Write(cfg[:])
	h.Write(content)
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func toCached(in []diag.Diagnostic) []CachedDiagnostic {
	out := make([]CachedDiagnostic, len(in))
	for i, d := range in {
		out[i] = CachedDiagnostic{
			RuleID: d.RuleID,
			Span: CachedSpan{
				StartLine: d.Span.Start.Line,
				StartCol:  d.Span.Start.Col,
				EndLine:   d.Span.End.Line,
				EndCol:    d.Span.End.Col,
				StartByte: d.Span.StartByte,
				EndByte:   d.Span.EndByte,
			},
			Message:  d.Message,
			Severity: uint8(d.Severity),
			DocsURL:  d.DocsURL,
		}
	}
	return out
}

func fromCached(in []CachedDiagnostic) []diag.Diagnostic {
	out := make([]diag.Diagnostic, len(in))
	for i, c := range in {
		out[i] = diag.Diagnostic{
			RuleID: c.RuleID,
			Span: diag.Span{
				Start:     diag.Pos{Line: c.Span.StartLine, Col: c.Span.StartCol},
				End:       diag.Pos{Line: c.Span.EndLine, Col: c.Span.EndCol},
				StartByte: c.Span.StartByte,
				EndByte:   c.Span.EndByte,
			},
			Message:  c.Message,
			Severity: diag.Severity(c.Severity),
			DocsURL:  c.DocsURL,
		}
	}
	return out
}
