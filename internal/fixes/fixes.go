// Package fixes applies the byte-exact edits attached to diagnostics.
// Fixes apply per file from the end of the content backward so earlier
// offsets stay valid, skipping anything invalid or overlapping.
package fixes

import (
	"fmt"
	"path/filepath"
	"sort"
	"unicode/utf8"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/fsys"
)

// Options controls fix application.
type Options struct {
	// DryRun computes results without writing.
	DryRun bool
	// Unsafe includes fixes not marked Safe.
	Unsafe bool
}

// Result is the outcome for one file that had applicable fixes.
type Result struct {
	Path     string
	Original string
	Fixed    string
	Applied  []string
}

// HasChanges reports whether any fix actually changed the content.
func (r Result) HasChanges() bool { return r.Original != r.Fixed }

// Apply groups fixes by file, filters by safety, applies them, and writes
// the results unless dry-running. Paths in diagnostics are taken relative
// to root. Results come back sorted by path; files whose content did not
// change are omitted.
func Apply(fs fsys.FS, root string, diags []diag.Diagnostic, opts Options) ([]Result, error) {
	byFile := make(map[string][]diag.Fix)
	for _, d := range diags {
		for _, f := range d.Fixes {
			if !f.Safe && !opts.Unsafe {
				continue
			}
			byFile[d.File] = append(byFile[d.File], f)
		}
	}

	var results []Result
	for rel, fixes := range byFile {
		abs := filepath.Join(root, rel)
		raw, err := fs.ReadFile(abs)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", rel, err)
		}
		original := string(raw)

		fixed, applied := applyToContent(original, fixes)
		if fixed == original {
			continue
		}
		if !opts.DryRun {
			if err := fs.WriteFile(abs, []byte(fixed), 0o644); err != nil {
				return nil, fmt.Errorf("writing %s: %w", rel, err)
			}
		}
		results = append(results, Result{Path: rel, Original: original, Fixed: fixed, Applied: applied})
	}

	sort.Slice(results, func(i, j int) bool { return results[i].Path < results[j].Path })
	return results, nil
}

// applyToContent applies fixes from the highest start byte down. A fix is
// skipped when its span is inverted, out of bounds, off a UTF-8 rune
// boundary, or overlaps one already applied. Applied descriptions come back
// in ascending position order.
func applyToContent(content string, fixes []diag.Fix) (string, []string) {
	ordered := append([]diag.Fix(nil), fixes...)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].StartByte > ordered[j].StartByte
	})

	result := content
	var applied []string
	lastStart := len(content) + 1

	for _, f := range ordered {
		if f.EndByte < f.StartByte {
			continue
		}
		if f.StartByte > len(result) || f.EndByte > len(result) {
			continue
		}
		if !isRuneBoundary(result, f.StartByte) || !isRuneBoundary(result, f.EndByte) {
			continue
		}
		if f.EndByte > lastStart {
			continue
		}

		result = result[:f.StartByte] + f.Replacement + result[f.EndByte:]
		applied = append(applied, f.Description)
		lastStart = f.StartByte
	}

	for i, j := 0, len(applied)-1; i < j; i, j = i+1, j-1 {
		applied[i], applied[j] = applied[j], applied[i]
	}
	return result, applied
}

func isRuneBoundary(s string, i int) bool {
	if i == 0 || i == len(s) {
		return true
	}
	if i < 0 || i > len(s) {
		return false
	}
	return utf8.RuneStart(s[i])
}
