package lint

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/frontend"
)

// maxImportDepth caps the @import chain; Claude Code stops following
// imports past five hops.
const maxImportDepth = 5

// ImportsValidator resolves @import references and local markdown links.
// CC-MEM-001/REF-001 flag missing targets, CC-MEM-002 cycles, CC-MEM-003
// chains deeper than the hop limit, REF-002 broken links and images.
type ImportsValidator struct{}

func (v *ImportsValidator) Name() string { return "imports" }

func (v *ImportsValidator) Rules() []string {
	return []string{"CC-MEM-001", "CC-MEM-002", "CC-MEM-003", "REF-001", "REF-002"}
}

func (v *ImportsValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var diags []diag.Diagnostic

	walk := &importWalk{
		ctx:     ctx,
		imports: map[string][]frontend.Import{},
		depths:  map[string]int{},
	}
	root := cleanAbs(ctx.AbsPath)
	walk.imports[root] = frontend.Imports(ctx.Content)
	walk.visit(root, ctx.Path, &diags)

	diags = append(diags, checkMarkdownLinks(ctx)...)
	return diags
}

// importWalk carries the traversal state for one root file. Files are
// revisited only when reached at a shallower depth, so a diamond of
// imports does not double-report.
type importWalk struct {
	ctx     *FileContext
	imports map[string][]frontend.Import
	depths  map[string]int
	stack   []string
}

func (w *importWalk) visit(absPath, reportPath string, diags *[]diag.Diagnostic) {
	depth := len(w.stack)
	if prev, seen := w.depths[absPath]; seen && prev >= depth {
		return
	}
	w.depths[absPath] = depth

	checkMem001 := w.ctx.Enabled("CC-MEM-001")
	checkRef001 := w.ctx.Enabled("REF-001")
	checkCycle := w.ctx.Enabled("CC-MEM-002")
	checkDepth := w.ctx.Enabled("CC-MEM-003")
	if !checkMem001 && !checkRef001 && !checkCycle && !checkDepth {
		return
	}

	imports, ok := w.importsFor(absPath)
	if !ok {
		return
	}

	baseDir := filepath.Dir(absPath)
	w.stack = append(w.stack, absPath)
	defer func() { w.stack = w.stack[:len(w.stack)-1] }()

	for _, imp := range imports {
		resolved := cleanAbs(resolveImportPath(imp.Path, baseDir))

		if !w.ctx.Cfg.FS.Exists(resolved) {
			if checkRef001 {
				*diags = append(*diags, diag.New(reportPath, imp.Line, imp.Column, "REF-001", diag.Error,
					fmt.Sprintf("Import file not found: @%s", imp.Path)).
					WithSuggestion(fmt.Sprintf("Check that the file exists: %s", resolved)))
			}
			if checkMem001 {
				*diags = append(*diags, diag.New(reportPath, imp.Line, imp.Column, "CC-MEM-001", diag.Error,
					fmt.Sprintf("Import not found: @%s", imp.Path)).
					WithSuggestion(fmt.Sprintf("Check that the file exists: %s", resolved)))
			}
			continue
		}

		if checkCycle && containsString(w.stack, resolved) {
			*diags = append(*diags, diag.New(reportPath, imp.Line, imp.Column, "CC-MEM-002", diag.Error,
				fmt.Sprintf("Circular @import detected: %s", formatCycle(w.stack, resolved))).
				WithSuggestion("Remove or break the circular @import chain"))
			continue
		}

		if checkDepth && depth+1 > maxImportDepth {
			*diags = append(*diags, diag.New(reportPath, imp.Line, imp.Column, "CC-MEM-003", diag.Error,
				fmt.Sprintf("Import depth exceeds %d hops at @%s", maxImportDepth, imp.Path)).
				WithSuggestion("Flatten or shorten the @import chain"))
			continue
		}

		if checkCycle || checkDepth {
			w.visit(resolved, resolved, diags)
		}
	}
}

func (w *importWalk) importsFor(absPath string) ([]frontend.Import, bool) {
	if imports, ok := w.imports[absPath]; ok {
		return imports, true
	}
	raw, err := w.ctx.Cfg.FS.ReadFile(absPath)
	if err != nil {
		return nil, false
	}
	imports := frontend.Imports(string(raw))
	w.imports[absPath] = imports
	return imports, true
}

// checkMarkdownLinks verifies that local link and image targets exist.
func checkMarkdownLinks(ctx *FileContext) []diag.Diagnostic {
	if !ctx.Enabled("REF-002") {
		return nil
	}

	var diags []diag.Diagnostic
	baseDir := ctx.Dir()
	for _, link := range frontend.Links(ctx.Content) {
		if !isLocalFileLink(link.URL) {
			continue
		}
		target := stripFragment(link.URL)
		if target == "" {
			continue
		}
		resolved := cleanAbs(resolveImportPath(target, baseDir))
		if ctx.Cfg.FS.Exists(resolved) {
			continue
		}
		kind := "Link"
		if link.IsImage {
			kind = "Image"
		}
		diags = append(diags, diag.New(ctx.Path, link.Line, link.Column, "REF-002", diag.Error,
			fmt.Sprintf("%s target not found: %s", kind, link.URL)).
			WithSuggestion(fmt.Sprintf("Check that the file exists: %s", resolved)))
	}
	return diags
}

// isLocalFileLink filters out external URLs and anchor-only links.
func isLocalFileLink(url string) bool {
	if url == "" || strings.HasPrefix(url, "#") {
		return false
	}
	for _, prefix := range []string{"http://", "https://", "mailto:", "tel:", "data:", "ftp://", "//"} {
		if strings.HasPrefix(url, prefix) {
			return false
		}
	}
	return true
}

func stripFragment(url string) string {
	if idx := strings.Index(url, "#"); idx >= 0 {
		return url[:idx]
	}
	return url
}

func resolveImportPath(importPath, baseDir string) string {
	if strings.HasPrefix(importPath, "~/") || strings.HasPrefix(importPath, `~\`) {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, importPath[2:])
		}
	}
	if filepath.IsAbs(importPath) {
		return importPath
	}
	return filepath.Join(baseDir, importPath)
}

func cleanAbs(path string) string {
	return filepath.Clean(path)
}

func containsString(list []string, want string) bool {
	for _, s := range list {
		if s == want {
			return true
		}
	}
	return false
}

// formatCycle renders the chain from the first occurrence of target back
// around to target.
func formatCycle(stack []string, target string) string {
	var cycle []string
	inCycle := false
	for _, p := range stack {
		if p == target {
			inCycle = true
		}
		if inCycle {
			cycle = append(cycle, p)
		}
	}
	cycle = append(cycle, target)
	return strings.Join(cycle, " -> ")
}
