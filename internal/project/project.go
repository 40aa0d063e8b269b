// Package project implements the lint driver: walking a target tree,
// resolving file kinds, fanning per-file validation out across a worker
// pool, and folding the findings into one deterministic report.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	gitignore "github.com/sabhiram/go-gitignore"
	"github.com/sourcegraph/conc/pool"
	"github.com/spf13/afero"

	"github.com/dotcommander/agentlint/internal/classify"
	"github.com/dotcommander/agentlint/internal/config"
	"github.com/dotcommander/agentlint/internal/crossfile"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/lint"
)

// ErrTooManyFiles aborts a walk that recognizes more files than
// max_files_to_validate allows.
type ErrTooManyFiles struct {
	Count int
	Limit int
}

func (e *ErrTooManyFiles) Error() string {
	return fmt.Sprintf("too many files to validate: %d exceeds the limit of %d", e.Count, e.Limit)
}

// Result is the outcome of a lint run.
type Result struct {
	Diagnostics  []diag.Diagnostic
	FilesChecked int
	Elapsed      time.Duration
}

// skipDirs are build artifact directories never worth descending into.
var skipDirs = map[string]bool{
	"node_modules": true,
	"target":       true,
	"dist":         true,
	"build":        true,
	"vendor":       true,
}

// keepHiddenDirs are the dot directories that hold lintable artifacts.
var keepHiddenDirs = map[string]bool{
	".claude": true,
	".github": true,
	".cursor": true,
	".codex":  true,
}

// Run lints a file or a directory tree, dispatching on the target type.
func Run(cfg *config.Config, reg *lint.Registry, target string) (*Result, error) {
	if cfg.FS.IsFile(target) {
		return runSingle(cfg, reg, target)
	}
	return runProject(cfg, reg, target)
}

func runSingle(cfg *config.Config, reg *lint.Registry, target string) (*Result, error) {
	start := time.Now()
	root := filepath.Dir(target)
	rel := filepath.Base(target)

	diags, checked := validateOne(cfg, reg, root, rel)
	diag.Sort(diags)
	return &Result{Diagnostics: diags, FilesChecked: checked, Elapsed: time.Since(start)}, nil
}

func runProject(cfg *config.Config, reg *lint.Registry, root string) (*Result, error) {
	start := time.Now()

	candidates, err := collectFiles(cfg, root)
	if err != nil {
		return nil, err
	}

	jobs := cfg.Jobs
	if jobs <= 0 {
		jobs = runtime.NumCPU()
	}

	type fileOutcome struct {
		diags   []diag.Diagnostic
		checked int
	}

	p := pool.NewWithResults[fileOutcome]().WithMaxGoroutines(jobs)
	for _, rel := range candidates {
		rel := rel
		p.Go(func() fileOutcome {
			diags, checked := validateOne(cfg, reg, root, rel)
			return fileOutcome{diags, checked}
		})
	}

	var diags []diag.Diagnostic
	checked := 0
	for _, out := range p.Wait() {
		diags = append(diags, out.diags...)
		checked += out.checked
	}

	var agentsMd, instruction []string
	for _, rel := range candidates {
		if filepath.Base(rel) == "AGENTS.md" {
			agentsMd = append(agentsMd, rel)
		}
		if crossfile.IsInstructionFile(resolveKind(cfg, rel)) {
			instruction = append(instruction, rel)
		}
	}
	diags = append(diags, crossfile.Run(cfg, root, agentsMd, instruction)...)

	diag.Sort(diags)
	return &Result{Diagnostics: diags, FilesChecked: checked, Elapsed: time.Since(start)}, nil
}

// collectFiles walks the tree and returns repository-relative paths of every
// file that survives pruning. Enforces the max_files_to_validate ceiling
// counting only recognized kinds, matching files_checked.
func collectFiles(cfg *config.Config, root string) ([]string, error) {
	ignorer := loadGitignore(cfg, root)
	limit := cfg.MaxFilesToValidate

	var files []string
	recognized := 0
	err := afero.Walk(cfg.FS.Fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil
		}
		if path == root {
			return nil
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		name := filepath.Base(path)

		if info.IsDir() {
			if shouldPruneDir(name) {
				return filepath.SkipDir
			}
			if ignorer != nil && ignorer.MatchesPath(rel+"/") {
				return filepath.SkipDir
			}
			return nil
		}

		if ignorer != nil && ignorer.MatchesPath(rel) {
			return nil
		}
		if cfg.Excluded(rel) {
			return nil
		}

		files = append(files, rel)
		if resolveKind(cfg, rel) != classify.Unknown {
			recognized++
			if limit > 0 && recognized > limit {
				return &ErrTooManyFiles{Count: recognized, Limit: limit}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func shouldPruneDir(name string) bool {
	if skipDirs[name] {
		return true
	}
	return strings.HasPrefix(name, ".") && !keepHiddenDirs[name]
}

// loadGitignore compiles the root .gitignore when present. Nested ignore
// files are not consulted.
func loadGitignore(cfg *config.Config, root string) *gitignore.GitIgnore {
	raw, err := cfg.FS.ReadFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gitignore.CompileIgnoreLines(strings.Split(string(raw), "\n")...)
}

// resolveKind applies the [files] config overrides on top of built-in
// detection. Priority: exclude > include_as_memory > include_as_generic >
// classification by path.
func resolveKind(cfg *config.Config, rel string) classify.FileKind {
	if cfg.Excluded(rel) {
		return classify.Unknown
	}
	if config.MatchesAny(cfg.Files.IncludeAsMemory, rel) {
		return classify.InstructionMemory
	}
	if config.MatchesAny(cfg.Files.IncludeAsGeneric, rel) {
		return classify.GenericMarkdown
	}
	return classify.Classify(rel)
}

// validateOne lints a single file. Returns the findings plus 1 when the
// file's kind is recognized, 0 otherwise. Oversized files get one warning
// and are never parsed.
func validateOne(cfg *config.Config, reg *lint.Registry, root, rel string) ([]diag.Diagnostic, int) {
	kind := resolveKind(cfg, rel)
	if kind == classify.Unknown {
		return nil, 0
	}

	abs := filepath.Join(root, rel)
	if info, err := cfg.FS.Stat(abs); err == nil && cfg.MaxFileSize > 0 && info.Size() > cfg.MaxFileSize {
		return []diag.Diagnostic{
			diag.New(rel, 1, 0, "file::size", diag.Warning,
				fmt.Sprintf("File is %d bytes, larger than the %d byte limit; skipped", info.Size(), cfg.MaxFileSize)).
				WithSuggestion("Split the file or raise max_file_size in agentlint.toml"),
		}, 1
	}

	raw, err := cfg.FS.ReadFile(abs)
	if err != nil {
		return []diag.Diagnostic{
			diag.New(rel, 0, 0, "file::read", diag.Error,
				fmt.Sprintf("Failed to read file: %v", err)).
				WithSuggestion("Check file permissions and encoding"),
		}, 1
	}

	ctx := &lint.FileContext{
		Path:    rel,
		AbsPath: abs,
		Content: string(raw),
		Kind:    kind,
		Cfg:     cfg,
	}
	return reg.ValidateFile(ctx), 1
}
