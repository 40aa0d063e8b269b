// Package cueschema validates JSON manifests against CUE schemas. The
// schemas cover structural shape only; field-level rules with their own
// rule ids stay in the lint package.
package cueschema

import (
	"strings"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	cueerrors "cuelang.org/go/cue/errors"
	cuejson "cuelang.org/go/encoding/json"
)

// Issue is one schema violation, with the dotted path of the offending
// field when CUE can attribute one.
type Issue struct {
	Path    string
	Message string
}

const pluginSchemaSrc = `
#Author: {
	name?:  string
	email?: string
	url?:   string
}

#Plugin: {
	name:         string
	description?: string
	version?:     string
	author?:      #Author
	homepage?:    string
	repository?:  string
	license?:     string
	keywords?: [...string]
	...
}
`

const mcpManifestSchemaSrc = `
#Server: {
	command?:   string
	args?: [...string]
	env?: {[string]: string}
	transport?: string
	url?:       string
	headers?: {[string]: string}
	...
}

#Manifest: {
	mcpServers?: {[string]: #Server}
	...
}
`

var (
	compileOnce    sync.Once
	pluginSchema   cue.Value
	manifestSchema cue.Value
	cueCtx         *cue.Context
)

func compile() {
	cueCtx = cuecontext.New()
	pluginSchema = cueCtx.CompileString(pluginSchemaSrc).LookupPath(cue.ParsePath("#Plugin"))
	manifestSchema = cueCtx.CompileString(mcpManifestSchemaSrc).LookupPath(cue.ParsePath("#Manifest"))
}

// ValidatePlugin checks a plugin.json document against the plugin schema.
func ValidatePlugin(data []byte) []Issue {
	compileOnce.Do(compile)
	return validateAgainst(pluginSchema, "plugin.json", data)
}

// ValidateMCPManifest checks an MCP manifest against the manifest schema.
func ValidateMCPManifest(data []byte) []Issue {
	compileOnce.Do(compile)
	return validateAgainst(manifestSchema, "mcp.json", data)
}

func validateAgainst(schema cue.Value, filename string, data []byte) []Issue {
	expr, err := cuejson.Extract(filename, data)
	if err != nil {
		return []Issue{{Message: err.Error()}}
	}
	doc := cueCtx.BuildExpr(expr)
	if err := doc.Err(); err != nil {
		return toIssues(err)
	}
	unified := schema.Unify(doc)
	if err := unified.Validate(cue.Concrete(true)); err != nil {
		return toIssues(err)
	}
	return nil
}

func toIssues(err error) []Issue {
	var out []Issue
	for _, e := range cueerrors.Errors(err) {
		out = append(out, Issue{
			Path:    strings.Join(e.Path(), "."),
			Message: e.Error(),
		})
	}
	return out
}
