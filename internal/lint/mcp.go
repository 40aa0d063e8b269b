package lint

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/dotcommander/agentlint/internal/cueschema"
	"github.com/dotcommander/agentlint/internal/diag"
	"github.com/dotcommander/agentlint/internal/textutil"
)

var validMCPServerTypes = []string{"stdio", "http", "sse"}

// Capability keys defined by the MCP specification, client and server side.
var validMCPCapabilityKeys = []string{
	"experimental", "logging", "completions", "prompts", "resources",
	"tools", "roots", "sampling", "elicitation",
}

var validMCPAnnotationHints = []string{
	"readOnlyHint", "destructiveHint", "idempotentHint", "openWorldHint", "title",
}

const minMeaningfulDescription = 10

type mcpTool struct {
	Name         *string        `json:"name"`
	Title        *string        `json:"title"`
	Description  *string        `json:"description"`
	InputSchema  map[string]any `json:"inputSchema"`
	OutputSchema map[string]any `json:"outputSchema"`
	Annotations  map[string]any `json:"annotations"`

	RequiresApproval *bool   `json:"requiresApproval"`
	Confirmation     *string `json:"confirmation"`
}

func (t *mcpTool) hasName() bool {
	return t.Name != nil && strings.TrimSpace(*t.Name) != ""
}

func (t *mcpTool) hasDescription() bool {
	return t.Description != nil && strings.TrimSpace(*t.Description) != ""
}

func (t *mcpTool) hasMeaningfulDescription() bool {
	return t.Description != nil && len(strings.TrimSpace(*t.Description)) >= minMeaningfulDescription
}

// hasConsentFields reports whether the tool declares any user consent
// mechanism. requiresApproval must be true; an empty confirmation string
// does not count.
func (t *mcpTool) hasConsentFields() bool {
	if t.RequiresApproval != nil && *t.RequiresApproval {
		return true
	}
	return t.Confirmation != nil && strings.TrimSpace(*t.Confirmation) != ""
}

type mcpServer struct {
	Type    *string           `json:"type"`
	Command json.RawMessage   `json:"command"`
	Args    json.RawMessage   `json:"args"`
	URL     *string           `json:"url"`
	Env     map[string]string `json:"env"`
}

type mcpDocument struct {
	MCPServers map[string]mcpServer `json:"mcpServers"`
	Tools      []json.RawMessage    `json:"tools"`
	Resources  []json.RawMessage    `json:"resources"`
	Prompts    []json.RawMessage    `json:"prompts"`
}

// MCPValidator checks MCP configuration and manifest files: server entries
// in mcpServers, tool/resource/prompt definitions, protocol handshake
// versions, and transport security.
type MCPValidator struct{}

func (*MCPValidator) Name() string { return "mcp" }

func (*MCPValidator) Rules() []string {
	return []string{
		"MCP-001", "MCP-002", "MCP-003", "MCP-004", "MCP-005", "MCP-006",
		"MCP-007", "MCP-008", "MCP-009", "MCP-010", "MCP-011", "MCP-012",
		"MCP-013", "MCP-014", "MCP-015", "MCP-016", "MCP-017", "MCP-018",
		"MCP-019", "MCP-020", "MCP-021", "MCP-022", "MCP-023", "MCP-024",
		"MCP-025",
	}
}

func (v *MCPValidator) Validate(ctx *FileContext) []diag.Diagnostic {
	var out []diag.Diagnostic

	var raw map[string]json.RawMessage
	if err := json.Unmarshal([]byte(ctx.Content), &raw); err != nil {
		if ctx.Enabled("MCP-007") {
			out = append(out, diag.New(ctx.Path, 1, 0, "MCP-007", diag.Error,
				fmt.Sprintf("Invalid JSON in MCP configuration: %v", err)).
				WithSuggestion("Fix the JSON syntax"))
		}
		return out
	}

	if ctx.Enabled("MCP-001") {
		out = append(out, v.checkJSONRPCVersion(ctx, raw)...)
	}
	if ctx.Enabled("MCP-008") {
		out = append(out, v.checkProtocolVersion(ctx, raw)...)
	}

	if ctx.Enabled("MCP-025") {
		if _, ok := raw["mcpServers"]; ok {
			for _, issue := range cueschema.ValidateMCPManifest([]byte(ctx.Content)) {
				msg := issue.Message
				if issue.Path != "" {
					msg = fmt.Sprintf("%s: %s", issue.Path, issue.Message)
				}
				out = append(out, diag.New(ctx.Path, 1, 0, "MCP-025", diag.Error,
					fmt.Sprintf("MCP manifest schema violation: %s", msg)))
			}
		}
	}

	var doc mcpDocument
	json.Unmarshal([]byte(ctx.Content), &doc) // lenient; field checks handle bad shapes

	out = append(out, v.checkTools(ctx, raw, doc)...)
	out = append(out, v.checkResources(ctx, raw)...)
	out = append(out, v.checkPrompts(ctx, raw)...)
	out = append(out, v.checkCapabilities(ctx, raw)...)

	if ctx.Enabled("MCP-023") {
		for _, dup := range duplicateMCPServerNames(ctx.Content) {
			line, col := jsonFieldLocation(ctx.Content, dup)
			out = append(out, diag.New(ctx.Path, line, col, "MCP-023", diag.Error,
				fmt.Sprintf("Duplicate MCP server name '%s'", dup)).
				WithSuggestion("Rename duplicate mcpServers keys so each server name is unique"))
		}
	}

	for _, name := range sortedServerNames(doc.MCPServers) {
		out = append(out, v.checkServer(ctx, name, doc.MCPServers[name])...)
	}

	return out
}

func sortedServerNames(servers map[string]mcpServer) []string {
	names := make([]string, 0, len(servers))
	for name := range servers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (v *MCPValidator) checkJSONRPCVersion(ctx *FileContext, raw map[string]json.RawMessage) []diag.Diagnostic {
	rawVersion, ok := raw["jsonrpc"]
	if !ok {
		return nil
	}
	line, col := jsonFieldLocation(ctx.Content, "jsonrpc")

	var version string
	if err := json.Unmarshal(rawVersion, &version); err != nil {
		d := diag.New(ctx.Path, line, col, "MCP-001", diag.Error,
			"jsonrpc version must be the string \"2.0\"").
			WithSuggestion("Set \"jsonrpc\": \"2.0\"")
		if span, found := uniqueJSONKeyValueSpan(ctx.Content, "jsonrpc", string(rawVersion)); found {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: `"2.0"`,
				Description: `Set jsonrpc version to "2.0"`, Safe: true,
			})
		}
		return []diag.Diagnostic{d}
	}
	if version == "2.0" {
		return nil
	}
	d := diag.New(ctx.Path, line, col, "MCP-001", diag.Error,
		fmt.Sprintf("Invalid jsonrpc version '%s', MCP requires \"2.0\"", version)).
		WithSuggestion("Set \"jsonrpc\": \"2.0\"")
	if span, found := textutil.JSONStringValueSpan(ctx.Content, "jsonrpc", version); found {
		d = d.WithFix(diag.Fix{
			StartByte: span.Start, EndByte: span.End, Replacement: `"2.0"`,
			Description: `Set jsonrpc version to "2.0"`, Safe: true,
		})
	}
	return []diag.Diagnostic{d}
}

// checkProtocolVersion compares the handshake protocolVersion in initialize
// requests and responses against the configured MCP revision.
func (v *MCPValidator) checkProtocolVersion(ctx *FileContext, raw map[string]json.RawMessage) []diag.Diagnostic {
	expected := ctx.Cfg.EffectiveMCPProtocolVersion()
	pinned := ctx.Cfg.MCPPinnedRevision() != ""

	actual := ""
	if method, ok := jsonString(raw["method"]); ok && method == "initialize" {
		if params, ok := jsonObject(raw["params"]); ok {
			actual, _ = jsonString(params["protocolVersion"])
		}
	}
	if actual == "" {
		if result, ok := jsonObject(raw["result"]); ok {
			actual, _ = jsonString(result["protocolVersion"])
		}
	}
	if actual == "" || actual == expected {
		return nil
	}

	line, col := jsonFieldLocation(ctx.Content, "protocolVersion")
	d := diag.New(ctx.Path, line, col, "MCP-008", diag.Warning,
		fmt.Sprintf("protocolVersion '%s' does not match expected MCP revision '%s'", actual, expected)).
		WithSuggestion(fmt.Sprintf("Use protocolVersion \"%s\" or negotiate the version at runtime", expected))
	if !pinned {
		d = d.WithAssumption("Assuming the latest MCP protocol revision; pin spec_revisions.mcp_protocol to silence this note")
	} else if span, ok := textutil.JSONStringValueSpan(ctx.Content, "protocolVersion", actual); ok {
		d = d.WithFix(diag.Fix{
			StartByte: span.Start, EndByte: span.End, Replacement: `"` + expected + `"`,
			Description: "Align protocolVersion with pinned MCP revision", Safe: false,
		})
	}
	return []diag.Diagnostic{d}
}

// checkTools gathers tool definitions from the root tools array, a
// tools/list response, or a single root-level tool object, then validates
// each.
func (v *MCPValidator) checkTools(ctx *FileContext, raw map[string]json.RawMessage, doc mcpDocument) []diag.Diagnostic {
	var out []diag.Diagnostic
	var rawTools []json.RawMessage

	rawTools = append(rawTools, doc.Tools...)
	if result, ok := jsonObject(raw["result"]); ok {
		var resultTools []json.RawMessage
		if err := json.Unmarshal(result["tools"], &resultTools); err == nil {
			rawTools = append(rawTools, resultTools...)
		}
	}

	if len(rawTools) == 0 {
		// A bare tool definition at the root.
		isTool := false
		for _, field := range []string{"name", "inputSchema", "description", "title", "outputSchema", "icons"} {
			if _, ok := raw[field]; ok {
				isTool = true
				break
			}
		}
		if _, hasServers := raw["mcpServers"]; isTool && !hasServers {
			rawTools = append(rawTools, json.RawMessage(ctx.Content))
		}
	}

	for idx, rawTool := range rawTools {
		var tool mcpTool
		if err := json.Unmarshal(rawTool, &tool); err != nil {
			if ctx.Enabled("MCP-002") {
				out = append(out, diag.New(ctx.Path, 1, 0, "MCP-002", diag.Error,
					fmt.Sprintf("Tool #%d could not be parsed: %v", idx+1, err)).
					WithSuggestion("Each tool needs name, description, and inputSchema fields of the right types"))
			}
			continue
		}
		out = append(out, v.checkTool(ctx, &tool, idx)...)
	}
	return out
}

func (v *MCPValidator) checkTool(ctx *FileContext, tool *mcpTool, idx int) []diag.Diagnostic {
	var out []diag.Diagnostic
	prefix := fmt.Sprintf("Tool #%d: ", idx+1)

	if ctx.Enabled("MCP-013") && tool.Name != nil {
		name := strings.TrimSpace(*tool.Name)
		if name != "" && !isValidMCPToolName(name) {
			line, col := jsonFieldLocation(ctx.Content, "name")
			out = append(out, diag.New(ctx.Path, line, col, "MCP-013", diag.Error,
				fmt.Sprintf("%sinvalid tool name '%s': expected 1-128 chars using [a-zA-Z0-9_.-]", prefix, name)).
				WithSuggestion("Rename the tool to use only letters, numbers, underscore, dot, or hyphen"))
		}
	}

	if ctx.Enabled("MCP-002") {
		if !tool.hasName() {
			out = append(out, diag.New(ctx.Path, 1, 0, "MCP-002", diag.Error,
				prefix+"missing required field 'name'").
				WithSuggestion("Add a non-empty tool name"))
		}
		if !tool.hasDescription() {
			out = append(out, diag.New(ctx.Path, 1, 0, "MCP-002", diag.Error,
				prefix+"missing required field 'description'").
				WithSuggestion("Describe what the tool does so clients can present it"))
		}
		if tool.InputSchema == nil {
			suggestion := "Add an inputSchema declaring the tool's parameters"
			if strings.Contains(ctx.Content, `"parameters"`) {
				suggestion += ". Found 'parameters' field - did you mean 'inputSchema'?"
			}
			out = append(out, diag.New(ctx.Path, 1, 0, "MCP-002", diag.Error,
				prefix+"missing required field 'inputSchema'").
				WithSuggestion(suggestion))
		}
	}

	if ctx.Enabled("MCP-003") && tool.InputSchema != nil {
		line, col := jsonFieldLocation(ctx.Content, "inputSchema")
		for _, errText := range jsonSchemaStructureErrors(tool.InputSchema) {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-003", diag.Error,
				fmt.Sprintf("%sinvalid inputSchema: %s", prefix, errText)).
				WithSuggestion("Ensure inputSchema is a valid JSON Schema object"))
		}
	}

	if ctx.Enabled("MCP-014") && tool.OutputSchema != nil {
		line, col := jsonFieldLocation(ctx.Content, "outputSchema")
		for _, errText := range jsonSchemaStructureErrors(tool.OutputSchema) {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-014", diag.Error,
				fmt.Sprintf("%sinvalid outputSchema: %s", prefix, errText)).
				WithSuggestion("Ensure outputSchema is a valid JSON Schema object"))
		}
	}

	if ctx.Enabled("MCP-004") && tool.hasDescription() && !tool.hasMeaningfulDescription() {
		line, col := jsonFieldLocation(ctx.Content, "description")
		out = append(out, diag.New(ctx.Path, line, col, "MCP-004", diag.Warning,
			fmt.Sprintf("%sdescription is too short (%d chars)", prefix, len(*tool.Description))).
			WithSuggestion("Write a description that explains what the tool does and when to call it"))
	}

	if ctx.Enabled("MCP-005") && !tool.hasConsentFields() {
		out = append(out, diag.New(ctx.Path, 1, 0, "MCP-005", diag.Warning,
			prefix+"no user consent mechanism declared").
			WithSuggestion("Add requiresApproval: true or a confirmation prompt for tools with side effects"))
	}

	if ctx.Enabled("MCP-006") && len(tool.Annotations) > 0 {
		line, col := jsonFieldLocation(ctx.Content, "annotations")
		out = append(out, diag.New(ctx.Path, line, col, "MCP-006", diag.Warning,
			prefix+"annotations are hints from the server and must not be trusted for security decisions").
			WithSuggestion("Treat annotation hints as advisory only"))

		var unknown []string
		for _, key := range sortedKeys(tool.Annotations) {
			if !contains(validMCPAnnotationHints, key) {
				unknown = append(unknown, key)
			}
		}
		if len(unknown) > 0 {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-006", diag.Warning,
				fmt.Sprintf("%sunknown annotation keys: %s", prefix, strings.Join(unknown, ", "))).
				WithSuggestion("Use only standard annotation hints: "+strings.Join(validMCPAnnotationHints, ", ")))
		}
	}

	return out
}

func (v *MCPValidator) checkResources(ctx *FileContext, raw map[string]json.RawMessage) []diag.Diagnostic {
	if !ctx.Enabled("MCP-015") {
		return nil
	}
	var out []diag.Diagnostic
	for idx, res := range rootOrResultArray(raw, "resources") {
		obj, ok := jsonObject(res)
		if !ok {
			continue
		}
		line, col := jsonFieldLocation(ctx.Content, "resources")
		if s, _ := jsonString(obj["uri"]); strings.TrimSpace(s) == "" {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-015", diag.Error,
				fmt.Sprintf("Resource #%d: missing required field 'uri'", idx+1)).
				WithSuggestion("Add a non-empty URI to the resource definition"))
		}
		if s, _ := jsonString(obj["name"]); strings.TrimSpace(s) == "" {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-015", diag.Error,
				fmt.Sprintf("Resource #%d: missing required field 'name'", idx+1)).
				WithSuggestion("Add a non-empty name to the resource definition"))
		}
	}
	return out
}

func (v *MCPValidator) checkPrompts(ctx *FileContext, raw map[string]json.RawMessage) []diag.Diagnostic {
	if !ctx.Enabled("MCP-016") {
		return nil
	}
	var out []diag.Diagnostic
	for idx, prompt := range rootOrResultArray(raw, "prompts") {
		obj, ok := jsonObject(prompt)
		if !ok {
			continue
		}
		if s, _ := jsonString(obj["name"]); strings.TrimSpace(s) == "" {
			line, col := jsonFieldLocation(ctx.Content, "prompts")
			out = append(out, diag.New(ctx.Path, line, col, "MCP-016", diag.Error,
				fmt.Sprintf("Prompt #%d: missing required field 'name'", idx+1)).
				WithSuggestion("Add a non-empty prompt name"))
		}
	}
	return out
}

func (v *MCPValidator) checkCapabilities(ctx *FileContext, raw map[string]json.RawMessage) []diag.Diagnostic {
	if !ctx.Enabled("MCP-020") {
		return nil
	}
	caps, ok := jsonObject(raw["capabilities"])
	if !ok {
		if result, found := jsonObject(raw["result"]); found {
			caps, ok = jsonObject(result["capabilities"])
		}
		if !ok {
			return nil
		}
	}
	var out []diag.Diagnostic
	keys := make([]string, 0, len(caps))
	for key := range caps {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if !contains(validMCPCapabilityKeys, key) {
			line, col := jsonFieldLocation(ctx.Content, key)
			out = append(out, diag.New(ctx.Path, line, col, "MCP-020", diag.Warning,
				fmt.Sprintf("Unknown capability key '%s'", key)).
				WithSuggestion("Use only capability keys defined by the MCP specification"))
		}
	}
	return out
}

func (v *MCPValidator) checkServer(ctx *FileContext, name string, server mcpServer) []diag.Diagnostic {
	var out []diag.Diagnostic
	line, col := jsonFieldLocation(ctx.Content, name)

	effectiveType := "stdio"
	if server.Type != nil {
		effectiveType = *server.Type
	}

	// An invalid type makes the remaining type-driven rules meaningless.
	if ctx.Enabled("MCP-011") && server.Type != nil && !contains(validMCPServerTypes, *server.Type) {
		d := diag.New(ctx.Path, line, col, "MCP-011", diag.Error,
			fmt.Sprintf("Server '%s' has invalid type '%s'", name, *server.Type)).
			WithSuggestion("Valid server types: " + strings.Join(validMCPServerTypes, ", "))
		if closest, ok := textutil.ClosestMatch(*server.Type, validMCPServerTypes); ok {
			if span, found := textutil.JSONStringValueSpan(ctx.Content, "type", *server.Type); found {
				d = d.WithFix(diag.Fix{
					StartByte: span.Start, EndByte: span.End, Replacement: `"` + closest + `"`,
					Description: fmt.Sprintf("Change server type to '%s'", closest), Safe: false,
				})
			}
		}
		return append(out, d)
	}

	hasCommand := serverHasCommand(server.Command)

	if ctx.Enabled("MCP-009") && effectiveType == "stdio" && !hasCommand {
		out = append(out, diag.New(ctx.Path, line, col, "MCP-009", diag.Error,
			fmt.Sprintf("Server '%s' is a stdio server but has no command", name)).
			WithSuggestion("Add a command to launch the server process"))
	}

	if ctx.Enabled("MCP-022") && len(server.Args) > 0 {
		var args []string
		if err := json.Unmarshal(server.Args, &args); err != nil {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-022", diag.Error,
				fmt.Sprintf("Server '%s' has invalid 'args' value: expected array of strings", name)).
				WithSuggestion(`Set args to an array of strings, e.g. ["--port", "3000"]`))
		}
	}

	url := ""
	if server.URL != nil {
		url = strings.TrimSpace(*server.URL)
	}

	if ctx.Enabled("MCP-010") && (effectiveType == "http" || effectiveType == "sse") && url == "" {
		out = append(out, diag.New(ctx.Path, line, col, "MCP-010", diag.Error,
			fmt.Sprintf("Server '%s' is an %s server but has no url", name, effectiveType)).
			WithSuggestion("Add the endpoint URL the client should connect to"))
	}

	if effectiveType == "http" && url != "" {
		host := extractHTTPHost(url)
		if ctx.Enabled("MCP-017") && strings.HasPrefix(strings.ToLower(url), "http://") &&
			host != "" && !isLocalHTTPHost(host) {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-017", diag.Error,
				fmt.Sprintf("Server '%s' uses insecure HTTP URL '%s'; use HTTPS for non-localhost endpoints", name, url)).
				WithSuggestion("Change the server URL to https:// for remote endpoints"))
		}
		if ctx.Enabled("MCP-021") && isWildcardHTTPHost(host) {
			out = append(out, diag.New(ctx.Path, line, col, "MCP-021", diag.Warning,
				fmt.Sprintf("Server '%s' binds HTTP to '%s', which exposes all interfaces", name, host)).
				WithSuggestion("Prefer localhost bindings unless remote network access is required"))
		}
	}

	if effectiveType == "stdio" {
		if ctx.Enabled("MCP-018") {
			for _, key := range sortedStringMapKeys(server.Env) {
				upper := strings.ToUpper(key)
				sensitive := strings.Contains(upper, "API_KEY") || strings.Contains(upper, "SECRET") ||
					strings.Contains(upper, "TOKEN") || strings.Contains(upper, "PASSWORD")
				if sensitive && seemsPlaintextSecret(server.Env[key]) {
					out = append(out, diag.New(ctx.Path, line, col, "MCP-018", diag.Warning,
						fmt.Sprintf("Server '%s' defines potential plaintext secret in env var '%s'", name, key)).
						WithSuggestion("Use secret injection from environment/runtime instead of hardcoded values"))
				}
			}
		}
		if ctx.Enabled("MCP-019") {
			if cmd := commandAsString(server.Command); cmd != "" && isDangerousMCPCommand(cmd) {
				out = append(out, diag.New(ctx.Path, line, col, "MCP-019", diag.Warning,
					fmt.Sprintf("Server '%s' command appears dangerous: %s", name, cmd)).
					WithSuggestion("Avoid remote shell pipes, destructive commands, and potential data exfiltration patterns"))
			}
		}
	}

	if ctx.Enabled("MCP-012") && effectiveType == "sse" {
		d := diag.New(ctx.Path, line, col, "MCP-012", diag.Error,
			fmt.Sprintf("Server '%s' uses the deprecated SSE transport", name)).
			WithSuggestion("Migrate to the streamable HTTP transport")
		if span, ok := textutil.JSONStringValueSpan(ctx.Content, "type", "sse"); ok {
			d = d.WithFix(diag.Fix{
				StartByte: span.Start, EndByte: span.End, Replacement: `"http"`,
				Description: "Switch deprecated SSE transport to http", Safe: false,
			})
		}
		out = append(out, d)
	}

	if ctx.Enabled("MCP-024") && !hasMeaningfulServerConfig(server, hasCommand, url) {
		out = append(out, diag.New(ctx.Path, line, col, "MCP-024", diag.Error,
			fmt.Sprintf("Server '%s' has an empty configuration object", name)).
			WithSuggestion("Define at least one meaningful field such as type, command, url, args, or env"))
	}

	return out
}

func serverHasCommand(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s) != ""
	}
	var arr []any
	if err := json.Unmarshal(raw, &arr); err == nil {
		return len(arr) > 0
	}
	return string(raw) != "null"
}

func commandAsString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var arr []string
	if err := json.Unmarshal(raw, &arr); err == nil {
		return strings.Join(arr, " ")
	}
	return ""
}

func hasMeaningfulServerConfig(server mcpServer, hasCommand bool, url string) bool {
	if server.Type != nil && strings.TrimSpace(*server.Type) != "" {
		return true
	}
	if hasCommand || url != "" || len(server.Env) > 0 {
		return true
	}
	var args []any
	if err := json.Unmarshal(server.Args, &args); err == nil && len(args) > 0 {
		return true
	}
	return false
}

func isValidMCPToolName(name string) bool {
	if len(name) == 0 || len(name) > 128 {
		return false
	}
	for _, c := range name {
		if !(c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' ||
			c == '_' || c == '.' || c == '-') {
			return false
		}
	}
	return true
}

// jsonSchemaStructureErrors performs structural validation of an embedded
// JSON Schema without compiling it.
func jsonSchemaStructureErrors(schema map[string]any) []string {
	var errs []string
	if typeVal, ok := schema["type"]; ok {
		if _, isStr := typeVal.(string); !isStr {
			if _, isArr := typeVal.([]any); !isArr {
				errs = append(errs, "'type' must be a string or array of strings")
			}
		}
	}
	if props, ok := schema["properties"]; ok {
		if _, isObj := props.(map[string]any); !isObj {
			errs = append(errs, "'properties' must be an object")
		}
	}
	if req, ok := schema["required"]; ok {
		arr, isArr := req.([]any)
		if !isArr {
			errs = append(errs, "'required' must be an array of strings")
		} else {
			for _, item := range arr {
				if _, isStr := item.(string); !isStr {
					errs = append(errs, "'required' must be an array of strings")
					break
				}
			}
		}
	}
	return errs
}

func extractHTTPHost(url string) string {
	trimmed := strings.TrimSpace(url)
	idx := strings.Index(trimmed, "://")
	if idx < 0 {
		return ""
	}
	hostAndPath := trimmed[idx+3:]
	if hostAndPath == "" {
		return ""
	}
	end := strings.IndexAny(hostAndPath, "/?#")
	if end < 0 {
		end = len(hostAndPath)
	}
	hostPort := hostAndPath[:end]
	if hostPort == "" {
		return ""
	}
	if strings.HasPrefix(hostPort, "[") {
		if close := strings.Index(hostPort, "]"); close >= 0 {
			return strings.ToLower(hostPort[:close+1])
		}
		return ""
	}
	host := hostPort
	if colon := strings.Index(hostPort, ":"); colon >= 0 {
		host = hostPort[:colon]
	}
	return strings.ToLower(host)
}

func isLocalHTTPHost(host string) bool {
	switch host {
	case "localhost", "127.0.0.1", "::1", "[::1]":
		return true
	}
	return false
}

func isWildcardHTTPHost(host string) bool {
	switch host {
	case "0.0.0.0", "::", "[::]", "*":
		return true
	}
	return false
}

func seemsPlaintextSecret(value string) bool {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return false
	}
	return !strings.HasPrefix(trimmed, "${") &&
		!strings.HasPrefix(trimmed, "$(") &&
		!strings.HasPrefix(trimmed, "{{")
}

func isDangerousMCPCommand(command string) bool {
	normalized := strings.ToLower(command)
	remotePipe := (strings.Contains(normalized, "curl") || strings.Contains(normalized, "wget")) &&
		strings.Contains(normalized, "|") &&
		(strings.Contains(normalized, "| sh") || strings.Contains(normalized, "|sh") ||
			strings.Contains(normalized, "| bash") || strings.Contains(normalized, "|bash"))
	sudoRM := strings.Contains(normalized, "sudo rm")
	exfil := (strings.Contains(normalized, "nc ") || strings.Contains(normalized, "netcat ")) &&
		(strings.Contains(normalized, "/etc/") || strings.Contains(normalized, ".ssh") ||
			strings.Contains(normalized, "token"))
	return remotePipe || sudoRM || exfil
}

// duplicateMCPServerNames scans the raw text for repeated keys inside the
// mcpServers object, which the JSON decoder would otherwise silently
// collapse.
func duplicateMCPServerNames(content string) []string {
	keyPos := strings.Index(content, `"mcpServers"`)
	if keyPos < 0 {
		return nil
	}
	colonPos := strings.Index(content[keyPos:], ":")
	if colonPos < 0 {
		return nil
	}
	idx := keyPos + colonPos + 1
	for idx < len(content) && (content[idx] == ' ' || content[idx] == '\t' || content[idx] == '\n' || content[idx] == '\r') {
		idx++
	}
	if idx >= len(content) || content[idx] != '{' {
		return nil
	}
	idx++

	depth := 1
	expectingKey := true
	seen := map[string]bool{}
	dups := map[string]bool{}

	for idx < len(content) && depth > 0 {
		switch content[idx] {
		case '"':
			key, next := readJSONStringLiteral(content, idx)
			if depth == 1 && expectingKey {
				if seen[key] {
					dups[key] = true
				}
				seen[key] = true
				expectingKey = false
			}
			idx = next
			continue
		case '{', '[':
			depth++
		case '}', ']':
			depth--
		case ',':
			if depth == 1 {
				expectingKey = true
			}
		}
		idx++
	}

	result := make([]string, 0, len(dups))
	for name := range dups {
		result = append(result, name)
	}
	sort.Strings(result)
	return result
}

func readJSONStringLiteral(content string, startQuote int) (string, int) {
	var b strings.Builder
	escaped := false
	for i := startQuote + 1; i < len(content); i++ {
		c := content[i]
		if escaped {
			b.WriteByte(c)
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if c == '"' {
			return b.String(), i + 1
		}
		b.WriteByte(c)
	}
	return b.String(), len(content)
}

// jsonFieldLocation returns the 1-based line and 0-based column of the
// first occurrence of a quoted field name, or (1, 0) when absent.
func jsonFieldLocation(content, field string) (int, int) {
	idx := strings.Index(content, `"`+field+`"`)
	if idx < 0 {
		return 1, 0
	}
	return textutil.LineColAt(content, idx)
}

func jsonString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

func jsonObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func rootOrResultArray(raw map[string]json.RawMessage, key string) []json.RawMessage {
	var items []json.RawMessage
	var arr []json.RawMessage
	if err := json.Unmarshal(raw[key], &arr); err == nil {
		items = append(items, arr...)
	}
	if result, ok := jsonObject(raw["result"]); ok {
		var nested []json.RawMessage
		if err := json.Unmarshal(result[key], &nested); err == nil {
			items = append(items, nested...)
		}
	}
	return items
}

func sortedStringMapKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
