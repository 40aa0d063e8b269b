package frontend

import "testing"

func TestHeadersSkipCodeBlocks(t *testing.T) {
	content := "# Title\n```\n# not a header\n```\n## Section\n"
	headers := Headers(content)
	if len(headers) != 2 {
		t.Fatalf("got %d headers: %+v", len(headers), headers)
	}
	if headers[0].Level != 1 || headers[0].Line != 1 || headers[0].Text != "Title" {
		t.Errorf("unexpected first header: %+v", headers[0])
	}
	if headers[1].Level != 2 || headers[1].Line != 5 {
		t.Errorf("unexpected second header: %+v", headers[1])
	}
}

func TestLinks(t *testing.T) {
	content := "See [docs](docs/setup.md) and ![logo](img/logo.png).\n"
	links := Links(content)
	if len(links) != 2 {
		t.Fatalf("got %d links: %+v", len(links), links)
	}
	if links[0].URL != "docs/setup.md" || links[0].IsImage {
		t.Errorf("unexpected link: %+v", links[0])
	}
	if links[1].URL != "img/logo.png" || !links[1].IsImage {
		t.Errorf("unexpected image: %+v", links[1])
	}
	if links[0].Column != 4 {
		t.Errorf("link column = %d, want 4", links[0].Column)
	}
}

func TestImports(t *testing.T) {
	content := "Load @docs/setup.md first.\nContact admin@example.com for access.\n`@not/this.md` either\n"
	imports := Imports(content)
	if len(imports) != 1 {
		t.Fatalf("got %d imports: %+v", len(imports), imports)
	}
	if imports[0].Path != "docs/setup.md" || imports[0].Line != 1 {
		t.Errorf("unexpected import: %+v", imports[0])
	}
	if imports[0].Column != 5 {
		t.Errorf("import column = %d, want 5", imports[0].Column)
	}
}

func TestImportsSkipFencedCode(t *testing.T) {
	content := "```\n@inside/fence.md\n```\n@after/fence.md\n"
	imports := Imports(content)
	if len(imports) != 1 || imports[0].Path != "after/fence.md" {
		t.Fatalf("got %+v", imports)
	}
}

func TestImportsTrailingPunctuation(t *testing.T) {
	imports := Imports("Read @docs/guide.md, then continue.\n")
	if len(imports) != 1 || imports[0].Path != "docs/guide.md" {
		t.Fatalf("got %+v", imports)
	}
}

func TestHasUnclosedCodeBlock(t *testing.T) {
	if line, open := HasUnclosedCodeBlock("text\n```go\ncode\n"); !open || line != 2 {
		t.Errorf("got line %d open %v, want 2 true", line, open)
	}
	if _, open := HasUnclosedCodeBlock("```\ncode\n```\n"); open {
		t.Error("balanced fences reported as open")
	}
}

func TestMalformedLinkLine(t *testing.T) {
	if line, found := MalformedLinkLine("ok\n[broken](no-close\n"); !found || line != 2 {
		t.Errorf("got line %d found %v, want 2 true", line, found)
	}
	if _, found := MalformedLinkLine("[fine](target.md)\n"); found {
		t.Error("well-formed link reported as malformed")
	}
}

func TestCodeBlockLines(t *testing.T) {
	lines := CodeBlockLines("a\n```\nb\n```\nc\n")
	for _, want := range []int{2, 3, 4} {
		if !lines[want] {
			t.Errorf("line %d should be inside the code block", want)
		}
	}
	if lines[1] || lines[5] {
		t.Error("prose lines marked as code")
	}
}
