package textutil

import "testing"

func TestJSONStringValueSpan(t *testing.T) {
	content := `{
  "type": "comand",
  "timeout": 30
}`
	span, ok := JSONStringValueSpan(content, "type", "comand")
	if !ok {
		t.Fatal("expected span")
	}
	if got := content[span.Start:span.End]; got != `"comand"` {
		t.Errorf("span text = %q", got)
	}
}

func TestJSONStringValueSpanAmbiguous(t *testing.T) {
	content := `{"a": {"type": "comand"}, "b": {"type": "comand"}}`
	if _, ok := JSONStringValueSpan(content, "type", "comand"); ok {
		t.Error("ambiguous occurrence should yield no span")
	}
}

func TestJSONStringValueSpanMissing(t *testing.T) {
	if _, ok := JSONStringValueSpan(`{"type": 3}`, "type", "x"); ok {
		t.Error("non-string value should yield no span")
	}
}

func TestJSONFieldLineSpan(t *testing.T) {
	content := "{\n  \"keep\": 1,\n  \"drop\": \"x\",\n  \"tail\": 2\n}\n"
	span, ok := JSONFieldLineSpan(content, "drop")
	if !ok {
		t.Fatal("expected span")
	}
	if got := content[span.Start:span.End]; got != "  \"drop\": \"x\",\n" {
		t.Errorf("span text = %q", got)
	}
}

func TestJSONFieldLineSpanLastField(t *testing.T) {
	content := "{\n  \"a\": 1,\n  \"last\": true\n}\n"
	span, ok := JSONFieldLineSpan(content, "last")
	if !ok {
		t.Fatal("expected span")
	}
	if got := content[span.Start:span.End]; got != "  \"last\": true" {
		t.Errorf("span text = %q", got)
	}
}

func TestYAMLKeyLineSpan(t *testing.T) {
	content := "---\ndescription: hi\nunknownKey: value\n---\nbody\n"
	span, ok := YAMLKeyLineSpan(content, "unknownKey")
	if !ok {
		t.Fatal("expected span")
	}
	if got := content[span.Start:span.End]; got != "unknownKey: value\n" {
		t.Errorf("span text = %q", got)
	}
}

func TestYAMLKeyLineSpanDuplicate(t *testing.T) {
	content := "k: 1\nk: 2\n"
	if _, ok := YAMLKeyLineSpan(content, "k"); ok {
		t.Error("duplicate key should yield no span")
	}
}

func TestTOMLStringValueSpan(t *testing.T) {
	content := "approvalMode = \"sugest\"\nother = \"x\"\n"
	span, ok := TOMLStringValueSpan(content, "approvalMode", "sugest")
	if !ok {
		t.Fatal("expected span")
	}
	if got := content[span.Start:span.End]; got != `"sugest"` {
		t.Errorf("span text = %q", got)
	}
}

func TestFrontmatterValueSpan(t *testing.T) {
	tests := []struct {
		name    string
		content string
		key     string
		want    string
		ok      bool
	}{
		{
			name:    "bare value",
			content: "---\nname: demo\nmodel: sonet\n---\n",
			key:     "model",
			want:    "sonet",
			ok:      true,
		},
		{
			name:    "quoted value",
			content: "---\nmodel: \"sonet\"\n---\n",
			key:     "model",
			want:    "sonet",
			ok:      true,
		},
		{
			name:    "trailing comment",
			content: "---\nmodel: sonet # pick\n---\n",
			key:     "model",
			want:    "sonet",
			ok:      true,
		},
		{
			name:    "comment line skipped",
			content: "---\n# model: fake\nmodel: real\n---\n",
			key:     "model",
			want:    "real",
			ok:      true,
		},
		{
			name:    "missing key",
			content: "---\nname: x\n---\n",
			key:     "model",
			ok:      false,
		},
		{
			name:    "duplicate key",
			content: "---\nmodel: sonet\nmodel: sonet\n---\n",
			key:     "model",
			ok:      false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			span, ok := FrontmatterValueSpan(tt.content, tt.key)
			if ok != tt.ok {
				t.Fatalf("ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if got := tt.content[span.Start:span.End]; got != tt.want {
				t.Errorf("span text = %q, want %q", got, tt.want)
			}
		})
	}
}
