package website

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	md := `# Title

Some **bold** prose with ` + "`code`" + ` in it.

## Section

- first item
- second item

1. step one
2. step two

` + "```" + `
raw <code> block
` + "```" + `
`
	out := string(RenderMarkdown(md))
	for _, want := range []string{
		"<h1>Title</h1>",
		"<h2>Section</h2>",
		"<strong>bold</strong>",
		"<code>code</code>",
		"<ul>\n<li>first item</li>",
		"<ol>\n<li>step one</li>",
		"raw &lt;code&gt; block",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownEscapesHTML(t *testing.T) {
	out := string(RenderMarkdown("Plain <script>alert(1)</script> text."))
	if strings.Contains(out, "<script>") {
		t.Fatalf("unescaped script tag:\n%s", out)
	}
	if !strings.Contains(out, "&lt;script&gt;") {
		t.Fatalf("missing escaped tag:\n%s", out)
	}
}

func TestRenderMermaid(t *testing.T) {
	out := string(RenderMermaid("flowchart TD\n    A --> B\n"))
	if !strings.HasPrefix(out, `<pre class="mermaid">`) {
		t.Fatalf("missing mermaid wrapper:\n%s", out)
	}
	if !strings.Contains(out, "A --&gt; B") {
		t.Fatalf("source not escaped:\n%s", out)
	}
}
