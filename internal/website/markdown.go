package website

import (
	"fmt"
	"html"
	"html/template"
	"regexp"
	"strings"
)

// Minimal markdown renderer covering what the generators emit: headings,
// bold, inline code, fenced code, bulleted and numbered lists, tables as
// preformatted blocks, paragraphs. Everything else passes through as
// escaped text.

var (
	headingRe  = regexp.MustCompile(`^(#{1,6})\s+(.*)$`)
	bulletRe   = regexp.MustCompile(`^\s*[-*]\s+(.*)$`)
	numberedRe = regexp.MustCompile(`^\s*\d+[.)]\s+(.*)$`)
	boldRe     = regexp.MustCompile(`\*\*([^*]+)\*\*`)
	codeRe     = regexp.MustCompile("`([^`]+)`")
)

// RenderMarkdown converts generator markdown to HTML.
func RenderMarkdown(md string) template.HTML {
	var b strings.Builder
	lines := strings.Split(md, "\n")

	inUL, inOL, inCode, inPara := false, false, false, false
	closeLists := func() {
		if inUL {
			b.WriteString("</ul>\n")
			inUL = false
		}
		if inOL {
			b.WriteString("</ol>\n")
			inOL = false
		}
	}
	closePara := func() {
		if inPara {
			b.WriteString("</p>\n")
			inPara = false
		}
	}

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)

		if strings.HasPrefix(trimmed, "```") {
			closePara()
			closeLists()
			if inCode {
				b.WriteString("</code></pre>\n")
			} else {
				b.WriteString("<pre><code>")
			}
			inCode = !inCode
			continue
		}
		if inCode {
			b.WriteString(html.EscapeString(line))
			b.WriteString("\n")
			continue
		}

		if trimmed == "" {
			closePara()
			closeLists()
			continue
		}

		if m := headingRe.FindStringSubmatch(line); m != nil {
			closePara()
			closeLists()
			level := len(m[1])
			fmt.Fprintf(&b, "<h%d>%s</h%d>\n", level, inline(m[2]), level)
			continue
		}
		if m := bulletRe.FindStringSubmatch(line); m != nil {
			closePara()
			if inOL {
				b.WriteString("</ol>\n")
				inOL = false
			}
			if !inUL {
				b.WriteString("<ul>\n")
				inUL = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(m[1]))
			continue
		}
		if m := numberedRe.FindStringSubmatch(line); m != nil {
			closePara()
			if inUL {
				b.WriteString("</ul>\n")
				inUL = false
			}
			if !inOL {
				b.WriteString("<ol>\n")
				inOL = true
			}
			fmt.Fprintf(&b, "<li>%s</li>\n", inline(m[1]))
			continue
		}
		if strings.HasPrefix(trimmed, "|") {
			closePara()
			closeLists()
			fmt.Fprintf(&b, "<pre class=\"table\">%s</pre>\n", html.EscapeString(trimmed))
			continue
		}

		closeLists()
		if !inPara {
			b.WriteString("<p>")
			inPara = true
		} else {
			b.WriteString(" ")
		}
		b.WriteString(string(inline(trimmed)))
	}
	closePara()
	closeLists()
	if inCode {
		b.WriteString("</code></pre>\n")
	}
	return template.HTML(b.String())
}

// RenderMermaid wraps raw Mermaid source for client-side rendering.
func RenderMermaid(src string) template.HTML {
	return template.HTML(fmt.Sprintf("<pre class=\"mermaid\">%s</pre>\n", html.EscapeString(strings.TrimSpace(src))))
}

func inline(s string) template.HTML {
	escaped := html.EscapeString(s)
	escaped = boldRe.ReplaceAllString(escaped, "<strong>$1</strong>")
	escaped = codeRe.ReplaceAllString(escaped, "<code>$1</code>")
	return template.HTML(escaped)
}
