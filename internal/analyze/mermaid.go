package analyze

import (
	"regexp"
	"strings"

	"github.com/yungbote/courseforge/internal/cleanup"
	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/types"
)

var (
	mermaidNodeRe   = regexp.MustCompile(`([A-Za-z_][A-Za-z0-9_]*)\s*(\[[^\]]*\]|\([^)]*\)|\{[^}]*\}|\(\([^)]*\)\))`)
	mermaidEdgeRe   = regexp.MustCompile(`-->|---|-\.->|==>|--x|--o|<-->`)
	mermaidSeqMsgRe = regexp.MustCompile(`(?m)^\s*\w+\s*(->>|-->>|->|-->)\s*\w+\s*:`)
	participantRe   = regexp.MustCompile(`(?m)^\s*(?:participant|actor)\s+(\w+)`)
)

// Mermaid validates diagram and visualization output: a recognized diagram
// header must open the text, and the body must carry enough nodes to be
// worth rendering.
func Mermaid(kind types.Kind, text string, req config.Requirements) Metrics {
	m := Metrics{Kind: kind}

	header := firstDiagramHeader(text)
	if header == "" {
		m.warnf("invalid syntax: no recognized mermaid diagram header")
		return m
	}
	m.SyntaxValid = true
	m.MermaidKind = header

	switch {
	case strings.HasPrefix(header, "sequenceDiagram"):
		m.NodeCount = countSequenceActors(text)
		m.EdgeCount = len(mermaidSeqMsgRe.FindAllString(text, -1))
	case strings.HasPrefix(header, "mindmap"), strings.HasPrefix(header, "timeline"),
		strings.HasPrefix(header, "journey"), strings.HasPrefix(header, "gantt"),
		strings.HasPrefix(header, "pie"):
		m.NodeCount = countIndentedEntries(text)
	default:
		m.NodeCount = countFlowchartNodes(text)
		m.EdgeCount = len(mermaidEdgeRe.FindAllString(text, -1))
	}

	if req.MinNodes > 0 && m.NodeCount < req.MinNodes {
		m.warnf("too few nodes: %d (need %d)", m.NodeCount, req.MinNodes)
	}
	return m
}

func firstDiagramHeader(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "%%") {
			continue
		}
		for _, h := range cleanup.MermaidHeaders {
			if line == h || strings.HasPrefix(line, h+" ") {
				return h
			}
		}
		return ""
	}
	return ""
}

func countFlowchartNodes(text string) int {
	seen := map[string]bool{}
	for _, mt := range mermaidNodeRe.FindAllStringSubmatch(text, -1) {
		seen[mt[1]] = true
	}
	if len(seen) > 0 {
		return len(seen)
	}
	// bare-identifier graphs: count distinct edge endpoints
	idRe := regexp.MustCompile(`(?m)^\s*([A-Za-z_][A-Za-z0-9_]*)\s*(?:-->|---)\s*([A-Za-z_][A-Za-z0-9_]*)`)
	for _, mt := range idRe.FindAllStringSubmatch(text, -1) {
		seen[mt[1]] = true
		seen[mt[2]] = true
	}
	return len(seen)
}

func countSequenceActors(text string) int {
	seen := map[string]bool{}
	for _, mt := range participantRe.FindAllStringSubmatch(text, -1) {
		seen[mt[1]] = true
	}
	msgRe := regexp.MustCompile(`(?m)^\s*(\w+)\s*(?:->>|-->>|->|-->)\s*(\w+)\s*:`)
	for _, mt := range msgRe.FindAllStringSubmatch(text, -1) {
		seen[mt[1]] = true
		seen[mt[2]] = true
	}
	return len(seen)
}

func countIndentedEntries(text string) int {
	n := 0
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		if i == 0 {
			continue
		}
		t := strings.TrimSpace(line)
		if t == "" || strings.HasPrefix(t, "%%") {
			continue
		}
		if cleanup.IsMermaidHeader(t) {
			continue
		}
		n++
	}
	return n
}
