// Package website renders a generated course into one self-contained
// index.html for browsing, with Mermaid diagrams rendered client-side.
package website

import (
	"bytes"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yungbote/courseforge/internal/config"
	"github.com/yungbote/courseforge/internal/pkg/fsutil"
	"github.com/yungbote/courseforge/internal/pkg/logger"
	"github.com/yungbote/courseforge/internal/types"
)

// artifactOrder fixes the display order inside a session.
var artifactOrder = []struct {
	file  string
	label string
}{
	{"lecture.md", "Lecture"},
	{"lab.md", "Lab"},
	{"study_notes.md", "Study Notes"},
	{"questions.md", "Questions"},
	{"application.md", "Applications"},
	{"extension.md", "Extensions"},
	{"visualization.mmd", "Visualization"},
	{"integration.md", "Integration"},
	{"investigation.md", "Investigations"},
	{"open_questions.md", "Open Questions"},
}

type Builder struct {
	log *logger.Logger
	cfg *config.Store
}

func NewBuilder(cfg *config.Store, log *logger.Logger) *Builder {
	return &Builder{log: log.With("service", "WebsiteBuilder"), cfg: cfg}
}

type pageData struct {
	Course      types.CourseMetadata
	Modules     []moduleView
	Sessions    int
	GeneratedAt string
}

type moduleView struct {
	ID          int
	Name        string
	Description string
	Sessions    []sessionView
}

type sessionView struct {
	Number    int
	Title     string
	Anchor    string
	Artifacts []artifactView
}

type artifactView struct {
	Label string
	HTML  template.HTML
}

// Build reads every persisted artifact of the course and writes
// website/index.html. Missing artifacts are skipped with a count in the
// returned summary; an entirely empty course is an error.
func (b *Builder) Build(tree *types.OutlineTree) (string, error) {
	paths := b.cfg.OutputPaths(tree.CourseMetadata.Name)

	data := pageData{
		Course:      tree.CourseMetadata,
		Sessions:    tree.TotalSessions(),
		GeneratedAt: time.Now().Format("2006-01-02 15:04"),
	}
	found := 0

	for _, mod := range tree.Modules {
		mv := moduleView{ID: mod.ModuleID, Name: mod.ModuleName, Description: mod.ModuleDescription}
		for _, sess := range mod.Sessions {
			dir := paths.SessionDir(mod.ModuleID, mod.ModuleName, sess.SessionNumber)
			sv := sessionView{
				Number: sess.SessionNumber,
				Title:  sess.SessionTitle,
				Anchor: fmt.Sprintf("m%d-s%d", mod.ModuleID, sess.SessionNumber),
			}
			sv.Artifacts = append(sv.Artifacts, b.readArtifacts(dir)...)
			found += len(sv.Artifacts)
			mv.Sessions = append(mv.Sessions, sv)
		}
		data.Modules = append(data.Modules, mv)
	}
	if found == 0 {
		return "", fmt.Errorf("no artifacts found for course %q; run the generation stages first", tree.CourseMetadata.Name)
	}

	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render website: %w", err)
	}

	out := filepath.Join(paths.Website, "index.html")
	if err := fsutil.WriteFileAtomic(out, buf.Bytes()); err != nil {
		return "", err
	}
	b.log.Info("website written", "path", out, "artifacts", found)
	return out, nil
}

func (b *Builder) readArtifacts(dir string) []artifactView {
	var out []artifactView
	for _, a := range artifactOrder {
		data, err := os.ReadFile(filepath.Join(dir, a.file))
		if err != nil {
			continue
		}
		out = append(out, artifactView{Label: a.label, HTML: RenderMarkdown(string(data))})
	}
	// diagrams are numbered, collect them all
	matches, _ := filepath.Glob(filepath.Join(dir, "diagram_*.mmd"))
	for i, path := range matches {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		out = append(out, artifactView{
			Label: fmt.Sprintf("Diagram %d", i+1),
			HTML:  RenderMermaid(string(data)),
		})
	}
	// visualization is mermaid, not markdown; replace the markdown pass
	for i := range out {
		if out[i].Label == "Visualization" {
			raw, err := os.ReadFile(filepath.Join(dir, "visualization.mmd"))
			if err == nil {
				out[i].HTML = RenderMermaid(string(raw))
			}
		}
	}
	return out
}

var pageTemplate = template.Must(template.New("index").Parse(strings.TrimSpace(`
<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>{{.Course.Name}}</title>
<style>
body { font-family: Georgia, serif; margin: 0; display: flex; }
nav { width: 280px; min-height: 100vh; background: #1d2733; color: #dde3ea; padding: 1.5rem; box-sizing: border-box; }
nav a { color: #9fb4cc; text-decoration: none; display: block; padding: 0.15rem 0; }
nav a:hover { color: #fff; }
nav h2 { font-size: 0.95rem; margin: 1rem 0 0.25rem; color: #fff; }
main { flex: 1; max-width: 60rem; padding: 2rem 3rem; box-sizing: border-box; }
article { border-bottom: 1px solid #ccc; margin-bottom: 2rem; }
details { margin: 0.75rem 0; }
summary { cursor: pointer; font-weight: bold; font-size: 1.05rem; }
pre { background: #f4f4f4; padding: 0.75rem; overflow-x: auto; }
pre.mermaid { background: #fff; }
footer { color: #888; font-size: 0.85rem; padding: 2rem 0; }
</style>
</head>
<body>
<nav>
<h1>{{.Course.Name}}</h1>
<p>{{.Course.Subject}} &middot; {{.Course.Level}} &middot; {{.Sessions}} sessions</p>
{{range .Modules}}<h2>Module {{.ID}}: {{.Name}}</h2>
{{range .Sessions}}<a href="#{{.Anchor}}">Session {{.Number}}: {{.Title}}</a>
{{end}}{{end}}
</nav>
<main>
{{range .Modules}}
<section>
<h1>Module {{.ID}}: {{.Name}}</h1>
{{if .Description}}<p>{{.Description}}</p>{{end}}
{{range .Sessions}}
<article id="{{.Anchor}}">
<h2>Session {{.Number}}: {{.Title}}</h2>
{{range .Artifacts}}
<details>
<summary>{{.Label}}</summary>
{{.HTML}}
</details>
{{end}}
</article>
{{end}}
</section>
{{end}}
<footer>Generated {{.GeneratedAt}}</footer>
</main>
<script type="module">
import mermaid from "https://cdn.jsdelivr.net/npm/mermaid@10/dist/mermaid.esm.min.mjs";
mermaid.initialize({ startOnLoad: true });
</script>
</body>
</html>
`) + "\n"))
