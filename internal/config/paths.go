package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// OutputPaths resolves the course-scoped directory layout. Directories are
// always subfolders of <base>/<course_name>/.
type OutputPaths struct {
	Base       string
	CourseName string
	Outlines   string
	Modules    string
	Website    string
	Logs       string
}

func (s *Store) OutputPaths(course string) OutputPaths {
	if strings.TrimSpace(course) == "" {
		if meta, _, err := s.CourseInfo(""); err == nil {
			course = meta.Name
		}
	}
	root := filepath.Join(s.output.BaseDir, Slug(course))
	return OutputPaths{
		Base:       s.output.BaseDir,
		CourseName: course,
		Outlines:   filepath.Join(root, s.output.Directories.Outlines),
		Modules:    filepath.Join(root, s.output.Directories.Modules),
		Website:    filepath.Join(root, s.output.Directories.Website),
		Logs:       filepath.Join(root, s.output.Directories.Logs),
	}
}

// RunLedgerPath is the sqlite file shared by every stage run under one
// output base.
func (s *Store) RunLedgerPath() string {
	return filepath.Join(s.output.BaseDir, "courseforge_runs.db")
}

// ModuleDir returns <modules>/module_<MM>_<slug>.
func (p OutputPaths) ModuleDir(moduleID int, moduleName string) string {
	return filepath.Join(p.Modules, fmt.Sprintf("module_%02d_%s", moduleID, Slug(moduleName)))
}

// SessionDir returns <modules>/module_<MM>_<slug>/session_<SS>.
func (p OutputPaths) SessionDir(moduleID int, moduleName string, sessionNum int) string {
	return filepath.Join(p.ModuleDir(moduleID, moduleName), fmt.Sprintf("session_%02d", sessionNum))
}

// StageLogPath returns <logs>/<stage>_<YYYYMMDD_HHMMSS>.log.
func (p OutputPaths) StageLogPath(stage string, now time.Time) string {
	return filepath.Join(p.Logs, fmt.Sprintf("%s_%s.log", stage, now.Format("20060102_150405")))
}

// OutlineJSONPath returns <outlines>/course_outline_<YYYYMMDD_HHMMSS>.json.
func (p OutputPaths) OutlineJSONPath(now time.Time) string {
	return filepath.Join(p.Outlines, fmt.Sprintf("course_outline_%s.json", now.Format("20060102_150405")))
}

// OutlineMarkdownPath returns the human-review twin of the outline JSON.
func (p OutputPaths) OutlineMarkdownPath(now time.Time) string {
	return filepath.Join(p.Outlines, fmt.Sprintf("course_outline_%s.md", now.Format("20060102_150405")))
}

// Slug lowercases, ASCII-folds and collapses runs of non-alphanumerics to
// single underscores.
func Slug(name string) string {
	var b strings.Builder
	lastUnderscore := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		case r > unicode.MaxASCII:
			if folded := foldASCII(r); folded != 0 {
				b.WriteRune(folded)
				lastUnderscore = false
			} else if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		default:
			if !lastUnderscore && b.Len() > 0 {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

// foldASCII maps the common Latin-1 accented letters onto plain ASCII.
func foldASCII(r rune) rune {
	switch r {
	case 'á', 'à', 'â', 'ä', 'ã', 'å':
		return 'a'
	case 'é', 'è', 'ê', 'ë':
		return 'e'
	case 'í', 'ì', 'î', 'ï':
		return 'i'
	case 'ó', 'ò', 'ô', 'ö', 'õ':
		return 'o'
	case 'ú', 'ù', 'û', 'ü':
		return 'u'
	case 'ñ':
		return 'n'
	case 'ç':
		return 'c'
	case 'ß':
		return 's'
	default:
		return 0
	}
}
