// Package notes loads the study note library and resolves the sibling
// folders study artifacts are saved into.
package notes

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the study artifact category, one per study mode.
type Kind string

const (
	KindInterview Kind = "interview"
	KindExercise  Kind = "exercise"
	KindChallenge Kind = "challenge"
)

// Note is a single study note in the library.
type Note struct {
	// Path is the absolute path of the note file.
	Path string

	// RelPath is the path relative to the library root.
	RelPath string

	// Title is the display name (file name without extension).
	Title string

	// MIME is "text/markdown" or "application/pdf".
	MIME string

	Size int64
}

// IsPDF reports whether the note is a PDF document.
func (n Note) IsPDF() bool {
	return n.MIME == "application/pdf"
}

// Content reads the note body. Markdown comes back as text; PDFs as raw
// bytes for provider attachment.
func (n Note) Content() ([]byte, error) {
	data, err := os.ReadFile(n.Path)
	if err != nil {
		return nil, fmt.Errorf("read note %s: %w", n.RelPath, err)
	}
	return data, nil
}

// Library lists notes under a root directory.
type Library struct {
	root    string
	folders FolderNames
}

// FolderNames are the configured artifact folder names. Notes inside these
// folders are study outputs, not inputs, and are excluded from listings.
type FolderNames struct {
	Interviews string
	Exercises  string
	Challenges string
}

// NewLibrary creates a Library over root.
func NewLibrary(root string, folders FolderNames) *Library {
	return &Library{root: root, folders: folders}
}

// Root returns the library root directory.
func (l *Library) Root() string {
	return l.root
}

// List walks the library and returns all notes sorted by relative path.
// Hidden files, artifact folders, and non-note extensions are skipped.
func (l *Library) List() ([]Note, error) {
	var out []Note

	err := filepath.WalkDir(l.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := d.Name()

		if d.IsDir() {
			if path == l.root {
				return nil
			}
			if strings.HasPrefix(name, ".") || l.isArtifactFolder(name) {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") {
			return nil
		}
		mime := noteMIME(name)
		if mime == "" {
			return nil
		}

		info, err := d.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(l.root, path)
		if err != nil {
			return err
		}

		out = append(out, Note{
			Path:    path,
			RelPath: rel,
			Title:   strings.TrimSuffix(name, filepath.Ext(name)),
			MIME:    mime,
			Size:    info.Size(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk notes dir: %w", err)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].RelPath < out[j].RelPath })
	return out, nil
}

// Find returns the note whose path or relative path matches ref.
func (l *Library) Find(ref string) (*Note, error) {
	all, err := l.List()
	if err != nil {
		return nil, err
	}
	abs, _ := filepath.Abs(ref)
	for i := range all {
		if all[i].RelPath == ref || all[i].Path == ref || all[i].Path == abs {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("note not found: %s", ref)
}

func (l *Library) isArtifactFolder(name string) bool {
	return name == l.folders.Interviews ||
		name == l.folders.Exercises ||
		name == l.folders.Challenges
}

func noteMIME(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".md", ".markdown":
		return "text/markdown"
	case ".pdf":
		return "application/pdf"
	default:
		return ""
	}
}
