package notes

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// Location describes where a note lives, independent of any file system
// handle, so artifact paths can be resolved and tested in isolation.
type Location struct {
	// Root is the library root directory.
	Root string

	// NoteRel is the note path relative to Root.
	NoteRel string
}

// LocationOf builds the Location for a note in a library.
func LocationOf(lib *Library, n Note) Location {
	return Location{Root: lib.Root(), NoteRel: n.RelPath}
}

// ArtifactDir resolves the directory study artifacts of the given kind are
// saved into: a folder named after the kind, sibling to the note's own
// folder (one level above it). For a note directly under the root, the
// folder is created under the root itself.
//
//	root/go/concurrency.md + interview  →  root/entrevistas
//	root/go/basics/slices.md + exercise →  root/go/exercicios
func ArtifactDir(loc Location, kind Kind, folders FolderNames) (string, error) {
	name, err := folderName(kind, folders)
	if err != nil {
		return "", err
	}

	noteDir := filepath.Dir(loc.NoteRel)
	if noteDir == "." {
		return filepath.Join(loc.Root, name), nil
	}

	parent := filepath.Dir(noteDir)
	if parent == "." {
		return filepath.Join(loc.Root, name), nil
	}
	return filepath.Join(loc.Root, parent, name), nil
}

// ArtifactPath resolves the full path of a new artifact file: the artifact
// directory plus a filename embedding the note title and a timestamp, so
// saves never clobber earlier files.
func ArtifactPath(loc Location, kind Kind, folders FolderNames, at time.Time) (string, error) {
	dir, err := ArtifactDir(loc, kind, folders)
	if err != nil {
		return "", err
	}

	base := filepath.Base(loc.NoteRel)
	title := strings.TrimSuffix(base, filepath.Ext(base))
	name := fmt.Sprintf("%s-%s.md", slugify(title), at.Format("2006-01-02-150405"))
	return filepath.Join(dir, name), nil
}

func folderName(kind Kind, folders FolderNames) (string, error) {
	switch kind {
	case KindInterview:
		return folders.Interviews, nil
	case KindExercise:
		return folders.Exercises, nil
	case KindChallenge:
		return folders.Challenges, nil
	default:
		return "", fmt.Errorf("unknown artifact kind: %q", kind)
	}
}

// slugify lowercases and replaces path-hostile runes with hyphens.
func slugify(s string) string {
	var b strings.Builder
	lastHyphen := false
	for _, r := range strings.ToLower(s) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		default:
			if !lastHyphen && b.Len() > 0 {
				b.WriteByte('-')
				lastHyphen = true
			}
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}
