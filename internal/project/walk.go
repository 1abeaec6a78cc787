// Package project discovers a Godot project's documentation inputs and
// orchestrates a full generation run over them.
package project

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// Files holds the discovered inputs, project-relative with forward
// slashes.
type Files struct {
	Scenes    []string // .tscn scene files
	ClassDocs []string // .xml class documentation files
}

// Discover walks the project tree collecting scene and class-doc files.
// Scenes are picked up anywhere; class docs only under classDocsDir
// (slash-relative to root), or anywhere when classDocsDir is empty.
// Directories whose base name appears in ignoreDirs are skipped whole.
func Discover(root, classDocsDir string, ignoreDirs []string) (*Files, error) {
	skip := make(map[string]bool, len(ignoreDirs))
	for _, dir := range ignoreDirs {
		skip[dir] = true
	}
	docsPrefix := ""
	if classDocsDir != "" {
		docsPrefix = strings.TrimSuffix(classDocsDir, "/") + "/"
	}

	files := &Files{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		switch {
		case strings.HasSuffix(rel, ".tscn"):
			files.Scenes = append(files.Scenes, rel)
		case strings.HasSuffix(rel, ".xml"):
			if docsPrefix == "" || strings.HasPrefix(rel, docsPrefix) {
				files.ClassDocs = append(files.ClassDocs, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(files.Scenes)
	sort.Strings(files.ClassDocs)
	return files, nil
}
