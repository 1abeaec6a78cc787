package scene

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"gddoc/internal/diag"
	"gddoc/internal/errors"
)

// File is one scene source queued for resolution.
type File struct {
	Path   string
	Source string
}

// Driver resolves a batch of scene files, retrying not-ready files until
// the batch settles. Scenes may instance each other in any declaration
// order, so a single pass is not enough in general.
type Driver struct {
	parser   *Parser
	registry *Registry
	diags    *diag.Reporter
}

// NewDriver creates a driver sharing the parser's registry and reporter.
func NewDriver(registry *Registry, diags *diag.Reporter) *Driver {
	return &Driver{
		parser:   NewParser(registry, diags),
		registry: registry,
		diags:    diags,
	}
}

// SetIgnore filters out nodes matching the pattern in every parsed
// scene.
func (d *Driver) SetIgnore(re *regexp.Regexp) {
	d.parser.Ignore = re
}

// ResolveAll parses every file, registering each scene as it becomes
// ready and re-queueing files that wait on an unregistered dependency. A
// dependency chain of length N settles within N passes. The moment a
// full pass resolves zero additional files, the remaining batch cannot
// make progress and ResolveAll reports a batch failure naming every
// unresolved file and whether its dependency is cyclic or absent from
// the batch altogether.
//
// Files that fail fatally (bad format, missing root) are consumed, not
// retried; their diagnostics were already reported by the parser.
func (d *Driver) ResolveAll(files []File) error {
	queue := files
	missing := make(map[string]string)

	for len(queue) > 0 {
		var requeue []File
		progress := 0
		for _, f := range queue {
			out := d.parser.Parse(f.Source, f.Path)
			switch out.Status {
			case Ready:
				d.registry.Register(f.Path, out.Graph)
				delete(missing, f.Path)
				progress++
			case NotReady:
				missing[f.Path] = out.Missing
				requeue = append(requeue, f)
			case Failed:
				delete(missing, f.Path)
				progress++
			}
		}
		if len(requeue) > 0 && progress == 0 {
			return d.stalled(requeue, missing)
		}
		queue = requeue
	}
	return nil
}

// stalled builds the batch-failure error. Each stuck file is classified
// by its recorded dependency: waiting on another stuck file means a
// dependency cycle, waiting on anything else means the dependency was
// never part of the batch.
func (d *Driver) stalled(stuck []File, missing map[string]string) error {
	inBatch := make(map[string]bool, len(stuck))
	for _, f := range stuck {
		inBatch[f.Path] = true
	}

	lines := make([]string, 0, len(stuck))
	for _, f := range stuck {
		dep := missing[f.Path]
		cause := "absent"
		if inBatch[dep] {
			cause = "cyclic"
		}
		lines = append(lines, fmt.Sprintf("%s (waiting on %s, %s)", f.Path, dep, cause))
	}
	sort.Strings(lines)

	err := errors.New(errors.SceneBatchStalled,
		fmt.Sprintf("scene resolution stalled with %d unresolved file(s): %s",
			len(lines), strings.Join(lines, "; ")))
	d.diags.Errorf("%v", err)
	return err
}
