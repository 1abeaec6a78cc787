package project

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gddoc/internal/config"
	"gddoc/internal/diag"
	"gddoc/internal/errors"
	"gddoc/internal/logging"
	"gddoc/internal/report"
	"gddoc/internal/rst"
	"gddoc/internal/scene"
	"gddoc/internal/storage"
	"gddoc/internal/symbols"
)

// Runner executes one full generation run: discover inputs, load class
// docs, resolve and bind scenes, render pages, refresh the incremental
// index, and write the run summary.
type Runner struct {
	cfg   *config.Config
	log   *logging.Logger
	diags *diag.Reporter

	// Force regenerates even when the index says no input changed.
	Force bool
}

// NewRunner creates a runner for a loaded configuration.
func NewRunner(cfg *config.Config, log *logging.Logger) *Runner {
	if log == nil {
		log = logging.Discard()
	}
	return &Runner{
		cfg:   cfg,
		log:   log,
		diags: diag.NewReporter(log),
	}
}

// Diags exposes the run's diagnostic reporter.
func (r *Runner) Diags() *diag.Reporter { return r.diags }

// discover applies project overrides and walks the project tree.
func (r *Runner) discover(root string) (*Files, error) {
	if o, ok, err := LoadOverrides(root); err != nil {
		return nil, err
	} else if ok {
		r.log.Debug("Applying project overrides", map[string]interface{}{
			"file": OverridesFile,
		})
		o.Apply(r.cfg)
	}

	files, err := Discover(root, r.cfg.Paths.ClassDocs, r.cfg.Scan.Ignore)
	if err != nil {
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	r.log.Info("Discovered project files", map[string]interface{}{
		"scenes":    len(files.Scenes),
		"classDocs": len(files.ClassDocs),
	})
	return files, nil
}

// build loads the class docs, resolves the scene batch, and binds
// scripts to the resolved graphs.
func (r *Runner) build(root string, files *Files) (*symbols.Table, *scene.Registry) {
	table := r.loadClassDocs(root, files.ClassDocs)
	registry := r.resolveScenes(root, files.Scenes)

	binder := scene.NewBinder(table, r.diags, root)
	for _, path := range registry.Paths() {
		if g, ok := registry.Lookup(path); ok {
			binder.Bind(g)
		}
	}
	return table, registry
}

// Run performs the whole generation pass. Per-file problems accumulate
// as diagnostics in the returned report; the error return is reserved
// for environment failures (unreadable project, unwritable output).
// When the incremental index reports every input unchanged since a
// clean previous run, the pass is skipped unless Force is set.
func (r *Runner) Run() (*report.Report, error) {
	root := r.cfg.ProjectRoot

	files, err := r.discover(root)
	if err != nil {
		return nil, err
	}

	var db *storage.DB
	if r.cfg.Index.Enabled {
		db, err = storage.Open(filepath.Join(root, filepath.FromSlash(r.cfg.Index.Path)), r.log)
		if err != nil {
			return nil, err
		}
		defer db.Close()
	}

	rep := &report.Report{
		Project:     root,
		GeneratedAt: time.Now().UTC(),
	}

	var hashes map[string]string
	if db != nil {
		hashes, err = r.scanInputs(db, root, files, rep)
		if err != nil {
			return nil, err
		}
		if !r.Force && rep.FilesChanged == 0 && r.upToDate(db, root) {
			r.log.Info("Inputs unchanged since last run, skipping regeneration", map[string]interface{}{
				"files": rep.FilesTotal,
			})
			if last, ok, lerr := db.LastRun(); lerr == nil && ok {
				rep.RunID = last.ID
			}
			return rep, nil
		}
	}

	table, registry := r.build(root, files)
	rep.Classes = table.Len()
	rep.Scenes = registry.Len()

	if err := r.renderPages(root, table, registry, rep); err != nil {
		return nil, err
	}
	rep.Diagnostics = r.diags.Snapshot()

	if db != nil {
		if err := r.commitIndex(db, files, hashes, rep); err != nil {
			return nil, err
		}
	}

	if r.cfg.Paths.Report != "" {
		if err := report.Write(filepath.Join(root, r.cfg.Paths.Report), rep); err != nil {
			return nil, err
		}
	}
	return rep, nil
}

// Check performs the same validation as Run without writing pages, the
// index, or the report: pages render into the void so transpilation
// diagnostics still fire. It is the dry-run used by CI gates.
func (r *Runner) Check() (*report.Report, error) {
	root := r.cfg.ProjectRoot

	files, err := r.discover(root)
	if err != nil {
		return nil, err
	}
	table, registry := r.build(root, files)

	rep := &report.Report{
		Project:     root,
		GeneratedAt: time.Now().UTC(),
		Classes:     table.Len(),
		Scenes:      registry.Len(),
	}

	renderer := rst.NewRenderer(table, r.diags)
	for _, name := range table.Names() {
		cls, _ := table.Class(name)
		renderer.WriteClassPage(io.Discard, cls)
	}
	for _, path := range registry.Paths() {
		g, _ := registry.Lookup(path)
		renderer.WriteScenePage(io.Discard, g)
	}

	rep.Diagnostics = r.diags.Snapshot()
	return rep, nil
}

// loadClassDocs parses every discovered XML class document into the
// symbol table. Unreadable or malformed documents are diagnostics, not
// run failures.
func (r *Runner) loadClassDocs(root string, docs []string) *symbols.Table {
	table := symbols.NewTable()
	for _, rel := range docs {
		f, err := os.Open(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			r.diags.Errorf("%s: cannot read class document: %v", rel, err)
			continue
		}
		cls, err := symbols.ParseClassXML(f)
		f.Close()
		if err != nil {
			r.diags.Errorf("%s: %v", rel, err)
			continue
		}
		table.Add(cls)
	}
	return table
}

// resolveScenes reads every scene file and runs the retry driver over
// the batch. A stalled batch is already reported as a diagnostic; the
// scenes that did resolve are still rendered.
func (r *Runner) resolveScenes(root string, scenes []string) *scene.Registry {
	registry := scene.NewRegistry()
	driver := scene.NewDriver(registry, r.diags)

	if pattern := r.cfg.Scan.IgnoreNode; pattern != "" {
		re, err := regexp.Compile(pattern)
		if err != nil {
			r.diags.Errorf("%v", errors.New(errors.ConfigInvalid,
				fmt.Sprintf("bad node ignore pattern %q: %v", pattern, err)))
		} else {
			driver.SetIgnore(re)
		}
	}

	batch := make([]scene.File, 0, len(scenes))
	for _, rel := range scenes {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			r.diags.Errorf("%s: cannot read scene: %v", rel, err)
			continue
		}
		batch = append(batch, scene.File{Path: rel, Source: string(data)})
	}

	// A batch failure was reported inside ResolveAll; nothing more to do
	// with it here.
	_ = driver.ResolveAll(batch)
	return registry
}

// renderPages writes one page per class and per scene plus the index
// page tying them together.
func (r *Runner) renderPages(root string, table *symbols.Table, registry *scene.Registry, rep *report.Report) error {
	outDir := filepath.Join(root, filepath.FromSlash(r.cfg.Paths.Output))
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	renderer := rst.NewRenderer(table, r.diags)
	var pageNames []string

	for _, name := range table.Names() {
		cls, _ := table.Class(name)
		page := "class_" + strings.ToLower(name) + ".rst"
		if err := writePage(outDir, page, func(f *os.File) {
			renderer.WriteClassPage(f, cls)
		}); err != nil {
			return err
		}
		pageNames = append(pageNames, page)
	}

	for _, path := range registry.Paths() {
		g, _ := registry.Lookup(path)
		page := "scene_" + rst.SceneSlug(path) + ".rst"
		if err := writePage(outDir, page, func(f *os.File) {
			renderer.WriteScenePage(f, g)
		}); err != nil {
			return err
		}
		pageNames = append(pageNames, page)
	}

	if err := writePage(outDir, "index.rst", func(f *os.File) {
		writeIndexPage(f, pageNames)
	}); err != nil {
		return err
	}

	rep.Pages = len(pageNames) + 1
	return nil
}

func writePage(dir, name string, render func(*os.File)) error {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return fmt.Errorf("failed to create page %s: %w", name, err)
	}
	render(f)
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write page %s: %w", name, err)
	}
	return nil
}

func writeIndexPage(f *os.File, pages []string) {
	fmt.Fprint(f, "Project Documentation\n=====================\n\n")
	fmt.Fprint(f, ".. toctree::\n   :maxdepth: 1\n\n")
	for _, page := range pages {
		fmt.Fprintf(f, "   %s\n", strings.TrimSuffix(page, ".rst"))
	}
}

// scanInputs hashes every input and asks the index which of them
// changed since the last recorded state. Unreadable files are skipped
// here; the main pass reports them.
func (r *Runner) scanInputs(db *storage.DB, root string, files *Files, rep *report.Report) (map[string]string, error) {
	hashes := make(map[string]string)

	scan := func(rel string) error {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			return nil
		}
		hash := storage.HashContent(data)
		hashes[rel] = hash

		changed, err := db.FileChanged(rel, hash)
		if err != nil {
			return err
		}
		if changed {
			rep.FilesChanged++
		}
		rep.FilesTotal++
		return nil
	}

	for _, rel := range files.Scenes {
		if err := scan(rel); err != nil {
			return nil, err
		}
	}
	for _, rel := range files.ClassDocs {
		if err := scan(rel); err != nil {
			return nil, err
		}
	}
	return hashes, nil
}

// upToDate reports whether the previous run finished clean and its
// output is still on disk. A run that ended with errors never counts as
// up to date, so fixing an input always triggers regeneration.
func (r *Runner) upToDate(db *storage.DB, root string) bool {
	last, ok, err := db.LastRun()
	if err != nil || !ok || last.Counts.Errors > 0 {
		return false
	}
	_, err = os.Stat(filepath.Join(root, filepath.FromSlash(r.cfg.Paths.Output), "index.rst"))
	return err == nil
}

// commitIndex persists the scanned hashes and the finished run record.
func (r *Runner) commitIndex(db *storage.DB, files *Files, hashes map[string]string, rep *report.Report) error {
	runID, err := db.StartRun()
	if err != nil {
		return err
	}
	rep.RunID = runID

	record := func(rel, kind string) error {
		hash, ok := hashes[rel]
		if !ok {
			return nil
		}
		return db.RecordFile(rel, hash, kind)
	}
	for _, rel := range files.Scenes {
		if err := record(rel, "scene"); err != nil {
			return err
		}
	}
	for _, rel := range files.ClassDocs {
		if err := record(rel, "classdoc"); err != nil {
			return err
		}
	}
	return db.FinishRun(runID, rep.FilesTotal, rep.FilesChanged, rep.Diagnostics)
}
