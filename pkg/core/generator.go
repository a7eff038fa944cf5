package core

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"maps"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/aretw0/scribe/internal/logging"
	"github.com/aretw0/scribe/pkg/content"
	"github.com/aretw0/scribe/pkg/metrics"
	"github.com/aretw0/scribe/pkg/substitute"
)

// Generator turns a source file and a template into the index and history
// documents. It holds no per-file state; one Generator serves any number of
// sequential calls.
type Generator struct {
	dirs     DirectoryService
	meta     MetadataService
	writer   FileWriter
	content  ContentSource
	kinds    []string
	maxLen   int
	engine   *substitute.Engine
	now      func() time.Time
	newID    func() string
	logger   *slog.Logger
	recorder metrics.Recorder

	mu      sync.RWMutex
	lastRun Outcome
	runs    int
	fails   int
}

// GeneratorOption configures a Generator.
type GeneratorOption func(*Generator)

// WithGeneratorLogger sets the logger.
func WithGeneratorLogger(l *slog.Logger) GeneratorOption {
	return func(g *Generator) { g.logger = logging.OrNop(l) }
}

// WithWriter sets the FileWriter used for output files.
func WithWriter(w FileWriter) GeneratorOption {
	return func(g *Generator) { g.writer = w }
}

// WithContent enables supplementary content for the given kinds. Each kind
// becomes an ai_<kind> variable.
func WithContent(src ContentSource, kinds ...string) GeneratorOption {
	return func(g *Generator) {
		g.content = src
		if len(kinds) > 0 {
			g.kinds = slices.Clone(kinds)
		}
	}
}

// WithContentMaxLength passes n to content providers as an output-size hint
// in runes. Zero means no hint.
func WithContentMaxLength(n int) GeneratorOption {
	return func(g *Generator) {
		if n >= 0 {
			g.maxLen = n
		}
	}
}

// WithClock sets the time source for generated_at and builtin placeholders.
func WithClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		if now != nil {
			g.now = now
		}
	}
}

// WithIDGenerator overrides how run IDs are produced.
func WithIDGenerator(fn func() string) GeneratorOption {
	return func(g *Generator) {
		if fn != nil {
			g.newID = fn
		}
	}
}

// WithGeneratorRecorder sets the metrics recorder.
func WithGeneratorRecorder(r metrics.Recorder) GeneratorOption {
	return func(g *Generator) {
		if r != nil {
			g.recorder = r
		}
	}
}

// NewGenerator creates a Generator over the given collaborators. A FileWriter
// must be supplied with WithWriter unless dirs also implements FileWriter.
func NewGenerator(dirs DirectoryService, meta MetadataService, opts ...GeneratorOption) *Generator {
	g := &Generator{
		dirs:     dirs,
		meta:     meta,
		kinds:    content.DefaultKinds(),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   logging.NewNop(),
		recorder: metrics.NoopRecorder{},
	}
	if w, ok := dirs.(FileWriter); ok {
		g.writer = w
	}
	for _, opt := range opts {
		opt(g)
	}
	g.engine = substitute.New(substitute.WithClock(g.now))
	return g
}

// Generate writes the index and history documents for filePath.
//
// Metadata failures never abort generation; the affected variables fall
// back to "unknown". A malformed template body or a failed backup,
// substitution or write does, reported as a *GenerationError naming the step.
// Template syntax is checked before anything touches the output directory.
func (g *Generator) Generate(ctx context.Context, filePath string, tmpl Template, custom substitute.Variables, opts GenerateOptions) (out Outcome, err error) {
	start := g.now()
	defer func() { g.finish(out, err, g.now().Sub(start)) }()

	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}
	if strings.TrimSpace(tmpl.Index) == "" && strings.TrimSpace(tmpl.History) == "" {
		return Outcome{}, fmt.Errorf("template %q: %w: both bodies are empty", tmpl.Name, ErrInvalidTemplate)
	}
	for _, kind := range FileKinds() {
		if issues := substitute.ValidateSyntax(tmpl.Body(kind)); len(issues) > 0 {
			return Outcome{}, &GenerationError{Op: OpTemplate, Kind: kind, Cause: &TemplateError{Template: tmpl.Name, Issues: issues}}
		}
	}

	log := g.logger.With("source", filePath, "template", tmpl.Name)

	dir, err := g.dirs.EnsureOutputDir(ctx, filePath)
	if err != nil {
		return Outcome{}, &GenerationError{Op: OpPrepare, Path: filePath, Cause: err}
	}
	existing, err := g.dirs.FindExisting(dir)
	if err != nil {
		return Outcome{}, &GenerationError{Op: OpPrepare, Path: dir, Cause: err}
	}

	out = Outcome{
		RunID:     g.newID(),
		Source:    filePath,
		OutputDir: dir,
		Files:     make(map[FileKind]string, 2),
		Sizes:     make(map[FileKind]int, 2),
	}

	if opts.Backup && anyTrue(existing) {
		backed, err := g.dirs.Backup(ctx, dir)
		if err != nil {
			return Outcome{}, &GenerationError{Op: OpBackup, Path: dir, Cause: err}
		}
		out.BackedUp = backed
		log.Info("backed up existing documentation", "files", len(backed))
	}

	vars, kinds, err := g.buildContext(ctx, filePath, tmpl, custom, true)
	if err != nil {
		return Outcome{}, err
	}
	out.Content = kinds

	rendered := make(map[FileKind]string, 2)
	for _, kind := range FileKinds() {
		res, err := g.engine.Render(tmpl.Body(kind), vars)
		if err != nil {
			return Outcome{}, &GenerationError{Op: OpSubstitute, Kind: kind, Cause: err}
		}
		if len(res.Unresolved) > 0 {
			log.Debug("unresolved placeholders left verbatim", "kind", kind, "names", res.Unresolved)
		}
		rendered[kind] = res.Text
	}

	if g.writer == nil {
		return Outcome{}, &GenerationError{Op: OpWrite, Path: dir, Cause: errors.New("no file writer configured")}
	}
	for _, kind := range FileKinds() {
		path := g.dirs.OutputPath(dir, kind)
		if err := g.writer.WriteText(path, rendered[kind]); err != nil {
			g.recorder.IncWriteFailure(string(kind))
			return Outcome{}, &GenerationError{Op: OpWrite, Path: path, Kind: kind, Cause: err}
		}
		out.Files[kind] = path
		out.Sizes[kind] = len(rendered[kind])
	}

	out.Duration = g.now().Sub(start)
	log.Info("documentation generated", "run_id", out.RunID, "dir", dir)
	return out, nil
}

func (g *Generator) finish(out Outcome, err error, d time.Duration) {
	result := metrics.ResultSuccess
	switch {
	case err == nil:
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		result = metrics.ResultCancelled
	default:
		result = metrics.ResultFailed
	}
	g.recorder.ObserveGeneration(result, d)

	g.mu.Lock()
	defer g.mu.Unlock()
	g.runs++
	if err != nil {
		g.fails++
		return
	}
	g.lastRun = out
}

// buildContext assembles variables from lowest to highest precedence:
// file-derived values and supplementary content, template defaults, then
// custom values. With live false, supplementary content is filled with
// placeholder text instead of calling the content source.
func (g *Generator) buildContext(ctx context.Context, filePath string, tmpl Template, custom substitute.Variables, live bool) (substitute.Variables, []string, error) {
	vars := g.fileVariables(ctx, filePath)

	var kinds []string
	if g.content != nil {
		req := content.Request{Target: filePath, Context: maps.Clone(vars), MaxLength: g.maxLen}
		var generated map[string]string
		if live {
			var err error
			generated, err = g.content.Generate(ctx, req, g.kinds)
			if err != nil {
				return nil, nil, &GenerationError{Op: OpContent, Path: filePath, Cause: err}
			}
		} else {
			generated = make(map[string]string, len(g.kinds))
			for _, kind := range g.kinds {
				req.Kind = kind
				generated[kind] = content.PlaceholderText(req)
			}
		}
		for _, kind := range slices.Sorted(maps.Keys(generated)) {
			vars["ai_"+kind] = generated[kind]
			kinds = append(kinds, kind)
		}
	}

	vars["template_name"] = tmpl.Name
	vars["template_description"] = tmpl.Description
	vars["generated_at"] = g.now().Format(time.RFC3339)
	maps.Copy(vars, tmpl.Defaults)

	maps.Copy(vars, custom)
	return vars, kinds, nil
}

const unknown = "unknown"

func (g *Generator) fileVariables(ctx context.Context, filePath string) substitute.Variables {
	vars := substitute.Variables{
		"filename":       unknown,
		"file_extension": unknown,
		"file_stem":      unknown,
		"file_type":      unknown,
		"file_category":  unknown,
		"file_size":      unknown,
		"file_path":      filePath,
		"is_binary":      unknown,
	}
	if g.meta == nil {
		return vars
	}
	md, err := g.meta.Extract(ctx, filePath)
	if err != nil {
		g.logger.Warn("metadata extraction failed, using fallbacks", "source", filePath, "error", err)
		return vars
	}
	vars["filename"] = orUnknown(md.Name)
	vars["file_extension"] = orUnknown(md.Extension)
	vars["file_stem"] = orUnknown(md.Stem)
	vars["file_type"] = orUnknown(md.Type)
	vars["file_category"] = orUnknown(md.Category)
	vars["file_size"] = md.Size
	vars["is_binary"] = md.IsBinary
	if md.Path != "" {
		vars["file_path"] = md.Path
	}
	return vars
}

func orUnknown(s string) string {
	if s == "" {
		return unknown
	}
	return s
}

func anyTrue(m map[FileKind]bool) bool {
	for _, v := range m {
		if v {
			return true
		}
	}
	return false
}

// Preview renders both bodies without writing anything or calling the
// content source.
func (g *Generator) Preview(ctx context.Context, filePath string, tmpl Template, custom substitute.Variables) (PreviewReport, error) {
	vars, _, err := g.buildContext(ctx, filePath, tmpl, custom, false)
	if err != nil {
		return PreviewReport{}, err
	}

	report := PreviewReport{
		Source:   filePath,
		Bodies:   make(map[FileKind]BodyPreview, 2),
		Rendered: make(map[FileKind]string, 2),
		Ready:    true,
	}
	if dir, err := g.dirs.ResolveOutputDir(filePath); err == nil {
		report.OutputDir = dir
	}

	for _, kind := range FileKinds() {
		body := tmpl.Body(kind)
		bp := BodyPreview{
			Preview: g.engine.Preview(body, vars),
			Syntax:  substitute.ValidateSyntax(body),
		}
		if len(bp.Syntax) > 0 || len(bp.Unresolved) > 0 {
			report.Ready = false
		}
		report.Bodies[kind] = bp

		res, err := g.engine.Render(body, vars)
		if err != nil {
			return PreviewReport{}, &GenerationError{Op: OpSubstitute, Kind: kind, Cause: err}
		}
		report.Rendered[kind] = res.Text
	}
	return report, nil
}

// Validate checks whether a generation would succeed and produce complete
// output. It never writes anything.
func (g *Generator) Validate(ctx context.Context, filePath string, tmpl Template, custom substitute.Variables) []Issue {
	var issues []Issue

	if g.meta != nil {
		if _, err := g.meta.Extract(ctx, filePath); err != nil && (errors.Is(err, fs.ErrNotExist) || errors.Is(err, ErrSourceNotFound)) {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeSourceMissing, Message: fmt.Sprintf("source file %q does not exist", filePath)})
		}
	}

	vars, _, err := g.buildContext(ctx, filePath, tmpl, custom, false)
	if err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Code: CodeUnresolved, Message: err.Error()})
		return issues
	}

	for _, kind := range FileKinds() {
		body := tmpl.Body(kind)
		if strings.TrimSpace(body) == "" {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeEmptyBody, Kind: kind, Message: "template body is empty"})
			continue
		}
		for _, si := range substitute.ValidateSyntax(body) {
			issues = append(issues, Issue{Severity: SeverityError, Code: CodeSyntax, Kind: kind, Message: si.String()})
		}
		for _, name := range g.engine.Preview(body, vars).Unresolved {
			issues = append(issues, Issue{Severity: SeverityWarning, Code: CodeUnresolved, Kind: kind, Message: fmt.Sprintf("placeholder {{%s}} has no value", name)})
		}
	}

	for _, name := range tmpl.Required {
		if _, ok := vars[name]; ok || g.engine.IsBuiltin(name) {
			continue
		}
		issues = append(issues, Issue{Severity: SeverityError, Code: CodeRequiredMissing, Message: fmt.Sprintf("required variable %q is not provided", name)})
	}

	if _, err := g.dirs.ResolveOutputDir(filePath); err != nil {
		issues = append(issues, Issue{Severity: SeverityError, Code: CodeOutputDir, Message: err.Error()})
	}
	return issues
}

// Stats measures both bodies as they would be rendered.
func (g *Generator) Stats(ctx context.Context, filePath string, tmpl Template, custom substitute.Variables) (Stats, error) {
	vars, _, err := g.buildContext(ctx, filePath, tmpl, custom, false)
	if err != nil {
		return Stats{}, err
	}

	st := Stats{Template: tmpl.Name, Bodies: make(map[FileKind]BodyStats, 2)}
	for _, kind := range FileKinds() {
		res, err := g.engine.Render(tmpl.Body(kind), vars)
		if err != nil {
			return Stats{}, &GenerationError{Op: OpSubstitute, Kind: kind, Cause: err}
		}
		bs := BodyStats{
			Length:     len(res.Text),
			Lines:      countLines(res.Text),
			Found:      len(res.Found),
			Resolved:   len(res.Resolved),
			Unresolved: len(res.Unresolved),
			Coverage:   1,
		}
		if bs.Found > 0 {
			bs.Coverage = float64(bs.Resolved) / float64(bs.Found)
		}
		o := scanMarkdown(res.Text)
		bs.Headings = o.headings
		bs.Links = o.links
		st.Bodies[kind] = bs
	}
	return st, nil
}

func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
