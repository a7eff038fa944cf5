// Package scribe is the Composition Root for the Scribe documentation generator.
//
// It wires the generation core (template substitution, content providers with
// retry and fallback) to the filesystem adapters using the Hexagonal
// Architecture pattern.
//
// For every source file Scribe writes two documents, an index and a history,
// by filling a template with variables drawn from the file's metadata, from
// optional generated content, from template defaults and finally from the
// caller's own values, which always win.
//
// Features:
//
//   - **Deterministic substitution**: `{{name}}` placeholders, builtins such as `{{date}}`,
//     unknown names left verbatim for later review.
//   - **Pluggable content**: providers registered on a `content.Manager`, selected per kind,
//     retried with exponential backoff and replaced by placeholder text when they fail.
//   - **Safe writes**: existing documents are backed up and new ones written atomically.
//   - **Dry runs**: `Preview`, `Validate` and `Stats` never touch the output directory.
//
// Usage:
//
//	s, err := scribe.New("docs/files",
//		scribe.WithLogger(logger),
//		scribe.WithProvider(content.NewMock("canned")),
//	)
//
//	out, err := s.Generator.Generate(ctx, "cmd/app/main.go", tmpl, vars,
//		scribe.GenerateOptions{Backup: true})
package scribe
