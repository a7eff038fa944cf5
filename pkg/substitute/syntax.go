package substitute

import "fmt"

// IssueKind classifies a template syntax problem.
type IssueKind string

const (
	IssueUnmatchedOpen        IssueKind = "unmatched_open"
	IssueUnmatchedClose       IssueKind = "unmatched_close"
	IssueUnclosedPlaceholder  IssueKind = "unclosed_placeholder"
	IssueMalformedPlaceholder IssueKind = "malformed_placeholder"
)

// Issue is a single syntax problem found by ValidateSyntax.
// Offset is the byte offset of the offending sequence; Line and Column are 1-based.
type Issue struct {
	Kind    IssueKind `json:"kind"`
	Offset  int       `json:"offset"`
	Line    int       `json:"line"`
	Column  int       `json:"column"`
	Text    string    `json:"text"`
	Message string    `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d:%d: %s (%q)", i.Line, i.Column, i.Message, i.Text)
}

// ValidateSyntax reports malformed brace sequences without substituting anything.
// It runs in a single forward pass over tmpl.
func ValidateSyntax(tmpl string) []Issue {
	var issues []Issue
	n := len(tmpl)
	line, lineStart := 1, 0

	add := func(kind IssueKind, start, end int, msg string) {
		issues = append(issues, Issue{
			Kind:    kind,
			Offset:  start,
			Line:    line,
			Column:  start - lineStart + 1,
			Text:    tmpl[start:end],
			Message: msg,
		})
	}

	i := 0
	for i < n {
		switch tmpl[i] {
		case '\n':
			i++
			line, lineStart = line+1, i
		case '{':
			if i+1 >= n || tmpl[i+1] != '{' {
				add(IssueUnmatchedOpen, i, i+1, "unmatched opening brace '{'")
				i++
				continue
			}
			// Look for the end of the placeholder body. The scan stops at any
			// brace or newline so no byte is visited more than twice overall.
			j := i + 2
			for j < n && tmpl[j] != '}' && tmpl[j] != '{' && tmpl[j] != '\n' {
				j++
			}
			if j >= n || tmpl[j] != '}' {
				add(IssueUnclosedPlaceholder, i, j, "placeholder opened with '{{' is never closed")
				i = j
				continue
			}
			if j+1 >= n || tmpl[j+1] != '}' {
				add(IssueUnclosedPlaceholder, i, j+1, "placeholder closed with a single '}'")
				i = j + 1
				continue
			}
			body := tmpl[i+2 : j]
			if !validName(body) {
				add(IssueMalformedPlaceholder, i, j+2, "placeholder name must match [A-Za-z0-9_]+")
			}
			i = j + 2
		case '}':
			if i+1 < n && tmpl[i+1] == '}' {
				add(IssueUnmatchedClose, i, i+2, "unmatched closing braces '}}'")
				i += 2
				continue
			}
			add(IssueUnmatchedClose, i, i+1, "unmatched closing brace '}'")
			i++
		default:
			i++
		}
	}
	return issues
}

func validName(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_':
		default:
			return false
		}
	}
	return true
}
