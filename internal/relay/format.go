package relay

import (
	"fmt"
	"html"
	"strings"
	"unicode"
)

const missingField = "n/a"

const studentTemplate = `
🎓 <b>New recording</b>

👤 <b>Student:</b> %s
👥 <b>Group:</b> %s
📚 <b>Set:</b> %s
📅 <b>Date:</b> %s
🕐 <b>Time:</b> %s

💬 <b>Message:</b>
%s
`

// Formatter composes the outbound text and the audio caption for a request.
// Implementations must be deterministic.
type Formatter interface {
	Text(req Request) string
	Caption(req Request) string
}

// FormatterFor picks the student layout when structured student details
// are present, and the verbatim layout otherwise.
func FormatterFor(req Request) Formatter {
	if req.StudentInfo != nil {
		return StudentFormat{}
	}
	return PlainFormat{}
}

// PlainFormat sends the caller's message verbatim and derives the caption
// from the file name.
type PlainFormat struct{}

func (PlainFormat) Text(req Request) string {
	return req.Message
}

func (PlainFormat) Caption(req Request) string {
	return recordingCaption(fileNameTokens(req.FileName))
}

// StudentFormat renders a labelled HTML block with the student's details.
type StudentFormat struct{}

func (StudentFormat) Text(req Request) string {
	var s StudentInfo
	if req.StudentInfo != nil {
		s = *req.StudentInfo
	}
	var setName string
	if req.SetInfo != nil {
		setName = req.SetInfo.Name
	}

	text := fmt.Sprintf(studentTemplate,
		escapeOrMissing(joinNonEmpty(s.FirstName, s.Surname)),
		escapeOrMissing(s.Group),
		escapeOrMissing(setName),
		escapeOrMissing(s.Date),
		escapeOrMissing(s.Time),
		req.Message,
	)
	return strings.TrimSpace(text)
}

func (StudentFormat) Caption(req Request) string {
	if req.StudentInfo != nil {
		if name := joinNonEmpty(req.StudentInfo.FirstName, req.StudentInfo.Surname); name != "" {
			return "🎤 Recording from " + name
		}
	}
	return PlainFormat{}.Caption(req)
}

// fileNameTokens returns at most the first two tokens of name, split on
// underscores and whitespace.
func fileNameTokens(name string) []string {
	tokens := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || unicode.IsSpace(r)
	})
	if len(tokens) > 2 {
		tokens = tokens[:2]
	}
	return tokens
}

func recordingCaption(tokens []string) string {
	if len(tokens) == 0 {
		return "🎤 Recording"
	}
	return "🎤 Recording from " + strings.Join(tokens, " ")
}

func joinNonEmpty(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}

func escapeOrMissing(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return missingField
	}
	return html.EscapeString(s)
}
