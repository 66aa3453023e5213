// Package command turns the free text following the bot trigger into an action.
package command

import (
	"strings"
	"time"

	"github.com/Kerhoff/RemindBot/internal/dateparse"
)

// ListKeyword is the phrase that lists a chat's pending reminders
const ListKeyword = "list reminders"

// Kind classifies an interpreted command
type Kind int

const (
	// ParseFailure means no date expression was found
	ParseFailure Kind = iota
	// List asks for the chat's pending reminders
	List
	// MissingSubject means a date was found but nothing describes the event
	MissingSubject
	// CreateReminder carries a subject and an event date
	CreateReminder
)

func (k Kind) String() string {
	switch k {
	case List:
		return "list"
	case MissingSubject:
		return "missing_subject"
	case CreateReminder:
		return "create_reminder"
	default:
		return "parse_failure"
	}
}

// Action is the outcome of interpreting a command text
type Action struct {
	Kind    Kind
	Subject string
	EventAt time.Time
}

// DateParser finds date expressions in text. *dateparse.Parser implements it.
type DateParser interface {
	Parse(text string, base time.Time) ([]dateparse.Match, error)
}

// Interpreter classifies command texts
type Interpreter struct {
	parser DateParser
}

// NewInterpreter creates an Interpreter that resolves dates with parser
func NewInterpreter(parser DateParser) *Interpreter {
	return &Interpreter{parser: parser}
}

// Interpret classifies text. Relative dates are resolved against now.
func (i *Interpreter) Interpret(text string, now time.Time) Action {
	text = strings.TrimSpace(text)
	if strings.EqualFold(text, ListKeyword) {
		return Action{Kind: List}
	}

	matches, err := i.parser.Parse(text, now)
	if err != nil || len(matches) == 0 {
		return Action{Kind: ParseFailure}
	}

	first := matches[0]
	subject := collapseSpaces(removeMatch(text, first))
	if subject == "" {
		return Action{Kind: MissingSubject, EventAt: first.Time}
	}

	return Action{Kind: CreateReminder, Subject: subject, EventAt: first.Time}
}

// removeMatch cuts the matched date expression out of text, preferring the
// reported position and falling back to the first occurrence.
func removeMatch(text string, m dateparse.Match) string {
	end := m.Index + len(m.Text)
	if m.Index >= 0 && end <= len(text) && text[m.Index:end] == m.Text {
		return text[:m.Index] + " " + text[end:]
	}
	return strings.Replace(text, m.Text, " ", 1)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
