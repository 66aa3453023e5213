// Package dateparse finds natural-language date expressions in free text.
package dateparse

import (
	"fmt"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules/common"
	"github.com/olebedev/when/rules/en"
)

// Match is a date expression found in a text
type Match struct {
	// Text is the matched substring as it appears in the input.
	Text  string
	Index int
	Time  time.Time
}

// Parser recognises English date expressions such as "next monday",
// "tomorrow at 5pm" or "march 3rd"
type Parser struct {
	w *when.Parser
}

// New creates a Parser with the English and common rule sets
func New() *Parser {
	w := when.New(nil)
	w.Add(en.All...)
	w.Add(common.All...)
	return &Parser{w: w}
}

// Parse returns the date expressions found in text, resolved relative to base.
// when merges overlapping rule hits into one result, so at most one match is
// returned.
func (p *Parser) Parse(text string, base time.Time) ([]Match, error) {
	res, err := p.w.Parse(text, base)
	if err != nil {
		return nil, fmt.Errorf("failed to parse date: %w", err)
	}
	if res == nil {
		return nil, nil
	}

	return []Match{{
		Text:  res.Text,
		Index: res.Index,
		Time:  res.Time,
	}}, nil
}
