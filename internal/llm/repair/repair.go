// Package repair turns model output that is almost JSON into a JSON value.
//
// Parsing runs in layers: fence stripping, a strict parse, then cumulative textual
// repairs with a strict parse retried after each one. The first layer that yields
// valid JSON wins, so well-formed output never goes through a repair.
package repair

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Repair names, in the order they are applied.
const (
	RepairStripComments  = "strip_comments"
	RepairTrailingCommas = "trailing_commas"
	RepairQuoteKeys      = "quote_keys"
)

var ErrEmptyResponse = errors.New("empty response")

type step struct {
	name string
	fn   func(string) string
}

var steps = []step{
	{RepairStripComments, StripComments},
	{RepairTrailingCommas, RemoveTrailingCommas},
	{RepairQuoteKeys, QuoteKeys},
}

// Result is a parsed value plus the repairs that changed the text before it parsed.
type Result struct {
	Value   any
	Repairs []string
	// JSON is the text that finally parsed.
	JSON string
}

// ParseError is returned once every repair has been tried. ContextID is usually the
// generation request id.
type ParseError struct {
	ContextID string
	Cause     error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("failed to parse model response (context %s): %v", e.ContextID, e.Cause)
}

func (e *ParseError) Unwrap() error { return e.Cause }

func Parse(raw, contextID string) (*Result, error) {
	text := StripCodeFence(raw)
	if text == "" {
		return nil, &ParseError{ContextID: contextID, Cause: ErrEmptyResponse}
	}

	v, firstErr := strict(text)
	if firstErr == nil {
		return &Result{Value: v, JSON: text}, nil
	}

	var applied []string
	for _, s := range steps {
		next := s.fn(text)
		if next == text {
			continue
		}
		text = next
		applied = append(applied, s.name)
		if v, err := strict(text); err == nil {
			return &Result{Value: v, Repairs: applied, JSON: text}, nil
		}
	}
	return nil, &ParseError{ContextID: contextID, Cause: firstErr}
}

// ParseResponse returns only the parsed value.
func ParseResponse(raw, contextID string) (any, error) {
	res, err := Parse(raw, contextID)
	if err != nil {
		return nil, err
	}
	return res.Value, nil
}

// ParseInto runs Parse and decodes the repaired JSON into out.
func ParseInto(raw, contextID string, out any) (*Result, error) {
	res, err := Parse(raw, contextID)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(res.JSON), out); err != nil {
		return nil, &ParseError{ContextID: contextID, Cause: err}
	}
	return res, nil
}

func strict(text string) (any, error) {
	var v any
	if err := json.Unmarshal([]byte(text), &v); err != nil {
		return nil, err
	}
	return v, nil
}

// StripCodeFence trims whitespace and removes a leading ``` or ```json fence and a trailing ```.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "```") {
		s = s[3:]
		if len(s) >= 4 && strings.EqualFold(s[:4], "json") {
			s = s[4:]
		}
	}
	if strings.HasSuffix(s, "```") {
		s = s[:len(s)-3]
	}
	return strings.TrimSpace(s)
}

// StripComments removes // line comments and /* */ block comments outside string literals.
func StripComments(s string) string {
	if !strings.Contains(s, "//") && !strings.Contains(s, "/*") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if ch == '/' && i+1 < len(s) {
			switch s[i+1] {
			case '/':
				for i < len(s) && s[i] != '\n' {
					i++
				}
				if i < len(s) {
					b.WriteByte('\n')
				}
				continue
			case '*':
				end := strings.Index(s[i+2:], "*/")
				if end < 0 {
					i = len(s)
				} else {
					i += 2 + end + 1
				}
				b.WriteByte(' ')
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// RemoveTrailingCommas drops a comma that is followed only by whitespace and then } or ].
func RemoveTrailingCommas(s string) string {
	if !strings.Contains(s, ",") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	inString, escaped := false, false
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		if ch == '"' {
			inString = true
		}
		if ch == ',' {
			j := i + 1
			for j < len(s) && isSpace(s[j]) {
				j++
			}
			if j < len(s) && (s[j] == '}' || s[j] == ']') {
				continue
			}
		}
		b.WriteByte(ch)
	}
	return b.String()
}

// QuoteKeys wraps bare identifiers used as object keys in double quotes. A key is a word
// directly after { or , (ignoring whitespace) and directly before a colon.
func QuoteKeys(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 16)
	inString, escaped := false, false
	var prev byte // last non-space byte written outside a string
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if inString {
			b.WriteByte(ch)
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
				prev = '"'
			}
			continue
		}
		if ch == '"' {
			inString = true
			b.WriteByte(ch)
			continue
		}
		if isIdentStart(ch) && (prev == '{' || prev == ',') {
			j := i
			for j < len(s) && isIdentPart(s[j]) {
				j++
			}
			k := j
			for k < len(s) && isSpace(s[k]) {
				k++
			}
			if k < len(s) && s[k] == ':' {
				b.WriteByte('"')
				b.WriteString(s[i:j])
				b.WriteByte('"')
				prev = '"'
				i = j - 1
				continue
			}
		}
		b.WriteByte(ch)
		if !isSpace(ch) {
			prev = ch
		}
	}
	return b.String()
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

func isIdentStart(c byte) bool {
	return c == '_' || c == '$' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9') || c == '-'
}
