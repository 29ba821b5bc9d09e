// Package template resolves a notification kind and producer payload into
// the concrete title, body and link that get persisted and pushed. It is
// pure: no I/O, deterministic for a given (kind, payload).
package template

import (
	"fmt"
	"strings"

	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// Message is the formatted output handed to the store and the dispatchers.
type Message struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	Link  string `json:"link"`
}

// Definition holds the placeholder templates for one rendering of a kind.
// Placeholders are written as {field} and resolved against the payload.
type Definition struct {
	Title string
	Body  string
	Link  string
}

// Template is the per-kind entry. Exactly one of Single or Variants is set:
// variant-keyed kinds select a Definition by the payload's contentType
// discriminator and must carry a "default" variant.
type Template struct {
	Single   *Definition
	Variants map[string]Definition
	Required []string
}

// DefaultVariant is the fallback key for variant-keyed templates.
const DefaultVariant = "default"

// Format renders the template registered for kind against payload. Missing
// required fields are returned as warnings, never as an error: delivery is
// favored over dropping a notification. Unresolvable placeholders render as
// empty strings.
func Format(kind domain.Kind, payload domain.Payload) (Message, []string) {
	tmpl, ok := registry[kind]
	if !ok {
		// Unknown kinds still produce something deliverable.
		title := humanize(kind)
		return Message{Title: title, Body: title}, nil
	}

	def := tmpl.definition(kind, payload)
	msg := Message{
		Title: substitute(def.Title, payload),
		Body:  substitute(def.Body, payload),
		Link:  substitute(def.Link, payload),
	}
	if msg.Body == "" {
		msg.Body = msg.Title
	}

	var warnings []string
	for _, field := range tmpl.Required {
		if _, present := payload[field]; !present {
			warnings = append(warnings, field)
		}
	}
	return msg, warnings
}

// Known reports whether kind has a registered template.
func Known(kind domain.Kind) bool {
	_, ok := registry[kind]
	return ok
}

func (t Template) definition(kind domain.Kind, payload domain.Payload) Definition {
	if t.Single != nil {
		return *t.Single
	}
	if ct, ok := payload["contentType"].(string); ok {
		if def, ok := t.Variants[ct]; ok {
			return def
		}
	}
	if def, ok := t.Variants[DefaultVariant]; ok {
		return def
	}
	// No default registered: fall back to a minimal message built from the
	// kind name so formatting never fails.
	return Definition{Title: humanize(kind)}
}

// substitute replaces every {field} in s with the payload value for field,
// or the empty string when the field is absent. Braces without a closing
// counterpart are emitted verbatim.
func substitute(s string, payload domain.Payload) string {
	if !strings.ContainsRune(s, '{') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for {
		open := strings.IndexByte(s, '{')
		if open < 0 {
			b.WriteString(s)
			return b.String()
		}
		end := strings.IndexByte(s[open:], '}')
		if end < 0 {
			b.WriteString(s)
			return b.String()
		}
		b.WriteString(s[:open])
		b.WriteString(fieldValue(payload, s[open+1:open+end]))
		s = s[open+end+1:]
	}
}

func fieldValue(payload domain.Payload, field string) string {
	v, ok := payload[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

func humanize(kind domain.Kind) string {
	return strings.ReplaceAll(string(kind), "_", " ")
}
