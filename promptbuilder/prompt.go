/*
Copyright 2026 GDev Authors
SPDX-License-Identifier: Apache-2.0
*/

package promptbuilder

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"maps"
	"regexp"
	"strings"
)

// Bindable is implemented by request types that know how to bind themselves
// into a prompt template.
type Bindable interface {
	Bind(*Prompt) (*Prompt, error)
}

var placeholderRE = regexp.MustCompile(`\{\{([a-zA-Z_][a-zA-Z0-9_]*)\}\}`)

// Prompt is an immutable template with named {{placeholder}} bindings.
// Bind methods return a new Prompt; the receiver is never mutated.
type Prompt struct {
	template string
	// bound maps placeholder name to its rendered value. A name present in
	// the template but absent here is still unbound.
	bound map[string]string
	names map[string]struct{}
}

// NewPrompt parses a template and records its placeholders.
func NewPrompt(template string) (*Prompt, error) {
	matches := placeholderRE.FindAllStringSubmatch(template, -1)
	if opens := strings.Count(template, "{{"); opens != len(matches) {
		return nil, fmt.Errorf("template has %d '{{' delimiters but only %d well-formed placeholders", opens, len(matches))
	}
	names := make(map[string]struct{})
	for _, m := range matches {
		names[m[1]] = struct{}{}
	}
	return &Prompt{
		template: template,
		bound:    map[string]string{},
		names:    names,
	}, nil
}

// Placeholders returns the set of placeholder names found in the template.
func (p *Prompt) Placeholders() map[string]struct{} {
	return maps.Clone(p.names)
}

func (p *Prompt) bind(name, value string) (*Prompt, error) {
	if _, ok := p.names[name]; !ok {
		return nil, fmt.Errorf("no placeholder %q in template", name)
	}
	if _, ok := p.bound[name]; ok {
		return nil, fmt.Errorf("placeholder %q already bound", name)
	}
	np := &Prompt{
		template: p.template,
		bound:    maps.Clone(p.bound),
		names:    p.names,
	}
	np.bound[name] = value
	return np, nil
}

// BindString binds a plain string value to a placeholder.
func (p *Prompt) BindString(name, value string) (*Prompt, error) {
	return p.bind(name, value)
}

// BindJSON binds structured data to a placeholder as indented JSON.
func (p *Prompt) BindJSON(name string, data any) (*Prompt, error) {
	b, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %q: %w", name, err)
	}
	return p.bind(name, string(b))
}

// BindXML binds structured data to a placeholder as indented XML. XML framing
// tends to survive long contexts better than prose for record-like data.
func (p *Prompt) BindXML(name string, data any) (*Prompt, error) {
	b, err := xml.MarshalIndent(data, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling %q: %w", name, err)
	}
	return p.bind(name, string(b))
}

// Build renders the template. Every placeholder must have been bound.
func (p *Prompt) Build() (string, error) {
	var missing []string
	for name := range p.names {
		if _, ok := p.bound[name]; !ok {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return "", fmt.Errorf("unbound placeholders: %s", strings.Join(missing, ", "))
	}
	return placeholderRE.ReplaceAllStringFunc(p.template, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		return p.bound[name]
	}), nil
}
