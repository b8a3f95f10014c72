package template

import (
	"bytes"
	"fmt"
	"sync"
	"text/template"
)

var cache sync.Map // template text -> *template.Template

// Parse renders a prompt template against fields, caching parsed templates by
// their text.
func Parse(text string, fields any) (string, error) {
	var tmpl *template.Template
	if cached, ok := cache.Load(text); ok {
		tmpl = cached.(*template.Template)
	} else {
		parsed, err := template.New("").Parse(text)
		if err != nil {
			return "", fmt.Errorf("parse: %w", err)
		}
		cache.Store(text, parsed)
		tmpl = parsed
	}

	var result bytes.Buffer
	if err := tmpl.Execute(&result, fields); err != nil {
		return "", fmt.Errorf("execute: %w", err)
	}

	return result.String(), nil
}
