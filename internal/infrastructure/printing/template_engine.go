package printing

import (
	"bytes"
	"fmt"
	"html/template"
	"reflect"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// TemplateEngine renders html/template documents with a set of formatting
// helpers shared by all exported reports.
type TemplateEngine struct {
	funcMap template.FuncMap
}

// TemplateEngineOption configures the template engine
type TemplateEngineOption func(*TemplateEngine)

// WithFunc registers an additional template function
func WithFunc(name string, fn any) TemplateEngineOption {
	return func(e *TemplateEngine) {
		e.funcMap[name] = fn
	}
}

// NewTemplateEngine creates a template engine with the default helpers
func NewTemplateEngine(opts ...TemplateEngineOption) *TemplateEngine {
	e := &TemplateEngine{}
	e.funcMap = template.FuncMap{
		"formatDate":     formatDate,
		"formatDateTime": formatDateTime,
		"formatDecimal":  formatDecimal,
		"truncate":       truncate,
		"join":           strings.Join,
		"upper":          strings.ToUpper,
		"lower":          strings.ToLower,
		"title":          titleCase,
		"trim":           strings.TrimSpace,
		"default":        defaultFunc,
		"empty":          empty,
		"length":         length,
		"shortUUID":      shortUUID,
		"add":            func(a, b int) int { return a + b },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// RenderString parses content as a template named name and executes it
// against data
func (e *TemplateEngine) RenderString(name, content string, data any) (string, error) {
	tmpl, err := template.New(name).Funcs(e.funcMap).Option("missingkey=zero").Parse(content)
	if err != nil {
		return "", fmt.Errorf("parse template %s: %w", name, err)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatDate(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func formatDateTime(v any) string {
	t := toTime(v)
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04 MST")
}

func formatDecimal(v any, precision int) string {
	switch d := v.(type) {
	case decimal.Decimal:
		return d.StringFixed(int32(precision))
	case *decimal.Decimal:
		if d == nil {
			return ""
		}
		return d.StringFixed(int32(precision))
	case float64:
		return decimal.NewFromFloat(d).StringFixed(int32(precision))
	case int:
		return decimal.NewFromInt(int64(d)).StringFixed(int32(precision))
	case string:
		parsed, err := decimal.NewFromString(d)
		if err != nil {
			return d
		}
		return parsed.StringFixed(int32(precision))
	}
	return fmt.Sprintf("%v", v)
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}

func titleCase(s string) string {
	return cases.Title(language.English).String(strings.ToLower(s))
}

func defaultFunc(def, val any) any {
	if empty(val) {
		return def
	}
	return val
}

func empty(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return rv.IsZero()
}

func length(v any) int {
	if v == nil {
		return 0
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String, reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len()
	}
	return 0
}

func shortUUID(id uuid.UUID) string {
	return id.String()[:8]
}

func toTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case *time.Time:
		if t != nil {
			return *t
		}
	}
	return time.Time{}
}
