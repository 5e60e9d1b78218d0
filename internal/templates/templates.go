// Copyright 2025 Oliver Andrich
// Licensed under the EUPL-1.2

// Package templates renders the server-side HTML views.
package templates

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"codeberg.org/quotebook/quotebook/internal/models"
	"github.com/a-h/templ"
)

//go:embed views/*.html
var viewFS embed.FS

const layoutFile = "views/layout.html"

// views maps a page name to its template set (layout plus page).
var views = mustParseViews()

func mustParseViews() map[string]*template.Template {
	files, err := fs.Glob(viewFS, "views/*.html")
	if err != nil {
		panic(err)
	}

	sets := make(map[string]*template.Template, len(files))
	for _, file := range files {
		if file == layoutFile {
			continue
		}
		name := strings.TrimSuffix(path.Base(file), ".html")
		sets[name] = template.Must(template.ParseFS(viewFS, layoutFile, file))
	}
	return sets
}

// View returns a component rendering the named page inside the layout.
func View(name string, data any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		t, ok := views[name]
		if !ok {
			return fmt.Errorf("unknown view %q", name)
		}
		return t.ExecuteTemplate(w, "layout", &Page{ctx: ctx, Data: data})
	})
}

// Page is the dot value of every view.
type Page struct {
	ctx  context.Context //nolint:containedctx // bound to a single render
	Data any
}

func (p *Page) T(messageID string) string {
	return T(p.ctx, messageID)
}

// TD translates with template data given as alternating keys and values.
func (p *Page) TD(messageID string, pairs ...any) string {
	data := make(map[string]any, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		if key, ok := pairs[i].(string); ok {
			data[key] = pairs[i+1]
		}
	}
	return TData(p.ctx, messageID, data)
}

func (p *Page) CSRFToken() string {
	return CSRFToken(p.ctx)
}

func (p *Page) User() *models.User {
	return GetUser(p.ctx)
}

// Lang returns the base language of the current locale, e.g. "de".
func (p *Page) Lang() string {
	locale, _, _ := strings.Cut(Locale(p.ctx), "-")
	return locale
}

// FieldError returns the translated validation message for a form field.
func (p *Page) FieldError(field string) string {
	form, ok := p.Data.(Form)
	if !ok {
		return ""
	}
	code, ok := form.Errors[field]
	if !ok {
		return ""
	}
	return p.T("validation_" + code)
}

// Form carries the state of a submitted form back into its page.
type Form struct {
	Values  map[string]string
	Errors  map[string]string // field name to validation code
	Message string            // translation ID of a form-level error
	Notice  string            // translation ID of a success notice
	Help    []string          // translation IDs shown below the password
}

// Value returns the submitted value of a field.
func (f Form) Value(name string) string {
	return f.Values[name]
}

// CheckEmail is the data of the "check_email" view.
type CheckEmail struct {
	Email          string
	DeliveryFailed bool
}

// TokenProblem is the data of the "verification" view shown for unusable
// links.
type TokenProblem struct {
	ReasonID     string
	Token        string
	CanResend    bool
	ResendDone   bool
	ResendFailed bool // the new link could not be mailed
	ResetHint    bool
}

// Error is the data of the "error" view.
type Error struct {
	MessageID string
	Status    int
}
