package httpx

import (
	"bytes"
	"errors"
	"html/template"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"sync"
)

// Template names executed by handlers.
const (
	tmplLayout    = "layout"
	tmplContent   = "content"
	tmplError     = "error-layout"
	tmplAuthPanel = "auth-panel"
	tmplEmployee  = "employee-form"
	tmplField     = "field"
	tmplStatus    = "status"
)

var templatePatterns = []string{"*.tmpl", "pages/*.tmpl", "partials/*.tmpl"}

// TemplateRenderer renders HTML templates for UI responses.
type TemplateRenderer struct {
	fsys    fs.FS
	devMode bool         // Whether to re-parse templates on each render
	logger  *slog.Logger // For logging template errors

	mu sync.RWMutex
	t  *template.Template
}

// TemplateRendererConfig holds configuration for creating a TemplateRenderer.
type TemplateRendererConfig struct {
	TemplateFS fs.FS        // Filesystem containing templates (required)
	DevMode    bool         // Enable hot reloading of templates
	Logger     *slog.Logger // Logger for template errors (optional)
}

// NewTemplateRenderer constructs a renderer by parsing templates from the provided config.
// In dev mode TemplateFS should be os.DirFS("frontend/templates") so edits show up without a restart.
func NewTemplateRenderer(cfg TemplateRendererConfig) (*TemplateRenderer, error) {
	if cfg.TemplateFS == nil {
		return nil, errors.New("TemplateFS is required")
	}
	r := &TemplateRenderer{fsys: cfg.TemplateFS, devMode: cfg.DevMode, logger: cfg.Logger}
	t, err := r.parse()
	if err != nil {
		if cfg.Logger != nil {
			cfg.Logger.Error("template parsing failed",
				slog.Any("error", err),
				slog.String("phase", "initialization"),
			)
		}
		return nil, err
	}
	r.t = t
	return r, nil
}

func (r *TemplateRenderer) parse() (*template.Template, error) {
	return template.New("root").Funcs(templateFuncs()).ParseFS(r.fsys, templatePatterns...)
}

func (r *TemplateRenderer) templates() *template.Template {
	if r.devMode {
		if t, err := r.parse(); err == nil {
			r.mu.Lock()
			r.t = t
			r.mu.Unlock()
		} else {
			r.logTemplateError("reload", err)
		}
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.t
}

// RenderFull renders the full page (layout + page content).
func (r *TemplateRenderer) RenderFull(w http.ResponseWriter, _ *http.Request, data any) error {
	return r.renderTemplate(w, tmplLayout, http.StatusOK, data)
}

// RenderPartial renders a single named fragment.
func (r *TemplateRenderer) RenderPartial(w http.ResponseWriter, name string, data any) error {
	return r.renderTemplate(w, name, http.StatusOK, data)
}

// RenderError renders an error page using the error template with the given status code.
func (r *TemplateRenderer) RenderError(w http.ResponseWriter, code int, data any) error {
	return r.renderTemplate(w, tmplError, code, data)
}

// Execute writes a named template into dst without touching response headers.
func (r *TemplateRenderer) Execute(dst io.Writer, name string, data any) error {
	if err := r.templates().ExecuteTemplate(dst, name, data); err != nil {
		r.logTemplateError(name, err)
		return err
	}
	return nil
}

func (r *TemplateRenderer) renderTemplate(w http.ResponseWriter, templateName string, code int, data any) error {
	var buf bytes.Buffer
	if err := r.Execute(&buf, templateName, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(code)
	if _, err := buf.WriteTo(w); err != nil {
		if r.logger != nil {
			r.logger.Error("failed to write rendered template",
				slog.String("template", templateName),
				slog.Any("error", err),
			)
		}
		return err
	}

	return nil
}

// logTemplateError logs a template execution error with context.
func (r *TemplateRenderer) logTemplateError(templateName string, err error) {
	if r.logger == nil || err == nil {
		return
	}
	r.logger.Error("template execution failed",
		slog.String("template", templateName),
		slog.Any("error", err),
	)
}
