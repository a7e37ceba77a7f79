package core

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

const layoutFile = "layout.html"

// Context is the set of named values handed to a view.
type Context map[string]any

// Renderer turns a view name and a Context into HTML. Views live in
// <viewsDir>/<name>.html and are wrapped by <viewsDir>/layout.html when it
// exists; <viewsDir>/components/*.html are available to every view.
type Renderer struct {
	config Config
	env    string
	funcs  template.FuncMap

	mu    sync.RWMutex
	cache map[string]*template.Template
}

func NewRenderer(env string, config Config) *Renderer {
	return &Renderer{
		config: config,
		env:    env,
		funcs:  TemplateFuncs(env, config),
		cache:  map[string]*template.Template{},
	}
}

// Render buffers the page so a failing template never leaves a half-written
// response behind.
func (r *Renderer) Render(w http.ResponseWriter, name string, data Context) error {
	var buf bytes.Buffer
	if err := r.Execute(&buf, name, data); err != nil {
		return err
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if r.config.DebugHeaders {
		w.Header().Set("X-Dayview-View", name)
	}
	_, err := buf.WriteTo(w)
	return err
}

func (r *Renderer) Execute(w io.Writer, name string, data Context) error {
	tmpl, entry, err := r.load(name)
	if err != nil {
		return err
	}
	if err := tmpl.ExecuteTemplate(w, entry, data); err != nil {
		return fmt.Errorf("execute view %q: %w", name, err)
	}
	return nil
}

func (r *Renderer) load(name string) (*template.Template, string, error) {
	entry := r.entryPoint(name)

	if r.env == "prod" {
		r.mu.RLock()
		tmpl, ok := r.cache[name]
		r.mu.RUnlock()
		if ok {
			return tmpl, entry, nil
		}
	}

	viewPath := filepath.Join(r.config.ViewsDir, name+".html")
	if _, err := os.Stat(viewPath); err != nil {
		return nil, "", fmt.Errorf("view %q: %w", name, ErrNotFound)
	}

	files := []string{}
	layoutPath := filepath.Join(r.config.ViewsDir, layoutFile)
	if _, err := os.Stat(layoutPath); err == nil {
		files = append(files, layoutPath)
	}
	files = append(files, viewPath)

	components, _ := filepath.Glob(filepath.Join(r.config.ViewsDir, "components", "*.html"))
	files = append(files, components...)

	tmpl, err := template.New(filepath.Base(files[0])).Funcs(r.funcs).ParseFiles(files...)
	if err != nil {
		return nil, "", fmt.Errorf("parse view %q: %w", name, err)
	}

	if r.env == "prod" {
		r.mu.Lock()
		r.cache[name] = tmpl
		r.mu.Unlock()
	}

	return tmpl, entry, nil
}

func (r *Renderer) entryPoint(name string) string {
	if _, err := os.Stat(filepath.Join(r.config.ViewsDir, layoutFile)); err == nil {
		return "layout"
	}
	return name + ".html"
}

// Views lists every renderable view name, sorted.
func (r *Renderer) Views() ([]string, error) {
	entries, err := os.ReadDir(r.config.ViewsDir)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, e := range entries {
		if e.IsDir() || e.Name() == layoutFile || filepath.Ext(e.Name()) != ".html" {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".html"))
	}
	sort.Strings(names)
	return names, nil
}
