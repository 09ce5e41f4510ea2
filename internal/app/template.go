package app

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"

	"github.com/simp-lee/shopadmin/internal/notify"
)

// TemplateRenderer is the console's gin.HTMLRender. Every page is compiled
// into its own set on top of the shared layouts and partials, so two pages
// can define the same "content" block without clashing.
//
// With reload set the whole tree is parsed again on each Instance call.
type TemplateRenderer struct {
	pages  map[string]*template.Template
	fsys   fs.FS
	funcs  template.FuncMap
	reload bool
}

var _ render.HTMLRender = (*TemplateRenderer)(nil)

const (
	templateRoot = "templates"
	layoutGlob   = templateRoot + "/layouts/*.html"
	partialGlob  = templateRoot + "/partials/*.html"
)

// NewTemplateRenderer reads templates/ from fsys. Pages are addressed by
// their path below templates/, e.g. "resource/list.html".
func NewTemplateRenderer(fsys fs.FS, reload bool) (*TemplateRenderer, error) {
	r := &TemplateRenderer{fsys: fsys, funcs: templateFuncMap(), reload: reload}
	if reload {
		return r, nil
	}
	pages, err := r.compile()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	r.pages = pages
	return r, nil
}

// Instance implements render.HTMLRender.
func (r *TemplateRenderer) Instance(name string, data any) render.Render {
	pages := r.pages
	if r.reload {
		var err error
		if pages, err = r.compile(); err != nil {
			return &HTMLInstance{Name: name, err: err}
		}
	}
	return &HTMLInstance{Template: pages[name], Name: name, Data: data}
}

func (r *TemplateRenderer) compile() (map[string]*template.Template, error) {
	shared, err := r.sharedSet()
	if err != nil {
		return nil, err
	}

	pages := make(map[string]*template.Template)
	err = fs.WalkDir(r.fsys, templateRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		name := strings.TrimPrefix(path, templateRoot+"/")
		if d.IsDir() || !strings.HasSuffix(name, ".html") || isSharedTemplate(name) {
			return nil
		}
		set, err := shared.Clone()
		if err != nil {
			return fmt.Errorf("clone shared set for %s: %w", name, err)
		}
		if err := parseFile(set, r.fsys, path, name); err != nil {
			return err
		}
		pages[name] = set
		return nil
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (r *TemplateRenderer) sharedSet() (*template.Template, error) {
	set := template.New("").Funcs(r.funcs)
	for _, glob := range []string{layoutGlob, partialGlob} {
		files, err := fs.Glob(r.fsys, glob)
		if err != nil {
			return nil, fmt.Errorf("glob %s: %w", glob, err)
		}
		for _, f := range files {
			if err := parseFile(set, r.fsys, f, f); err != nil {
				return nil, err
			}
		}
	}
	return set, nil
}

func isSharedTemplate(name string) bool {
	return strings.HasPrefix(name, "layouts/") || strings.HasPrefix(name, "partials/")
}

func parseFile(set *template.Template, fsys fs.FS, path, name string) error {
	content, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if _, err := set.New(name).Parse(string(content)); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func templateFuncMap() template.FuncMap {
	return template.FuncMap{
		// json is for data-* attributes and inline scripts.
		"json": func(v any) template.JS {
			b, err := json.Marshal(v)
			if err != nil {
				return template.JS("null")
			}
			return template.JS(b)
		},
		"formatTime": func(t time.Time) string {
			if t.IsZero() {
				return ""
			}
			return t.Local().Format("2006-01-02 15:04:05")
		},
		"lower":      strings.ToLower,
		"join":       strings.Join,
		"add":        func(a, b int) int { return a + b },
		"sub":        func(a, b int) int { return a - b },
		"toastClass": toastClass,
		"outcomeClass": func(outcome string) string {
			if outcome == "success" {
				return "badge badge-ok"
			}
			return "badge badge-fail"
		},
		// selected marks the option equal to the current value.
		"selected": func(current, option string) template.HTMLAttr {
			if current == option {
				return "selected"
			}
			return ""
		},
	}
}

func toastClass(typ string) string {
	switch typ {
	case notify.TypeSuccess:
		return "toast toast-success"
	case notify.TypeError:
		return "toast toast-error"
	default:
		return "toast toast-info"
	}
}

// HTMLInstance executes one compiled page.
type HTMLInstance struct {
	Template *template.Template
	Name     string
	Data     any
	err      error
}

// Render implements render.Render.
func (h *HTMLInstance) Render(w http.ResponseWriter) error {
	h.WriteContentType(w)
	if h.err != nil {
		return h.err
	}
	if h.Template == nil {
		return fmt.Errorf("template %q not found", h.Name)
	}
	return h.Template.ExecuteTemplate(w, h.Name, h.Data)
}

// WriteContentType implements render.Render.
func (h *HTMLInstance) WriteContentType(w http.ResponseWriter) {
	if w.Header().Get("Content-Type") == "" {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
}
