// Package resource serves one backend resource as console pages and a JSON
// API: a paginated table, add/edit/view/confirm modals and the matching
// mutations, all driven through the session's store slice.
package resource

import (
	"fmt"
	"strings"

	"github.com/simp-lee/shopadmin/internal/api"
	"github.com/simp-lee/shopadmin/internal/catalog"
	"github.com/simp-lee/shopadmin/internal/store"
)

// Column is one table column.
type Column[T any] struct {
	Label string
	Value func(T) string
}

// Field input types understood by resource/form.html.
const (
	InputText     = "text"
	InputNumber   = "number"
	InputTextarea = "textarea"
	InputSelect   = "select"
	InputDate     = "date"
	InputURL      = "url"
)

// Field is one form input. Name must match the form tag of the form DTO.
type Field struct {
	Name     string
	Label    string
	Type     string
	Options  []string
	Required bool
	// Step is the number input step, e.g. "0.01" for prices.
	Step string
}

// Filter is a server-side list filter rendered above the table.
type Filter struct {
	Name    string
	Label   string
	Options []string
}

// Form is a bound and validated form DTO.
type Form interface {
	// Payload returns the request body sent to the backend.
	Payload() any
}

// Definition declares everything that differs between resources.
type Definition[T any] struct {
	Name     string
	Title    string
	Singular string
	Endpoint api.Endpoint

	// Key identifies records in the store slice. IDOf returns the value
	// used in backend paths. They differ only when the backend keys a
	// resource by a business field.
	Key  store.KeyFunc[T]
	IDOf func(T) string

	Columns []Column[T]
	// TextFields are searched by the in-page text filter. When empty the
	// column values are searched.
	TextFields []func(T) string
	Filters    []Filter

	Fields []Field
	// NewForm returns an empty form DTO for binding.
	NewForm func() Form
	// Values renders a record as form values keyed by Field.Name.
	Values func(T) map[string]string
	// Details overrides the view modal content, which defaults to the
	// id followed by the form fields.
	Details func(T) []Detail

	NoCreate bool
	NoDelete bool
}

// FromCatalog fills the name, titles and endpoint of def from the catalog.
func FromCatalog[T any](name string, def Definition[T]) Definition[T] {
	e := catalog.MustLookup(name)
	def.Name = name
	def.Endpoint = e.Endpoint
	if def.Title == "" {
		def.Title = e.Title
	}
	if def.Singular == "" {
		def.Singular = e.Singular
	}
	if def.Filters == nil {
		for _, f := range e.Filters {
			def.Filters = append(def.Filters, Filter{Name: f, Label: strings.ToUpper(f[:1]) + f[1:]})
		}
	}
	return def
}

func (d Definition[T]) validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("name is required")
	case d.Endpoint.Path == "":
		return fmt.Errorf("%s: endpoint path is required", d.Name)
	case d.Key == nil:
		return fmt.Errorf("%s: key is required", d.Name)
	case d.IDOf == nil:
		return fmt.Errorf("%s: IDOf is required", d.Name)
	case len(d.Columns) == 0:
		return fmt.Errorf("%s: at least one column is required", d.Name)
	case d.NewForm == nil || d.Values == nil:
		return fmt.Errorf("%s: NewForm and Values are required", d.Name)
	}
	return nil
}

func (d Definition[T]) filterNames() []string {
	names := make([]string, len(d.Filters))
	for i, f := range d.Filters {
		names[i] = f.Name
	}
	return names
}

// Row is one rendered table row.
type Row struct {
	ID    string
	Cells []string
}

func (d Definition[T]) rows(items []T) []Row {
	rows := make([]Row, len(items))
	for i, it := range items {
		cells := make([]string, len(d.Columns))
		for j, col := range d.Columns {
			cells[j] = col.Value(it)
		}
		rows[i] = Row{ID: d.IDOf(it), Cells: cells}
	}
	return rows
}

func (d Definition[T]) labels() []string {
	labels := make([]string, len(d.Columns))
	for i, col := range d.Columns {
		labels[i] = col.Label
	}
	return labels
}

// Detail is one label/value pair of the view modal.
type Detail struct {
	Label string
	Value string
}

func (d Definition[T]) details(rec T) []Detail {
	if d.Details != nil {
		return d.Details(rec)
	}
	values := d.Values(rec)
	out := make([]Detail, 0, len(d.Fields)+1)
	out = append(out, Detail{Label: "ID", Value: d.IDOf(rec)})
	for _, f := range d.Fields {
		out = append(out, Detail{Label: f.Label, Value: values[f.Name]})
	}
	return out
}

// search keeps the items whose text fields contain q, case-insensitively.
// It filters the fetched page only.
func (d Definition[T]) search(items []T, q string) []T {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return items
	}
	out := make([]T, 0, len(items))
	for _, it := range items {
		if d.matches(it, q) {
			out = append(out, it)
		}
	}
	return out
}

func (d Definition[T]) matches(it T, q string) bool {
	if len(d.TextFields) > 0 {
		for _, f := range d.TextFields {
			if strings.Contains(strings.ToLower(f(it)), q) {
				return true
			}
		}
		return false
	}
	for _, col := range d.Columns {
		if strings.Contains(strings.ToLower(col.Value(it)), q) {
			return true
		}
	}
	return false
}
