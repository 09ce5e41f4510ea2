package cli

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/simp-lee/shopadmin/internal/api"
)

const (
	maxColumns   = 6
	maxCellWidth = 40
)

// printRecords writes records as a table. The key field comes first, then
// the scalar fields in alphabetical order, up to maxColumns columns.
func printRecords(out io.Writer, records []api.Record, key string) error {
	cols := columns(records, key)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = strings.ToUpper(c)
	}
	fmt.Fprintln(w, strings.Join(header, "\t"))
	for _, rec := range records {
		cells := make([]string, len(cols))
		for i, c := range cols {
			cells[i] = cell(rec[c])
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

func columns(records []api.Record, key string) []string {
	seen := map[string]bool{}
	var names []string
	for _, rec := range records {
		for k, v := range rec {
			if seen[k] || k == key || !scalar(v) {
				continue
			}
			seen[k] = true
			names = append(names, k)
		}
	}
	sort.Strings(names)

	cols := make([]string, 0, maxColumns)
	if key != "" && (len(records) == 0 || hasKey(records[0], key)) {
		cols = append(cols, key)
	}
	for _, n := range names {
		if len(cols) == maxColumns {
			break
		}
		cols = append(cols, n)
	}
	return cols
}

func hasKey(rec api.Record, key string) bool {
	_, ok := rec[key]
	return ok
}

func scalar(v any) bool {
	switch v.(type) {
	case nil, string, float64, bool:
		return true
	default:
		return false
	}
}

func cell(v any) string {
	var s string
	switch t := v.(type) {
	case nil:
		s = ""
	case string:
		s = t
	case float64:
		s = strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		s = strconv.FormatBool(t)
	default:
		s = fmt.Sprint(t)
	}
	s = strings.ReplaceAll(s, "\n", " ")
	if r := []rune(s); len(r) > maxCellWidth {
		s = string(r[:maxCellWidth-1]) + "…"
	}
	return s
}
