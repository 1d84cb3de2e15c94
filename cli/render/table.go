package render

import (
	"fmt"
	"io"
	"reflect"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/pithecene-io/qrare/assembly"
	"github.com/pithecene-io/qrare/chunk"
)

// maxInlineItems is the longest string list shown inline in tables.
const maxInlineItems = 3

var (
	timeType    = reflect.TypeOf(time.Time{})
	stringerTyp = reflect.TypeOf((*fmt.Stringer)(nil)).Elem()
)

func (r *Renderer) renderTable(data any) error {
	switch d := data.(type) {
	case assembly.Report:
		return r.renderReportTable(&d)
	case *assembly.Report:
		return r.renderReportTable(d)
	}

	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Slice {
		return r.renderRows(v)
	}
	return r.renderFields(v)
}

// renderRows writes a slice of structs as columns, one row per element.
// Other element kinds are written one per line.
func (r *Renderer) renderRows(v reflect.Value) error {
	if v.Len() == 0 {
		fmt.Fprintln(r.out, "(no results)")
		return nil
	}
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)

	elem := indirect(v.Index(0))
	if elem.Kind() != reflect.Struct {
		for i := range v.Len() {
			fmt.Fprintln(w, formatValue("", v.Index(i)))
		}
		return w.Flush()
	}

	cols := columns(elem.Type())
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = strings.ToUpper(c.name)
	}
	fmt.Fprintln(w, strings.Join(names, "\t"))
	for i := range v.Len() {
		row := indirect(v.Index(i))
		if !row.IsValid() {
			continue
		}
		cells := make([]string, len(cols))
		for j, c := range cols {
			cells[j] = formatValue(c.name, row.Field(c.index))
		}
		fmt.Fprintln(w, strings.Join(cells, "\t"))
	}
	return w.Flush()
}

// renderFields writes a struct or map as "name: value" lines.
func (r *Renderer) renderFields(v reflect.Value) error {
	w := tabwriter.NewWriter(r.out, 0, 0, 2, ' ', 0)
	v = indirect(v)
	switch v.Kind() {
	case reflect.Struct:
		writeStruct(w, "", v)
	case reflect.Map:
		iter := v.MapRange()
		for iter.Next() {
			key := fmt.Sprint(iter.Key().Interface())
			fmt.Fprintf(w, "%s:\t%s\n", key, formatValue(key, iter.Value()))
		}
	case reflect.Invalid:
	default:
		fmt.Fprintf(w, "%v\n", v.Interface())
	}
	return w.Flush()
}

// writeStruct writes one line per field, expanding nested structs with
// dotted names.
func writeStruct(w io.Writer, prefix string, v reflect.Value) {
	for _, c := range columns(v.Type()) {
		name := prefix + c.name
		fv := v.Field(c.index)
		if fv.Kind() == reflect.Ptr && !fv.IsNil() && fv.Elem().Kind() == reflect.Struct {
			fv = fv.Elem()
		}
		if expandable(fv) {
			writeStruct(w, name+".", fv)
			continue
		}
		fmt.Fprintf(w, "%s:\t%s\n", name, formatValue(c.name, fv))
	}
}

type column struct {
	name  string
	index int
}

// columns lists the exported fields of t that json would emit, named by
// their json tag.
func columns(t reflect.Type) []column {
	var cols []column
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name := strings.ToLower(f.Name)
		if tag := f.Tag.Get("json"); tag != "" {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		cols = append(cols, column{name: name, index: i})
	}
	return cols
}

func expandable(v reflect.Value) bool {
	return v.Kind() == reflect.Struct && v.Type() != timeType && !v.Type().Implements(stringerTyp)
}

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return reflect.Value{}
		}
		v = v.Elem()
	}
	return v
}

// formatValue renders a cell. Index lists collapse to ranges, byte
// counts named *_size are humanized and ratios keep three decimals.
func formatValue(name string, v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() {
		return ""
	}
	if v.Type() == timeType {
		return v.Interface().(time.Time).Format(time.RFC3339)
	}
	if v.Type().Implements(stringerTyp) {
		return v.Interface().(fmt.Stringer).String()
	}

	switch v.Kind() {
	case reflect.Slice, reflect.Array:
		if v.Len() == 0 {
			return "-"
		}
		switch items := v.Interface().(type) {
		case []int:
			return chunk.FormatRanges(items)
		case []string:
			if len(items) <= maxInlineItems {
				return strings.Join(items, ", ")
			}
		}
		return fmt.Sprintf("[%d items]", v.Len())
	case reflect.Map:
		if v.Len() == 0 {
			return "-"
		}
		return fmt.Sprintf("{%d keys}", v.Len())
	case reflect.Struct:
		return "{...}"
	case reflect.Int, reflect.Int64:
		if strings.HasSuffix(name, "_size") {
			return humanBytes(v.Int())
		}
	case reflect.Float32, reflect.Float64:
		return fmt.Sprintf("%.3f", v.Float())
	}
	return fmt.Sprint(v.Interface())
}

// humanBytes formats n with a binary unit, keeping the exact count for
// anything past one KiB.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB (%d B)", float64(n)/float64(div), "KMGTPE"[exp], n)
}
