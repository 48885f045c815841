package shell

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/krillsh/krill/pkg/vals"
)

var (
	headerStyle = color.New(color.Bold)
	dimStyle    = color.New(color.Faint)
)

// printValue renders an evaluation result for the terminal. Scalars print on
// one line; lists, maps, ranges and tables print as aligned columns. Null
// prints nothing.
func (sh *Shell) printValue(v vals.Value) {
	w := sh.stdout
	switch v := v.(type) {
	case nil:
	case *vals.List:
		rows := make([][2]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			rows[i] = [2]string{fmt.Sprint(i), cell(v.Index(i))}
		}
		printColumns(w, rows)
	case *vals.Map:
		rows := make([][2]string, 0, v.Len())
		v.Each(func(key string, item vals.Value) bool {
			rows = append(rows, [2]string{key, cell(item)})
			return true
		})
		printColumns(w, rows)
	case vals.Range:
		rows := make([][2]string, 0, v.Len())
		i := 0
		v.Each(func(n int64) bool {
			rows = append(rows, [2]string{fmt.Sprint(i), fmt.Sprint(n)})
			i++
			return true
		})
		printColumns(w, rows)
	case *vals.Table:
		printTable(w, v)
	case vals.Binary:
		printBinary(w, v)
	default:
		fmt.Fprintln(w, vals.Repr(v))
	}
}

// cell renders a value for one table or column cell on a single line.
func cell(v vals.Value) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case *vals.List:
		parts := make([]string, v.Len())
		for i := 0; i < v.Len(); i++ {
			parts[i] = cell(v.Index(i))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case *vals.Map:
		parts := make([]string, 0, v.Len())
		v.Each(func(key string, item vals.Value) bool {
			parts = append(parts, key+": "+cell(item))
			return true
		})
		return "{" + strings.Join(parts, ", ") + "}"
	default:
		return vals.Repr(v)
	}
}

func printColumns(w io.Writer, rows [][2]string) {
	width := 0
	for _, row := range rows {
		if len(row[0]) > width {
			width = len(row[0])
		}
	}
	for _, row := range rows {
		fmt.Fprintf(w, "%s  %s\n", dimStyle.Sprint(pad(row[0], width)), row[1])
	}
}

func printTable(w io.Writer, t *vals.Table) {
	headers := t.Headers()
	if len(headers) == 0 {
		return
	}
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	cells := make([][]string, t.Len())
	for r, row := range t.Rows() {
		cells[r] = make([]string, len(headers))
		for i := range headers {
			var s string
			if i < len(row) {
				s = cell(row[i])
			}
			cells[r][i] = s
			if len(s) > widths[i] {
				widths[i] = len(s)
			}
		}
	}
	for i, h := range headers {
		if i > 0 {
			fmt.Fprint(w, "  ")
		}
		fmt.Fprint(w, headerStyle.Sprint(pad(h, widths[i])))
	}
	fmt.Fprintln(w)
	for _, row := range cells {
		for i, s := range row {
			if i > 0 {
				fmt.Fprint(w, "  ")
			}
			fmt.Fprint(w, pad(s, widths[i]))
		}
		fmt.Fprintln(w)
	}
}

// printBinary writes a hex dump, sixteen bytes per line grouped by four,
// with a byte-offset gutter.
func printBinary(w io.Writer, b vals.Binary) {
	for off := 0; off < len(b); off += 16 {
		end := off + 16
		if end > len(b) {
			end = len(b)
		}
		fmt.Fprint(w, dimStyle.Sprintf("%04x:   ", off))
		for i, by := range b[off:end] {
			fmt.Fprintf(w, "%02x ", by)
			if (i+1)%4 == 0 {
				fmt.Fprint(w, " ")
			}
		}
		fmt.Fprintln(w)
	}
}

func pad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
