package output

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

func Success(format string, a ...interface{}) {
	fmt.Printf("✓ "+format+"\n", a...)
}

func Error(format string, a ...interface{}) {
	fmt.Fprintf(os.Stderr, "✗ "+format+"\n", a...)
}

func Info(format string, a ...interface{}) {
	fmt.Printf(format+"\n", a...)
}

func JSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

type Table struct {
	headers []string
	rows    [][]string
}

func NewTable(headers []string) *Table {
	return &Table{
		headers: headers,
		rows:    [][]string{},
	}
}

func (t *Table) AddRow(row []string) {
	t.rows = append(t.rows, row)
}

func (t *Table) Render() {
	widths := make([]int, len(t.headers))
	for i, header := range t.headers {
		widths[i] = len(header)
	}
	for _, row := range t.rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	for i, header := range t.headers {
		sb.WriteString(fmt.Sprintf("%-*s  ", widths[i], header))
	}
	fmt.Println(strings.TrimRight(sb.String(), " "))

	sb.Reset()
	for i := range t.headers {
		sb.WriteString(strings.Repeat("-", widths[i]) + "  ")
	}
	fmt.Println(strings.TrimRight(sb.String(), " "))

	for _, row := range t.rows {
		sb.Reset()
		for i, cell := range row {
			if i < len(widths) {
				sb.WriteString(fmt.Sprintf("%-*s  ", widths[i], cell))
			}
		}
		fmt.Println(strings.TrimRight(sb.String(), " "))
	}
}
