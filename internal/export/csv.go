// Package export renders directory lists as CSV. Every value is wrapped in
// double quotes with embedded quotes doubled, and line breaks inside values
// are flattened so N records always produce N+1 lines.
package export

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"time"
)

// Column is one CSV column.
type Column[T any] struct {
	Header string
	Value  func(T) string
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

// Quote renders one CSV field.
func Quote(v string) string {
	v = lineBreaks.Replace(v)
	return `"` + strings.ReplaceAll(v, `"`, `""`) + `"`
}

// Write emits a header row followed by one row per record.
func Write[T any](w io.Writer, cols []Column[T], rows []T) error {
	bw := bufio.NewWriter(w)
	var sb strings.Builder

	writeRow := func(field func(i int) string) error {
		sb.Reset()
		for i := range cols {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(Quote(field(i)))
		}
		sb.WriteByte('\n')
		_, err := bw.WriteString(sb.String())
		return err
	}

	if err := writeRow(func(i int) string { return cols[i].Header }); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range rows {
		if err := writeRow(func(i int) string { return cols[i].Value(row) }); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	return bw.Flush()
}

// Filename builds "<prefix>-YYYY-MM-DD.csv".
func Filename(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%s.csv", prefix, now.Format("2006-01-02"))
}

func date(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}

func datePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return date(*t)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
