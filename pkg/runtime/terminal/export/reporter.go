package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/template"

	"github.com/de-tools/alert-atlas/pkg/models/domain"
)

type TableConfig struct {
	BucketWidth   int
	CategoryWidth int
	MetricWidth   int
}

func DefaultTableConfig() TableConfig {
	return TableConfig{
		BucketWidth:   14,
		CategoryWidth: 18,
		MetricWidth:   14,
	}
}

// Reporter renders aggregate tables for the CLI, either as an aligned
// text table or as CSV with one column per metric.
type Reporter struct {
	writer io.Writer
	config TableConfig
}

func NewReporter(writer io.Writer) *Reporter {
	if writer == nil {
		writer = os.Stdout
	}
	return &Reporter{
		writer: writer,
		config: DefaultTableConfig(),
	}
}

// Handle prints the aggregate as an aligned text table.
func (c *Reporter) Handle(result domain.AggregateResult) error {
	metrics := metricColumns(result)

	funcMap := template.FuncMap{
		"formatRow": func(bucket, category string, values []string) string {
			var b strings.Builder
			fmt.Fprintf(&b, "| %-*s | %-*s |", c.config.BucketWidth, bucket, c.config.CategoryWidth, category)
			for _, v := range values {
				fmt.Fprintf(&b, " %-*s |", c.config.MetricWidth, v)
			}
			return b.String()
		},
		"separator": func() string {
			var b strings.Builder
			fmt.Fprintf(&b, "+%s+%s+",
				strings.Repeat("-", c.config.BucketWidth+2),
				strings.Repeat("-", c.config.CategoryWidth+2))
			for range metrics {
				fmt.Fprintf(&b, "%s+", strings.Repeat("-", c.config.MetricWidth+2))
			}
			return b.String()
		},
		"rowValues": func(row domain.Row) []string {
			values := make([]string, 0, len(metrics))
			for _, name := range metrics {
				v := strconv.FormatFloat(row.Metrics[name], 'f', -1, 64)
				if row.InsufficientData {
					v += " *"
				}
				values = append(values, v)
			}
			return values
		},
	}

	tmpl := `
{{.View}} view{{if .Granularity}} ({{.Granularity}} buckets){{end}}: {{len .Rows}} rows

{{separator}}
{{formatRow "Bucket" "Category" .MetricHeaders}}
{{separator}}
{{range .Rows}}{{formatRow .Bucket (printf "%s" .Category) (rowValues .)}}
{{end}}{{separator}}
`

	t, err := template.New("aggregate").Funcs(funcMap).Parse(tmpl)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	return t.Execute(c.writer, struct {
		domain.AggregateResult
		MetricHeaders []string
	}{result, metrics})
}

// HandleCSV prints the aggregate in the same shape the HTTP export
// endpoint serves.
func (c *Reporter) HandleCSV(result domain.AggregateResult) error {
	metrics := metricColumns(result)

	cw := csv.NewWriter(c.writer)
	header := append([]string{"bucket", "category"}, metrics...)
	header = append(header, "insufficient_data")
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, row := range result.Rows {
		record := []string{row.Bucket, string(row.Category)}
		for _, name := range metrics {
			record = append(record, strconv.FormatFloat(row.Metrics[name], 'f', -1, 64))
		}
		record = append(record, strconv.FormatBool(row.InsufficientData))
		if err := cw.Write(record); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

func metricColumns(result domain.AggregateResult) []string {
	seen := map[string]struct{}{}
	for _, row := range result.Rows {
		for name := range row.Metrics {
			seen[name] = struct{}{}
		}
	}
	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
