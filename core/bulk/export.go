package bulk

import (
	"bytes"
	"embed"
	"encoding/csv"
	htmltmpl "html/template"
	"strconv"
	"strings"
	texttmpl "text/template"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/ratiba/core/workload"
)

// Formats
const (
	FormatTable Format = "table" // CSV, for spreadsheets
	FormatShare Format = "share" // plain-text digest
	FormatPrint Format = "print" // HTML markup
)

const reportTitle = "Teaching workload plan"

var (
	ErrInvalidFormat = errors.New("format must be one of table, share or print")

	//go:embed templates
	templateFS embed.FS

	funcs = map[string]interface{}{
		"hours":   formatHours,
		"percent": func(f float64) string { return formatHours(f) + "%" },
		"stamp":   formatStamp,
	}
	shareTmpl = texttmpl.Must(texttmpl.New("").Funcs(funcs).Option("missingkey=error").ParseFS(templateFS, "templates/*.txt"))
	printTmpl = htmltmpl.Must(htmltmpl.New("").Funcs(funcs).Option("missingkey=error").ParseFS(templateFS, "templates/*.gohtml"))
)

type Format string

func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatTable, FormatShare, FormatPrint:
		return f, nil
	}
	return "", ErrInvalidFormat
}

func (f Format) ContentType() string {
	switch f {
	case FormatTable:
		return "text/csv; charset=utf-8"
	case FormatPrint:
		return "text/html; charset=utf-8"
	}
	return "text/plain; charset=utf-8"
}

func (f Format) Ext() string {
	switch f {
	case FormatTable:
		return ".csv"
	case FormatPrint:
		return ".html"
	}
	return ".txt"
}

// Export is a rendered report.
type Export struct {
	Format      Format
	Scope       workload.Scope
	Filename    string
	Body        []byte
	Plan        workload.PlanSummary
	GeneratedAt time.Time
}

func (e Export) ContentType() string { return e.Format.ContentType() }

type reportData struct {
	Title       string
	Plan        workload.PlanSummary
	GeneratedAt time.Time
}

// Render renders plan in the given format. The output only depends on plan and generatedAt,
// which is always the last field written.
func Render(format Format, plan workload.PlanSummary, generatedAt time.Time) ([]byte, error) {
	switch format {
	case FormatTable:
		return RenderTable(plan, generatedAt)
	case FormatShare:
		return RenderShare(plan, generatedAt)
	case FormatPrint:
		return RenderPrint(plan, generatedAt)
	}
	return nil, ErrInvalidFormat
}

var tableHeader = []string{
	"teacher_id", "teacher_name", "specialization",
	"total_assignments", "total_hours", "max_load", "load_percentage",
}

// RenderTable writes one CSV record per teacher followed by the plan totals.
func RenderTable(plan workload.PlanSummary, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	records := make([][]string, 0, len(plan.TeacherSummaries)+5)
	records = append(records, tableHeader)
	for _, sum := range plan.TeacherSummaries {
		records = append(records, []string{
			sum.TeacherID,
			sum.TeacherName,
			sum.Specialization,
			strconv.Itoa(sum.TotalAssignments),
			formatHours(sum.TotalHours),
			formatHours(sum.MaxLoad),
			formatHours(sum.LoadPercentage),
		})
	}
	records = append(records,
		[]string{"teacher_count", strconv.Itoa(plan.TeacherCount)},
		[]string{"total_hours", formatHours(plan.TotalHours)},
		[]string{"average_load", formatHours(plan.AverageLoad)},
		[]string{"generated_at", formatStamp(generatedAt)},
	)
	if err := w.WriteAll(records); err != nil {
		return nil, errors.Wrap(err, "writing csv")
	}
	return buf.Bytes(), nil
}

// RenderShare renders the plain-text digest sent through share channels.
func RenderShare(plan workload.PlanSummary, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	data := reportData{Title: reportTitle, Plan: plan, GeneratedAt: generatedAt}
	if err := shareTmpl.ExecuteTemplate(&buf, "share", data); err != nil {
		return nil, errors.Wrap(err, "rendering share digest")
	}
	return buf.Bytes(), nil
}

// RenderPrint renders a standalone HTML page meant to be printed.
func RenderPrint(plan workload.PlanSummary, generatedAt time.Time) ([]byte, error) {
	var buf bytes.Buffer
	data := reportData{Title: reportTitle, Plan: plan, GeneratedAt: generatedAt}
	if err := printTmpl.ExecuteTemplate(&buf, "print", data); err != nil {
		return nil, errors.Wrap(err, "rendering print markup")
	}
	return buf.Bytes(), nil
}

func formatHours(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

func formatStamp(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
