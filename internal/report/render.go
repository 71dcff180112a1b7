package report

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

func Render(r *Report, f Format) (File, error) {
	name := fmt.Sprintf("%s-report-%s.%s", r.Type, r.GeneratedAt.Format("20060102-150405"), f)
	switch f {
	case CSV:
		data, err := renderCSV(r)
		return File{Name: name, ContentType: "text/csv", Data: data}, err
	case PDF:
		data, err := renderPDF(r)
		return File{Name: name, ContentType: "application/pdf", Data: data}, err
	case JSON:
		data, err := json.MarshalIndent(r, "", "  ")
		return File{Name: name, ContentType: "application/json", Data: data}, err
	}
	return File{}, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
}

func renderCSV(r *Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(r.Columns); err != nil {
		return nil, err
	}
	if err := w.WriteAll(r.Rows); err != nil {
		return nil, err
	}
	if len(r.Summary) > 0 {
		if err := w.Write(nil); err != nil {
			return nil, err
		}
		for _, m := range r.Summary {
			if err := w.Write([]string{m.Label, m.Value}); err != nil {
				return nil, err
			}
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("write csv: %w", err)
	}
	return buf.Bytes(), nil
}

func renderPDF(r *Report) ([]byte, error) {
	pdf := fpdf.New("L", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(r.Title, true)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(r.Title), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	period := "All time"
	switch {
	case r.StartDate != nil && r.EndDate != nil:
		period = r.StartDate.Format(dateLayout) + " to " + r.EndDate.Format(dateLayout)
	case r.StartDate != nil:
		period = "From " + r.StartDate.Format(dateLayout)
	case r.EndDate != nil:
		period = "Until " + r.EndDate.Format(dateLayout)
	}
	pdf.CellFormat(0, 6, tr("Period: "+period), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 6, "Generated: "+r.GeneratedAt.Format("2006-01-02 15:04 MST"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	if len(r.Columns) > 0 {
		pageW, _ := pdf.GetPageSize()
		left, _, right, _ := pdf.GetMargins()
		colW := (pageW - left - right) / float64(len(r.Columns))

		pdf.SetFont("Helvetica", "B", 10)
		pdf.SetFillColor(230, 230, 230)
		for _, c := range r.Columns {
			pdf.CellFormat(colW, 7, tr(c), "1", 0, "L", true, 0, "")
		}
		pdf.Ln(-1)

		pdf.SetFont("Helvetica", "", 9)
		for _, row := range r.Rows {
			for _, v := range row {
				pdf.CellFormat(colW, 6, tr(v), "1", 0, "L", false, 0, "")
			}
			pdf.Ln(-1)
		}
	}

	if len(r.Summary) > 0 {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 11)
		pdf.CellFormat(0, 7, "Summary", "", 1, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		for _, m := range r.Summary {
			pdf.CellFormat(60, 6, tr(m.Label), "", 0, "L", false, 0, "")
			pdf.CellFormat(0, 6, tr(m.Value), "", 1, "L", false, 0, "")
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write pdf: %w", err)
	}
	return buf.Bytes(), nil
}
