package export

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
)

var calendarHeader = []string{"Date", "Semaine", "Plateforme", "Format", "Pilier", "Titre", "Légende", "Hashtags"}

func calendarRow(p CalendarPost) []string {
	return []string{
		p.Date, strconv.Itoa(p.Week), p.Platform, p.Format, p.Pillar,
		p.Title, p.Caption, strings.Join(p.Hashtags, " "),
	}
}

// CalendarCSV renders one header line plus one line per post. Every field
// is quoted with inner quotes doubled; line breaks inside a field become
// spaces so each post stays on a single line.
func CalendarCSV(posts []CalendarPost) []byte {
	var buf bytes.Buffer
	writeCSVLine(&buf, calendarHeader)
	for _, p := range posts {
		writeCSVLine(&buf, calendarRow(p))
	}
	return buf.Bytes()
}

func writeCSVLine(buf *bytes.Buffer, fields []string) {
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(csvField(f))
	}
	buf.WriteByte('\n')
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")

func csvField(s string) string {
	return `"` + strings.ReplaceAll(lineBreaks.Replace(s), `"`, `""`) + `"`
}

const calendarSheet = "Calendrier"

// CalendarXLSX renders the same table as CalendarCSV as an Excel workbook.
func CalendarXLSX(posts []CalendarPost) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", calendarSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	header := make([]any, len(calendarHeader))
	for i, h := range calendarHeader {
		header[i] = h
	}
	if err := f.SetSheetRow(calendarSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		f.SetCellStyle(calendarSheet, "A1", "H1", style)
	}

	for i, p := range posts {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []any{p.Date, p.Week, p.Platform, p.Format, p.Pillar, p.Title, p.Caption, strings.Join(p.Hashtags, " ")}
		if err := f.SetSheetRow(calendarSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	f.SetColWidth(calendarSheet, "F", "G", 48)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

// EmailSequenceText renders a sequence as plain text, one block per email.
func EmailSequenceText(seq EmailSequenceAnalysis) string {
	var sb strings.Builder
	if seq.SequenceName != "" {
		sb.WriteString(seq.SequenceName + "\n")
		sb.WriteString(strings.Repeat("=", len([]rune(seq.SequenceName))) + "\n\n")
	}
	if seq.Strategy != "" {
		sb.WriteString("Stratégie : " + seq.Strategy + "\n\n")
	}
	for i, e := range seq.Emails {
		fmt.Fprintf(&sb, "EMAIL %d - Jour %d\n", i+1, e.Day)
		fmt.Fprintf(&sb, "Objet : %s\n", e.Subject)
		if e.PreviewText != "" {
			fmt.Fprintf(&sb, "Aperçu : %s\n", e.PreviewText)
		}
		if e.Purpose != "" {
			fmt.Fprintf(&sb, "Objectif : %s\n", e.Purpose)
		}
		sb.WriteString("\n" + strings.TrimSpace(e.Body) + "\n\n")
		if e.CallToAction != "" {
			fmt.Fprintf(&sb, "CTA : %s\n", e.CallToAction)
		}
		sb.WriteString("\n" + strings.Repeat("-", 40) + "\n\n")
	}
	return sb.String()
}
