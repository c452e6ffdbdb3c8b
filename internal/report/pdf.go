// Package report exports a quiz summary as a PDF document.
package report

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/raykov/gofpdf"

	"quiz-client/internal/markup"
	"quiz-client/internal/quiz"
)

const (
	PageA4     = "A4"
	PageLetter = "Letter"

	margin     = 15.0
	lineHeight = 6.0
	bodySize   = 11.0
)

type Options struct {
	PageSize string
}

// NormalizePageSize maps user input onto a supported page size.
func NormalizePageSize(value string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "a4":
		return PageA4, nil
	case "letter":
		return PageLetter, nil
	default:
		return "", fmt.Errorf("unsupported page size %q (use A4 or Letter)", value)
	}
}

// WriteSummaryPDF renders summary to w and returns the number of pages produced.
func WriteSummaryPDF(w io.Writer, summary quiz.Summary, opts Options) (int, error) {
	size, err := NormalizePageSize(opts.PageSize)
	if err != nil {
		return 0, err
	}

	pdf := gofpdf.New("P", "mm", size, "")
	pdf.SetMargins(margin, margin, margin)
	pdf.SetAutoPageBreak(true, margin)
	pdf.SetTitle(summary.QuizTitle, true)
	pdf.AliasNbPages("")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pdf.SetFooterFunc(func() {
		pdf.SetY(-margin + 3)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.SetTextColor(120, 120, 120)
		pdf.CellFormat(0, 5, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	pdf.AddPage()
	writeHeader(pdf, tr, summary)
	for idx, item := range summary.Answers {
		writeReviewItem(pdf, tr, idx+1, item)
	}
	if len(summary.Answers) == 0 {
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.MultiCell(0, lineHeight, "No answers recorded.", "", "L", false)
	}

	pages := pdf.PageCount()
	if err := pdf.Output(w); err != nil {
		return 0, fmt.Errorf("render pdf: %w", err)
	}
	return pages, nil
}

// ExportSummary writes the PDF to path, creating parent directories.
func ExportSummary(path string, summary quiz.Summary, opts Options) (int, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return 0, errors.New("export path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return 0, err
	}

	file, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	pages, err := WriteSummaryPDF(file, summary, opts)
	if closeErr := file.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		_ = os.Remove(path)
		return 0, err
	}
	return pages, nil
}

// FileName builds a filesystem friendly name such as "quiz-12-algebra-basics.pdf".
func FileName(quizID quiz.ID, title string) string {
	var b strings.Builder
	lastDash := false
	for _, r := range strings.ToLower(title) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		case !lastDash && b.Len() > 0:
			b.WriteByte('-')
			lastDash = true
		}
	}
	slug := strings.Trim(b.String(), "-")
	name := "quiz-" + quizID.String()
	if slug != "" {
		name += "-" + slug
	}
	return name + ".pdf"
}

func writeHeader(pdf *gofpdf.Fpdf, tr func(string) string, summary quiz.Summary) {
	title := strings.TrimSpace(summary.QuizTitle)
	if title == "" {
		title = "Quiz summary"
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", 16)
	pdf.MultiCell(0, 9, tr(title), "", "L", false)
	pdf.Ln(2)

	pdf.SetFont("Helvetica", "B", 12)
	pdf.MultiCell(0, lineHeight+1, tr(fmt.Sprintf("Score: %s / %s",
		quiz.FormatMarks(summary.YourScore), quiz.FormatMarks(summary.TotalMarks))), "", "L", false)

	pdf.SetFont("Helvetica", "", bodySize)
	stats := []string{
		fmt.Sprintf("Students attended: %d", summary.StudentsAttended),
		fmt.Sprintf("Average marks: %.2f", summary.AverageMarks),
		fmt.Sprintf("Median marks: %.2f", summary.MedianMarks),
	}
	for _, line := range stats {
		pdf.MultiCell(0, lineHeight, tr(line), "", "L", false)
	}
	pdf.Ln(4)
}

func writeReviewItem(pdf *gofpdf.Fpdf, tr func(string) string, number int, item quiz.ReviewItem) {
	pdf.SetTextColor(0, 0, 0)
	pdf.SetFont("Helvetica", "B", bodySize)
	pdf.Write(lineHeight, fmt.Sprintf("Q%d. ", number))
	writeMarkup(pdf, tr, item.Question, "B")
	pdf.Ln(lineHeight)

	pdf.SetFont("Helvetica", "", bodySize)
	pdf.Write(lineHeight, "Your answer: ")
	writeMarkup(pdf, tr, item.YourAnswer.Display(), "")
	pdf.Ln(lineHeight)
	pdf.SetFont("Helvetica", "", bodySize)
	pdf.Write(lineHeight, "Correct answer: ")
	writeMarkup(pdf, tr, item.CorrectAnswer.Display(), "")
	pdf.Ln(lineHeight)

	if item.IsCorrect {
		pdf.SetTextColor(20, 120, 40)
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.Write(lineHeight, "Correct")
	} else {
		pdf.SetTextColor(170, 30, 30)
		pdf.SetFont("Helvetica", "B", bodySize)
		pdf.Write(lineHeight, "Incorrect")
	}
	pdf.SetTextColor(0, 0, 0)
	pdf.Ln(lineHeight)

	if feedback := strings.TrimSpace(item.Feedback); feedback != "" {
		pdf.SetFont("Helvetica", "I", bodySize)
		pdf.Write(lineHeight, "Feedback: ")
		writeMarkup(pdf, tr, feedback, "I")
		pdf.Ln(lineHeight)
	}
	pdf.Ln(3)
}

// writeMarkup flows the segments inline: math in Times italic, code in Courier.
// Multi-line code gets its own block.
func writeMarkup(pdf *gofpdf.Fpdf, tr func(string) string, text, style string) {
	for _, segment := range markup.Split(text) {
		switch segment.Kind {
		case markup.MathExpression:
			pdf.SetFont("Times", "I", bodySize)
			pdf.Write(lineHeight, tr(segment.Text))
		case markup.CodeBlock:
			code := strings.Trim(segment.Text, "\n")
			pdf.SetFont("Courier", "", bodySize-1)
			if strings.Contains(code, "\n") {
				pdf.Ln(lineHeight)
				pdf.SetFillColor(240, 240, 240)
				pdf.MultiCell(0, lineHeight-1, tr(code), "", "L", true)
			} else {
				pdf.Write(lineHeight, tr(code))
			}
		default:
			pdf.SetFont("Helvetica", style, bodySize)
			pdf.Write(lineHeight, tr(segment.Text))
		}
	}
	pdf.SetFont("Helvetica", style, bodySize)
}
