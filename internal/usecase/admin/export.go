package admin

import (
	"context"
	"fmt"
	"time"

	"skillbridge/internal/domain/submission"

	"github.com/xuri/excelize/v2"
)

const exportPageSize = 500

var exportHeaders = []string{
	"Submitted At",
	"Status",
	"Job",
	"Category",
	"Member Email",
	"Member Name",
	"Payment",
	"Content",
	"File",
	"Feedback",
	"Reviewed At",
}

// ExportSubmissionsXLSX renders every submission matching status into a
// single-sheet workbook and returns the bytes with the row count.
func (s *Service) ExportSubmissionsXLSX(ctx context.Context, status string) ([]byte, int, error) {
	start := time.Now()

	f, err := submissionFilter(status, "", exportPageSize, 0)
	if err != nil {
		return nil, 0, err
	}

	var rows []submission.Submission
	for {
		page, err := s.deps.Submissions.List(ctx, f)
		if err != nil {
			return nil, 0, ErrInternal
		}
		rows = append(rows, page...)
		if len(page) < exportPageSize {
			break
		}
		f.Offset += exportPageSize
	}

	b, err := renderSubmissionsXLSX(rows)
	if err != nil {
		return nil, 0, err
	}

	s.deps.Logger.Printf("[Admin] export xlsx rows=%d status=%s elapsed_ms=%d", len(rows), status, time.Since(start).Milliseconds())
	return b, len(rows), nil
}

func renderSubmissionsXLSX(rows []submission.Submission) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Submissions"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		last, _ := excelize.CoordinatesToCellName(len(exportHeaders), 1)
		_ = f.SetCellStyle(sheet, "A1", last, style)
	}

	for i, r := range rows {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}

		write(1, r.CreatedAt.UTC().Format(time.RFC3339))
		write(2, string(r.Status))
		write(3, r.JobTitle)
		write(4, derefString(r.JobCategory))
		write(5, r.UserEmail)
		write(6, derefString(r.UserFullName))
		write(7, r.PaymentAmount)
		write(8, truncate(r.SubmissionContent, 500))
		if r.File != nil {
			write(9, r.File.URL)
		}
		write(10, derefString(r.AdminFeedback))
		if r.ReviewedAt != nil {
			write(11, r.ReviewedAt.UTC().Format(time.RFC3339))
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 22)
	_ = f.SetColWidth(sheet, "B", "B", 10)
	_ = f.SetColWidth(sheet, "C", "D", 28)
	_ = f.SetColWidth(sheet, "E", "F", 26)
	_ = f.SetColWidth(sheet, "G", "G", 10)
	_ = f.SetColWidth(sheet, "H", "I", 48)
	_ = f.SetColWidth(sheet, "J", "J", 36)
	_ = f.SetColWidth(sheet, "K", "K", 22)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func derefString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
