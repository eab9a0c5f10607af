package server

import (
	"bytes"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/phpdave11/gofpdf"

	"github.com/infoyupay/gang-comisiones-backend/internal/auth"
	"github.com/infoyupay/gang-comisiones-backend/internal/domain"
)

// auditReportPDF streams the most recent audit entries as a PDF. ADMIN or
// higher only; the trail itself stays read-only.
func (s *Server) auditReportPDF(c *fiber.Ctx) error {
	ctx := userContext(c)
	if _, err := auth.Require(ctx, domain.RoleAdmin); err != nil {
		return err
	}

	limit := c.QueryInt("limit", 200)
	entries, err := s.store.ListAuditLogs(ctx, limit)
	if err != nil {
		return err
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(12, 12, 12)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 9, "Audit Trail")
	pdf.Ln(7)
	pdf.SetFont("Helvetica", "", 9)
	pdf.SetTextColor(80, 80, 80)
	pdf.Cell(0, 6, "Most recent "+strconv.Itoa(len(entries))+" entries, newest first")
	pdf.Ln(9)

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(245, 245, 245)
	pdf.SetTextColor(20, 20, 20)
	pdf.SetDrawColor(200, 200, 200)

	colW := []float64{36, 42, 32, 52, 70, 40}
	headers := []string{"TIMESTAMP", "ACTION", "ENTITY", "ENTITY ID", "DETAILS", "HOST"}
	for i, h := range headers {
		last := i == len(headers)-1
		ln := 0
		if last {
			ln = 1
		}
		pdf.CellFormat(colW[i], 8, h, "1", ln, "C", true, 0, "")
	}

	pdf.SetFont("Helvetica", "", 8)
	for _, e := range entries {
		pdf.CellFormat(colW[0], 7, e.CreatedAt.Format("2006-01-02 15:04:05"), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[1], 7, e.Action, "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[2], 7, deref(e.EntityType), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[3], 7, truncate(deref(e.EntityID), 30), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[4], 7, truncate(deref(e.Details), 44), "1", 0, "L", false, 0, "")
		pdf.CellFormat(colW[5], 7, truncate(e.Host, 24), "1", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return fiber.NewError(fiber.StatusInternalServerError, "failed to render report")
	}

	c.Set("Content-Type", "application/pdf")
	c.Set("Content-Disposition", `attachment; filename="audit-trail.pdf"`)
	return c.Send(buf.Bytes())
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate shortens s to at most max runes, never splitting a multi-byte
// character.
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
