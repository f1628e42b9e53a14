package services

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"budgetflow/internal/domain"
	"budgetflow/internal/domain/models"
	"budgetflow/internal/repositories"
	"budgetflow/internal/utils"

	"github.com/phpdave11/gofpdf"
)

// DocsService renders printable request summaries.
type DocsService struct {
	Requests  RequestService
	Catalog   *repositories.Catalog
	RequestID string
}

// RequestSummaryPDF renders the request, its history timeline and the
// current return note. Visibility follows RequestService.Get.
func (s DocsService) RequestSummaryPDF(ctx context.Context, id string, actor domain.Actor) ([]byte, string, error) {
	req, err := s.Requests.Get(ctx, id, actor)
	if err != nil {
		return nil, "", err
	}
	projectName := req.ProjectID
	if s.Catalog != nil {
		if p, err := s.Catalog.Project(req.ProjectID); err == nil {
			projectName = fmt.Sprintf("%s (%s)", p.Name, p.ID)
		}
	}
	pdf, name, err := buildRequestSummaryPDF(req, projectName)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render request summary", Err: err}
	}
	utils.LogEvent(s.RequestID, "docs", "request_summary", fmt.Sprintf("id=%s actor=%s", req.ID, actor.UserID))
	return pdf, name, nil
}

func buildRequestSummaryPDF(req models.Request, projectName string) ([]byte, string, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Request "+req.ID, false)
	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.Cell(0, 10, "BUDGET REQUEST")
	pdf.Ln(12)

	pdf.SetFont("Helvetica", "", 12)
	lines := []string{
		fmt.Sprintf("Request ID  : %s", req.ID),
		fmt.Sprintf("Title       : %s", safe(req.Title, "-")),
		fmt.Sprintf("Project     : %s", safe(projectName, "-")),
		fmt.Sprintf("Requester   : %s (%s)", safe(req.RequesterName, "-"), req.RequesterID),
		fmt.Sprintf("Amount      : %s", utils.FormatAmount(req.Amount)),
		fmt.Sprintf("Status      : %s", req.Status.Label()),
		fmt.Sprintf("Submitted   : %s", utils.FormatDateTime(req.CreatedAt)),
	}
	for _, l := range lines {
		pdf.Cell(0, 7, l)
		pdf.Ln(7)
	}
	pdf.Ln(3)
	pdf.MultiCell(0, 6, "Description: "+safe(req.Description, "-"), "", "", false)
	if len(req.Documents) > 0 {
		pdf.MultiCell(0, 6, "Documents: "+strings.Join(req.Documents, ", "), "", "", false)
	}

	pdf.Ln(4)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.Cell(0, 7, "History")
	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 10)
	for i, h := range req.History {
		pdf.MultiCell(0, 5, fmt.Sprintf("%d) %s  %s  %s by %s",
			i+1, utils.FormatDateTime(h.Timestamp), h.Status.Label(), safe(h.Action, "-"), safe(h.ActorName, "-")), "", "", false)
	}

	if rn := req.ReturnNote; rn != nil {
		pdf.Ln(4)
		pdf.SetFont("Helvetica", "B", 12)
		pdf.Cell(0, 7, "Returned for correction")
		pdf.Ln(8)
		pdf.SetFont("Helvetica", "", 10)
		pdf.Cell(0, 5, fmt.Sprintf("By %s on %s", safe(rn.AdminName, "-"), utils.FormatDateTime(rn.Timestamp)))
		pdf.Ln(6)
		for _, r := range rn.Reasons {
			pdf.MultiCell(0, 5, "- "+r, "", "", false)
		}
		if rn.Comment != "" {
			pdf.MultiCell(0, 5, "Comment: "+rn.Comment, "", "", false)
		}
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), fmt.Sprintf("REQUEST_%s.pdf", safeFilenamePart(req.ID)), nil
}

func safe(v, fallback string) string {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback
	}
	return v
}

func safeFilenamePart(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "NA"
	}
	replacer := strings.NewReplacer(" ", "_", "/", "_", "\\", "_", ":", "_", "*", "_", "?", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	s = replacer.Replace(s)
	if len(s) > 40 {
		s = s[:40]
	}
	return s
}
