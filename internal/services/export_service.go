package services

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/phpdave11/gofpdf"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/domain/models"
	"github.com/fabianabeda/datadriven-back/internal/repositories"
	"github.com/fabianabeda/datadriven-back/internal/utils"
)

// ReportTable is a two-column rendering of a breakdown report.
type ReportTable struct {
	Title   string
	Headers [2]string
	Rows    [][2]string
}

type tableFunc func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error)

var exportable = map[string]tableFunc{
	repositories.ReportStatus: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.StatusBreakdown(ctx, q)
		return countTable("Situação da licitação", "Situação", rows), err
	},
	repositories.ReportModality: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.ModalityShares(ctx, q)
		t := ReportTable{Title: "Modalidade de compra", Headers: [2]string{"Modalidade", "Porcentagem"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, [2]string{label(r.Modality), utils.FormatPercent(r.Percentage)})
		}
		return t, err
	},
	repositories.ReportOrgan: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.OrganBreakdown(ctx, q)
		return countTable("Licitações por órgão", "Órgão", rows), err
	},
	repositories.ReportYear: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.YearBreakdown(ctx, q)
		return countTable("Licitações por ano", "Ano", rows), err
	},
	repositories.ReportTopItems: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.TopItems(ctx, q)
		t := ReportTable{Title: "Itens mais licitados", Headers: [2]string{"Item", "Quantidade"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, [2]string{label(r.ID), utils.FormatNumber(r.Total)})
		}
		return t, err
	},
	repositories.ReportTotalValue: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		v, err := s.TotalValue(ctx, q)
		t := ReportTable{Title: "Valor total licitado", Headers: [2]string{"", "Valor"}}
		if err == nil {
			t.Rows = append(t.Rows, [2]string{"Total", utils.FormatReais(v.Total)})
		}
		return t, err
	},
	repositories.ReportSupplierTypes: func(ctx context.Context, s ReportsService, _ domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.SupplierTypes(ctx)
		return countTable("Tipos de fornecedor", "Tipo", rows), err
	},
	repositories.ReportTopCompanies: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.TopCompanies(ctx, q)
		t := ReportTable{Title: "Empresas com mais resultados", Headers: [2]string{"Empresa", "Licitações"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, [2]string{label(r.Name), strconv.FormatInt(r.Count, 10)})
		}
		return t, err
	},
	repositories.ReportParticipants: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.ParticipatingCompanies(ctx, q)
		t := ReportTable{Title: "Empresas participantes por ano", Headers: [2]string{"Ano", "Fornecedores"}}
		for _, r := range rows {
			t.Rows = append(t.Rows, [2]string{strconv.Itoa(r.Year), strconv.FormatInt(r.Suppliers, 10)})
		}
		return t, err
	},
	repositories.ReportStates: func(ctx context.Context, s ReportsService, q domain.BiddingQuery) (ReportTable, error) {
		rows, err := s.States(ctx, q)
		t := ReportTable{Title: "Estados", Headers: [2]string{"Estado", ""}}
		for _, r := range rows {
			t.Rows = append(t.Rows, [2]string{label(r.ID), ""})
		}
		return t, err
	},
}

// ExportService renders breakdown reports as PDF.
type ExportService struct {
	Reports ReportsService
	Now     func() time.Time
}

// Exportable reports whether name can be rendered.
func (s ExportService) Exportable(name string) bool {
	_, ok := exportable[name]
	return ok
}

// Table runs the report and returns its tabular form.
func (s ExportService) Table(ctx context.Context, name string, q domain.BiddingQuery) (ReportTable, error) {
	fn, ok := exportable[name]
	if !ok {
		return ReportTable{}, domain.NotFoundError{Resource: "report", Msg: "report not found"}
	}
	t, err := fn(ctx, s.Reports, q)
	if err != nil {
		return ReportTable{}, err
	}
	return t, nil
}

// RenderPDF returns the PDF bytes and a download filename for the named report.
func (s ExportService) RenderPDF(ctx context.Context, name string, q domain.BiddingQuery) ([]byte, string, error) {
	t, err := s.Table(ctx, name, q)
	if err != nil {
		return nil, "", err
	}
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	generated := now()
	out, err := buildReportPDF(t, generated)
	if err != nil {
		return nil, "", domain.InternalError{Msg: "render pdf " + name, Err: err}
	}
	filename := fmt.Sprintf("RELATORIO_%s_%s.pdf", utils.SafeFilenamePart(name), generated.Format("20060102"))
	return out, filename, nil
}

func buildReportPDF(t ReportTable, generated time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle(tr(t.Title), false)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 16)
	pdf.Cell(0, 10, tr(t.Title))
	pdf.Ln(10)
	pdf.SetFont("Helvetica", "I", 9)
	pdf.Cell(0, 6, tr("Gerado em "+utils.FormatDateTime(generated)))
	pdf.Ln(10)

	pdf.SetFont("Helvetica", "B", 11)
	pdf.CellFormat(140, 8, tr(t.Headers[0]), "1", 0, "L", false, 0, "")
	pdf.CellFormat(40, 8, tr(t.Headers[1]), "1", 1, "R", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, row := range t.Rows {
		text := row[0]
		if r := []rune(text); len(r) > 80 {
			text = string(r[:77]) + "..."
		}
		pdf.CellFormat(140, 7, tr(text), "1", 0, "L", false, 0, "")
		pdf.CellFormat(40, 7, tr(row[1]), "1", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func countTable(title, header string, rows []models.GroupCount) ReportTable {
	t := ReportTable{Title: title, Headers: [2]string{header, "Quantidade"}}
	for _, r := range rows {
		t.Rows = append(t.Rows, [2]string{label(r.ID), strconv.FormatInt(r.Count, 10)})
	}
	return t
}

func label(v any) string {
	if v == nil {
		return "-"
	}
	s := utils.NormalizeSpace(fmt.Sprint(v))
	if s == "" {
		return "-"
	}
	return s
}
