package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/services"
)

// ReportsHandler serves the bidding listing and report endpoints.
type ReportsHandler struct {
	Reports services.ReportsService
	Log     *zap.Logger
}

func NewReportsHandler(reports services.ReportsService, log *zap.Logger) *ReportsHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReportsHandler{Reports: reports, Log: log}
}

// reply writes v as JSON or maps err.
func (h *ReportsHandler) reply(c *gin.Context, v any, err error) {
	if err != nil {
		RespondDomainError(c, h.Log, err)
		return
	}
	c.JSON(http.StatusOK, v)
}

// ListBiddings pages through the normalized collections.
func (h *ReportsHandler) ListBiddings(c *gin.Context) {
	page, err := h.Reports.ListBiddings(c.Request.Context(), domain.SourceNormalized, bindBiddingQuery(c))
	h.reply(c, page, err)
}

// ListUnifiedBiddings pages through licitacoes_unificadas.
func (h *ReportsHandler) ListUnifiedBiddings(c *gin.Context) {
	page, err := h.Reports.ListBiddings(c.Request.Context(), domain.SourceUnified, bindBiddingQuery(c))
	h.reply(c, page, err)
}

// StatusBreakdown: situação da licitação x quantidade.
func (h *ReportsHandler) StatusBreakdown(c *gin.Context) {
	rows, err := h.Reports.StatusBreakdown(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

// ModalityShares: modalidade de compra x porcentagem.
func (h *ReportsHandler) ModalityShares(c *gin.Context) {
	rows, err := h.Reports.ModalityShares(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

// OrganBreakdown: órgão x quantidade.
func (h *ReportsHandler) OrganBreakdown(c *gin.Context) {
	rows, err := h.Reports.OrganBreakdown(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

// YearBreakdown: ano x quantidade.
func (h *ReportsHandler) YearBreakdown(c *gin.Context) {
	rows, err := h.Reports.YearBreakdown(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

func (h *ReportsHandler) TotalBiddings(c *gin.Context) {
	total, err := h.Reports.TotalBiddings(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, total, err)
}

func (h *ReportsHandler) TopItems(c *gin.Context) {
	rows, err := h.Reports.TopItems(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

func (h *ReportsHandler) TotalValue(c *gin.Context) {
	total, err := h.Reports.TotalValue(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, total, err)
}

// SupplierTypes is not filtered.
func (h *ReportsHandler) SupplierTypes(c *gin.Context) {
	rows, err := h.Reports.SupplierTypes(c.Request.Context())
	h.reply(c, rows, err)
}

func (h *ReportsHandler) TopCompanies(c *gin.Context) {
	rows, err := h.Reports.TopCompanies(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

func (h *ReportsHandler) ParticipatingCompanies(c *gin.Context) {
	rows, err := h.Reports.ParticipatingCompanies(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}

func (h *ReportsHandler) States(c *gin.Context) {
	rows, err := h.Reports.States(c.Request.Context(), bindBiddingQuery(c))
	h.reply(c, rows, err)
}
