package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/fabianabeda/datadriven-back/internal/http/middleware"
	"github.com/fabianabeda/datadriven-back/internal/services"
	"github.com/fabianabeda/datadriven-back/internal/utils"
)

type ExportHandler struct {
	Export services.ExportService
	Log    *zap.Logger
}

func NewExportHandler(export services.ExportService, log *zap.Logger) *ExportHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &ExportHandler{Export: export, Log: log}
}

// ReportPDF returns a breakdown report as an inline PDF.
func (h *ExportHandler) ReportPDF(c *gin.Context) {
	name := c.Param("nome")
	if !h.Export.Exportable(name) {
		respondError(c, http.StatusNotFound, "report not found")
		return
	}

	pdfBytes, filename, err := h.Export.RenderPDF(c.Request.Context(), name, bindBiddingQuery(c))
	if err != nil {
		RespondDomainError(c, h.Log, err)
		return
	}
	utils.LogEvent(h.Log, middleware.GetRequestID(c), "export", "report_pdf", "rendered "+name)

	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", pdfBytes)
}
