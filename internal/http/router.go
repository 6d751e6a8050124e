package api

import (
	stdhttp "net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	h "github.com/fabianabeda/datadriven-back/internal/http/handlers"
	"github.com/fabianabeda/datadriven-back/internal/http/middleware"
)

// Deps are the handlers the router mounts.
type Deps struct {
	Reports        *h.ReportsHandler
	Export         *h.ExportHandler
	System         *h.SystemHandler
	AllowedOrigins []string
	Log            *zap.Logger
}

func NewRouter(d Deps) *gin.Engine {
	log := d.Log
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(log), middleware.Metrics(), gin.Recovery(), middleware.CORS(d.AllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Warn("failed to set trusted proxies", zap.Error(err))
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	if d.System != nil {
		r.GET("/health", d.System.Health)
		r.GET("/db-check", d.System.DBCheck)
		r.GET("/routes", d.System.Routes)
	}
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	if rep := d.Reports; rep != nil {
		r.GET("/licitacoes", rep.ListBiddings)
		r.GET("/licitacoes-unificadas", rep.ListUnifiedBiddings)

		// Gráficos
		r.GET("/grafico1", rep.StatusBreakdown)
		r.GET("/grafico2", rep.ModalityShares)
		r.GET("/grafico3", rep.OrganBreakdown)
		r.GET("/grafico4", rep.YearBreakdown)

		r.GET("/total-licitacoes", rep.TotalBiddings)
		r.GET("/top-itens-licitados", rep.TopItems)
		r.GET("/valor-total-licitado", rep.TotalValue)
		r.GET("/tipo-fornecedores", rep.SupplierTypes)
		r.GET("/top-empresas", rep.TopCompanies)
		r.GET("/empresas-participantes", rep.ParticipatingCompanies)
		r.GET("/estados", rep.States)
	}

	if d.Export != nil {
		r.GET("/relatorios/:nome/pdf", d.Export.ReportPDF)
	}

	h.SetRouter(r)
	return r
}
