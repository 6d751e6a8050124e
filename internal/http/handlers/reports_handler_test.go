package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"github.com/fabianabeda/datadriven-back/internal/domain"
	"github.com/fabianabeda/datadriven-back/internal/domain/models"
	"github.com/fabianabeda/datadriven-back/internal/services"
)

type stubStore struct {
	rows  map[string]any
	count int64
	list  []bson.M
	total int64
	err   error

	lastFilter domain.BiddingFilter
	lastSource domain.Source
	lastPage   domain.PageParams
}

func (s *stubStore) Aggregate(_ context.Context, report string, filter domain.BiddingFilter, out any) error {
	s.lastFilter = filter
	if s.err != nil {
		return s.err
	}
	if v, ok := s.rows[report]; ok {
		reflect.ValueOf(out).Elem().Set(reflect.ValueOf(v))
	}
	return nil
}

func (s *stubStore) CountBiddings(_ context.Context, filter domain.BiddingFilter) (int64, error) {
	s.lastFilter = filter
	return s.count, s.err
}

func (s *stubStore) ListBiddings(_ context.Context, source domain.Source, filter domain.BiddingFilter, page domain.PageParams) ([]bson.M, int64, error) {
	s.lastSource, s.lastFilter, s.lastPage = source, filter, page
	if s.err != nil {
		return nil, 0, s.err
	}
	return s.list, s.total, nil
}

func newTestEngine(store *stubStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	svc := services.ReportsService{Store: store, Options: domain.ReportOptions{Years: []int{2023, 2024}}}
	h := NewReportsHandler(svc, nil)
	x := NewExportHandler(services.ExportService{Reports: svc, Now: func() time.Time {
		return time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	}}, nil)

	r := gin.New()
	r.GET("/licitacoes", h.ListBiddings)
	r.GET("/licitacoes-unificadas", h.ListUnifiedBiddings)
	r.GET("/grafico1", h.StatusBreakdown)
	r.GET("/grafico2", h.ModalityShares)
	r.GET("/total-licitacoes", h.TotalBiddings)
	r.GET("/valor-total-licitado", h.TotalValue)
	r.GET("/tipo-fornecedores", h.SupplierTypes)
	r.GET("/top-empresas", h.TopCompanies)
	r.GET("/empresas-participantes", h.ParticipatingCompanies)
	r.GET("/relatorios/:nome/pdf", x.ReportPDF)
	return r
}

func filterValue(f domain.BiddingFilter, field string) any {
	c, ok := f.Get(field)
	if !ok {
		return nil
	}
	return c.Value
}

func doGet(r http.Handler, target string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	r.ServeHTTP(w, req)
	return w
}

func TestStatusBreakdown_OK(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"grafico1": []models.GroupCount{{ID: "Homologada", Count: 4}},
	}}
	w := doGet(newTestEngine(store), "/grafico1?estado=minas&ano=2024&modalidade=abc")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"_id":"Homologada","count":4}]`, w.Body.String())

	assert.Equal(t, 2024, filterValue(store.lastFilter, "anoCompra"))
	assert.Equal(t, "minas", filterValue(store.lastFilter, "unidadeOrgao.cidade.uf.nome"))
	_, ok := store.lastFilter.Get("modalidadeCompra.id")
	assert.False(t, ok)
}

func TestStatusBreakdown_NoData(t *testing.T) {
	w := doGet(newTestEngine(&stubStore{}), "/grafico1")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No data found"}`, w.Body.String())
}

func TestStatusBreakdown_UpstreamFailureHidesCause(t *testing.T) {
	w := doGet(newTestEngine(&stubStore{err: errors.New("connection refused 10.0.0.7")}), "/grafico1")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":"Internal server error"}`, w.Body.String())
	assert.NotContains(t, w.Body.String(), "10.0.0.7")
}

func TestModalityShares(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"grafico2": []models.GroupCount{{ID: "Pregão", Count: 3}, {ID: "Dispensa", Count: 1}},
	}}
	w := doGet(newTestEngine(store), "/grafico2")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"modalidade":"Pregão","porcentagem":75},{"modalidade":"Dispensa","porcentagem":25}]`, w.Body.String())
}

func TestTotalBiddings_ZeroIsOK(t *testing.T) {
	w := doGet(newTestEngine(&stubStore{count: 0}), "/total-licitacoes?orgao=123")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"totalLicitacoes":0}`, w.Body.String())
}

func TestTotalValue(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"valor-total-licitado": []models.ValueTotal{{Total: 1500.5}},
	}}
	w := doGet(newTestEngine(store), "/valor-total-licitado")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":1500.5}`, w.Body.String())
}

func TestSupplierTypes_IgnoresQuery(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"tipo-fornecedores": []models.GroupCount{{ID: "PJ", Count: 9}},
	}}
	w := doGet(newTestEngine(store), "/tipo-fornecedores?ano=2024&estado=sp")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, store.lastFilter)
}

func TestTopCompanies(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"top-empresas": []models.CompanyCount{{Name: "ACME LTDA", Count: 8}},
	}}
	w := doGet(newTestEngine(store), "/top-empresas")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"nomeEmpresa":"ACME LTDA","totalLicitacoes":8}]`, w.Body.String())
}

func TestParticipatingCompanies_AlwaysOK(t *testing.T) {
	w := doGet(newTestEngine(&stubStore{}), "/empresas-participantes")

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[{"ano":2023,"totalFornecedores":0},{"ano":2024,"totalFornecedores":0}]`, w.Body.String())
}

func TestListBiddings(t *testing.T) {
	store := &stubStore{
		list:  []bson.M{{"_id": "a"}, {"_id": "b"}},
		total: 21,
	}
	w := doGet(newTestEngine(store), "/licitacoes?page=2&limit=5&unidade=926121")

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Biddings     []map[string]any `json:"biddings"`
		Page         int              `json:"page"`
		Limit        int              `json:"limit"`
		TotalBidding int64            `json:"totalBidding"`
		TotalPages   int64            `json:"totalPages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body.Biddings, 2)
	assert.Equal(t, 2, body.Page)
	assert.Equal(t, 5, body.Limit)
	assert.Equal(t, int64(21), body.TotalBidding)
	assert.Equal(t, int64(5), body.TotalPages)

	assert.Equal(t, domain.SourceNormalized, store.lastSource)
	assert.Equal(t, domain.PageParams{Page: 2, Limit: 5, Skip: 5}, store.lastPage)
	assert.Equal(t, "926121", filterValue(store.lastFilter, "unidadeOrgao.codigo"))
}

func TestListUnifiedBiddings_NotFound(t *testing.T) {
	store := &stubStore{}
	w := doGet(newTestEngine(store), "/licitacoes-unificadas?page=abc&limit=-3")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Bidding not found"}`, w.Body.String())
	assert.Equal(t, domain.SourceUnified, store.lastSource)
	assert.Equal(t, domain.PageParams{Page: 1, Limit: 10, Skip: 0}, store.lastPage)
}

func TestReportPDF(t *testing.T) {
	store := &stubStore{rows: map[string]any{
		"grafico1": []models.GroupCount{{ID: "Homologada", Count: 4}},
	}}
	r := newTestEngine(store)

	w := doGet(r, "/relatorios/grafico1/pdf")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "RELATORIO_grafico1_20240502.pdf")
	assert.True(t, len(w.Body.Bytes()) > 4 && string(w.Body.Bytes()[:4]) == "%PDF")

	w = doGet(r, "/relatorios/total-licitacoes/pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"report not found"}`, w.Body.String())

	w = doGet(newTestEngine(&stubStore{}), "/relatorios/grafico3/pdf")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"No data found"}`, w.Body.String())
}
