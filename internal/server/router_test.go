package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	courtcontroller "arena/internal/court/controller"
	courtservice "arena/internal/court/service"
	"arena/internal/domain"
	"arena/internal/dto"
	"arena/internal/health"
	"arena/internal/httpio"
	productcontroller "arena/internal/product/controller"
	productservice "arena/internal/product/service"
	reportcontroller "arena/internal/report/controller"
	reportservice "arena/internal/report/service"
	stockcontroller "arena/internal/stock/controller"
	stockservice "arena/internal/stock/service"
	tabcontroller "arena/internal/tab/controller"
	tabservice "arena/internal/tab/service"
	"arena/internal/testutil"
)

func newTestRouter(ms *testutil.MemStore) http.Handler {
	logger := zap.NewNop()
	repos := ms.Repos()
	return NewRouter(Controllers{
		Health:    health.NewController(ms, logger),
		Courts:    courtcontroller.NewCourtController(courtservice.NewCourtService(repos, logger), logger),
		Tabs:      tabcontroller.NewTabController(tabservice.NewTabService(repos, ms, logger), logger),
		Products:  productcontroller.NewProductController(productservice.NewService(repos, ms, logger), logger),
		Movements: stockcontroller.NewMovementController(stockservice.NewLedgerService(repos, ms, logger), logger),
		Reports:   reportcontroller.NewReportController(reportservice.NewReportService(repos), logger),
	}, logger)
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		switch b := body.(type) {
		case string:
			buf.WriteString(b)
		default:
			require.NoError(t, json.NewEncoder(&buf).Encode(b))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func requireError(t *testing.T, rec *httptest.ResponseRecorder, status int, code string) httpio.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rec.Code, rec.Body.String())
	resp := decode[httpio.ErrorResponse](t, rec)
	assert.Equal(t, status, resp.Status)
	assert.Equal(t, code, resp.Code)
	assert.NotEmpty(t, resp.TraceID)
	return resp
}

func createProduct(t *testing.T, h http.Handler, body map[string]any) dto.ProductResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/produtos", body)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decode[dto.ProductResponse](t, rec)
}

func TestHealth(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)

	rec := do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[dto.HealthResponse](t, rec)
	assert.True(t, resp.OK)
	assert.Equal(t, "connected", resp.DB)

	rec = do(t, h, http.MethodGet, "/api/db", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	ms.SetPingError(errors.New("connection refused"))

	rec = do(t, h, http.MethodGet, "/health", nil)
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	resp = decode[dto.HealthResponse](t, rec)
	assert.False(t, resp.OK)
	assert.Equal(t, "error", resp.DB)
	assert.Equal(t, "connection refused", resp.DBMessage)

	rec = do(t, h, http.MethodGet, "/api/db", nil)
	require.Equal(t, http.StatusInternalServerError, rec.Code)
	db := decode[dto.DBStatusResponse](t, rec)
	assert.Equal(t, "error", db.DB)
}

func TestProducts(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)

	created := createProduct(t, h, map[string]any{"nome": "Cerveja", "preco": 10})
	assert.Equal(t, "UN", created.Unidade)
	assert.True(t, created.ControleEstoque)
	assert.True(t, created.Ativo)
	assert.True(t, created.EstoqueAtual.IsZero())

	untracked := createProduct(t, h, map[string]any{"nome": "Porcao", "preco": "35.50", "controleEstoque": false, "unidade": "PC"})
	assert.False(t, untracked.ControleEstoque)
	assert.Equal(t, "PC", untracked.Unidade)

	rec := do(t, h, http.MethodPatch, "/api/produtos/"+untracked.ID, map[string]any{"ativo": false})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.False(t, decode[dto.ProductResponse](t, rec).Ativo)

	rec = do(t, h, http.MethodGet, "/api/produtos?ativo=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	active := decode[[]dto.ProductResponse](t, rec)
	require.Len(t, active, 1)
	assert.Equal(t, created.ID, active[0].ID)

	rec = do(t, h, http.MethodGet, "/api/produtos?ativo=no", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.ProductResponse](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/produtos", nil)
	assert.Len(t, decode[[]dto.ProductResponse](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/produtos/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	requireError(t, do(t, h, http.MethodGet, "/api/produtos/missing", nil), http.StatusNotFound, httpio.CodeNotFound)
	requireError(t, do(t, h, http.MethodPatch, "/api/produtos/missing", map[string]any{"nome": "X"}), http.StatusNotFound, httpio.CodeNotFound)

	resp := requireError(t, do(t, h, http.MethodPost, "/api/produtos", map[string]any{"nome": "Sem preco"}), http.StatusBadRequest, httpio.CodeValidation)
	require.NotEmpty(t, resp.Details)
	assert.Equal(t, "preco", resp.Details[0].Field)

	requireError(t, do(t, h, http.MethodPost, "/api/produtos", "{not json"), http.StatusBadRequest, httpio.CodeValidation)
}

func TestMovements(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)
	p := createProduct(t, h, map[string]any{"nome": "Agua", "preco": 4})

	rec := do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": p.ID, "tipo": "entrada", "quantidade": 12, "motivo": "Compra"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m := decode[dto.MovementResponse](t, rec)
	assert.Equal(t, "entrada", m.Tipo)
	require.NotNil(t, m.Produto)
	assert.True(t, m.Produto.EstoqueAtual.Equal(decimal.NewFromInt(12)))

	rec = do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": p.ID, "tipo": "ajuste", "quantidade": "5", "motivo": ""})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	m = decode[dto.MovementResponse](t, rec)
	assert.True(t, m.Quantidade.Equal(decimal.NewFromInt(5)))
	assert.Nil(t, m.Motivo)
	assert.True(t, m.Produto.EstoqueAtual.Equal(decimal.NewFromInt(5)))

	resp := requireError(t, do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": p.ID, "tipo": "saida", "quantidade": 6}),
		http.StatusBadRequest, httpio.CodeInsufficientStock)
	assert.Contains(t, resp.Message, "5")

	requireError(t, do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": p.ID, "tipo": "perda", "quantidade": 1}),
		http.StatusBadRequest, httpio.CodeValidation)
	requireError(t, do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": "missing", "tipo": "entrada", "quantidade": 1}),
		http.StatusNotFound, httpio.CodeNotFound)

	rec = do(t, h, http.MethodGet, "/api/movimentacoes?produtoId="+p.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[[]dto.MovementResponse](t, rec)
	require.Len(t, list, 2)
	assert.Equal(t, "ajuste", list[0].Tipo)
}

func TestTabFlow(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)
	beer := createProduct(t, h, map[string]any{"nome": "Cerveja", "preco": 10})
	rec := do(t, h, http.MethodPost, "/api/movimentacoes", map[string]any{"produtoId": beer.ID, "tipo": "entrada", "quantidade": 10})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/comandas/proximo-numero", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[dto.NextNumberResponse](t, rec).ProximoNumero)

	rec = do(t, h, http.MethodPost, "/api/comandas", map[string]any{"numero": 1, "mesa": " 3 "})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tab := decode[dto.TabResponse](t, rec)
	assert.Equal(t, "aberta", tab.Status)
	require.NotNil(t, tab.Mesa)
	assert.Equal(t, "3", *tab.Mesa)
	assert.NotNil(t, tab.Itens)

	requireError(t, do(t, h, http.MethodPost, "/api/comandas", map[string]any{"numero": 1}), http.StatusBadRequest, httpio.CodeConflict)
	requireError(t, do(t, h, http.MethodPost, "/api/comandas", map[string]any{"numero": 0}), http.StatusBadRequest, httpio.CodeValidation)
	requireError(t, do(t, h, http.MethodPost, "/api/comandas", map[string]any{"mesa": "1"}), http.StatusBadRequest, httpio.CodeValidation)

	rec = do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": beer.ID, "quantidade": 3})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	tab = decode[dto.TabResponse](t, rec)
	require.Len(t, tab.Itens, 1)
	assert.True(t, tab.Total.Equal(decimal.NewFromInt(30)))
	require.NotNil(t, tab.Itens[0].Produto)
	assert.True(t, tab.Itens[0].Produto.EstoqueAtual.Equal(decimal.NewFromInt(7)))

	requireError(t, do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": beer.ID, "quantidade": 8}),
		http.StatusBadRequest, httpio.CodeInsufficientStock)
	requireError(t, do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": beer.ID, "quantidade": 0}),
		http.StatusBadRequest, httpio.CodeValidation)
	resp := requireError(t, do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": beer.ID, "quantidade": "0.0004"}),
		http.StatusBadRequest, httpio.CodeValidation)
	assert.Equal(t, "quantidade", resp.Details[0].Field)
	requireError(t, do(t, h, http.MethodPost, "/api/comandas/missing/itens", map[string]any{"produtoId": beer.ID, "quantidade": 1}),
		http.StatusNotFound, httpio.CodeNotFound)

	rec = do(t, h, http.MethodDelete, "/api/comandas/"+tab.ID+"/itens/"+tab.Itens[0].ID, nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tab = decode[dto.TabResponse](t, rec)
	assert.Empty(t, tab.Itens)
	assert.True(t, tab.Total.IsZero())

	rec = do(t, h, http.MethodGet, "/api/produtos/"+beer.ID, nil)
	assert.True(t, decode[dto.ProductResponse](t, rec).EstoqueAtual.Equal(decimal.NewFromInt(10)))

	rec = do(t, h, http.MethodPatch, "/api/comandas/"+tab.ID, map[string]any{"status": "fechada"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	tab = decode[dto.TabResponse](t, rec)
	assert.Equal(t, "fechada", tab.Status)
	assert.NotNil(t, tab.FechadaEm)

	requireError(t, do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": beer.ID, "quantidade": 1}),
		http.StatusBadRequest, httpio.CodeInvalidState)
	requireError(t, do(t, h, http.MethodPatch, "/api/comandas/"+tab.ID, map[string]any{"status": "cancelada"}),
		http.StatusBadRequest, httpio.CodeValidation)
	requireError(t, do(t, h, http.MethodPatch, "/api/comandas/missing", map[string]any{"status": "paga"}),
		http.StatusNotFound, httpio.CodeNotFound)

	rec = do(t, h, http.MethodPost, "/api/comandas", map[string]any{"numero": 1})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/comandas?status=fechada", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	closed := decode[[]dto.TabResponse](t, rec)
	require.Len(t, closed, 1)
	assert.Equal(t, tab.ID, closed[0].ID)

	rec = do(t, h, http.MethodGet, "/api/comandas", nil)
	assert.Len(t, decode[[]dto.TabResponse](t, rec), 2)

	rec = do(t, h, http.MethodGet, "/api/comandas/"+tab.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(t, h, http.MethodGet, "/api/comandas/proximo-numero", nil)
	assert.Equal(t, 2, decode[dto.NextNumberResponse](t, rec).ProximoNumero)
}

func TestTabFlow_StoreFailureIsInternal(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)
	p := ms.SeedProduct(domain.Product{Name: "Agua", Price: decimal.NewFromInt(4), StockTracked: false, Active: true})

	rec := do(t, h, http.MethodPost, "/api/comandas", map[string]any{"numero": 9})
	require.Equal(t, http.StatusCreated, rec.Code)
	tab := decode[dto.TabResponse](t, rec)

	ms.FailOn("TabItems.Create", errors.New("connection reset by peer"))
	resp := requireError(t, do(t, h, http.MethodPost, "/api/comandas/"+tab.ID+"/itens", map[string]any{"produtoId": p.ID, "quantidade": 1}),
		http.StatusInternalServerError, httpio.CodeInternal)
	assert.Contains(t, resp.Message, "connection reset by peer")
}

func TestCourtsAndBookings(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)
	court := ms.SeedCourt(domain.Court{Name: "Quadra 1", Modality: "volei", Active: true})

	rec := do(t, h, http.MethodGet, "/api/quadras", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	courts := decode[[]dto.CourtResponse](t, rec)
	require.Len(t, courts, 1)
	assert.Equal(t, "volei", courts[0].Modalidade)

	rec = do(t, h, http.MethodPost, "/api/agendamentos", map[string]any{
		"quadraId": court.ID, "data": "2026-05-02", "horaInicio": "18:00", "horaFim": "19:00", "cliente": "Ana", "telefone": "", "valor": 120,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	booking := decode[dto.BookingResponse](t, rec)
	assert.Equal(t, "1800", booking.HoraInicio)
	assert.Equal(t, "2026-05-02", booking.Data)
	assert.Nil(t, booking.Telefone)
	require.NotNil(t, booking.Quadra)

	requireError(t, do(t, h, http.MethodPost, "/api/agendamentos", map[string]any{
		"quadraId": court.ID, "data": "2026-05-02", "horaInicio": "19:00", "horaFim": "18:00", "valor": 120,
	}), http.StatusBadRequest, httpio.CodeValidation)
	requireError(t, do(t, h, http.MethodPost, "/api/agendamentos", map[string]any{
		"quadraId": court.ID, "data": "02/05/2026", "horaInicio": "18:00", "horaFim": "19:00", "valor": 120,
	}), http.StatusBadRequest, httpio.CodeValidation)

	rec = do(t, h, http.MethodGet, "/api/agendamentos?data=2026-05-02&quadraId="+court.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]dto.BookingResponse](t, rec), 1)

	rec = do(t, h, http.MethodGet, "/api/agendamentos?data=2026-05-03", nil)
	assert.Empty(t, decode[[]dto.BookingResponse](t, rec))

	requireError(t, do(t, h, http.MethodGet, "/api/agendamentos?data=amanha", nil), http.StatusBadRequest, httpio.CodeValidation)

	rec = do(t, h, http.MethodDelete, "/api/agendamentos/"+booking.ID, nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	requireError(t, do(t, h, http.MethodDelete, "/api/agendamentos/"+booking.ID, nil), http.StatusNotFound, httpio.CodeNotFound)
}

func TestFinancialReport(t *testing.T) {
	ms := testutil.NewMemStore()
	h := newTestRouter(ms)
	court := ms.SeedCourt(domain.Court{Name: "Quadra 1", Active: true})

	rec := do(t, h, http.MethodPost, "/api/agendamentos", map[string]any{
		"quadraId": court.ID, "data": "2026-05-02", "horaInicio": "18:00", "horaFim": "19:00", "valor": "80.50",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(t, h, http.MethodGet, "/api/relatorios/financeiro?inicio=2026-05-01&fim=2026-05-31", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	report := decode[dto.FinancialReportResponse](t, rec)
	assert.Equal(t, 1, report.Agendamentos.Quantidade)
	assert.True(t, report.Total.Equal(decimal.RequireFromString("80.5")))
	assert.Equal(t, "2026-05-31", report.Fim)

	requireError(t, do(t, h, http.MethodGet, "/api/relatorios/financeiro", nil), http.StatusBadRequest, httpio.CodeValidation)
	requireError(t, do(t, h, http.MethodGet, "/api/relatorios/financeiro?inicio=2026-05-31&fim=2026-05-01", nil), http.StatusBadRequest, httpio.CodeValidation)
}

func TestCORSPreflight(t *testing.T) {
	h := newTestRouter(testutil.NewMemStore())

	req := httptest.NewRequest(http.MethodOptions, "/api/comandas/abc", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	req.Header.Set("Access-Control-Request-Method", http.MethodPatch)
	req.Header.Set("Access-Control-Request-Headers", "Content-Type")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, http.MethodPatch, rec.Header().Get("Access-Control-Allow-Methods"))
	assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
}

func TestCORSActualRequest(t *testing.T) {
	h := newTestRouter(testutil.NewMemStore())

	req := httptest.NewRequest(http.MethodGet, "/api/produtos", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}
