package http

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"estoque/internal/cache"
	"estoque/internal/core"
	"estoque/internal/events"
	"estoque/internal/log"
	"estoque/internal/middleware/auth"
	"estoque/internal/middleware/ratelimit"
	"estoque/internal/services"
	"estoque/internal/storage/memory"
)

const testSecret = "0123456789abcdef-test"

type testEnv struct {
	srv       *Server
	store     *memory.Store
	records   *services.RecordService
	refresher *services.DashboardRefresher
}

func quietLogger() *log.Logger {
	cfg := log.DefaultConfig()
	cfg.Output = io.Discard
	return log.New(cfg)
}

func newTestEnv(t *testing.T, mutate func(*Options)) *testEnv {
	t.Helper()
	logger := quietLogger()
	store := memory.New()
	records := services.NewRecordService(store, events.NewHub(), cache.NewManager(time.Minute), logger)
	refresher := services.NewDashboardRefresher(store, services.DefaultRefresherConfig(), logger)

	opts := Options{
		Addr:      ":0",
		Records:   records,
		Dashboard: refresher,
		Logger:    logger,
		RateLimit: ratelimit.Config{RequestsPerSecond: 1000, Burst: 1000},
	}
	if mutate != nil {
		mutate(&opts)
	}
	srv, err := NewServer(opts)
	if err != nil {
		t.Fatalf("NewServer() error = %v", err)
	}
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &testEnv{srv: srv, store: store, records: records, refresher: refresher}
}

func (e *testEnv) do(t *testing.T, method, path, contentType, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rr := httptest.NewRecorder()
	e.srv.Handler.ServeHTTP(rr, req)
	return rr
}

type testEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder, data any) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.Unmarshal(rr.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode envelope: %v (body %q)", err, rr.Body.String())
	}
	if data != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, data); err != nil {
			t.Fatalf("decode data: %v", err)
		}
	}
	return env
}

func TestHealthAndReady(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodGet, "/healthz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/healthz status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("/readyz status = %d", rr.Code)
	}
	var ready struct {
		Checks map[string]string `json:"checks"`
	}
	decodeEnvelope(t, rr, &ready)
	if ready.Checks["dashboard"] != "pending" {
		t.Errorf("dashboard check = %q, want pending before first refresh", ready.Checks["dashboard"])
	}
}

func TestReadyReportsBackendFailure(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Ready = func(context.Context) error { return fmt.Errorf("database is locked") }
	})

	rr := env.do(t, http.MethodGet, "/readyz", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("/readyz status = %d, want 503", rr.Code)
	}
}

func TestReceiptAPI_CRUD(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/api/recebimentos", "application/json",
		`{"item":"Cabo","qtde":"2","valor_unit":"15,50","fornecedor":"Elétrica Sul","data_lanc":"2024-02-10"}`)
	if rr.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	var created core.Receipt
	if env := decodeEnvelope(t, rr, &created); !env.Success {
		t.Fatalf("create not successful: %+v", env)
	}
	if created.ID <= 0 {
		t.Fatalf("created ID = %d", created.ID)
	}
	if !created.TotalPrice.Equal(decimal.NewFromInt(31)) {
		t.Errorf("TotalPrice = %v, want 31", created.TotalPrice)
	}

	path := fmt.Sprintf("/api/recebimentos/%d", created.ID)
	rr = env.do(t, http.MethodGet, path, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodPut, path, "application/x-www-form-urlencoded",
		"item=Cabo+flex%C3%ADvel&qtde=2&valor_unit=15.5&valor_total=40&fornecedor=El%C3%A9trica+Sul")
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	var updated core.Receipt
	decodeEnvelope(t, rr, &updated)
	if updated.Item != "Cabo flexível" || !updated.TotalPrice.Equal(decimal.NewFromInt(40)) {
		t.Errorf("unexpected update result: %+v", updated)
	}

	rr = env.do(t, http.MethodDelete, path, "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, path, "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("get after delete status = %d, want 404", rr.Code)
	}
	if env := decodeEnvelope(t, rr, nil); env.Success || env.Message == "" {
		t.Errorf("unexpected not found envelope: %+v", env)
	}
}

func TestAPIErrors(t *testing.T) {
	env := newTestEnv(t, nil)

	tests := []struct {
		name        string
		method      string
		path        string
		contentType string
		body        string
		want        int
	}{
		{"invalid id", http.MethodGet, "/api/retiradas/abc", "", "", http.StatusBadRequest},
		{"zero id", http.MethodDelete, "/api/retiradas/0", "", "", http.StatusBadRequest},
		{"missing record", http.MethodGet, "/api/retirada-itens/999", "", "", http.StatusNotFound},
		{"malformed json", http.MethodPost, "/api/recebimentos", "application/json", `{"item":`, http.StatusBadRequest},
		{"bad number", http.MethodPost, "/api/recebimentos", "application/json", `{"item":"x","qtde":"muito"}`, http.StatusBadRequest},
		{"missing item and code", http.MethodPost, "/api/recebimentos", "application/json", `{"qtde":"1"}`, http.StatusBadRequest},
		{"withdrawal without company", http.MethodPost, "/api/retiradas", "application/json", `{"local":"Sede"}`, http.StatusBadRequest},
		{"unknown route", http.MethodGet, "/api/fornecedores", "", "", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := env.do(t, tt.method, tt.path, tt.contentType, tt.body)
			if rr.Code != tt.want {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.want, rr.Body.String())
			}
			if !strings.HasPrefix(rr.Header().Get("Content-Type"), "application/json") {
				t.Errorf("Content-Type = %q, want JSON", rr.Header().Get("Content-Type"))
			}
			if env := decodeEnvelope(t, rr, nil); env.Success {
				t.Errorf("error response marked successful")
			}
		})
	}
}

func TestWithdrawalList_PaginationAndSearch(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	for i := 0; i < 25; i++ {
		company := "ACME"
		if i%5 == 0 {
			company = "Agro Norte"
		}
		if _, err := env.records.CreateWithdrawal(ctx, core.Withdrawal{
			Date:     core.NewDate(2024, 1, 1+i),
			Company:  company,
			Location: "Sede",
		}); err != nil {
			t.Fatalf("CreateWithdrawal() error = %v", err)
		}
	}

	rr := env.do(t, http.MethodGet, "/api/retiradas?page=2&page_size=10", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("list status = %d", rr.Code)
	}
	var page core.Page[core.Withdrawal]
	decodeEnvelope(t, rr, &page)
	if page.Total != 25 || page.TotalPages != 3 || page.Page != 2 || len(page.Items) != 10 {
		t.Errorf("page = {Total:%d TotalPages:%d Page:%d Items:%d}, want {25 3 2 10}",
			page.Total, page.TotalPages, page.Page, len(page.Items))
	}

	rr = env.do(t, http.MethodGet, "/api/retiradas?q=norte", "", "")
	decodeEnvelope(t, rr, &page)
	if page.Total != 5 {
		t.Errorf("search total = %d, want 5", page.Total)
	}
	for _, w := range page.Items {
		if w.Company != "Agro Norte" {
			t.Errorf("search returned %q", w.Company)
		}
	}
}

func TestDashboardAPI(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	rr := env.do(t, http.MethodGet, "/api/dashboard", "", "")
	var before struct {
		GeneratedAt *time.Time `json:"generated_at"`
	}
	decodeEnvelope(t, rr, &before)
	if before.GeneratedAt != nil {
		t.Errorf("generated_at = %v before the first refresh, want null", before.GeneratedAt)
	}

	if _, err := env.records.CreateReceipt(ctx, core.Receipt{
		Item: "Luva", Quantity: decimal.NewFromInt(1), TotalPrice: decimal.NewFromInt(80),
		PostingDate: core.Today(),
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.records.CreateWithdrawal(ctx, core.Withdrawal{
		Date: core.Today(), Company: "ACME", Location: "Sede", Status: "Pendente",
	}); err != nil {
		t.Fatal(err)
	}

	rr = env.do(t, http.MethodPost, "/api/dashboard/refresh", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status = %d", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/api/dashboard", "", "")
	var dash struct {
		core.Dashboard
		GeneratedAt *time.Time `json:"generated_at"`
	}
	decodeEnvelope(t, rr, &dash)
	if dash.GeneratedAt == nil {
		t.Fatal("generated_at missing after refresh")
	}
	if len(dash.TopSuppliers) != 1 || dash.TopSuppliers[0].Name != core.UnidentifiedLabel {
		t.Errorf("TopSuppliers = %+v, want one unidentified supplier", dash.TopSuppliers)
	}
	if len(dash.Regionals) != 1 || dash.Regionals[0].Regional != core.UnidentifiedLabel {
		t.Errorf("Regionals = %+v, want one unidentified regional", dash.Regionals)
	}
	if len(dash.Statuses) != 1 || dash.Statuses[0].Status != "Pendente" || dash.Statuses[0].Count != 1 {
		t.Errorf("Statuses = %+v", dash.Statuses)
	}
	if len(dash.Monthly) != 1 || dash.Monthly[0].Receipts != 1 || dash.Monthly[0].Withdrawals != 1 {
		t.Errorf("Monthly = %+v, want one bucket for the current month", dash.Monthly)
	}

	rr = env.do(t, http.MethodGet, "/api/painel", "", "")
	var panel core.Panel
	decodeEnvelope(t, rr, &panel)
	if panel.TotalReceipts != 1 || panel.PendingWithdrawals != 1 {
		t.Errorf("panel = %+v", panel)
	}
}

type failingSource struct{}

func (failingSource) ListReceipts(context.Context) ([]core.Receipt, error) {
	return nil, fmt.Errorf("connection refused")
}

func (failingSource) ListWithdrawals(context.Context) ([]core.Withdrawal, error) {
	return nil, nil
}

func TestDashboardRefreshFailureKeepsPrevious(t *testing.T) {
	logger := quietLogger()
	refresher := services.NewDashboardRefresher(failingSource{}, services.DefaultRefresherConfig(), logger)
	env := newTestEnv(t, func(o *Options) { o.Dashboard = refresher })

	rr := env.do(t, http.MethodPost, "/api/dashboard/refresh", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("refresh status = %d, want 503", rr.Code)
	}
	env2 := decodeEnvelope(t, rr, nil)
	if env2.Success {
		t.Errorf("failed refresh marked successful")
	}
	if !strings.Contains(string(env2.Data), `"mensal"`) {
		t.Errorf("expected the previous aggregate in the response, got %s", env2.Data)
	}
}

func TestAPIRequiresTokenWhenConfigured(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.JWTSecret = testSecret })

	rr := env.do(t, http.MethodGet, "/api/painel", "", "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", rr.Code)
	}

	token, err := auth.NewVerifier(testSecret).Sign("ana@example.com", time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	req := httptest.NewRequest(http.MethodGet, "/api/painel", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.srv.Handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("with token status = %d, want 200", rec.Code)
	}

	if rr := env.do(t, http.MethodGet, "/", "", ""); rr.Code != http.StatusOK {
		t.Errorf("page status = %d, pages do not require a token", rr.Code)
	}
}

func TestChartDataRoutes(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.JWTSecret = testSecret })
	ctx := context.Background()

	if _, err := env.records.CreateReceipt(ctx, core.Receipt{
		Item: "Luva", Supplier: "Agro Sul", Quantity: decimal.NewFromInt(2), TotalPrice: decimal.NewFromInt(40),
		PostingDate: core.Today(),
	}); err != nil {
		t.Fatal(err)
	}

	rr := env.do(t, http.MethodPost, "/ui/graficos/atualizar", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("refresh status = %d, body %s", rr.Code, rr.Body.String())
	}
	var refreshed struct {
		core.Dashboard
		GeneratedAt *time.Time `json:"generated_at"`
	}
	decodeEnvelope(t, rr, &refreshed)
	if refreshed.GeneratedAt == nil || len(refreshed.TopSuppliers) != 1 {
		t.Fatalf("refresh data = %+v", refreshed)
	}

	rr = env.do(t, http.MethodGet, "/ui/graficos/dados", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("data status = %d", rr.Code)
	}
	var latest struct {
		core.Dashboard
		GeneratedAt *time.Time `json:"generated_at"`
	}
	decodeEnvelope(t, rr, &latest)
	if latest.GeneratedAt == nil || !latest.GeneratedAt.Equal(*refreshed.GeneratedAt) {
		t.Fatalf("generated_at = %v, want %v", latest.GeneratedAt, refreshed.GeneratedAt)
	}
	if len(latest.TopSuppliers) != 1 || latest.TopSuppliers[0].Name != "Agro Sul" {
		t.Fatalf("suppliers = %+v", latest.TopSuppliers)
	}

	page := env.do(t, http.MethodGet, "/graficos", "", "").Body.String()
	for _, want := range []string{`data-source="/ui/graficos/dados"`, `data-refresh="/ui/graficos/atualizar"`, `class="chart-empty"`} {
		if !strings.Contains(page, want) {
			t.Errorf("charts page missing %q", want)
		}
	}
}

func TestRateLimit(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.RateLimit = ratelimit.Config{RequestsPerSecond: 0.001, Burst: 1}
	})

	if rr := env.do(t, http.MethodGet, "/api/painel", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("first request status = %d", rr.Code)
	}
	rr := env.do(t, http.MethodGet, "/api/painel", "", "")
	if rr.Code != http.StatusTooManyRequests {
		t.Fatalf("second request status = %d, want 429", rr.Code)
	}
	if rr.Header().Get("Retry-After") == "" {
		t.Errorf("Retry-After header missing")
	}
	if rr := env.do(t, http.MethodGet, "/healthz", "", ""); rr.Code != http.StatusOK {
		t.Errorf("/healthz is not rate limited, got %d", rr.Code)
	}
}

func TestPages(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	if _, err := env.records.CreateReceipt(ctx, core.Receipt{
		Item: "Parafuso sextavado", Quantity: decimal.NewFromInt(10), UnitPrice: decimal.NewFromInt(2),
		Supplier: "Ferragens Silva",
	}); err != nil {
		t.Fatal(err)
	}
	if _, err := env.refresher.Refresh(ctx, services.TriggerManual); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		path string
		want []string
	}{
		{"/", []string{"Painel", "Parafuso sextavado", "R$"}},
		{"/graficos", []string{"Gráficos", "dashboard-data", `"fornecedores"`, "Ferragens Silva"}},
		{"/recebimentos", []string{"Recebimentos", "Parafuso sextavado", "Ferragens Silva"}},
		{"/retiradas", []string{"Nenhuma retirada encontrada"}},
		{"/retirada-itens", []string{"Nenhum item encontrado"}},
		{"/ui/recebimentos/linhas?q=sextavado", []string{"Parafuso sextavado"}},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := env.do(t, http.MethodGet, tt.path, "", "")
			if rr.Code != http.StatusOK {
				t.Fatalf("status = %d, body %s", rr.Code, rr.Body.String())
			}
			if !strings.HasPrefix(rr.Header().Get("Content-Type"), "text/html") {
				t.Errorf("Content-Type = %q", rr.Header().Get("Content-Type"))
			}
			for _, want := range tt.want {
				if !strings.Contains(rr.Body.String(), want) {
					t.Errorf("body missing %q", want)
				}
			}
		})
	}

	rr := env.do(t, http.MethodGet, "/ui/recebimentos/linhas?q=inexistente", "", "")
	if strings.Contains(rr.Body.String(), "Parafuso sextavado") {
		t.Errorf("filtered rows still contain the receipt")
	}
}

func TestUIWriteFlow(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, http.MethodPost, "/ui/retiradas", "application/x-www-form-urlencoded",
		"data=2024-01-07&empresa=ACME&local=Fazenda+Boa+Vista&regional=Norte")
	if rr.Code != http.StatusOK {
		t.Fatalf("create status = %d, body %s", rr.Code, rr.Body.String())
	}
	trigger := rr.Header().Get("HX-Trigger")
	for _, part := range []string{`"records:changed"`, `"op":"INSERT"`, `"form:reset"`, `"show-notification"`} {
		if !strings.Contains(trigger, part) {
			t.Errorf("HX-Trigger missing %q: %s", part, trigger)
		}
	}
	body := rr.Body.String()
	for _, want := range []string{"ACME", "Janeiro", "Domingo", "Pendente"} {
		if !strings.Contains(body, want) {
			t.Errorf("rows missing %q", want)
		}
	}

	list, err := env.store.ListWithdrawals(context.Background())
	if err != nil || len(list) != 1 {
		t.Fatalf("stored withdrawals = %d, %v", len(list), err)
	}

	rr = env.do(t, http.MethodDelete, fmt.Sprintf("/ui/retiradas/%d", list[0].ID), "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("delete status = %d", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"op":"DELETE"`) {
		t.Errorf("delete trigger = %s", rr.Header().Get("HX-Trigger"))
	}
	if !strings.Contains(rr.Body.String(), "Nenhuma retirada encontrada") {
		t.Errorf("rows after delete = %s", rr.Body.String())
	}

	rr = env.do(t, http.MethodPost, "/ui/retiradas", "application/x-www-form-urlencoded", "local=Sede")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid create status = %d, want 400", rr.Code)
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"type":"error"`) {
		t.Errorf("missing error notification: %s", rr.Header().Get("HX-Trigger"))
	}
}

func TestUIEditFlow(t *testing.T) {
	env := newTestEnv(t, nil)
	ctx := context.Background()

	created, err := env.records.CreateWithdrawal(ctx, core.Withdrawal{
		Date:     core.NewDate(2024, 1, 7),
		Company:  "ACME",
		Location: "Fazenda Boa Vista",
		Regional: "Norte",
	})
	if err != nil {
		t.Fatalf("CreateWithdrawal() error = %v", err)
	}

	rows := env.do(t, http.MethodGet, "/ui/retiradas/linhas", "", "")
	if !strings.Contains(rows.Body.String(), fmt.Sprintf(`hx-get="/ui/retiradas/%d/editar"`, created.ID)) {
		t.Fatalf("rows missing edit button: %s", rows.Body.String())
	}

	rr := env.do(t, http.MethodGet, fmt.Sprintf("/ui/retiradas/%d/editar", created.ID), "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("edit row status = %d, body %s", rr.Code, rr.Body.String())
	}
	form := rr.Body.String()
	for _, want := range []string{
		fmt.Sprintf(`hx-put="/ui/retiradas/%d"`, created.ID),
		`value="2024-01-07"`,
		`value="ACME"`,
		`<option selected>Pendente</option>`,
	} {
		if !strings.Contains(form, want) {
			t.Errorf("edit row missing %q: %s", want, form)
		}
	}

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/ui/retiradas/%d", created.ID), "application/x-www-form-urlencoded",
		"data=2024-02-01&status_da_retirada=Conclu%C3%ADdo&empresa=ACME+Agro&local=Sede&regional=Sul")
	if rr.Code != http.StatusOK {
		t.Fatalf("update status = %d, body %s", rr.Code, rr.Body.String())
	}
	if !strings.Contains(rr.Header().Get("HX-Trigger"), `"op":"UPDATE"`) {
		t.Errorf("update trigger = %s", rr.Header().Get("HX-Trigger"))
	}
	for _, want := range []string{"ACME Agro", "Fevereiro", core.StatusDone} {
		if !strings.Contains(rr.Body.String(), want) {
			t.Errorf("rows after update missing %q", want)
		}
	}

	stored, err := env.store.GetWithdrawal(ctx, created.ID)
	if err != nil {
		t.Fatal(err)
	}
	if stored.Company != "ACME Agro" || stored.Regional != "Sul" || stored.Month != "Fevereiro" {
		t.Errorf("stored = %+v", stored)
	}

	rr = env.do(t, http.MethodPut, fmt.Sprintf("/ui/retiradas/%d", created.ID), "application/x-www-form-urlencoded", "local=Sede")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid update status = %d, want 400", rr.Code)
	}

	rr = env.do(t, http.MethodGet, "/ui/retiradas/9999/editar", "", "")
	if rr.Code != http.StatusNotFound {
		t.Fatalf("missing record edit status = %d, want 404", rr.Code)
	}
}

func TestStatusOptions(t *testing.T) {
	if got := statusOptions(core.StatusDone); len(got) != 4 || got[0] != core.DefaultStatus {
		t.Errorf("statusOptions(known) = %v", got)
	}
	if got := statusOptions("Entregue"); len(got) != 5 || got[0] != "Entregue" {
		t.Errorf("statusOptions(imported) = %v", got)
	}
}

func TestStaticAssets(t *testing.T) {
	env := newTestEnv(t, nil)

	for _, path := range []string{"/static/app.css", "/static/app.js"} {
		rr := env.do(t, http.MethodGet, path, "", "")
		if rr.Code != http.StatusOK {
			t.Errorf("%s status = %d", path, rr.Code)
		}
		if !strings.Contains(rr.Header().Get("Cache-Control"), "max-age") {
			t.Errorf("%s missing Cache-Control", path)
		}
	}
}

func TestBlockedMethod(t *testing.T) {
	env := newTestEnv(t, nil)

	rr := env.do(t, "TRACE", "/", "", "")
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("TRACE status = %d, want 405", rr.Code)
	}
}
