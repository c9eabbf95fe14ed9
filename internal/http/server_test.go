package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/metrics"
	"fintrack/internal/middleware/ratelimit"
	"fintrack/internal/sheets"
	"fintrack/internal/sheets/memory"
)

var people = []string{"Nithya", "Divyaraj"}

func seededStore() *memory.Store {
	s := memory.New()
	s.Seed(sheets.Table{Name: sheets.BudgetSheet, Header: sheets.Columns(sheets.BudgetSheet), Rows: [][]string{
		{"2024-03", "Nithya", "Food", "5000"},
		{"2024-03", "Nithya", "Rent", "20000"},
		{"2024-02", "Nithya", "Food", "4000"},
	}})
	s.Seed(sheets.Table{Name: sheets.IncomeSheet, Header: sheets.Columns(sheets.IncomeSheet), Rows: [][]string{
		{"2024-03", "Nithya", "Salary", "100000"},
	}})
	bank := func(ts, amount, typ, cat, mine string) []string {
		// account, ts, amount, balance, type, ref, merchant, icon, category, bank, notes, person, date, time, my_category
		return []string{"XX1", ts, amount, "50000", typ, "", "Shop", "", cat, "HDFC", "", "Nithya", "", "", mine}
	}
	s.Seed(sheets.Table{Name: sheets.BankSheet, Header: sheets.Columns(sheets.BankSheet), Rows: [][]string{
		bank("2024-03-02 10:00:00", "1200", "debit", "Groceries", "Food"),
		bank("2024-03-03 10:00:00", "700", "debit", "Misc", ""),
		bank("2024-03-04 10:00:00", "5000", "debit", "Transfer", "Savings"),
	}})
	return s
}

type fixture struct {
	srv   *Server
	store *memory.Store
	logs  *bytes.Buffer
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	store := seededStore()
	logs := &bytes.Buffer{}
	base := []Option{
		WithLogger(log.New(log.Config{Output: logs})),
		WithMetrics(metrics.New()),
		WithClock(func() time.Time { return time.Date(2024, 4, 10, 9, 0, 0, 0, time.UTC) }),
	}
	srv := NewServer(":0", store, people, append(base, opts...)...)
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })
	return &fixture{srv: srv, store: store, logs: logs}
}

func (f *fixture) do(req *http.Request) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	f.srv.Handler.ServeHTTP(rr, req)
	return rr
}

func (f *fixture) get(path string) *httptest.ResponseRecorder {
	return f.do(httptest.NewRequest(http.MethodGet, path, nil))
}

func (f *fixture) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return f.do(req)
}

func TestDashboardRenders(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/?person=Nithya&month=2024-03")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Budget vs actual")
	assert.Contains(t, body, "₹5,000.00", "food budget")
	assert.Contains(t, body, "₹1,200.00", "food spent")
	assert.Contains(t, body, "₹50,000.00", "net worth")
	assert.Contains(t, body, `value="2024-03" selected`)
	assert.NotEmpty(t, rr.Header().Get("X-Request-ID"))
	assert.Equal(t, "DENY", rr.Header().Get("X-Frame-Options"))
}

func TestDashboardBadMonth(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/?month=someday")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="error"`)
}

func TestReconciliationPartial(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/ui/reconciliation?person=all")

	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.True(t, strings.HasPrefix(strings.TrimSpace(body), `<section id="reconciliation"`))
	assert.Contains(t, body, "Rent")
	assert.Contains(t, body, "Misc")
	assert.NotContains(t, body, "<html")
}

func TestTrendJSON(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/api/trend?person=Nithya")

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var got []map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "2024-03", got[0]["month"])
	assert.InDelta(t, 6900.0, got[0]["amount"], 0.001)
}

func TestBudgetingPreloadsAndSubmits(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/budgeting")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `value="2024-04"`, "defaults to the current month")
	assert.Contains(t, body, `name="income|Nithya|Salary" value="100000"`)
	assert.Contains(t, body, `name="budget|Nithya|Rent" value="20000"`)

	form := url.Values{"month": {"2024-04"}}
	form.Set(fieldName(planBudget, "Nithya", "Food"), "5500")
	rr = f.postForm("/budgeting/budget", form)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Header().Get("HX-Trigger"), EventPlanSaved)
	assert.Contains(t, rr.Body.String(), "Saved 22 budget rows for 2024-04")

	tbl, err := f.store.ReadTable(context.Background(), sheets.BudgetSheet)
	require.NoError(t, err)
	assert.Len(t, tbl.Rows, 3+2*len(core.BudgetCategories))
	assert.Contains(t, tbl.Rows, []string{"2024-04", "Nithya", "Food", "5500"})
}

func TestBudgetingSubmitErrors(t *testing.T) {
	f := newFixture(t)

	rr := f.postForm("/budgeting/income", url.Values{})
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)

	form := url.Values{"month": {"2024-04"}}
	form.Set(fieldName(planIncome, "Divyaraj", "Salary"), "lots")
	rr = f.postForm("/budgeting/income", form)
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	assert.Contains(t, rr.Body.String(), "Divyaraj / Salary")
}

func multipartImport(t *testing.T, kind, person, content string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("kind", kind))
	require.NoError(t, mw.WriteField("person", person))
	fw, err := mw.CreateFormFile("statement", "statement.csv")
	require.NoError(t, err)
	_, err = io.WriteString(fw, content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/import", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestImport(t *testing.T) {
	f := newFixture(t)
	require.Equal(t, http.StatusOK, f.get("/import").Code)

	csv := strings.Join(sheets.CardImportColumns, ",") + "\n4111,Regalia,2024-03-05 19:00:00,450,debit,Cafe,,Dining,\n"
	rr := f.do(multipartImport(t, "card", "Nithya", csv))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Imported 1 rows from statement.csv into credit_card")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), EventStatementLoaded)

	tbl, err := f.store.ReadTable(context.Background(), sheets.CardSheet)
	require.NoError(t, err)
	require.Len(t, tbl.Rows, 1)
	assert.Equal(t, "Nithya", tbl.Get(tbl.Rows[0], sheets.ColPerson))
}

func TestImportSchemaMismatch(t *testing.T) {
	f := newFixture(t)
	rr := f.do(multipartImport(t, "bank", "Nithya", "date,amount\n2024-03-01,10\n"))

	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, "Expected: account_number, txn_timestamp")
	assert.Contains(t, body, "Received: date, amount")
}

func TestImportRejectsUnknownKindAndMissingPerson(t *testing.T) {
	f := newFixture(t)
	csv := strings.Join(sheets.BankImportColumns, ",") + "\n"

	assert.Equal(t, http.StatusUnprocessableEntity, f.do(multipartImport(t, "atm", "Nithya", csv)).Code)
	assert.Equal(t, http.StatusUnprocessableEntity, f.do(multipartImport(t, "bank", " ", csv)).Code)
}

func TestCategorize(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/categorize")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="cat:bank:1"`)
	assert.NotContains(t, rr.Body.String(), `name="cat:bank:0"`)

	rr = f.postForm("/categorize", url.Values{"cat:bank:1": {"leisure"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), "Saved 1 categories")
	assert.Contains(t, rr.Body.String(), "Every transaction has a category.")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), EventCategoriesSaved)

	tbl, err := f.store.ReadTable(context.Background(), sheets.BankSheet)
	require.NoError(t, err)
	assert.Equal(t, "Leisure", tbl.Get(tbl.Rows[1], sheets.ColMyCategory))
}

func TestCategorizeErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"nothing selected", url.Values{"cat:bank:1": {""}}, http.StatusUnprocessableEntity},
		{"unknown category", url.Values{"cat:bank:1": {"Crypto"}}, http.StatusUnprocessableEntity},
		{"malformed field", url.Values{"cat:bank:x": {"Food"}}, http.StatusBadRequest},
		{"row gone", url.Values{"cat:bank:42": {"Food"}}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := f.postForm("/categorize", tt.form)
			assert.Equal(t, tt.want, rr.Code)
			assert.Contains(t, rr.Body.String(), `class="error"`)
		})
	}
}

func TestSavingsAllocate(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/savings")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `name="position" value="2"`)

	rr = f.postForm("/savings/allocate", url.Values{"position": {"2"}, "goal": {"Emergency Fund"}})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	body := rr.Body.String()
	assert.Contains(t, body, "Allocated ₹5,000.00 to Emergency Fund")
	assert.Contains(t, body, "Nothing waiting to be allocated.")
	assert.Contains(t, rr.Header().Get("HX-Trigger"), EventSavingsAllocated)

	tbl, err := f.store.ReadTable(context.Background(), sheets.SavingsSheet)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"2024-03-04T10:00:00", "Savings", "5000", "Emergency Fund"}}, tbl.Rows)

	rr = f.postForm("/savings/allocate", url.Values{"position": {"2"}, "goal": {"CFA"}})
	assert.Equal(t, http.StatusConflict, rr.Code)
}

func TestSavingsAllocateErrors(t *testing.T) {
	f := newFixture(t)
	tests := []struct {
		name string
		form url.Values
		want int
	}{
		{"bad position", url.Values{"position": {"x"}, "goal": {"CFA"}}, http.StatusBadRequest},
		{"unknown goal", url.Values{"position": {"2"}, "goal": {"Yacht"}}, http.StatusUnprocessableEntity},
		{"not savings", url.Values{"position": {"0"}, "goal": {"CFA"}}, http.StatusUnprocessableEntity},
		{"missing row", url.Values{"position": {"9"}, "goal": {"CFA"}}, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.postForm("/savings/allocate", tt.form).Code)
		})
	}
}

type downStore struct{ *memory.Store }

func (downStore) Ping(context.Context) error { return errors.New("sheets unreachable") }

func (downStore) ReadTable(context.Context, string) (sheets.Table, error) {
	return sheets.Table{}, errors.New("sheets unreachable")
}

func TestHealthAndReadiness(t *testing.T) {
	f := newFixture(t)
	assert.Equal(t, http.StatusOK, f.get("/healthz").Code)

	rr := f.get("/readyz")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"status":"ready"`)

	srv := NewServer(":0", downStore{memory.New()}, people, WithLogger(log.New(log.Config{Output: io.Discard})))
	t.Cleanup(func() { _ = srv.Shutdown(context.Background()) })

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rr.Code)
	assert.Contains(t, rr.Body.String(), "sheets unreachable")

	rr = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `class="error"`)
}

func TestMetricsEndpointCountsRoutes(t *testing.T) {
	f := newFixture(t)
	f.get("/categorize")
	f.get("/does-not-exist")

	rr := f.get("/metrics")
	require.Equal(t, http.StatusOK, rr.Code)
	body := rr.Body.String()
	assert.Contains(t, body, `fintrack_http_requests_total{code="200",method="GET",route="GET /categorize"} 1`)
	assert.Contains(t, body, `route="unmatched"`)
}

func TestRateLimitAppliesToPosts(t *testing.T) {
	f := newFixture(t, WithRateLimit(ratelimit.Config{RequestsPerWindow: 1, Window: time.Minute}))

	f.postForm("/categorize", url.Values{})
	rr := f.postForm("/categorize", url.Values{})
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)
	assert.Equal(t, "60", rr.Header().Get("Retry-After"))
	assert.Contains(t, f.logs.String(), "Rate limit exceeded")

	assert.Equal(t, http.StatusOK, f.get("/categorize").Code)
}

func TestRequestIDIsEchoedAndLogged(t *testing.T) {
	f := newFixture(t)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "0b8f2a4e-2d4f-4c59-9d55-0c4e7bd1a8f1")

	rr := f.do(req)
	assert.Equal(t, "0b8f2a4e-2d4f-4c59-9d55-0c4e7bd1a8f1", rr.Header().Get(requestIDHeader))
	assert.Contains(t, f.logs.String(), "request_id=0b8f2a4e-2d4f-4c59-9d55-0c4e7bd1a8f1")

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set(requestIDHeader, "<script>")
	rr = f.do(req)
	assert.NotEqual(t, "<script>", rr.Header().Get(requestIDHeader))
}

func TestStaticAssets(t *testing.T) {
	f := newFixture(t)
	rr := f.get("/static/style.css")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Header().Get("Cache-Control"), "max-age=3600")
}
