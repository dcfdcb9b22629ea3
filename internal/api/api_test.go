package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/CHAND7/ETE-Robotics-App/internal/api"
	"github.com/CHAND7/ETE-Robotics-App/internal/catalog"
	"github.com/CHAND7/ETE-Robotics-App/internal/compose"
	"github.com/CHAND7/ETE-Robotics-App/internal/config"
	"github.com/CHAND7/ETE-Robotics-App/internal/dispatch"
	"github.com/CHAND7/ETE-Robotics-App/internal/session"
	"github.com/CHAND7/ETE-Robotics-App/internal/store"
	"github.com/CHAND7/ETE-Robotics-App/internal/wizard"
)

type fakeDispatcher struct {
	sent []string
	err  error
}

func (f *fakeDispatcher) Send(_ context.Context, b *compose.Bundle, recipient string) (dispatch.Result, error) {
	if f.err != nil {
		return dispatch.Result{Attempts: 1}, f.err
	}
	f.sent = append(f.sent, recipient)
	return dispatch.Result{OK: true, Attempts: 1}, nil
}

func buildTestCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	f := excelize.NewFile()
	_, err := f.NewSheet("Lists")
	require.NoError(t, err)
	lists := [][]interface{}{
		{"Application", "Type of Equipment", "New/Modification"},
		{"Robotic", "Hydraulic", "New"},
		{"SPM", "Servo", "Modification"},
	}
	for i, row := range lists {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow("Lists", cell, &row))
	}

	_, err = f.NewSheet("BOM")
	require.NoError(t, err)
	header := []interface{}{"S.no", "Head", "Description", "Model / Key Spec", "Qty", "Unit Cost"}
	require.NoError(t, f.SetSheetRow("BOM", "A1", &header))
	row := []interface{}{"1", "Robot Arm", "6-axis", "KR-6 | KR-10", "1", "125000.50"}
	require.NoError(t, f.SetSheetRow("BOM", "A2", &row))

	c, err := catalog.LoadWorkbook(f, catalog.LoadOptions{BOMHeaderRow: 1})
	require.NoError(t, err)
	return c
}

type testApp struct {
	router     *gin.Engine
	dispatcher *fakeDispatcher
	store      *store.Store
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st, err := store.New(filepath.Join(t.TempDir(), "rfq.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })

	steps, err := wizard.LoadSteps()
	require.NoError(t, err)

	cat := buildTestCatalog(t)
	dispatcher := &fakeDispatcher{}

	handler := api.NewHandler(
		session.NewGate(config.AuthConfig{Username: "admin", Password: "ete123"}),
		session.NewManager(st, steps, cat),
		cat,
		compose.NewComposer(steps, config.BrandingConfig{CompanyName: "ETE Robotics"}),
		dispatcher,
		st,
		t.TempDir(),
	)

	router := gin.New()
	handler.RegisterRoutes(router.Group("/api"))

	return &testApp{router: router, dispatcher: dispatcher, store: st}
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (a *testApp) call(t *testing.T, method, path, token string, body interface{}) envelope {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("X-Session-Token", token)
	}
	rec := httptest.NewRecorder()
	a.router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, "path %s", path)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func (a *testApp) login(t *testing.T) string {
	t.Helper()
	env := a.call(t, "POST", "/api/login", "", gin.H{"username": "admin", "password": "ete123"})
	require.Equal(t, 0, env.Code, env.Message)
	var data struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	return data.Token
}

func (a *testApp) setField(t *testing.T, token, name, value string) envelope {
	t.Helper()
	return a.call(t, "POST", "/api/fields", token, gin.H{"name": name, "value": value})
}

func (a *testApp) fillCustomer(t *testing.T, token string) {
	t.Helper()
	fields := map[string]string{
		"rfq_reference":       "RFQ/ETE/2026-0830",
		"customer_name":       "Acme Conveyors",
		"contact_no":          "+91 98765 43210",
		"email":               "buyer@acme.example",
		"date":                "2026-08-30",
		"application":         "Robotic",
		"equipment_type":      "Servo",
		"new_or_modification": "New",
	}
	for name, value := range fields {
		env := a.setField(t, token, name, value)
		require.Equal(t, 0, env.Code, "field %s: %s", name, env.Message)
	}
}

func TestStatusReportsActiveSessions(t *testing.T) {
	app := newTestApp(t)

	status := func() (string, int) {
		env := app.call(t, "GET", "/api/status", "", nil)
		require.Equal(t, 0, env.Code, env.Message)
		var data struct {
			Status         string `json:"status"`
			ActiveSessions int    `json:"active_sessions"`
		}
		require.NoError(t, json.Unmarshal(env.Data, &data))
		return data.Status, data.ActiveSessions
	}

	st, active := status()
	require.Equal(t, "ok", st)
	require.Equal(t, 0, active)

	token := app.login(t)
	_, active = status()
	require.Equal(t, 1, active)

	require.Equal(t, 0, app.call(t, "POST", "/api/logout", token, nil).Code)
	_, active = status()
	require.Equal(t, 0, active)
}

func TestLoginRejected(t *testing.T) {
	app := newTestApp(t)
	env := app.call(t, "POST", "/api/login", "", gin.H{"username": "admin", "password": "wrong"})
	require.Equal(t, 1002, env.Code)
}

func TestRequiresSessionToken(t *testing.T) {
	app := newTestApp(t)
	env := app.call(t, "GET", "/api/session", "", nil)
	require.Equal(t, 1002, env.Code)
	env = app.call(t, "GET", "/api/session", "bogus-token", nil)
	require.Equal(t, 1002, env.Code)
}

func TestOptionsUnknownCategory(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)
	env := app.call(t, "GET", "/api/options/nonexistent-category", token, nil)
	require.Equal(t, 2101, env.Code)
}

func TestBlankRequiredFieldBlocksAdvance(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	app.fillCustomer(t, token)
	env := app.call(t, "POST", "/api/advance", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	// Step 2: set one field, leave proposal_no blank.
	env = app.setField(t, token, "project_description", "Pick-and-place cell")
	require.Equal(t, 0, env.Code)

	env = app.call(t, "POST", "/api/advance", token, nil)
	require.Equal(t, 2002, env.Code)

	var data struct {
		Step   string `json:"step"`
		Issues []struct {
			Field string `json:"field"`
		} `json:"issues"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &data))
	require.Equal(t, "checklist", data.Step)
	fields := make(map[string]bool)
	for _, i := range data.Issues {
		fields[i.Field] = true
	}
	require.True(t, fields["proposal_no"], "advance must name the blank field")

	// Still on step 2.
	env = app.call(t, "GET", "/api/session", token, nil)
	require.Equal(t, 0, env.Code)
	var view struct {
		Step struct {
			ID string `json:"id"`
		} `json:"step"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Equal(t, "checklist", view.Step.ID)
}

func TestEndToEndSubmit(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	app.fillCustomer(t, token)
	env := app.call(t, "POST", "/api/advance", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	require.Equal(t, 0, app.setField(t, token, "project_description", "Pick-and-place cell").Code)
	require.Equal(t, 0, app.setField(t, token, "proposal_no", "P-001").Code)
	env = app.call(t, "POST", "/api/items", token, gin.H{"model": "KR-10", "qty": 2})
	require.Equal(t, 0, env.Code, env.Message)

	env = app.call(t, "POST", "/api/advance", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	require.Equal(t, 0, app.setField(t, token, "recipient_email", "sales@ete.example").Code)
	env = app.call(t, "POST", "/api/advance", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	var view struct {
		Ready bool `json:"ready"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.True(t, view.Ready)

	env = app.call(t, "POST", "/api/submit", token, nil)
	require.Equal(t, 0, env.Code, env.Message)

	var result struct {
		RFQRef    string `json:"rfq_ref"`
		PDFToken  string `json:"pdf_token"`
		DeckToken string `json:"deck_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.Equal(t, "RFQ/ETE/2026-0830", result.RFQRef)
	require.Equal(t, []string{"sales@ete.example"}, app.dispatcher.sent)

	// Both documents are downloadable by token.
	for _, tok := range []string{result.PDFToken, result.DeckToken} {
		req := httptest.NewRequest("GET", "/api/download/"+tok, nil)
		rec := httptest.NewRecorder()
		app.router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		require.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")))
	}

	// Submission recorded, session discarded.
	subs, err := app.store.ListSubmissions()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.True(t, subs[0].Dispatched)

	env = app.call(t, "GET", "/api/session", token, nil)
	require.Equal(t, 1002, env.Code)
}

func TestSubmitDispatchFailureKeepsSession(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	app.fillCustomer(t, token)
	require.Equal(t, 0, app.call(t, "POST", "/api/advance", token, nil).Code)
	require.Equal(t, 0, app.setField(t, token, "project_description", "Cell").Code)
	require.Equal(t, 0, app.setField(t, token, "proposal_no", "P-002").Code)
	require.Equal(t, 0, app.call(t, "POST", "/api/advance", token, nil).Code)
	require.Equal(t, 0, app.setField(t, token, "recipient_email", "sales@ete.example").Code)
	require.Equal(t, 0, app.call(t, "POST", "/api/advance", token, nil).Code)

	app.dispatcher.err = &dispatch.TransportError{Reason: "smtp timeout", Transient: true}
	env := app.call(t, "POST", "/api/submit", token, nil)
	require.Equal(t, 2301, env.Code)

	// Documents still downloadable, session still alive for a retry.
	var result struct {
		PDFToken string `json:"pdf_token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &result))
	require.NotEmpty(t, result.PDFToken)

	require.Equal(t, 0, app.call(t, "GET", "/api/session", token, nil).Code)

	subs, err := app.store.ListSubmissions()
	require.NoError(t, err)
	require.Len(t, subs, 1)
	require.False(t, subs[0].Dispatched)
	require.Contains(t, subs[0].DispatchError, "smtp timeout")
}

func TestSubmitBeforeReady(t *testing.T) {
	app := newTestApp(t)
	token := app.login(t)

	env := app.call(t, "POST", "/api/submit", token, gin.H{"recipient": "sales@ete.example"})
	require.Equal(t, 2201, env.Code, "compose before final advance must fail")
}
