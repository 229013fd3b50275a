package main

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/bill-ease/auth"
	"github.com/diewo77/bill-ease/internal/models"
	"github.com/diewo77/bill-ease/internal/storage"
	"github.com/diewo77/bill-ease/pdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupE2E(t *testing.T) *App {
	t.Helper()
	dbi, err := gorm.Open(sqlite.Open("file:e2e_"+t.Name()+"?mode=memory&cache=shared"),
		&gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, dbi.AutoMigrate(models.All()...))

	opts := pdf.DefaultOptions()
	opts.Compress = false
	return NewApp(dbi,
		storage.NewLocal(t.TempDir(), zap.NewNop()),
		auth.NewManager("test-secret", time.Hour),
		pdf.NewRenderer(zap.NewNop(), opts),
		zap.NewNop())
}

type client struct {
	t      *testing.T
	app    *App
	cookie *http.Cookie
}

func (c *client) do(method, path string, body any, header map[string]string) *httptest.ResponseRecorder {
	c.t.Helper()
	var rdr *bytes.Reader
	switch b := body.(type) {
	case nil:
		rdr = bytes.NewReader(nil)
	case []byte:
		rdr = bytes.NewReader(b)
	default:
		raw, err := json.Marshal(b)
		require.NoError(c.t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	for k, v := range header {
		req.Header.Set(k, v)
	}
	if c.cookie != nil {
		req.AddCookie(c.cookie)
	}
	rr := httptest.NewRecorder()
	c.app.ServeHTTP(rr, req)
	for _, ck := range rr.Result().Cookies() {
		if ck.Name == "session" {
			c.cookie = ck
		}
	}
	return rr
}

func signup(t *testing.T, app *App, email string) *client {
	t.Helper()
	c := &client{t: t, app: app}
	rr := c.do(http.MethodPost, "/signup", map[string]string{"email": email, "password": "hunter22"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	require.NotNil(t, c.cookie)
	return c
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestE2E_InvoiceFlow(t *testing.T) {
	app := setupE2E(t)
	c := signup(t, app, "owner@example.com")

	rr := c.do(http.MethodPost, "/products", map[string]any{"name": "E-Rickshaw Deluxe", "price": 1000, "stock": "3"}, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	product := decode[map[string]any](t, rr)
	productID := product["id"].(string)

	rr = c.do(http.MethodPost, "/products", map[string]any{"name": "", "price": "abc", "stock": -2}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"validation_failed","details":{"name":"required","price":"must_be_numeric","stock":"must_not_be_negative"}}`, rr.Body.String())

	rr = c.do(http.MethodPost, "/products", []byte(`{"name":"Overflow","price":1e300000000,"stock":1}`), nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"validation_failed","details":{"price":"out_of_range"}}`, rr.Body.String())

	rr = c.do(http.MethodPost, "/invoices", []byte(`{"charges":{"hypothecation":"1e300000000","rto":"0"}}`), nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.JSONEq(t, `{"error":"validation_failed","details":{"charges.hypothecation":"out_of_range"}}`, rr.Body.String())

	draft := map[string]any{
		"items": []map[string]any{
			{"product_id": productID, "quantity": 2},
			{"product_id": "ghost", "quantity": 1},
		},
		"buyer":   map[string]string{"name": "Ravi Kumar", "address": "Kanpur", "gstin": "09ABCDE1234F1Z5"},
		"vehicle": map[string]string{"model": "City Cruiser"},
		"charges": map[string]string{"hypothecation": "50", "rto": "30"},
	}
	rr = c.do(http.MethodPost, "/invoices", draft, nil)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	created := decode[struct {
		Invoice struct {
			ID     string            `json:"id"`
			Totals map[string]string `json:"totals"`
		} `json:"invoice"`
		Rows []map[string]any `json:"rows"`
		PDF  string           `json:"pdf_url"`
	}](t, rr)
	id := created.Invoice.ID
	assert.Equal(t, "2320", created.Invoice.Totals["total"])
	assert.Equal(t, "240", created.Invoice.Totals["gst"])
	require.Len(t, created.Rows, 2)
	assert.Equal(t, "Unknown", created.Rows[1]["name"])
	assert.Equal(t, "/invoices/"+id+"/pdf", created.PDF)

	rr = c.do(http.MethodGet, created.PDF, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))
	assert.Contains(t, rr.Header().Get("Content-Disposition"), "invoice_"+id+".pdf")
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("%PDF")))

	rr = c.do(http.MethodPost, "/invoices", draft, map[string]string{"Accept": "application/pdf"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/pdf", rr.Header().Get("Content-Type"))

	rr = c.do(http.MethodGet, "/invoices?q=ravi", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 2)

	rr = c.do(http.MethodGet, "/invoices?q=nobody", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Len(t, decode[[]map[string]any](t, rr), 0)

	rr = c.do(http.MethodGet, "/invoices/"+id, nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = c.do(http.MethodGet, "/invoices/export.xlsx", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", rr.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(rr.Body.Bytes(), []byte("PK")))

	rr = c.do(http.MethodGet, "/dashboard", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	dash := decode[map[string]any](t, rr)
	assert.Equal(t, float64(1), dash["products"])
	assert.Equal(t, float64(2), dash["invoices"])
	assert.Equal(t, "4640", dash["revenue"])

	// another agency sees nothing
	other := signup(t, app, "other@example.com")
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/invoices/"+id, nil, nil).Code)
	assert.Equal(t, http.StatusNotFound, other.do(http.MethodGet, "/invoices/"+id+"/pdf", nil, nil).Code)
}

func TestE2E_InvalidDraft(t *testing.T) {
	app := setupE2E(t)
	c := signup(t, app, "owner@example.com")

	rr := c.do(http.MethodPost, "/invoices", map[string]any{"items": []map[string]any{{"product_id": "1", "quantity": 0}}}, nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"items[0].quantity":"out_of_range"`)

	rr = c.do(http.MethodPost, "/invoices", []byte(`{"items": "nope"}`), nil)
	require.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error":"invalid_body"`)
}

func TestE2E_Auth(t *testing.T) {
	app := setupE2E(t)
	anon := &client{t: t, app: app}

	for _, path := range []string{"/dashboard", "/products", "/invoices", "/settings"} {
		rr := anon.do(http.MethodGet, path, nil, nil)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, path)
	}

	signup(t, app, "owner@example.com")
	rr := anon.do(http.MethodPost, "/signup", map[string]string{"email": "owner@example.com", "password": "hunter22"}, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr = anon.do(http.MethodPost, "/login", map[string]string{"email": "owner@example.com", "password": "wrong-one"}, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	fresh := &client{t: t, app: app}
	rr = fresh.do(http.MethodPost, "/login", map[string]string{"email": "owner@example.com", "password": "hunter22"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, http.StatusOK, fresh.do(http.MethodGet, "/dashboard", nil, nil).Code)

	rr = fresh.do(http.MethodPost, "/logout", nil, nil)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, http.StatusUnauthorized, fresh.do(http.MethodGet, "/dashboard", nil, nil).Code)
}

func multipartLogo(t *testing.T, data []byte) ([]byte, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("logo", "logo.png")
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return buf.Bytes(), mw.FormDataContentType()
}

func TestE2E_SettingsAndBranding(t *testing.T) {
	app := setupE2E(t)
	c := signup(t, app, "owner@example.com")
	anon := &client{t: t, app: app}

	rr := anon.do(http.MethodGet, "/branding", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Bill Ease", decode[map[string]any](t, rr)["display_name"])
	assert.Equal(t, http.StatusUnauthorized, anon.do(http.MethodPut, "/branding", map[string]string{}, nil).Code)

	rr = c.do(http.MethodPut, "/settings", map[string]string{"name": "Shree E-Motors", "address": "GT Road", "gstin": "09AAACS1111A1Z1"}, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var img bytes.Buffer
	require.NoError(t, png.Encode(&img, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	body, ct := multipartLogo(t, img.Bytes())
	rr = c.do(http.MethodPost, "/settings/logo", body, map[string]string{"Content-Type": ct})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, strings.HasSuffix(decode[map[string]any](t, rr)["logo_key"].(string), ".png"))

	body, ct = multipartLogo(t, []byte("not an image"))
	rr = c.do(http.MethodPost, "/settings/logo", body, map[string]string{"Content-Type": ct})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = c.do(http.MethodGet, "/settings", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Shree E-Motors", decode[map[string]any](t, rr)["name"])

	rr = c.do(http.MethodPost, "/invoices", map[string]any{}, map[string]string{"Accept": "application/pdf"})
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "(Shree E-Motors)")
	assert.Contains(t, rr.Body.String(), "/Subtype /Image")

	rr = c.do(http.MethodPut, "/branding", map[string]string{"display_name": "Shree Billing", "slogan": "Fast", "description": "Invoices"}, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	body, ct = multipartLogo(t, img.Bytes())
	rr = c.do(http.MethodPost, "/branding/logo", body, map[string]string{"Content-Type": ct})
	require.Equal(t, http.StatusOK, rr.Code)

	rr = anon.do(http.MethodGet, "/branding", nil, nil)
	assert.Equal(t, "Shree Billing", decode[map[string]any](t, rr)["display_name"])
	rr = anon.do(http.MethodGet, "/branding/logo", nil, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "image/png", rr.Header().Get("Content-Type"))
}

func TestHealth(t *testing.T) {
	app := setupE2E(t)
	rr := (&client{t: t, app: app}).do(http.MethodGet, "/healthz", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}

func TestWithLogging(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	h := withLogging(zap.New(core), http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		_, _ = w.Write([]byte("short and stout"))
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/pot", nil))

	require.Equal(t, 1, logs.Len())
	fields := logs.All()[0].ContextMap()
	assert.Equal(t, "/pot", fields["path"])
	assert.Equal(t, int64(http.StatusTeapot), fields["status"])
	assert.Equal(t, int64(15), fields["bytes"])
}
