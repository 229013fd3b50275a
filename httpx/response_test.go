package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestJSONError(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, http.StatusBadRequest, "validation_failed", map[string]string{"name": "required"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("content type = %q", ct)
	}
	want := `{"error":"validation_failed","details":{"name":"required"}}`
	if got := rec.Body.String(); got != want {
		t.Fatalf("body = %s, want %s", got, want)
	}
}

func TestDecode(t *testing.T) {
	type payload struct {
		Name string `json:"name"`
	}
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{"ok", `{"name":"Deluxe"}`, false},
		{"unknown field", `{"name":"x","colour":"red"}`, true},
		{"trailing", `{"name":"x"}{}`, true},
		{"not json", `name=x`, true},
		{"too large", `{"name":"` + strings.Repeat("x", 100) + `"}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var p payload
			err := Decode(httptest.NewRecorder(), req, 64, &p)
			if (err != nil) != tt.wantErr {
				t.Fatalf("err = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrBadBody) {
				t.Fatalf("err = %v, want ErrBadBody", err)
			}
		})
	}
}

func TestAttachment(t *testing.T) {
	rec := httptest.NewRecorder()
	Attachment(rec, "application/pdf", "invoice_abc.pdf", []byte("%PDF-1.3"))
	if got := rec.Header().Get("Content-Disposition"); got != `attachment; filename=invoice_abc.pdf` {
		t.Fatalf("disposition = %q", got)
	}
	if got := rec.Header().Get("Content-Length"); got != "8" {
		t.Fatalf("length = %q", got)
	}
}
