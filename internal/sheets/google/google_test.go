package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	ports "finfinance/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

func TestNewFromEnv_MissingSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")
	os.Unsetenv("GOOGLE_SPREADSHEET_ID")

	_, err := NewFromEnv(context.Background())
	if err == nil {
		t.Fatal("expected error for missing GOOGLE_SPREADSHEET_ID")
	}
	if err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewFromEnv_MissingCredentials(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "")
	t.Setenv("GOOGLE_APPLICATION_CREDENTIALS", "")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected credentials error, got: %v", err)
	}
}

func TestNewFromEnv_UnreadableCredentialsFile(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "test-id")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", "")
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", t.TempDir()+"/missing.json")

	_, err := NewFromEnv(context.Background())
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected read error, got: %v", err)
	}
}

func TestAppendReport_NilService(t *testing.T) {
	c := &Client{spreadsheetID: "test"}
	if _, err := c.AppendReport(context.Background(), ports.Report{Year: 2025}); err == nil {
		t.Fatal("expected error with nil service")
	}
}

func TestAppendReport_SendsRowToYearSheet(t *testing.T) {
	var gotPath, gotInput string
	var gotBody gsheet.ValueRange
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInput = r.URL.Query().Get("valueInputOption")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sid","updates":{"updatedRange":"'2025 Reports'!A7:L7","updatedRows":1}}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	c := New(svc, "sid", "")

	r := ports.Report{
		Year: 2025, Period: "2025-05", Score: 82, Tier: "healthy",
		GeneratedAt: time.Date(2025, 5, 20, 12, 0, 0, 0, time.UTC),
	}
	ref, err := c.AppendReport(context.Background(), r)
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "'2025 Reports'!A7:L7" {
		t.Errorf("unexpected ref %q", ref)
	}
	if !strings.Contains(gotPath, "/spreadsheets/sid/values/") || !strings.Contains(gotPath, "2025 Reports") || !strings.HasSuffix(gotPath, ":append") {
		t.Errorf("unexpected path %q", gotPath)
	}
	if gotInput != "USER_ENTERED" {
		t.Errorf("unexpected valueInputOption %q", gotInput)
	}
	if len(gotBody.Values) != 1 || len(gotBody.Values[0]) != len(ports.Header) {
		t.Fatalf("unexpected body %+v", gotBody.Values)
	}
	if gotBody.Values[0][0] != "2025-05" {
		t.Errorf("unexpected first cell %v", gotBody.Values[0][0])
	}
}

func TestYearPrefixedName(t *testing.T) {
	tests := []struct {
		base string
		want string
	}{
		{"Reports", "2025 Reports"},
		{"2024 Reports", "2024 Reports"},
		{"  Reports  ", "2025 Reports"},
		{"", ""},
		{"12345", "2025 12345"},
	}
	for _, tt := range tests {
		if got := yearPrefixedName(tt.base, 2025); got != tt.want {
			t.Errorf("yearPrefixedName(%q) = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestA1Range(t *testing.T) {
	if got := a1Range("Reports", "A:L"); got != "Reports!A:L" {
		t.Errorf("got %q", got)
	}
	if got := a1Range("2025 Reports", "A:L"); got != "'2025 Reports'!A:L" {
		t.Errorf("got %q", got)
	}
	if got := a1Range("Bob's", "A:L"); got != "'Bob''s'!A:L" {
		t.Errorf("got %q", got)
	}
}

func TestRowOf(t *testing.T) {
	cases := map[string]int{
		"'2025 Reports'!A7:L7": 7,
		"Reports!A12":          12,
		"Reports!A:L":          0,
		"":                     0,
	}
	for in, want := range cases {
		if got := rowOf(in); got != want {
			t.Errorf("rowOf(%q) = %d, want %d", in, got, want)
		}
	}
}
