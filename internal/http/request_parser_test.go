package http

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finfinance/internal/core"
	"finfinance/internal/store"
)

func TestParseMonthParams(t *testing.T) {
	now := time.Date(2025, 5, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name    string
		query   string
		want    MonthParams
		wantErr bool
	}{
		{"defaults", "", MonthParams{2025, 5}, false},
		{"explicit", "year=2024&month=12", MonthParams{2024, 12}, false},
		{"only month", "month=1", MonthParams{2025, 1}, false},
		{"out of range passes through", "month=13", MonthParams{2025, 13}, false},
		{"spaces", "year=%202024%20", MonthParams{2024, 5}, false},
		{"not a number", "month=abc", MonthParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := url.ParseQuery(tt.query)
			require.NoError(t, err)
			got, err := ParseMonthParams(q, now)
			if tt.wantErr {
				assert.ErrorIs(t, err, errBadRequest)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseMonthsParam(t *testing.T) {
	n, err := ParseMonthsParam(url.Values{}, 11)
	require.NoError(t, err)
	assert.Equal(t, 11, n)

	n, err = ParseMonthsParam(url.Values{"months": {"3"}}, 11)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = ParseMonthsParam(url.Values{"months": {"x"}}, 11)
	assert.ErrorIs(t, err, errBadRequest)
}

type sample struct {
	Name   string     `json:"name"`
	Amount core.Money `json:"amount"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{"ok", `{"name":"x","amount":"12,50"}`, nil},
		{"empty", ``, errBadRequest},
		{"malformed", `{"name":`, errBadRequest},
		{"trailing value", `{"name":"x"} {"name":"y"}`, errBadRequest},
		{"bad amount keeps validation type", `{"amount":"abc"}`, core.ErrInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var v sample
			err := decodeJSON(httptest.NewRecorder(), req, &v)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, core.Money{Cents: 1250}, v.Amount)
		})
	}
}

func TestDecodeJSONBodyTooLarge(t *testing.T) {
	body := `{"name":"` + strings.Repeat("a", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var v sample
	assert.ErrorIs(t, decodeJSON(httptest.NewRecorder(), req, &v), errBadRequest)
}

func TestFromErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		code int
		msg  string
	}{
		{fmt.Errorf("%w: bad", errBadRequest), http.StatusBadRequest, ""},
		{fmt.Errorf("card 9: %w", store.ErrNotFound), http.StatusNotFound, ""},
		{core.ErrInvalidAmount, http.StatusUnprocessableEntity, core.ErrInvalidAmount.Error()},
		{errors.New("disk on fire"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		rr := httptest.NewRecorder()
		FromError(httptest.NewRequest(http.MethodGet, "/", nil).Context(), "test", tt.err).Write(rr)
		assert.Equal(t, tt.code, rr.Code, tt.err.Error())
		if tt.msg != "" {
			assert.JSONEq(t, `{"error":"`+tt.msg+`"}`, rr.Body.String())
		}
	}
}

func TestJSONResponseBuilder(t *testing.T) {
	rr := httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusCreated).Header("X-Test", "1").Data(map[string]int{"a": 1}).Write(rr)
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "1", rr.Header().Get("X-Test"))
	assert.Equal(t, "application/json; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"a":1}`, rr.Body.String())

	rr = httptest.NewRecorder()
	NewJSONResponse().Status(http.StatusNoContent).Data("ignored").Write(rr)
	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "hello world", sanitizeInput("  hello\x00 world\x07 "))
	assert.Equal(t, "a\tb\nc", sanitizeInput("a\tb\nc"))
}
