package helpers

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"eventsapi/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePagination(t *testing.T) {
	tests := []struct {
		query   string
		want    domain.PaginationParams
		wantErr bool
	}{
		{"", domain.PaginationParams{Page: 1, PageSize: 5}, false},
		{"limit=2&page=2", domain.PaginationParams{Page: 2, PageSize: 2}, false},
		{"limit=50", domain.PaginationParams{Page: 1, PageSize: 50}, false},
		{"page=abc", domain.PaginationParams{}, true},
		{"limit=NaN", domain.PaginationParams{}, true},
		{"limit=0", domain.PaginationParams{}, true},
		{"page=-1", domain.PaginationParams{}, true},
		{"limit=4&page=4611686018427387904", domain.PaginationParams{}, true},
		{"limit=9223372036854775807&page=2", domain.PaginationParams{}, true},
		{"page=99999999999999999999", domain.PaginationParams{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			r := httptest.NewRequest(http.MethodGet, "/events?type=latest&"+tt.query, nil)
			got, err := ParsePagination(r)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, domain.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseForm_JSON(t *testing.T) {
	body := `{"name":"Hack Day","rigor_rank":3,"flag":true,"empty":"","skip":null}`
	r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/json; charset=utf-8")

	f, err := ParseForm(r, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "Hack Day", f.Get("name"))
	assert.Equal(t, "3", f.Get("rigor_rank"))
	assert.Equal(t, "true", f.Get("flag"))
	v, ok := f.Lookup("empty")
	assert.True(t, ok)
	assert.Empty(t, v)
	_, ok = f.Lookup("skip")
	assert.False(t, ok)
	assert.Nil(t, f.Image)
}

func TestParseForm_JSONRejectsNested(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"name":{"a":1}}`))
	r.Header.Set("Content-Type", "application/json")

	_, err := ParseForm(r, 1<<20)
	require.Error(t, err)
}

func TestParseForm_Multipart(t *testing.T) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Hack Day"))
	fw, err := mw.CreateFormFile(ImageField, "banner.png")
	require.NoError(t, err)
	_, err = fw.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	r := httptest.NewRequest(http.MethodPost, "/events", &buf)
	r.Header.Set("Content-Type", mw.FormDataContentType())

	f, err := ParseForm(r, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "Hack Day", f.Get("name"))
	require.NotNil(t, f.Image)
	assert.Equal(t, "banner.png", f.Image.Filename)
	file, err := f.Image.Open()
	require.NoError(t, err)
	defer file.Close()
	b, err := io.ReadAll(file)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(b))
}

func TestParseForm_URLEncoded(t *testing.T) {
	body := url.Values{"name": {"Hack Day"}, "rigor_rank": {"4"}}.Encode()
	r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(body))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	f, err := ParseForm(r, 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "Hack Day", f.Get("name"))
	assert.Equal(t, "4", f.Get("rigor_rank"))
}

func TestParseForm_UnsupportedType(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader("<xml/>"))
	r.Header.Set("Content-Type", "application/xml")

	_, err := ParseForm(r, 1<<20)
	require.Error(t, err)
}

func TestWriteJSONError(t *testing.T) {
	rr := httptest.NewRecorder()
	WriteJSONError(rr, http.StatusInternalServerError, ErrCodeInternalError, "Failed to fetch event", "socket closed")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body APIError
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, APIError{Error: "Failed to fetch event", Code: ErrCodeInternalError, Details: "socket closed"}, body)
}

type nameRequest struct {
	Name string
}

func (n nameRequest) Validate() []string {
	if n.Name == "" {
		return []string{"name is required"}
	}
	return nil
}

func TestParseAndValidate(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{"name":"x"}`))
		r.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		var req nameRequest

		form := ParseAndValidate(rr, r, 1<<20, &req, func(f *Form) { req.Name = f.Get("name") })
		require.NotNil(t, form)
		assert.Equal(t, "x", req.Name)
	})

	t.Run("invalid", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/events", strings.NewReader(`{}`))
		r.Header.Set("Content-Type", "application/json")
		rr := httptest.NewRecorder()
		var req nameRequest

		form := ParseAndValidate(rr, r, 1<<20, &req, func(f *Form) { req.Name = f.Get("name") })
		assert.Nil(t, form)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "name is required")
	})
}
