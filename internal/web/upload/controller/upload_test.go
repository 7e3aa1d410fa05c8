package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/amc-site/internal/web/upload/service"
	"github.com/Laisky/amc-site/library/log"
	"github.com/Laisky/amc-site/library/storage"
)

const baseURL = "https://cdn.example.com"

type bucket struct {
	keys []string
}

func (b *bucket) Put(_ context.Context, key string, r io.Reader, _ int64, _ string, _ map[string]string) error {
	if _, err := io.Copy(io.Discard, r); err != nil {
		return err
	}
	b.keys = append(b.keys, key)
	return nil
}

func (b *bucket) Delete(_ context.Context, key string) error {
	for i, k := range b.keys {
		if k == key {
			b.keys = append(b.keys[:i], b.keys[i+1:]...)
			break
		}
	}
	return nil
}

func (b *bucket) List(_ context.Context, prefix string) ([]storage.Object, error) {
	var out []storage.Object
	for _, k := range b.keys {
		if strings.HasPrefix(k, prefix) {
			out = append(out, storage.Object{Key: k})
		}
	}
	return out, nil
}

func (b *bucket) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	return baseURL + "/" + key + "?X-Amz-Signature=x", nil
}

func (b *bucket) PublicURL(key string) string {
	return storage.PublicURL(baseURL, key)
}

func (b *bucket) KeyFromURL(rawURL string) (string, bool) {
	return storage.KeyFromURL(baseURL, rawURL)
}

func newRouter(store service.ObjectStore) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(gmw.NewLoggerMiddleware(gmw.WithLogger(log.Logger.Named("test"))))
	New(service.NewUploader(log.Logger, store, 0), 0).Register(router)
	return router
}

func multipartBody(t *testing.T, filename, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

type response struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Count   int             `json:"count"`
	Error   string          `json:"error"`
}

func do(t *testing.T, router http.Handler, req *http.Request) (int, response) {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	var resp response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	return rec.Code, resp
}

func TestUploadImageAndList(t *testing.T) {
	b := &bucket{}
	router := newRouter(b)

	body, ct := multipartBody(t, "logo.png", "image/png", []byte("png-bytes"))
	req := httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	req.Header.Set("Content-Type", ct)
	code, resp := do(t, router, req)
	require.Equal(t, http.StatusOK, code)
	require.True(t, resp.Success)

	var f service.File
	require.NoError(t, json.Unmarshal(resp.Data, &f))
	require.True(t, strings.HasPrefix(f.Key, "images/logo_"))
	require.Equal(t, baseURL+"/"+f.Key, f.URL)

	code, resp = do(t, router, httptest.NewRequest(http.MethodGet, "/uploads?kind=images", nil))
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, 1, resp.Count)

	var files []service.File
	require.NoError(t, json.Unmarshal(resp.Data, &files))
	require.Equal(t, "logo.png", files[0].Name)

	code, _ = do(t, router, httptest.NewRequest(http.MethodDelete, "/uploads?url="+f.URL, nil))
	require.Equal(t, http.StatusOK, code)
	require.Empty(t, b.keys)
}

func TestUploadRejectsInvalidImage(t *testing.T) {
	router := newRouter(&bucket{})

	body, ct := multipartBody(t, "doc.pdf", "application/pdf", []byte("pdf"))
	req := httptest.NewRequest(http.MethodPost, "/uploads/images", body)
	req.Header.Set("Content-Type", ct)
	code, resp := do(t, router, req)
	require.Equal(t, http.StatusBadRequest, code)
	require.False(t, resp.Success)
	require.Contains(t, string(resp.Data), string(service.ErrCodeInvalidType))

	code, _ = do(t, router, httptest.NewRequest(http.MethodPost, "/uploads/files", nil))
	require.Equal(t, http.StatusBadRequest, code)
}

func TestUploadStorageDisabled(t *testing.T) {
	router := newRouter(nil)

	code, resp := do(t, router, httptest.NewRequest(http.MethodGet, "/uploads", nil))
	require.Equal(t, http.StatusServiceUnavailable, code)
	require.False(t, resp.Success)
}

func TestPresign(t *testing.T) {
	router := newRouter(&bucket{})

	code, resp := do(t, router, httptest.NewRequest(http.MethodGet, "/uploads/presign?key=files/a.pdf&ttl=1h", nil))
	require.Equal(t, http.StatusOK, code)
	require.Contains(t, string(resp.Data), "X-Amz-Signature")

	code, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/uploads/presign?key=files/a.pdf&ttl=1000h", nil))
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, httptest.NewRequest(http.MethodGet, "/uploads/presign?key=../etc/passwd", nil))
	require.Equal(t, http.StatusBadRequest, code)

	code, _ = do(t, router, httptest.NewRequest(http.MethodDelete, "/uploads", nil))
	require.Equal(t, http.StatusBadRequest, code)
}
