package controller

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/Laisky/errors/v2"
	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/Laisky/amc-site/internal/web/content/dao"
	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/ordering"
	"github.com/Laisky/amc-site/internal/web/content/service"
	"github.com/Laisky/amc-site/library/log"
)

// brokenStore fails every read.
type brokenStore struct {
	dao.Store
}

func (brokenStore) GetAll(context.Context, string, dao.Query) ([]*model.Document, error) {
	return nil, errors.New("store unavailable")
}

func (brokenStore) Get(context.Context, string, string) (*model.Document, error) {
	return nil, errors.New("store unavailable")
}

func newRouter(t *testing.T, store dao.Store) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	c := New(service.New(log.Logger, store), SiteConfig{
		EditorAPIKey:   "editor-key",
		StorageBaseURL: "https://cdn.example.com",
		UploadsEnabled: true,
	})

	router := gin.New()
	router.Use(gmw.NewLoggerMiddleware(gmw.WithLogger(log.Logger.Named("test"))))
	c.RegisterPublic(router.Group("/api"))
	c.RegisterAdmin(router.Group("/admin/api"))
	return router
}

func do(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
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
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) model.Result[T] {
	t.Helper()

	var r model.Result[T]
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &r), w.Body.String())
	return r
}

func TestOverviewFallback(t *testing.T) {
	router := newRouter(t, dao.NewMemoryStore())

	w := do(t, router, http.MethodGet, "/api/overview", nil)
	require.Equal(t, http.StatusOK, w.Code)
	ko := decode[[]SectionView](t, w)
	require.True(t, ko.Success)
	require.Len(t, ko.Data, 1)
	require.Equal(t, "회사 소개", ko.Data[0].Title)

	w = do(t, router, http.MethodGet, "/api/overview?lang=EN", nil)
	en := decode[[]SectionView](t, w)
	require.Equal(t, "About Us", en.Data[0].Title)

	// store errors are served the same copy with 200
	w = do(t, newRouter(t, brokenStore{}), http.MethodGet, "/api/overview?lang=en", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "About Us", decode[[]SectionView](t, w).Data[0].Title)
}

func TestOverviewStored(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	_, err := store.Add(ctx, model.ColOverview, map[string]any{
		"titleKo": "비전", "descriptionKo": []any{"하나"}, "order": int64(1),
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.ColOverview, map[string]any{
		"titleKo": "소개", "titleEn": "Intro", "descriptionEn": []any{"one"}, "order": int64(0),
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.ColOverview, map[string]any{"descriptionKo": []any{"no title"}})
	require.NoError(t, err)

	router := newRouter(t, store)
	got := decode[[]SectionView](t, do(t, router, http.MethodGet, "/api/overview?lang=EN", nil)).Data
	require.Len(t, got, 2)
	require.Equal(t, "Intro", got[0].Title)
	require.Equal(t, []string{"one"}, got[0].Description)
	// english missing, korean shown
	require.Equal(t, "비전", got[1].Title)
	require.Equal(t, []string{"하나"}, got[1].Description)
}

func TestContactFallbackAndSave(t *testing.T) {
	router := newRouter(t, dao.NewMemoryStore())

	w := do(t, router, http.MethodGet, "/api/contact?lang=EN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, model.DefaultContact().AddressEn, decode[ContactView](t, w).Data.Address)

	w = do(t, router, http.MethodPut, "/admin/api/contact", model.Contact{
		AddressKo: "서울", AddressEn: "Seoul", Phone: "02-000-0000", Email: "ir@example.com",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[ContactView](t, do(t, router, http.MethodGet, "/api/contact", nil)).Data
	require.Equal(t, "서울", got.Address)
	require.Equal(t, "02-000-0000", got.Phone)
	require.Equal(t, "ir@example.com", got.Email)

	require.Equal(t, http.StatusOK, do(t, newRouter(t, brokenStore{}), http.MethodGet, "/api/contact", nil).Code)
}

func TestDisclosurePinnedOnEveryPage(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range 15 {
		_, err := store.Add(ctx, model.ColDisclosure, map[string]any{
			"title":       fmt.Sprintf("공시 %02d", i),
			"content":     "<p>본문</p>",
			"createdAt":   base.Add(time.Duration(i) * time.Hour),
			"isImportant": i == 3,
		})
		require.NoError(t, err)
	}

	router := newRouter(t, store)
	for _, page := range []int{1, 2} {
		w := do(t, router, http.MethodGet, fmt.Sprintf("/api/disclosure?page=%d&size=10", page), nil)
		require.Equal(t, http.StatusOK, w.Code)
		got := decode[ordering.Page[ArticleView]](t, w).Data

		require.Len(t, got.Pinned, 1)
		require.Equal(t, PinnedLabel, got.Pinned[0].Label)
		require.Equal(t, "공시 03", got.Pinned[0].Title)
		require.Equal(t, 2, got.TotalPages)
		for _, it := range got.Items {
			require.Empty(t, it.Label)
		}
	}

	// pinned detail carries the label too
	page := decode[ordering.Page[ArticleView]](t, do(t, router, http.MethodGet, "/api/disclosure", nil)).Data
	w := do(t, router, http.MethodGet, "/api/disclosure/"+page.Pinned[0].ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, PinnedLabel, decode[ArticleView](t, w).Data.Label)

	require.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/api/disclosure/missing", nil).Code)
}

func TestArticleListHugePage(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	for _, col := range []string{model.ColNews, model.ColDisclosure} {
		_, err := store.Add(ctx, col, map[string]any{"title": "중요", "isImportant": true})
		require.NoError(t, err)
		_, err = store.Add(ctx, col, map[string]any{"title": "일반"})
		require.NoError(t, err)
	}

	router := newRouter(t, store)
	for _, path := range []string{
		"/api/disclosure?page=1000000000000000000&size=10",
		"/api/disclosure?page=9223372036854775807&size=100",
		"/api/news?page=1000000000000000000",
	} {
		w := do(t, router, http.MethodGet, path, nil)
		require.Equal(t, http.StatusOK, w.Code, path)
		got := decode[ordering.Page[ArticleView]](t, w).Data
		require.Empty(t, got.Items, path)
	}

	got := decode[ordering.Page[ArticleView]](t, do(t, router, http.MethodGet, "/api/disclosure?page=1000000000000000000", nil)).Data
	require.Len(t, got.Pinned, 1)
	require.Equal(t, PinnedLabel, got.Pinned[0].Label)
}

func TestNewsListLocalized(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	_, err := store.Add(ctx, model.ColNews, map[string]any{
		"title": "오래된", "titleEn": "Old", "content": "a",
		"publishDate": "2023-05-01", "createdAt": time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	_, err = store.Add(ctx, model.ColNews, map[string]any{
		"title": "새로운", "content": "b",
		"createdAt": time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	router := newRouter(t, store)
	got := decode[ordering.Page[ArticleView]](t, do(t, router, http.MethodGet, "/api/news?lang=EN", nil)).Data
	require.Empty(t, got.Pinned)
	require.Len(t, got.Items, 2)
	require.Equal(t, "새로운", got.Items[0].Title)
	require.Equal(t, "2024-01-01", got.Items[0].Date)
	require.Equal(t, "Old", got.Items[1].Title)
	require.Equal(t, "2023-05-01", got.Items[1].Date)
	require.Equal(t, service.DefaultNewsPageSize, got.PageSize)
	require.NotNil(t, got.Items[0].Images)

	// broken store is an empty page
	w := do(t, newRouter(t, brokenStore{}), http.MethodGet, "/api/news", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Empty(t, decode[ordering.Page[ArticleView]](t, w).Data.Items)
}

func TestPortfolioGrouped(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	router := newRouter(t, store)

	w := do(t, router, http.MethodPut, "/admin/api/portfolio/categories", []model.Category{
		{ID: "office", Label: "Office", Order: 1},
		{ID: "logistics", Label: "Logistics", Order: 0},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, router, http.MethodPut, "/admin/api/portfolio/labels", []model.Label{
		{ID: "location", Label: "Location"},
		{ID: "completion", Label: "Completion"},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	for _, data := range []map[string]any{
		{"titleKo": "센터", "category": "logistics", "locationKo": "이천", "order": int64(0)},
		{"titleKo": "타워", "titleEn": "Tower", "category": "office", "completionKo": "2020", "completionEn": "2020"},
		{"titleKo": "고아", "category": "gone"},
	} {
		_, err := store.Add(ctx, model.ColPortfolio, data)
		require.NoError(t, err)
	}

	w = do(t, router, http.MethodGet, "/api/portfolio?lang=EN", nil)
	require.Equal(t, http.StatusOK, w.Code)
	got := decode[PortfolioView](t, w).Data

	require.Len(t, got.Groups, 2)
	require.Equal(t, "logistics", got.Groups[0].ID)
	require.Len(t, got.Groups[0].Items, 1)
	require.Equal(t, "센터", got.Groups[0].Items[0].Title)
	require.Equal(t, []DetailView{{ID: "location", Label: "Location", Value: "이천"}}, got.Groups[0].Items[0].Rows)

	require.Equal(t, "office", got.Groups[1].ID)
	require.Equal(t, "Tower", got.Groups[1].Items[0].Title)
	require.Equal(t, []DetailView{{ID: "completion", Label: "Completion", Value: "2020"}}, got.Groups[1].Items[0].Rows)

	// the orphan stays reachable for admins
	all := decode[[]model.PortfolioItem](t, do(t, router, http.MethodGet, "/admin/api/portfolio", nil)).Data
	require.Len(t, all, 3)

	// categories in use cannot be deleted
	require.Equal(t, http.StatusConflict, do(t, router, http.MethodDelete, "/admin/api/portfolio/categories/office", nil).Code)
	require.Equal(t, http.StatusNotFound, do(t, router, http.MethodDelete, "/admin/api/portfolio/categories/none", nil).Code)
}

func TestAdminCRUD(t *testing.T) {
	router := newRouter(t, dao.NewMemoryStore())

	w := do(t, router, http.MethodPost, "/admin/api/news", map[string]any{"content": "no title"})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.False(t, decode[any](t, w).Success)

	w = do(t, router, http.MethodPost, "/admin/api/news", map[string]any{"title": "첫 소식", "content": "<p>x</p>"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	created := decode[model.Article](t, w).Data
	require.NotEmpty(t, created.ID)
	require.NotNil(t, created.CreatedAt)

	w = do(t, router, http.MethodPut, "/admin/api/news/"+created.ID, map[string]any{"title": "수정", "content": "<p>y</p>"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Equal(t, "수정", decode[model.Article](t, w).Data.Title)

	w = do(t, router, http.MethodGet, "/admin/api/news/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = do(t, router, http.MethodDelete, "/admin/api/news/"+created.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/admin/api/news/"+created.ID, nil).Code)

	w = do(t, router, http.MethodPost, "/admin/api/news", strings.Repeat("x", 10))
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAdminUpdateClearsFields(t *testing.T) {
	router := newRouter(t, dao.NewMemoryStore())

	w := do(t, router, http.MethodPost, "/admin/api/disclosure", map[string]any{
		"title": "공지", "titleEn": "Notice A", "content": "<p>x</p>", "contentEn": "<p>en</p>",
		"isImportant": true, "publishDate": "2024-01-02",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	id := decode[model.Article](t, w).Data.ID

	page := decode[ordering.Page[ArticleView]](t, do(t, router, http.MethodGet, "/api/disclosure", nil)).Data
	require.Len(t, page.Pinned, 1)

	w = do(t, router, http.MethodPut, "/admin/api/disclosure/"+id, map[string]any{
		"title": "공지", "content": "<p>x</p>", "isImportant": false, "titleEn": "", "contentEn": "", "publishDate": "",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	got := decode[model.Article](t, do(t, router, http.MethodGet, "/admin/api/disclosure/"+id, nil)).Data
	require.False(t, got.IsImportant)
	require.Empty(t, got.TitleEn)
	require.Empty(t, got.ContentEn)
	require.Empty(t, got.PublishDate)

	page = decode[ordering.Page[ArticleView]](t, do(t, router, http.MethodGet, "/api/disclosure", nil)).Data
	require.Empty(t, page.Pinned)
	require.Len(t, page.Items, 1)
	require.Empty(t, page.Items[0].Label)

	// contact singleton drops cleared optional fields
	w = do(t, router, http.MethodPut, "/admin/api/contact", model.Contact{
		AddressKo: "서울", Phone: "02-000-0000", Fax: "02-111-1111", MapURL: "https://maps.example.com/x",
		BusinessHoursKo: "9-6",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, router, http.MethodPut, "/admin/api/contact", model.Contact{AddressKo: "서울", Phone: "02-000-0000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	contact := decode[model.Contact](t, do(t, router, http.MethodGet, "/admin/api/contact", nil)).Data
	require.Empty(t, contact.Fax)
	require.Empty(t, contact.MapURL)
	require.Empty(t, contact.BusinessHoursKo)
}

func TestAdminListBrokenStore(t *testing.T) {
	router := newRouter(t, brokenStore{})

	w := do(t, router, http.MethodGet, "/admin/api/leadership", nil)
	require.Equal(t, http.StatusOK, w.Code)
	r := decode[[]any](t, w)
	require.True(t, r.Success)
	require.Empty(t, r.Data)
}

func TestAdminReorder(t *testing.T) {
	ctx := context.Background()
	store := dao.NewMemoryStore()
	ids := map[string]string{}
	for _, m := range []struct{ name, category string }{
		{"a", "part1"}, {"b", "part1"}, {"c", "part1"}, {"boss", "management"},
	} {
		id, err := store.Add(ctx, model.ColLeadership, map[string]any{"nameKo": m.name, "category": m.category, "order": int64(9)})
		require.NoError(t, err)
		ids[m.name] = id
	}

	router := newRouter(t, store)
	w := do(t, router, http.MethodPost, "/admin/api/leadership/reorder", ReorderRequest{
		Category: "part1",
		IDs:      []string{ids["c"], ids["a"], ids["b"]},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	groups := decode[[]MemberGroup](t, do(t, router, http.MethodGet, "/api/professional", nil)).Data
	require.Len(t, groups, 2)
	require.Equal(t, "management", groups[0].Category)
	require.Equal(t, "part1", groups[1].Category)
	var names []string
	for _, m := range groups[1].Members {
		names = append(names, m.Name)
	}
	require.Equal(t, []string{"c", "a", "b"}, names)

	boss, err := store.Get(ctx, model.ColLeadership, ids["boss"])
	require.NoError(t, err)
	order, _ := boss.OrderValue()
	require.Equal(t, 9, order)

	// a member of another category is rejected
	w = do(t, router, http.MethodPost, "/admin/api/leadership/reorder", ReorderRequest{
		Category: "part1",
		IDs:      []string{ids["boss"]},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)

	// generic reorder
	id, err := store.Add(ctx, model.ColInvestmentStrategies, map[string]any{"title": "t"})
	require.NoError(t, err)
	w = do(t, router, http.MethodPost, "/admin/api/investment-strategies/reorder", ReorderRequest{IDs: []string{id}})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	w = do(t, router, http.MethodPost, "/admin/api/investment-strategies/reorder", ReorderRequest{IDs: []string{id, id}})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSiteConfig(t *testing.T) {
	w := do(t, newRouter(t, dao.NewMemoryStore()), http.MethodGet, "/api/site-config", nil)
	require.Equal(t, http.StatusOK, w.Code)

	got := decode[SiteConfig](t, w).Data
	require.Equal(t, "editor-key", got.EditorAPIKey)
	require.Equal(t, []string{"KO", "EN"}, got.Languages)
	require.Equal(t, "KO", got.DefaultLang)
}

func TestWatch(t *testing.T) {
	store := dao.NewMemoryStore()
	router := newRouter(t, store)

	require.Equal(t, http.StatusNotFound, do(t, router, http.MethodGet, "/admin/api/watch/unknown", nil).Code)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(100 * time.Millisecond)
		_, _ = store.Add(context.Background(), model.ColNews, map[string]any{"title": "live"})
		time.Sleep(100 * time.Millisecond)
		cancel()
	}()

	req := httptest.NewRequest(http.MethodGet, "/admin/api/watch/news", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/event-stream")
	body := w.Body.String()
	require.Equal(t, 2, strings.Count(body, "event:snapshot"), body)
	require.Contains(t, body, "live")
}
