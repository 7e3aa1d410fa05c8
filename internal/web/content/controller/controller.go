// Package controller exposes the content service as the public JSON API and the admin CRUD API.
package controller

import (
	"net/http"
	"strconv"

	"github.com/Laisky/errors/v2"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/content/service"
)

// SiteConfig is the frontend configuration served by `/api/site-config`.
type SiteConfig struct {
	// EditorAPIKey is the rich-text editor key, empty disables the editor.
	EditorAPIKey string `json:"editorApiKey"`
	// StorageBaseURL prefixes uploaded object keys.
	StorageBaseURL string `json:"storageBaseUrl"`
	// UploadsEnabled is false when no object storage is configured.
	UploadsEnabled bool     `json:"uploadsEnabled"`
	Languages      []string `json:"languages"`
	DefaultLang    string   `json:"defaultLang"`
}

// Content serves the public and admin content routes.
type Content struct {
	svc  *service.Service
	site SiteConfig
}

// New creates the controller.
func New(svc *service.Service, site SiteConfig) *Content {
	if len(site.Languages) == 0 {
		site.Languages = []string{string(model.LangKO), string(model.LangEN)}
	}
	if site.DefaultLang == "" {
		site.DefaultLang = string(model.LangKO)
	}

	return &Content{svc: svc, site: site}
}

func langOf(ctx *gin.Context) model.Lang {
	return model.ParseLang(ctx.Query("lang"))
}

func intQuery(ctx *gin.Context, key string) int {
	n, err := strconv.Atoi(ctx.Query(key))
	if err != nil {
		return 0
	}

	return n
}

// statusOf maps service errors to HTTP status codes.
func statusOf(err error) int {
	switch {
	case errors.Is(err, service.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrCategoryInUse):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(ctx *gin.Context, err error) {
	ctx.JSON(statusOf(err), model.Fail[any](err))
}
