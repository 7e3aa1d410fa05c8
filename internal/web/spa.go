package web

import (
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/Laisky/errors/v2"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
)

const (
	frontendDistEnvKey = "WEB_FRONTEND_DIST_DIR"
	adminLoginPath     = "/admin/login"
)

// publicPages are the page routes of the public site.
var publicPages = map[string]bool{
	"/":                    true,
	"/overview":            true,
	"/organization":        true,
	"/professional":        true,
	"/contact":             true,
	"/portfolio":           true,
	"/investment-strategy": true,
	"/investment-system":   true,
	"/risk-compliance":     true,
	"/news":                true,
	"/disclosure":          true,
}

// detailPages take exactly one id segment.
var detailPages = []string{"/news/", "/disclosure/"}

// pageKind classifies a request path of the single page app.
type pageKind int

const (
	pageUnknown pageKind = iota
	pagePublic
	pageAdminLogin
	pageAdmin
	pageAsset
	pageAPI
)

func classifyPage(p string) pageKind {
	if p == "" {
		p = "/"
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}

	switch {
	case p == "/api" || strings.HasPrefix(p, "/api/") || strings.HasPrefix(p, "/admin/api/"):
		return pageAPI
	case p == adminLoginPath:
		return pageAdminLogin
	case p == "/admin" || strings.HasPrefix(p, "/admin/"):
		return pageAdmin
	case publicPages[p]:
		return pagePublic
	}

	for _, prefix := range detailPages {
		if id, ok := strings.CutPrefix(p, prefix); ok && id != "" && !strings.Contains(id, "/") {
			return pagePublic
		}
	}

	if strings.Contains(filepath.Base(p), ".") {
		return pageAsset
	}

	return pageUnknown
}

type spaHandler struct {
	root   string
	index  []byte
	logger logSDK.Logger
}

// newFrontendSPAHandler loads index.html from distDir, or from the first
// located build when distDir is empty. Returns nil without a build.
func newFrontendSPAHandler(logger logSDK.Logger, distDir string) *spaHandler {
	if distDir == "" {
		distDir = locateFrontendDist(logger)
	}
	if distDir == "" {
		return nil
	}

	indexPath := filepath.Join(distDir, "index.html")
	indexBytes, err := os.ReadFile(indexPath)
	if err != nil {
		logger.Warn("read frontend index", zap.Error(err), zap.String("path", indexPath))
		return nil
	}

	return &spaHandler{
		root:   distDir,
		index:  indexBytes,
		logger: logger,
	}
}

// pageRouter routes every request no API route matched.
// Unknown pages go to `/`, admin pages without a session go to the login page.
func pageRouter(h *spaHandler, hasSession func(*gin.Context) bool) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		r := ctx.Request
		kind := classifyPage(r.URL.Path)
		if kind == pageAPI {
			ctx.JSON(http.StatusNotFound, model.Fail[any](errors.New("route not found")))
			return
		}
		if r.Method != http.MethodGet && r.Method != http.MethodHead {
			ctx.Status(http.StatusMethodNotAllowed)
			return
		}

		switch kind {
		case pageUnknown:
			ctx.Redirect(http.StatusFound, "/")
			return
		case pageAdmin:
			if hasSession == nil || !hasSession(ctx) {
				ctx.Redirect(http.StatusFound, adminLoginPath)
				return
			}
		}

		if h == nil {
			ctx.String(http.StatusNotFound, "frontend is not built")
			return
		}
		if kind == pageAsset {
			h.serveAsset(ctx.Writer, r)
			return
		}

		h.serveIndex(ctx.Writer, r)
	}
}

func (h *spaHandler) serveAsset(w http.ResponseWriter, r *http.Request) {
	clean := strings.TrimPrefix(filepath.Clean(r.URL.Path), "/")
	if clean == "" || strings.Contains(clean, "..") {
		h.logger.Warn("reject potential path traversal", zap.String("path", r.URL.Path))
		http.NotFound(w, r)
		return
	}

	fsPath := filepath.Join(h.root, clean)
	info, err := os.Stat(fsPath)
	if err != nil || info.IsDir() {
		h.logger.Debug("frontend asset not found", zap.String("path", r.URL.Path))
		http.NotFound(w, r)
		return
	}

	http.ServeFile(w, r, fsPath)
}

func (h *spaHandler) serveIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodHead {
		return
	}
	if _, err := w.Write(h.index); err != nil {
		h.logger.Warn("write frontend index", zap.Error(err))
	}
}

func locateFrontendDist(logger logSDK.Logger) string {
	var candidates []string

	if override := strings.TrimSpace(os.Getenv(frontendDistEnvKey)); override != "" {
		candidates = append(candidates, override)
	}

	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		candidates = append(candidates,
			filepath.Join(exeDir, "web", "dist"),
			filepath.Join(exeDir, "dist"),
		)
	}

	if wd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(wd, "web", "dist"))
	}

	if _, file, _, ok := runtime.Caller(0); ok {
		candidates = append(candidates, filepath.Join(filepath.Dir(file), "../../web/dist"))
	}

	for _, candidate := range candidates {
		info, err := os.Stat(candidate)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				logger.Debug("inspect frontend dist", zap.Error(err), zap.String("path", candidate))
			}
			continue
		}
		if info.IsDir() {
			logger.Info("frontend assets located", zap.String("path", candidate))
			return candidate
		}
	}

	logger.Warn("frontend assets not found", zap.String("env", frontendDistEnvKey))
	return ""
}
