// Package controller exposes the upload service over the admin API.
package controller

import (
	"net/http"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	logSDK "github.com/Laisky/go-utils/v6/log"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/amc-site/internal/web/content/model"
	"github.com/Laisky/amc-site/internal/web/upload/service"
)

const (
	formFileField     = "file"
	defaultPresignTTL = 15 * time.Minute
	maxPresignTTL     = 7 * 24 * time.Hour
	// multipart framing allowance on top of the file size cap
	multipartOverhead = 1 << 20
)

// Upload serves `/uploads` routes.
type Upload struct {
	uploader *service.Uploader
	maxBody  int64
}

// New creates the controller, maxFileBytes is the attachment cap.
func New(uploader *service.Uploader, maxFileBytes int64) *Upload {
	if maxFileBytes < service.MaxImageBytes {
		maxFileBytes = service.MaxImageBytes
	}

	return &Upload{uploader: uploader, maxBody: maxFileBytes + multipartOverhead}
}

// Register mounts the routes on an already guarded group.
func (u *Upload) Register(g gin.IRouter) {
	g.POST("/uploads/images", u.uploadHandler(service.KindImage))
	g.POST("/uploads/files", u.uploadHandler(service.KindFile))
	g.GET("/uploads", u.List)
	g.DELETE("/uploads", u.Delete)
	g.GET("/uploads/presign", u.Presign)
}

func (u *Upload) uploadHandler(kind service.Kind) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		logger := gmw.GetLogger(ctx).Named("upload")
		ctx.Request.Body = http.MaxBytesReader(ctx.Writer, ctx.Request.Body, u.maxBody)

		header, err := ctx.FormFile(formFileField)
		if err != nil {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
			return
		}

		file, err := header.Open()
		if err != nil {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](err))
			return
		}
		defer file.Close() // nolint: errcheck

		uploaded, err := u.uploader.Upload(ctx.Request.Context(),
			kind,
			header.Filename,
			header.Header.Get("Content-Type"),
			header.Size,
			file,
		)
		if err != nil {
			u.abort(ctx, logger, err)
			return
		}

		ctx.JSON(http.StatusOK, model.OK(uploaded))
	}
}

// List returns uploads of `?kind=images|files`.
func (u *Upload) List(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("upload_list")

	kind := service.KindFile
	if strings.HasPrefix(ctx.Query("kind"), "image") {
		kind = service.KindImage
	}

	files, err := u.uploader.List(ctx.Request.Context(), kind)
	if err != nil {
		u.abort(ctx, logger, err)
		return
	}

	r := model.OK(files)
	r.Count = len(files)
	ctx.JSON(http.StatusOK, r)
}

// Delete removes `?key=` or `?url=`.
func (u *Upload) Delete(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("upload_delete")

	var err error
	switch {
	case ctx.Query("key") != "":
		err = u.uploader.Delete(ctx.Request.Context(), ctx.Query("key"))
	case ctx.Query("url") != "":
		err = u.uploader.DeleteByURL(ctx.Request.Context(), ctx.Query("url"))
	default:
		ctx.JSON(http.StatusBadRequest, model.Fail[any](service.NewError(service.ErrCodeInvalidKey, "key or url is required")))
		return
	}
	if err != nil {
		u.abort(ctx, logger, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK[any](nil))
}

// Presign returns a temporary url for `?key=`, `?ttl=` is a Go duration.
func (u *Upload) Presign(ctx *gin.Context) {
	logger := gmw.GetLogger(ctx).Named("upload_presign")

	ttl := defaultPresignTTL
	if raw := ctx.Query("ttl"); raw != "" {
		parsed, err := time.ParseDuration(raw)
		if err != nil || parsed <= 0 || parsed > maxPresignTTL {
			ctx.JSON(http.StatusBadRequest, model.Fail[any](service.NewError(service.ErrCodeInvalidKey, "invalid ttl %q", raw)))
			return
		}
		ttl = parsed
	}

	signed, err := u.uploader.PresignGet(ctx.Request.Context(), ctx.Query("key"), ttl)
	if err != nil {
		u.abort(ctx, logger, err)
		return
	}

	ctx.JSON(http.StatusOK, model.OK(signed))
}

func (u *Upload) abort(ctx *gin.Context, logger logSDK.Logger, err error) {
	typed, ok := service.AsError(err)
	if !ok {
		logger.Warn("object storage request failed", zap.Error(err))
		ctx.JSON(http.StatusBadGateway, model.Fail[any](err))
		return
	}

	status := http.StatusBadRequest
	if typed.Code == service.ErrCodeStorageDisabled {
		status = http.StatusServiceUnavailable
	}
	ctx.JSON(status, &model.Result[any]{Error: typed.Error(), Data: map[string]string{"code": string(typed.Code)}})
}
