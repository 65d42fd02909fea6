package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/samber/lo"

	apperror "github.com/CodeAndHammer/tradukilo/internal/apperror"
	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	models "github.com/CodeAndHammer/tradukilo/internal/models"
	"github.com/CodeAndHammer/tradukilo/internal/speech"
	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

// translateForm accepts form or JSON bodies. Pointer fields let a present but
// empty value through to validation while an absent one fails binding.
type translateForm struct {
	Text   *string `form:"text" json:"text" binding:"required"`
	Source *string `form:"source" json:"source" binding:"required"`
	Target *string `form:"target" json:"target" binding:"required"`
}

// RateLimit admits or rejects the request for the caller's IP before any
// other work is done. Rejections answer 429 with a plain text message.
func RateLimit(app *App) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if !app.Limiter.Admit(key, app.RateLimitRequests, app.RateLimitWindow) {
			util.LogCtx(c.Request.Context()).Infow("rate limit exceeded", "client", key, "path", c.FullPath())
			c.Header("Retry-After", strconv.Itoa(int(app.RateLimitWindow.Seconds())))
			c.String(http.StatusTooManyRequests, constants.RateLimitMessage)
			c.Abort()
			return
		}
		c.Next()
	}
}

func HomeHandler(app *App, c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"history":   app.History.Recent(),
		"languages": speech.Languages(),
	})
}

func HistoryHandler(app *App, c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"history": app.History.Recent()})
}

func TranslateHandler(app *App, c *gin.Context) {
	var form translateForm
	if err := c.ShouldBind(&form); err != nil {
		msg, code := bindFailure(err)
		util.LogCtx(c.Request.Context()).Infow("translate: bad request", "err", err)
		c.JSON(http.StatusBadRequest, models.TranslateResponse{
			Error:   msg,
			Code:    code,
			History: app.History.Recent(),
		})
		return
	}

	req := models.TranslationRequest{
		Text:       *form.Text,
		SourceLang: lo.Ternary(strings.TrimSpace(*form.Source) == "", constants.AutoDetectLang, strings.TrimSpace(*form.Source)),
		TargetLang: strings.TrimSpace(*form.Target),
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), app.ProviderTimeout)
	defer cancel()

	result, err := app.Translator.Translate(ctx, req)
	if err != nil {
		c.JSON(statusFor(err), models.TranslateResponse{
			Error:   apperror.MessageOf(err),
			Code:    apperror.CodeOf(err, constants.ErrorCodeInternal),
			History: app.History.Recent(),
		})
		return
	}

	c.JSON(http.StatusOK, models.TranslateResponse{
		Result:  result.TranslatedText,
		History: app.History.Recent(),
	})
}

// SpeakHandler streams synthesized audio for the wildcard text. The text is
// forwarded as given; only the leading path separator is removed.
func SpeakHandler(app *App, c *gin.Context) {
	lang := c.Param("lang")
	text := strings.TrimPrefix(c.Param("text"), "/")

	ctx, cancel := context.WithTimeout(c.Request.Context(), app.ProviderTimeout)
	defer cancel()

	streamed := false
	err := app.Speech.Synthesize(ctx, text, lang, func(a speech.Artifact) error {
		c.Header("Content-Type", a.ContentType)
		c.Header("Content-Length", strconv.FormatInt(a.Size, 10))
		c.Header("X-Voice", a.Voice)
		c.Status(http.StatusOK)
		streamed = true
		_, err := io.Copy(c.Writer, a.Reader)
		return err
	})
	if err == nil {
		return
	}

	if streamed {
		util.LogCtx(ctx).Warnw("speak: stream interrupted", "lang", lang, "err", err)
		return
	}
	util.LogCtx(ctx).Warnw("speak: synthesis failed", "lang", lang, "err", err)
	c.String(http.StatusInternalServerError, apperror.MessageOf(err))
}

func HealthzHandler(app *App, c *gin.Context) {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	uptime := time.Since(app.StartTime)

	providers := lo.Map(app.Providers, func(p HealthReporter, _ int) gin.H {
		return gin.H{"name": p.Name(), "state": p.State()}
	})

	c.JSON(http.StatusOK, gin.H{
		"status":          "ok",
		"env":             lo.Ternary(app.IsProduction, "production", "development"),
		"active_limiters": app.Limiter.Len(),
		"history_size":    app.History.Len(),
		"history_cap":     app.History.Capacity(),
		"providers":       providers,
		"memory_alloc_mb": m.Alloc / 1024 / 1024,
		"memory_sys_mb":   m.Sys / 1024 / 1024,
		"memory_gc_count": m.NumGC,
		"uptime":          util.FormatUptime(uptime),
		"timestamp":       time.Now().UTC().Format(time.RFC3339),
	})
}

func statusFor(err error) int {
	switch apperror.KindOf(err) {
	case apperror.KindValidation:
		return http.StatusUnprocessableEntity
	case apperror.KindProvider:
		return http.StatusBadGateway
	case apperror.KindRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func bindFailure(err error) (string, string) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		return fmt.Sprintf("missing field: %s", strings.ToLower(verrs[0].Field())), constants.ErrorCodeMissingField
	}
	return "invalid request body", constants.ErrorCodeInvalidInput
}
