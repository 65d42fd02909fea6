package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	config "github.com/CodeAndHammer/tradukilo/internal/config"
	constants "github.com/CodeAndHammer/tradukilo/internal/constants"
	"github.com/CodeAndHammer/tradukilo/internal/handlers"
	"github.com/CodeAndHammer/tradukilo/internal/history"
	"github.com/CodeAndHammer/tradukilo/internal/provider"
	"github.com/CodeAndHammer/tradukilo/internal/ratelimit"
	"github.com/CodeAndHammer/tradukilo/internal/speech"
	"github.com/CodeAndHammer/tradukilo/internal/translate"
	util "github.com/CodeAndHammer/tradukilo/internal/util"
)

func main() {
	v := viper.New()
	flags := &config.Flags{}

	rootCmd := &cobra.Command{
		Use:   "tradukilo",
		Short: "Translation and text-to-speech gateway",
		Long: `tradukilo accepts text over HTTP, forwards it to a translation provider
and can render the result as speech. Callers are rate limited per IP and the
last translations are kept in memory for display.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(v, flags.CfgFile)
		},
	}
	config.BindFlags(rootCmd, v, flags)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run(v *viper.Viper, cfgFile string) error {
	cfg, err := config.Load(v, cfgFile)
	if err != nil {
		return err
	}

	if _, err := util.InitLogger(cfg.LogLevel); err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer util.SyncLogger()

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}
	util.LogInfo("Starting tradukilo in %s mode", map[bool]string{true: "production", false: "development"}[cfg.IsProduction])

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	app, err := buildApp(ctx, cfg)
	if err != nil {
		return err
	}

	router := handlers.NewRouter(app)

	startCleanupRoutines(ctx, app)

	return startServer(ctx, router, cfg.Port)
}

func buildApp(ctx context.Context, cfg *config.Config) (*handlers.App, error) {
	translator, translatorHealth, err := provider.NewTranslator(ctx, cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating translation provider: %w", err)
	}
	speaker, speakerHealth, err := provider.NewSpeaker(cfg.Provider)
	if err != nil {
		return nil, fmt.Errorf("creating speech provider: %w", err)
	}
	util.LogInfo("Using %s for translation and %s for speech", translator.Name(), speaker.Name())

	store := history.New(constants.HistoryCapacity)

	return &handlers.App{
		Limiter:           ratelimit.New(),
		History:           store,
		Translator:        translate.NewOrchestrator(translator, store),
		Speech:            speech.NewHandler(speaker, cfg.SpeechTempDir),
		Providers:         []handlers.HealthReporter{translatorHealth, speakerHealth},
		IsProduction:      cfg.IsProduction,
		StartTime:         time.Now(),
		RateLimitRequests: cfg.RateLimitRequests,
		RateLimitWindow:   cfg.RateLimitWindow,
		RateLimiterTTL:    cfg.RateLimiterTTL,
		ProviderTimeout:   cfg.ProviderTimeout,
	}, nil
}

// startCleanupRoutines drops idle rate limiter records. A record idle for
// longer than the window would be empty on next access anyway.
func startCleanupRoutines(ctx context.Context, app *handlers.App) {
	maxIdle := max(app.RateLimiterTTL, app.RateLimitWindow)
	app.Limiter.StartCleanup(ctx, 10*time.Minute, maxIdle)
}

func startServer(ctx context.Context, router *gin.Engine, port string) error {
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	idleConnsClosed := make(chan struct{})
	go func() {
		<-ctx.Done()
		util.LogInfo("Shutdown signal received, shutting down server gracefully...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			util.LogWarn("HTTP server Shutdown: %v", err)
		}
		close(idleConnsClosed)
	}()

	util.LogInfo("Server starting on http://localhost:%s", port)
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		return fmt.Errorf("server failed to start: %w", err)
	}
	<-idleConnsClosed
	util.LogInfo("Server shutdown complete")
	return nil
}
