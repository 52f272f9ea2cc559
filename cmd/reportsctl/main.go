package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alecthomas/kong"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/goliatone/go-admin-reports/components/admin"
	"github.com/goliatone/go-admin-reports/components/admin/httpapi"
	"github.com/goliatone/go-admin-reports/components/analytics"
	"github.com/goliatone/go-admin-reports/components/analytics/queries"
	"github.com/goliatone/go-admin-reports/components/bookings"
	"github.com/goliatone/go-admin-reports/components/bookings/commands"
	"github.com/goliatone/go-admin-reports/pkg/activity"
	"github.com/goliatone/go-admin-reports/pkg/activity/storesink"
	"github.com/goliatone/go-admin-reports/pkg/mailer"
	"github.com/goliatone/go-admin-reports/pkg/rtdb"
)

type cli struct {
	Serve serveCmd `cmd:"" help:"Serve the admin reports API and dashboard."`
}

type serveCmd struct {
	Listen       string `default:":8080" help:"HTTP listen address."`
	RedisURL     string `env:"REDIS_URL" help:"Redis connection URL; empty runs on the in-memory store."`
	ResendAPIKey string `env:"RESEND_API_KEY" help:"Resend API key; empty disables outgoing email."`
	EmailFrom    string `env:"EMAIL_FROM" help:"From address for transactional email."`
	BrandName    string `help:"Business name stamped on emails and the page."`
	SignOff      string `help:"Email sign-off name."`
	Config       string `type:"path" help:"Optional YAML config file; flags override its values."`
	Debug        bool   `help:"Enable debug logging."`
}

// fileConfig mirrors the serve flags for YAML configuration.
type fileConfig struct {
	Listen       string `yaml:"listen"`
	RedisURL     string `yaml:"redis_url"`
	ResendAPIKey string `yaml:"resend_api_key"`
	EmailFrom    string `yaml:"email_from"`
	BrandName    string `yaml:"brand_name"`
	SignOff      string `yaml:"sign_off"`
}

func main() {
	ctx := kong.Parse(&cli{},
		kong.Description("Admin analytics and trial booking service."),
		kong.UsageOnError(),
	)
	err := ctx.Run(context.Background())
	ctx.FatalIfErrorf(err)
}

func (cmd *serveCmd) Run(ctx context.Context) error {
	if err := cmd.applyConfigFile(); err != nil {
		return err
	}

	logger, err := cmd.buildLogger()
	if err != nil {
		return fmt.Errorf("reportsctl: build logger: %w", err)
	}
	defer logger.Sync()

	store, err := cmd.buildStore()
	if err != nil {
		return err
	}

	brand := mailer.DefaultBrand
	if cmd.BrandName != "" {
		brand.Name = cmd.BrandName
	}
	if cmd.SignOff != "" {
		brand.SignOff = cmd.SignOff
	}

	var sender mailer.Sender = mailer.Noop{}
	if cmd.ResendAPIKey != "" {
		sender = mailer.NewResendSender(cmd.ResendAPIKey, cmd.EmailFrom, brand, logger)
	} else {
		logger.Warn("no resend api key configured, outgoing email disabled")
	}

	emitter := activity.NewEmitter(activity.Hooks{
		storesink.Hook{Store: store, Path: storesink.DefaultPath},
	}, activity.Config{Enabled: true})

	broadcast := admin.NewLiveBroadcast()
	reporter := analytics.NewReporter(analytics.Options{
		Store:        store,
		Logger:       logger.Named("analytics"),
		OnLiveUpdate: broadcast.Publish,
	})
	bookingSvc := bookings.NewService(bookings.Options{
		Store:    store,
		Mailer:   sender,
		Brand:    brand,
		Activity: emitter,
		Logger:   logger.Named("bookings"),
	})

	renderer, err := admin.NewTemplateRenderer()
	if err != nil {
		return fmt.Errorf("reportsctl: build renderer: %w", err)
	}
	feed := admin.StoreActivityFeed{Store: store}
	controller := admin.NewController(reporter, bookingSvc, renderer, admin.WithActivityFeed(feed))

	handlers := &httpapi.Handlers{
		Report:   queries.NewReportQuery(reporter),
		Accept:   commands.NewAcceptBookingCommand(bookingSvc, nil),
		Decline:  commands.NewDeclineBookingCommand(bookingSvc, nil),
		Cancel:   commands.NewCancelBookingCommand(bookingSvc, nil),
		Delete:   commands.NewDeleteBookingCommand(bookingSvc, nil),
		Convert:  commands.NewConvertBookingCommand(bookingSvc, nil),
		Bookings: bookingSvc,
		Live:     broadcast,
		Activity: feed,
	}

	router := mux.NewRouter()
	handlers.Register(router)
	router.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := controller.RenderDashboard(r.Context(), w, admin.DashboardRequest{
			StatusFilter: r.URL.Query().Get("status"),
		})
		if err != nil {
			logger.Error("dashboard render failed", zap.Error(err))
			http.Error(w, "dashboard unavailable", http.StatusInternalServerError)
		}
	}).Methods(http.MethodGet)

	runCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := reporter.Init(runCtx); err != nil {
		return fmt.Errorf("reportsctl: start live feed: %w", err)
	}
	defer reporter.Teardown()

	server := &http.Server{
		Addr:              cmd.Listen,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cmd.Listen))
		errCh <- server.ListenAndServe()
	}()

	select {
	case <-runCtx.Done():
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (cmd *serveCmd) applyConfigFile() error {
	if cmd.Config == "" {
		return nil
	}
	raw, err := os.ReadFile(cmd.Config)
	if err != nil {
		return fmt.Errorf("reportsctl: read config: %w", err)
	}
	var cfg fileConfig
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return fmt.Errorf("reportsctl: parse config: %w", err)
	}
	if cmd.Listen == ":8080" && cfg.Listen != "" {
		cmd.Listen = cfg.Listen
	}
	if cmd.RedisURL == "" {
		cmd.RedisURL = cfg.RedisURL
	}
	if cmd.ResendAPIKey == "" {
		cmd.ResendAPIKey = cfg.ResendAPIKey
	}
	if cmd.EmailFrom == "" {
		cmd.EmailFrom = cfg.EmailFrom
	}
	if cmd.BrandName == "" {
		cmd.BrandName = cfg.BrandName
	}
	if cmd.SignOff == "" {
		cmd.SignOff = cfg.SignOff
	}
	return nil
}

func (cmd *serveCmd) buildLogger() (*zap.Logger, error) {
	if cmd.Debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func (cmd *serveCmd) buildStore() (rtdb.Store, error) {
	if cmd.RedisURL == "" {
		return rtdb.NewMemoryStore(), nil
	}
	store, err := rtdb.NewRedisStore(cmd.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("reportsctl: connect redis: %w", err)
	}
	return store, nil
}
