package cmd

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/bnema/aula-cli/internal/adapters/calendar/jsonfile"
	configtoml "github.com/bnema/aula-cli/internal/adapters/config/toml"
	"github.com/bnema/aula-cli/internal/adapters/portal"
	chainstore "github.com/bnema/aula-cli/internal/adapters/secrets/chain"
	"github.com/bnema/aula-cli/internal/adapters/widgets"
	"github.com/bnema/aula-cli/internal/adapters/widgets/easyiq"
	"github.com/bnema/aula-cli/internal/adapters/widgets/huskelisten"
	"github.com/bnema/aula-cli/internal/adapters/widgets/meebook"
	"github.com/bnema/aula-cli/internal/adapters/widgets/minuddannelse"
	"github.com/bnema/aula-cli/internal/application"
	"github.com/bnema/aula-cli/internal/ports"
	"github.com/hashicorp/go-hclog"
	"github.com/spf13/viper"
)

var errUsernameRequired = errors.New("username is not configured: set username in the config file or AULA_USERNAME")

type wireOptions struct {
	configPath string
	logLevel   string
}

type app struct {
	cfg         configtoml.Config
	configUsed  string
	logger      hclog.Logger
	service     *application.Service
	session     *portal.Session
	credentials *application.CredentialService
	now         func() time.Time
}

func wireApp(opts wireOptions, logOutput io.Writer) (*app, error) {
	dir, err := configtoml.Dir()
	if err != nil {
		return nil, err
	}
	if err := configtoml.LoadEnvFiles(".env", filepath.Join(dir, ".env")); err != nil {
		return nil, err
	}

	cfg, used, err := configtoml.Load(viper.New(), opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if level := strings.TrimSpace(opts.logLevel); level != "" {
		cfg.LogLevel = level
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "aula",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: logOutput,
		Color:  hclog.AutoColor,
	})

	secretStore, err := chainstore.NewDefault(cfg.Secrets.Dir)
	if err != nil {
		return nil, fmt.Errorf("wire secret store chain: %w", err)
	}

	session := portal.NewSession(portal.Config{
		LoginURL:       cfg.Portal.LoginURL,
		LandingURL:     cfg.Portal.LandingURL,
		APIBase:        cfg.Portal.APIBase,
		StartVersion:   cfg.Portal.StartVersion,
		MaxProbes:      cfg.Portal.MaxProbes,
		MaxLoginSteps:  cfg.Portal.MaxLoginSteps,
		RequestTimeout: cfg.Portal.RequestTimeout,
	}, cfg.Username, secretStore, logger.Named("session"))

	var lessons ports.LessonSnapshotStore
	if cfg.Features.SchoolSchedule {
		store, err := jsonfile.NewStore(cfg.Calendar.SnapshotPath, cfg.Username)
		if err != nil {
			return nil, fmt.Errorf("wire calendar snapshot store: %w", err)
		}
		lessons = store
	}

	return &app{
		cfg:        cfg,
		configUsed: used,
		logger:     logger,
		service: application.NewService(application.ServiceConfig{
			Portal:   session,
			Tokens:   session,
			Adapters: sourceAdapters(cfg, logger),
			Lessons:  lessons,
			Clock:    ports.SystemClock{},
			Logger:   logger.Named("refresh"),
			Features: application.Features{
				SchoolSchedule: cfg.Features.SchoolSchedule,
				WeekPlans:      cfg.Features.WeekPlans,
			},
		}),
		session:     session,
		credentials: application.NewCredentialService(secretStore),
		now:         time.Now,
	}, nil
}

func sourceAdapters(cfg configtoml.Config, logger hclog.Logger) []ports.SourceAdapter {
	client := widgets.Client{
		HTTPClient:     &http.Client{},
		RequestTimeout: cfg.Portal.RequestTimeout,
		Logger:         logger.Named("widgets"),
	}

	lessonPlan := minuddannelse.NewLessonPlan(client)
	lessonPlan.BaseURL = cfg.Vendors.MinUddannelse
	taskList := minuddannelse.NewTaskList(client)
	taskList.BaseURL = cfg.Vendors.MinUddannelse

	weekPlan := easyiq.New(client, cfg.Features.ParseEasyIQ)
	weekPlan.BaseURL = cfg.Vendors.EasyIQ
	weekPlan.Logger = logger.Named("easyiq")

	related := meebook.New(client)
	related.BaseURL = cfg.Vendors.Meebook

	reminders := huskelisten.New(client)
	reminders.BaseURL = cfg.Vendors.Systematic

	return []ports.SourceAdapter{lessonPlan, taskList, weekPlan, related, reminders}
}

func (a *app) requireUsername() error {
	if a.cfg.Username == "" {
		return errUsernameRequired
	}
	return nil
}
