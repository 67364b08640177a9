package config

/*
Описание конфигурационного файла консоли
*/

import (
	"fmt"
	"os"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"gopkg.in/yaml.v2"
)

const (
	usernameEnv = "CONSOLE_USERNAME"
	passwordEnv = "CONSOLE_PASSWORD"
)

type Archive struct {
	Cron   string `yaml:"cron"`
	Dir    string `yaml:"dir" validate:"required_with=Cron"`
	Hours  int    `yaml:"hours" validate:"omitempty,oneof=1 6 24 72 168"`
	Format string `yaml:"format" validate:"omitempty,oneof=json csv"`
}

type Settings struct {
	BackendURL          string                       `yaml:"backend_url" validate:"required,url"`
	Username            string                       `yaml:"username" validate:"required"`
	Password            string                       `yaml:"password" validate:"required"`
	RequestTimeoutMs    int                          `yaml:"request_timeout_ms" validate:"gt=0"`
	FleetPollMs         int                          `yaml:"fleet_poll_ms" validate:"gt=0"`
	SelectionPollMs     int                          `yaml:"selection_poll_ms" validate:"gt=0"`
	SearchDebounceMs    int                          `yaml:"search_debounce_ms" validate:"gt=0"`
	HistoryHours        int                          `yaml:"history_hours" validate:"oneof=1 6 24 72 168"`
	LocationConcurrency int                          `yaml:"location_concurrency" validate:"gt=0,lte=64"`
	Listen              string                       `yaml:"listen" validate:"required,hostname_port"`
	ApiKey              string                       `yaml:"api_key"`
	LogLevel            string                       `yaml:"log_level" validate:"omitempty,oneof=DEBUG INFO WARN ERROR"`
	LogFilePath         string                       `yaml:"log_file_path"`
	LogMaxAgeDays       int                          `yaml:"log_max_age_days" validate:"gte=0"`
	Store               map[string]map[string]string `yaml:"storage"`
	Archive             Archive                      `yaml:"archive"`
}

func (s *Settings) GetRequestTimeout() time.Duration {
	return time.Duration(s.RequestTimeoutMs) * time.Millisecond
}

func (s *Settings) GetFleetPeriod() time.Duration {
	return time.Duration(s.FleetPollMs) * time.Millisecond
}

func (s *Settings) GetSelectionPeriod() time.Duration {
	return time.Duration(s.SelectionPollMs) * time.Millisecond
}

func (s *Settings) GetSearchDebounce() time.Duration {
	return time.Duration(s.SearchDebounceMs) * time.Millisecond
}

func (s *Settings) GetHistoryWindow() types.HistoryWindow {
	return types.HistoryWindow(s.HistoryHours)
}

func (s *Settings) GetArchiveWindow() types.HistoryWindow {
	return types.HistoryWindow(s.Archive.Hours)
}

func (s *Settings) GetArchiveFormat() types.ExportFormat {
	return types.ExportFormat(s.Archive.Format)
}

func (s *Settings) ArchiveEnabled() bool {
	return s.Archive.Cron != ""
}

func (s *Settings) GetLogLevel() log.Level {
	var lvl log.Level

	switch s.LogLevel {
	case "DEBUG":
		lvl = log.DebugLevel
	case "INFO":
		lvl = log.InfoLevel
	case "WARN":
		lvl = log.WarnLevel
	case "ERROR":
		lvl = log.ErrorLevel
	default:
		lvl = log.InfoLevel
	}
	return lvl
}

func (s *Settings) applyDefaults() {
	if s.RequestTimeoutMs == 0 {
		s.RequestTimeoutMs = 10000
	}
	if s.FleetPollMs == 0 {
		s.FleetPollMs = 5000
	}
	if s.SelectionPollMs == 0 {
		s.SelectionPollMs = 10000
	}
	if s.SearchDebounceMs == 0 {
		s.SearchDebounceMs = 500
	}
	if s.HistoryHours == 0 {
		s.HistoryHours = int(types.DefaultHistoryWindow)
	}
	if s.LocationConcurrency == 0 {
		s.LocationConcurrency = 8
	}
	if s.Listen == "" {
		s.Listen = "127.0.0.1:8090"
	}
	if s.LogMaxAgeDays == 0 {
		s.LogMaxAgeDays = 30
	}
	if s.Archive.Hours == 0 {
		s.Archive.Hours = int(types.DefaultHistoryWindow)
	}
	if s.Archive.Format == "" {
		s.Archive.Format = string(types.ExportFormatCSV)
	}
}

func New(confPath string) (Settings, error) {
	c := Settings{}
	data, err := os.ReadFile(confPath)
	if err != nil {
		return c, err
	}
	if err = yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}

	if v := os.Getenv(usernameEnv); v != "" {
		c.Username = v
	}
	if v := os.Getenv(passwordEnv); v != "" {
		c.Password = v
	}

	c.applyDefaults()

	if err = validator.New().Struct(c); err != nil {
		return c, fmt.Errorf("некорректный конфиг: %w", err)
	}
	return c, nil
}
