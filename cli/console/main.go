package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/api"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/config"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/domain"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source/rest"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/storage"
	"github.com/gin-gonic/gin"

	"github.com/rifflock/lfshook"
	log "github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

func main() {
	configFilePath := ""
	flag.StringVar(&configFilePath, "c", "", "путь до конфига")
	flag.Parse()

	settings, err := getConfig(configFilePath)
	if err != nil {
		log.Fatalf("Не удалось получить конфиг: %v", err)
	}

	configureLogging(settings)
	if settings.GetLogLevel() != log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	backend, err := rest.New(settings.BackendURL, settings.GetRequestTimeout())
	if err != nil {
		log.Fatalf("Не удалось инициализировать клиент бэкенда: %v", err)
	}

	hub := api.NewHub()
	console := domain.NewConsole(backend, backend, domain.Options{
		FleetPeriod:         settings.GetFleetPeriod(),
		SelectionPeriod:     settings.GetSelectionPeriod(),
		SearchDebounce:      settings.GetSearchDebounce(),
		MinQueryLength:      domain.DefaultMinQueryLength,
		LocationConcurrency: settings.LocationConcurrency,
		HistoryWindow:       settings.GetHistoryWindow(),
		OnSessionLost: func() {
			log.Warn("Требуется повторный вход через /api/auth/login")
		},
	})
	defer console.Close()
	console.Subscribe(hub.Broadcast)

	if len(settings.Store) > 0 {
		closeSinks := runSinks(settings, console)
		defer closeSinks()
	}

	if settings.ArchiveEnabled() {
		archive := domain.Archive{
			Source:  backend,
			Dir:     settings.Archive.Dir,
			Window:  settings.GetArchiveWindow(),
			Format:  settings.GetArchiveFormat(),
			Timeout: 10 * time.Minute,
		}
		if err := archive.Initialize(settings.Archive.Cron); err != nil {
			log.Fatalf("Не удалось запланировать архивацию: %v", err)
		}
		defer archive.Shutdown()
	}

	login(backend, console, settings)

	controller := api.NewController(api.NewHandler(console, backend), hub, settings.Listen, settings.ApiKey)
	go func() {
		if err := controller.Run(); err != nil {
			log.Fatalf("Не удалось запустить API консоли: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info("Остановка консоли")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := controller.Shutdown(ctx); err != nil {
		log.WithField("err", err).Warn("Ошибка остановки API")
	}
}

func getConfig(configFilePath string) (config.Settings, error) {
	if configFilePath == "" {
		return config.Settings{}, fmt.Errorf("не задан путь до конфига")
	}

	c, err := config.New(configFilePath)
	if err != nil {
		return c, fmt.Errorf("ошибка парсинга конфига: %w", err)
	}
	return c, nil
}

// login восстанавливает существующую сессию или входит с учётными данными
// из конфига. При ошибке консоль остаётся без сессии до входа через API.
func login(backend *rest.Source, console *domain.Console, settings config.Settings) {
	ctx, cancel := context.WithTimeout(context.Background(), settings.GetRequestTimeout())
	defer cancel()

	if user, err := backend.Check(ctx); err == nil && user != nil {
		console.Start(*user)
		return
	}

	user, err := backend.Login(ctx, request.Login{Username: settings.Username, Password: settings.Password})
	if err != nil {
		log.WithField("err", err).Error("Не удалось войти в бэкенд")
		return
	}
	console.Start(user)
}

func runSinks(settings config.Settings, console *domain.Console) func() {
	repo := storage.NewRepository()
	if err := repo.LoadStorages(settings.Store); err != nil {
		log.Fatalf("Не удалось подключить хранилища: %v", err)
	}

	queue := storage.NewAsyncRepository(repo, 16, 1)
	publisher := storage.NewFleetPublisher(queue)
	unsubscribe := console.Subscribe(publisher.Handle)

	return func() {
		unsubscribe()
		queue.Close()
		if err := repo.Close(); err != nil {
			log.WithField("err", err).Warn("Ошибка закрытия хранилищ")
		}
	}
}

func configureLogging(settings config.Settings) {
	log.SetLevel(settings.GetLogLevel())

	consoleFmt := &log.TextFormatter{ForceColors: true, FullTimestamp: false}
	log.SetFormatter(consoleFmt)
	log.SetOutput(os.Stdout)

	if settings.LogFilePath == "" {
		return
	}

	logDir := filepath.Dir(settings.LogFilePath)
	if err := os.MkdirAll(logDir, os.ModePerm); err != nil {
		log.Fatalf("Не получилось создать директорию для логов: %v", err)
	}

	lumberjackLogger := &lumberjack.Logger{
		Filename:   settings.LogFilePath,
		MaxSize:    50,
		MaxBackups: 30,
		MaxAge:     settings.LogMaxAgeDays,
		Compress:   true,
	}

	fileFmt := &log.TextFormatter{DisableColors: true, FullTimestamp: true}
	log.AddHook(lfshook.NewHook(lfshook.WriterMap{
		log.PanicLevel: lumberjackLogger,
		log.FatalLevel: lumberjackLogger,
		log.ErrorLevel: lumberjackLogger,
		log.WarnLevel:  lumberjackLogger,
		log.InfoLevel:  lumberjackLogger,
		log.DebugLevel: lumberjackLogger,
		log.TraceLevel: lumberjackLogger,
	}, fileFmt))
}
