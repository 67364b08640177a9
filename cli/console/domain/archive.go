package domain

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/model"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	cron "github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

type ArchiveSource interface {
	GetVehicles(ctx context.Context) ([]model.Vehicle, error)
	Export(ctx context.Context, vehicleID int32, window types.HistoryWindow, format types.ExportFormat, w io.Writer) error
}

// Archive по расписанию выгружает историю всего парка в файлы.
type Archive struct {
	Source  ArchiveSource
	Dir     string
	Window  types.HistoryWindow
	Format  types.ExportFormat
	Timeout time.Duration

	cronScheduler *cron.Cron
}

var now = time.Now

func (domain *Archive) Initialize(schedule string) error {
	if err := os.MkdirAll(domain.Dir, 0o755); err != nil {
		return fmt.Errorf("не удалось создать каталог архива %s: %w", domain.Dir, err)
	}

	domain.cronScheduler = cron.New()
	_, err := domain.cronScheduler.AddFunc(schedule, func() {
		logrus.Info("Запуск архивации истории парка")
		written, err := domain.Run(context.Background())
		if err != nil {
			logrus.Errorf("Ошибка архивации: %v", err)
			return
		}
		logrus.Infof("Архивация завершена, файлов: %d", written)
	})
	if err != nil {
		return fmt.Errorf("ошибка при настройке cron-задачи: %w", err)
	}

	domain.cronScheduler.Start()
	logrus.Infof("Запланирована архивация истории по расписанию %q", schedule)
	return nil
}

// Run выгружает историю каждого транспорта. Ошибка по одному транспорту не
// прерывает выгрузку остальных.
func (domain *Archive) Run(ctx context.Context) (int, error) {
	if domain.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, domain.Timeout)
		defer cancel()
	}

	vehicles, err := domain.Source.GetVehicles(ctx)
	if err != nil {
		return 0, fmt.Errorf("не удалось получить список транспорта: %w", err)
	}

	stamp := now().UTC().Format("20060102-150405")
	written := 0
	for _, vehicle := range vehicles {
		name := fmt.Sprintf("vehicle_%d_%s.%s", vehicle.ID, stamp, domain.Format)
		if err := domain.exportVehicle(ctx, vehicle.ID, filepath.Join(domain.Dir, name)); err != nil {
			logrus.WithFields(logrus.Fields{"vehicle_id": vehicle.ID, "err": err}).Warn("Не удалось архивировать историю")
			continue
		}
		written++
	}
	return written, nil
}

func (domain *Archive) exportVehicle(ctx context.Context, vehicleID int32, path string) error {
	tmp, err := os.CreateTemp(domain.Dir, ".export-*")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if err := domain.Source.Export(ctx, vehicleID, domain.Window, domain.Format, tmp); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func (domain *Archive) Shutdown() {
	if domain.cronScheduler != nil {
		<-domain.cronScheduler.Stop().Done()
		logrus.Info("Cron-планировщик остановлен")
	}
}
