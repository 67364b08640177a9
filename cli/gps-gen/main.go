package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/dto/request"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/source/rest"
	"github.com/ginmardoa-gif/literate-palm-tree/cli/console/types"
	log "github.com/sirupsen/logrus"
)

/*
Генератор GPS-отметок.

Отправляет в приёмник бэкенда /api/gps серию отметок устройства, движущегося
по заданному курсу.

Usage:
  -device string
    	Идентификатор устройства (обязательно)
  -lat float
    	Начальная широта
  -lon float
    	Начальная долгота
  -speed float
    	Скорость в км/ч
  -bearing float
    	Курс в градусах от севера
  -count int
    	Количество отметок (default 1)
  -interval duration
    	Пауза между отметками (default 5s)
  -server string
    	Адрес бэкенда (default "http://localhost:5000")
  -timeout int
    	Время ожидания ответа в секундах (default 5)

Example

```
./gps-gen -device TRK-001 -lat 5.852 -lon -55.2038 -speed 40 -bearing 90 -count 10
```
*/

func main() {
	deviceID := ""
	lat := 0.0
	lon := 0.0
	speed := 0.0
	bearing := 0.0
	count := 0
	interval := time.Duration(0)
	server := ""
	timeout := 0

	flag.StringVar(&deviceID, "device", "", "Идентификатор устройства (обязательно)")
	flag.Float64Var(&lat, "lat", 0, "Начальная широта")
	flag.Float64Var(&lon, "lon", 0, "Начальная долгота")
	flag.Float64Var(&speed, "speed", 0, "Скорость в км/ч")
	flag.Float64Var(&bearing, "bearing", 0, "Курс в градусах от севера")
	flag.IntVar(&count, "count", 1, "Количество отметок")
	flag.DurationVar(&interval, "interval", 5*time.Second, "Пауза между отметками")
	flag.StringVar(&server, "server", "http://localhost:5000", "Адрес бэкенда")
	flag.IntVar(&timeout, "timeout", 5, "Время ожидания ответа в секундах")
	flag.Parse()

	if deviceID == "" {
		fmt.Println("Требуется идентификатор устройства, смотрите помощь (-h)")
		os.Exit(1)
	}
	position := types.Position2D{Latitude: lat, Longitude: lon}
	if !position.IsValid() {
		fmt.Println("Некорректные начальные координаты")
		os.Exit(1)
	}
	if count < 1 {
		count = 1
	}

	client, err := rest.New(server, time.Duration(timeout)*time.Second)
	if err != nil {
		log.Fatalf("Не удалось создать клиент: %v", err)
	}

	start := position
	// метров за интервал при заданной скорости
	step := speed / 3.6 * interval.Seconds()

	for i := 0; i < count; i++ {
		fix := request.GPSFix{
			DeviceID:  deviceID,
			Latitude:  position.Latitude,
			Longitude: position.Longitude,
			Speed:     speed,
		}
		if err := client.PostFix(context.Background(), fix); err != nil {
			log.WithField("err", err).Fatal("Не удалось отправить отметку")
		}
		log.WithFields(log.Fields{
			"n":        i + 1,
			"lat":      fix.Latitude,
			"lon":      fix.Longitude,
			"distance": fmt.Sprintf("%.0f м", start.DistanceTo(position)),
		}).Info("Отметка отправлена")

		if i < count-1 {
			time.Sleep(interval)
			position = position.Offset(step, bearing)
		}
	}
}
