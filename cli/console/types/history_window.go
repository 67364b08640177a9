package types

import (
	"fmt"
	"strconv"
	"time"
)

// HistoryWindow глубина истории трека в часах.
type HistoryWindow int

const (
	HistoryWindow1h   HistoryWindow = 1
	HistoryWindow6h   HistoryWindow = 6
	HistoryWindow24h  HistoryWindow = 24
	HistoryWindow72h  HistoryWindow = 72
	HistoryWindow168h HistoryWindow = 168

	DefaultHistoryWindow = HistoryWindow24h
)

var historyWindowSet = map[HistoryWindow]struct{}{
	HistoryWindow1h:   {},
	HistoryWindow6h:   {},
	HistoryWindow24h:  {},
	HistoryWindow72h:  {},
	HistoryWindow168h: {},
}

func (h HistoryWindow) IsValid() bool {
	_, ok := historyWindowSet[h]
	return ok
}

func (h HistoryWindow) Hours() int {
	return int(h)
}

func (h HistoryWindow) Duration() time.Duration {
	return time.Duration(h) * time.Hour
}

func (h HistoryWindow) String() string {
	return strconv.Itoa(int(h))
}

func ParseHistoryWindow(hours int) (HistoryWindow, error) {
	v := HistoryWindow(hours)
	if !v.IsValid() {
		return 0, fmt.Errorf("недопустимая глубина истории: %d ч", hours)
	}
	return v, nil
}
