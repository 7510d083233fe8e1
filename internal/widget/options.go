package widget

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
)

type Mode string

const (
	ModeLocal  Mode = "local"
	ModeRemote Mode = "remote"
)

func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeLocal:
		return ModeLocal, nil
	case ModeRemote:
		return ModeRemote, nil
	default:
		return "", fmt.Errorf("unknown mode %q, expected local or remote", s)
	}
}

// Timer - отложенная задача, которую можно отменить
type Timer interface {
	Stop() bool
}

type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type Option func(*Widget)

func WithMode(mode Mode) Option {
	return func(w *Widget) {
		w.mode = mode
	}
}

func WithClipboard(write func(string) error) Option {
	return func(w *Widget) {
		w.clipboard = write
	}
}

func WithTimer(afterFunc AfterFunc) Option {
	return func(w *Widget) {
		w.afterFunc = afterFunc
	}
}

func WithCopyAck(d time.Duration) Option {
	return func(w *Widget) {
		if d > 0 {
			w.copyAck = d
		}
	}
}

func WithLogger(logger *zap.Logger) Option {
	return func(w *Widget) {
		w.logger = logger
	}
}

func WithOnChange(fn func(models.State)) Option {
	return func(w *Widget) {
		w.onChange = fn
	}
}
