// Package widget содержит состояние и переходы виджета ClariFi без привязки
// к конкретному интерфейсу: ввод ситуации, запрос анализа, копирование и сброс.
package widget

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/models"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/service"
	"github.com/Jamolkhon5/clarifi/internal/ai/clarity/validator"
)

// GenericErrorMessage - единственное сообщение об ошибке, которое видит пользователь
const GenericErrorMessage = "Something went wrong. Please try again."

const DefaultCopyAck = 2000 * time.Millisecond

var (
	ErrEmptySituation = validator.ErrEmptySituation
	ErrBusy           = errors.New("analysis request already in flight")
	ErrReadOnly       = errors.New("input is read-only until reset")
	ErrNoAnalysis     = errors.New("no analysis to copy")
	ErrClosed         = errors.New("widget is closed")
)

type Widget struct {
	mu       sync.Mutex
	notifyMu sync.Mutex

	provider  service.Provider
	mode      Mode
	clipboard func(string) error
	afterFunc AfterFunc
	copyAck   time.Duration
	logger    *zap.Logger
	onChange  func(models.State)

	state models.State
	busy  bool
	// cycle меняется при каждом запросе и сбросе, ответ старого цикла отбрасывается
	cycle    uint64
	cancel   context.CancelFunc
	inflight sync.WaitGroup

	copyTimer Timer
	copySeq   uint64

	closed bool
}

func New(provider service.Provider, opts ...Option) *Widget {
	w := &Widget{
		provider:  provider,
		mode:      ModeLocal,
		clipboard: func(string) error { return errors.New("clipboard is not configured") },
		afterFunc: realAfterFunc,
		copyAck:   DefaultCopyAck,
		logger:    zap.NewNop(),
		state: models.State{
			Context: models.DefaultContext,
		},
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Widget) Mode() Mode {
	return w.mode
}

// State возвращает копию текущего состояния
func (w *Widget) State() models.State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.snapshotLocked()
}

func (w *Widget) snapshotLocked() models.State {
	s := w.state
	if s.Analysis != nil {
		a := *s.Analysis
		a.Variables = append([]string(nil), s.Analysis.Variables...)
		s.Analysis = &a
	}
	return s
}

func (w *Widget) editableLocked() error {
	if w.closed {
		return ErrClosed
	}
	if w.state.Analysis != nil || w.busy {
		return ErrReadOnly
	}
	return nil
}

func (w *Widget) SetSituation(situation string) error {
	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.state.Situation = situation
	w.mu.Unlock()

	w.changed()
	return nil
}

func (w *Widget) SelectContext(c models.Context) error {
	if err := validator.ValidateContext(c); err != nil {
		return err
	}

	w.mu.Lock()
	if err := w.editableLocked(); err != nil {
		w.mu.Unlock()
		return err
	}
	w.state.Context = c
	w.mu.Unlock()

	w.changed()
	return nil
}

// CanSubmit сообщает, доступна ли кнопка отправки
func (w *Widget) CanSubmit() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.editableLocked() == nil && strings.TrimSpace(w.state.Situation) != ""
}

// Submit запрашивает анализ. В локальном режиме результат готов к моменту
// возврата, в удаленном запрос идет в отдельной горутине, а возвращенный
// канал закрывается после обновления состояния. Пока запрос не завершен,
// повторная отправка возвращает ErrBusy.
func (w *Widget) Submit(ctx context.Context) (<-chan struct{}, error) {
	w.mu.Lock()
	switch {
	case w.closed:
		w.mu.Unlock()
		return nil, ErrClosed
	case w.busy:
		w.mu.Unlock()
		return nil, ErrBusy
	case w.state.Analysis != nil:
		w.mu.Unlock()
		return nil, ErrReadOnly
	}
	if err := validator.ValidateSituation(w.state.Situation); err != nil {
		w.mu.Unlock()
		return nil, err
	}

	situation, c := w.state.Situation, w.state.Context

	w.state.Error = ""
	w.state.Analysis = nil
	w.state.Loading = w.mode == ModeRemote
	w.busy = true
	w.cycle++
	cycle := w.cycle

	reqCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel
	w.inflight.Add(1)
	w.mu.Unlock()

	done := make(chan struct{})

	if w.mode == ModeLocal {
		w.resolve(reqCtx, cancel, cycle, situation, c, done)
		return done, nil
	}

	w.changed()
	go w.resolve(reqCtx, cancel, cycle, situation, c, done)
	return done, nil
}

func (w *Widget) resolve(ctx context.Context, cancel context.CancelFunc, cycle uint64, situation string, c models.Context, done chan struct{}) {
	defer close(done)
	defer w.inflight.Done()
	defer cancel()

	analysis, err := w.provider.GetAnalysis(ctx, situation, c)
	if err == nil && analysis == nil {
		err = errors.New("provider returned no analysis")
	}

	w.mu.Lock()
	w.busy = false
	w.cancel = nil
	if w.closed {
		w.mu.Unlock()
		w.logger.Debug("dropping analysis result for closed widget", zap.Error(err))
		return
	}
	w.state.Loading = false

	if cycle != w.cycle {
		w.mu.Unlock()
		w.logger.Debug("dropping stale analysis result", zap.Uint64("cycle", cycle))
		w.changed()
		return
	}

	if err != nil {
		w.state.Error = GenericErrorMessage
		w.mu.Unlock()
		w.logger.Error("analysis failed",
			zap.String("mode", string(w.mode)),
			zap.String("context", c.String()),
			zap.Error(err))
		w.changed()
		return
	}

	w.state.Analysis = analysis
	w.mu.Unlock()

	w.logger.Info("analysis ready",
		zap.String("mode", string(w.mode)),
		zap.String("context", c.String()),
		zap.Int("variables", len(analysis.Variables)))
	w.changed()
}

// Copy кладет текст отчета в буфер обмена и включает отметку "скопировано"
// на время copyAck. Повторное копирование перезапускает таймер.
func (w *Widget) Copy() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrClosed
	}
	if w.state.Analysis == nil {
		w.mu.Unlock()
		return ErrNoAnalysis
	}
	text := service.FormatReport(*w.state.Analysis)
	w.mu.Unlock()

	if err := w.clipboard(text); err != nil {
		w.logger.Warn("clipboard write failed", zap.Error(err))
		return fmt.Errorf("write clipboard: %w", err)
	}

	w.mu.Lock()
	if w.closed || w.state.Analysis == nil {
		w.mu.Unlock()
		return nil
	}
	w.state.Copied = true
	w.stopCopyTimerLocked()
	seq := w.copySeq
	w.copyTimer = w.afterFunc(w.copyAck, func() { w.revertCopied(seq) })
	w.mu.Unlock()

	w.changed()
	return nil
}

func (w *Widget) revertCopied(seq uint64) {
	w.mu.Lock()
	if w.closed || seq != w.copySeq {
		w.mu.Unlock()
		return
	}
	w.state.Copied = false
	w.copyTimer = nil
	w.mu.Unlock()

	w.changed()
}

// stopCopyTimerLocked отменяет отложенный сброс отметки. Счетчик copySeq
// защищает от таймера, который уже сработал, но еще не взял мьютекс.
func (w *Widget) stopCopyTimerLocked() {
	w.copySeq++
	if w.copyTimer != nil {
		w.copyTimer.Stop()
		w.copyTimer = nil
	}
}

// Reset возвращает виджет в исходное состояние. Выбранный контекст
// сохраняется. Запрос в полете не отменяется, его результат будет отброшен.
func (w *Widget) Reset() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.state.Situation = ""
	w.state.Analysis = nil
	w.state.Error = ""
	w.state.Copied = false
	w.stopCopyTimerLocked()
	w.cycle++
	w.mu.Unlock()

	w.changed()
}

// Close освобождает виджет: отменяет запрос в полете и таймер.
// После Close состояние больше не меняется.
func (w *Widget) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	w.closed = true
	if w.cancel != nil {
		w.cancel()
	}
	w.stopCopyTimerLocked()
}

// Wait блокируется, пока не завершится запрос в полете
func (w *Widget) Wait() {
	w.inflight.Wait()
}

// changed уведомляет подписчика актуальным снимком. Подписчик не должен
// вызывать методы, меняющие состояние виджета.
func (w *Widget) changed() {
	if w.onChange == nil {
		return
	}
	w.notifyMu.Lock()
	defer w.notifyMu.Unlock()
	w.onChange(w.State())
}
