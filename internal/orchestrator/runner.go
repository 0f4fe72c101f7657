package orchestrator

import (
	"fmt"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/internal/runlog"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

// ConfigStore хранит пользовательские конфигурации между запусками
type ConfigStore interface {
	GetConfiguration(id string) (*domain.Configuration, error)
	SaveConfiguration(cfg *domain.Configuration) error
}

// Notifier доставляет пользователю отчёты о запуске и алерты
type Notifier interface {
	Send(message string, isAlert bool)
}

// TradeEngine принимает торговые решения за один проход
type TradeEngine interface {
	MakeTrades(cfg *domain.Configuration) (*domain.Configuration, []domain.OrderResult, error)
}

// Runner - верхнеуровневый сценарий одного запуска: загрузить
// конфигурацию, отторговать проход, сохранить результат и отчитаться.
// Любая ошибка прохода переводит конфигурацию в паузу до вмешательства
// пользователя: лучше не торговать вовсе, чем торговать на сбоящих данных
type Runner struct {
	configs  ConfigStore
	engine   TradeEngine
	notifier Notifier
	runLog   *runlog.Buffer
	logger   *utils.Logger
	version  string
}

func NewRunner(configs ConfigStore, engine TradeEngine, notifier Notifier, runLog *runlog.Buffer, logger *utils.Logger, version string) *Runner {
	return &Runner{
		configs:  configs,
		engine:   engine,
		notifier: notifier,
		runLog:   runLog,
		logger:   logger,
		version:  version,
	}
}

// RunOnce выполняет один полный запуск для указанной конфигурации
func (r *Runner) RunOnce(configID string) error {
	cfg, err := r.configs.GetConfiguration(configID)
	if err != nil {
		r.notifier.Send(fmt.Sprintf("Failed to load configuration %s: %v", configID, err), true)
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	// Невалидная конфигурация - проблема данных, не торговли: сообщаем
	// и выходим, не трогая сохранённое состояние
	if err := cfg.Validate(); err != nil {
		r.notifier.Send(fmt.Sprintf("Configuration %s is invalid, no pass was run: %v", configID, err), true)
		r.flushRunLog()
		return fmt.Errorf("configuration %s is invalid: %w", configID, err)
	}

	updated, ordersPlaced, err := r.engine.MakeTrades(cfg)
	if err != nil {
		r.failSafe(cfg, err)
		return fmt.Errorf("trading pass failed: %w", err)
	}

	if err := r.configs.SaveConfiguration(updated); err != nil {
		r.notifier.Send(fmt.Sprintf("Failed to save configuration %s: %v", configID, err), true)
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	for _, order := range ordersPlaced {
		r.notifier.Send(order.Summary, true)
	}

	r.flushRunLog()

	r.logger.Info("Pass completed for %s: %d orders placed", configID, len(ordersPlaced))
	return nil
}

// failSafe ставит конфигурацию на паузу после сбоя и уведомляет
// пользователя. Сохранение паузы тоже может не удаться - тогда остаётся
// только алерт
func (r *Runner) failSafe(cfg *domain.Configuration, cause error) {
	cfg.IsPaused = true
	cfg.PausedReason = domain.PausedReasonFailure

	if err := r.configs.SaveConfiguration(cfg); err != nil {
		r.logger.Error("Failed to persist the paused configuration %s: %v", cfg.ID, err)
	}

	r.notifier.Send(fmt.Sprintf("Trading is now paused for %s after a failure: %v", cfg.ID, cause), true)
	r.flushRunLog()
}

// flushRunLog отправляет накопленный лог запуска одним сообщением
// с версией бота в заголовке
func (r *Runner) flushRunLog() {
	r.runLog.Flush(func(message string) {
		r.notifier.Send(r.version+"\n"+message, false)
	})
}
