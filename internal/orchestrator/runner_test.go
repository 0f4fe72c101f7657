package orchestrator

import (
	"errors"
	"strings"
	"testing"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/internal/runlog"
	"github.com/BenSmith123/crypto-analyser/pkg/utils"
)

type stubStore struct {
	cfg     *domain.Configuration
	getErr  error
	saveErr error
	saved   []*domain.Configuration
}

func (s *stubStore) GetConfiguration(id string) (*domain.Configuration, error) {
	return s.cfg, s.getErr
}

func (s *stubStore) SaveConfiguration(cfg *domain.Configuration) error {
	s.saved = append(s.saved, cfg)
	return s.saveErr
}

type stubNotifier struct {
	messages []string
	alerts   []string
}

func (s *stubNotifier) Send(message string, isAlert bool) {
	if isAlert {
		s.alerts = append(s.alerts, message)
		return
	}
	s.messages = append(s.messages, message)
}

type stubEngine struct {
	orders []domain.OrderResult
	err    error
	calls  int
}

func (s *stubEngine) MakeTrades(cfg *domain.Configuration) (*domain.Configuration, []domain.OrderResult, error) {
	s.calls++
	return cfg, s.orders, s.err
}

func validConfig() *domain.Configuration {
	return &domain.Configuration{
		ID:                 "user-1",
		CurrenciesTargeted: []string{"DOGE"},
		Records: map[string]*domain.CurrencyRecord{
			"DOGE": {Thresholds: domain.Thresholds{SellPercentage: 5, BuyPercentage: -5}},
		},
	}
}

func newRunner(store *stubStore, engine *stubEngine, notifier *stubNotifier) (*Runner, *runlog.Buffer) {
	log := runlog.New()
	return NewRunner(store, engine, notifier, log, utils.NewLogger("error"), "v2.0.0"), log
}

func TestRunOnceSuccess(t *testing.T) {
	store := &stubStore{cfg: validConfig()}
	engine := &stubEngine{orders: []domain.OrderResult{{Summary: "Buy order FILLED for $8 USD worth of DOGE at 0.3"}}}
	notifier := &stubNotifier{}
	runner, log := newRunner(store, engine, notifier)
	log.Append("checking DOGE")

	if err := runner.RunOnce("user-1"); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}

	if engine.calls != 1 {
		t.Errorf("engine calls = %d, want 1", engine.calls)
	}
	if len(store.saved) != 1 {
		t.Fatalf("saved %d configurations, want 1", len(store.saved))
	}
	if store.saved[0].IsPaused {
		t.Error("successful pass must not pause the configuration")
	}

	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "Buy order FILLED") {
		t.Errorf("alerts = %v, want the order summary", notifier.alerts)
	}
	if len(notifier.messages) != 1 {
		t.Fatalf("messages = %v, want one flushed run log", notifier.messages)
	}
	if !strings.HasPrefix(notifier.messages[0], "v2.0.0\n") {
		t.Errorf("run log message should start with the version, got %q", notifier.messages[0])
	}
	if log.Len() != 0 {
		t.Error("run log should be flushed after the pass")
	}
}

func TestRunOnceTradeFailurePausesConfig(t *testing.T) {
	store := &stubStore{cfg: validConfig()}
	engine := &stubEngine{err: errors.New("exchange down")}
	notifier := &stubNotifier{}
	runner, _ := newRunner(store, engine, notifier)

	err := runner.RunOnce("user-1")
	if err == nil {
		t.Fatal("expected an error from the failed pass")
	}

	if len(store.saved) != 1 {
		t.Fatalf("saved %d configurations, want the paused one", len(store.saved))
	}
	saved := store.saved[0]
	if !saved.IsPaused {
		t.Error("failed pass must pause the configuration")
	}
	if saved.PausedReason != domain.PausedReasonFailure {
		t.Errorf("PausedReason = %q", saved.PausedReason)
	}

	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "paused") {
		t.Errorf("alerts = %v, want a pause alert", notifier.alerts)
	}
}

func TestRunOnceInvalidConfigLeavesStateUntouched(t *testing.T) {
	cfg := validConfig()
	price := 0.3
	cfg.Records["DOGE"].LastBuyPrice = &price
	// якорь покупки без isHolding - запись противоречива
	cfg.Records["DOGE"].IsHolding = false

	store := &stubStore{cfg: cfg}
	engine := &stubEngine{}
	notifier := &stubNotifier{}
	runner, _ := newRunner(store, engine, notifier)

	err := runner.RunOnce("user-1")
	if err == nil {
		t.Fatal("expected a validation error")
	}
	if engine.calls != 0 {
		t.Error("invalid configuration must not reach the engine")
	}
	// данные могли испортиться транзитно - сохранённое состояние
	// не перезаписывается и не ставится на паузу
	if len(store.saved) != 0 {
		t.Errorf("saved %d configurations, want none on a validation failure", len(store.saved))
	}
	if cfg.IsPaused {
		t.Error("validation failure must not pause the configuration")
	}
	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "invalid") {
		t.Errorf("alerts = %v, want one validation alert", notifier.alerts)
	}
}

func TestRunOnceLoadFailure(t *testing.T) {
	store := &stubStore{getErr: errors.New("db unavailable")}
	engine := &stubEngine{}
	notifier := &stubNotifier{}
	runner, _ := newRunner(store, engine, notifier)

	err := runner.RunOnce("user-1")
	if err == nil {
		t.Fatal("expected a load error")
	}
	if engine.calls != 0 {
		t.Error("engine must not run without a configuration")
	}
	if len(notifier.alerts) != 1 {
		t.Errorf("alerts = %v, want one load failure alert", notifier.alerts)
	}
}

func TestRunOnceSaveFailureAlerts(t *testing.T) {
	store := &stubStore{cfg: validConfig(), saveErr: errors.New("db unavailable")}
	engine := &stubEngine{}
	notifier := &stubNotifier{}
	runner, _ := newRunner(store, engine, notifier)

	err := runner.RunOnce("user-1")
	if err == nil {
		t.Fatal("expected a save error")
	}
	if len(notifier.alerts) != 1 || !strings.Contains(notifier.alerts[0], "Failed to save") {
		t.Errorf("alerts = %v, want a save failure alert", notifier.alerts)
	}
}

func TestRunOnceEmptyRunLogNotSent(t *testing.T) {
	store := &stubStore{cfg: validConfig()}
	engine := &stubEngine{}
	notifier := &stubNotifier{}
	runner, _ := newRunner(store, engine, notifier)

	if err := runner.RunOnce("user-1"); err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if len(notifier.messages) != 0 {
		t.Errorf("messages = %v, want none for an empty run log", notifier.messages)
	}
}
