package repository

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
)

// ConfigRepository реализует хранение пользовательских конфигураций
type ConfigRepository struct {
	db *sql.DB
}

// NewConfigRepository создает новый репозиторий конфигураций
func NewConfigRepository(db *sql.DB) *ConfigRepository {
	return &ConfigRepository{db: db}
}

// Get загружает конфигурацию по идентификатору
func (r *ConfigRepository) Get(id string) (*domain.Configuration, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: configuration id is empty", domain.ErrInvalidInput)
	}

	query := `SELECT data FROM configurations WHERE id = $1`

	var data []byte
	err := r.db.QueryRow(query, id).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: configuration %s", domain.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration %s: %w", id, err)
	}

	var cfg domain.Configuration
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration %s: %w", id, err)
	}

	cfg.ID = id
	return &cfg, nil
}

// Save сохраняет конфигурацию целиком (upsert по идентификатору)
func (r *ConfigRepository) Save(cfg *domain.Configuration) error {
	if cfg == nil || cfg.ID == "" {
		return fmt.Errorf("%w: configuration id is empty", domain.ErrInvalidInput)
	}

	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal configuration %s: %w", cfg.ID, err)
	}

	query := `
		INSERT INTO configurations (id, data, updated_at)
		VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET data = $2, updated_at = $3
	`
	if _, err := r.db.Exec(query, cfg.ID, data, time.Now()); err != nil {
		return fmt.Errorf("failed to save configuration %s: %w", cfg.ID, err)
	}

	return nil
}
