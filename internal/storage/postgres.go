package storage

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/lib/pq"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
	"github.com/BenSmith123/crypto-analyser/internal/storage/repository"
)

// PostgresStorage является фасадом для работы с PostgreSQL через репозитории
type PostgresStorage struct {
	db      *sql.DB
	configs *repository.ConfigRepository
	orders  *repository.OrderRepository
}

func NewPostgresStorage(host string, port int, user, password, dbname, sslmode string, maxOpenConns, maxIdleConns int, connMaxLifetime time.Duration) (*PostgresStorage, error) {
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDatabaseConnection, err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	storage := &PostgresStorage{
		db:      db,
		configs: repository.NewConfigRepository(db),
		orders:  repository.NewOrderRepository(db),
	}

	if err := storage.migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return storage, nil
}

func (s *PostgresStorage) migrate() error {
	migrations := []string{
		// Конфигурация пользователя целиком лежит в JSONB: записи валют
		// вложены и меняются как единый документ между запусками
		`CREATE TABLE IF NOT EXISTS configurations (
			id VARCHAR(100) PRIMARY KEY,
			data JSONB NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		// Аудит всех размещённых ордеров, включая неподтверждённые
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			order_id VARCHAR(100) NOT NULL,
			currency VARCHAR(20) NOT NULL,
			side VARCHAR(10) NOT NULL,
			status VARCHAR(20) NOT NULL,
			avg_price DECIMAL(20, 8) NOT NULL DEFAULT 0,
			raw TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_currency ON orders(currency)`,
		`CREATE INDEX IF NOT EXISTS idx_orders_created_at ON orders(created_at)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}

	return nil
}

// ==================== CONFIGURATIONS ====================

func (s *PostgresStorage) GetConfiguration(id string) (*domain.Configuration, error) {
	return s.configs.Get(id)
}

func (s *PostgresStorage) SaveConfiguration(cfg *domain.Configuration) error {
	return s.configs.Save(cfg)
}

// ==================== ORDERS ====================

func (s *PostgresStorage) SaveOrder(detail *domain.OrderDetail) error {
	return s.orders.Save(detail)
}

func (s *PostgresStorage) GetRecentOrders(currency string, limit int) ([]domain.OrderDetail, error) {
	return s.orders.GetRecent(currency, limit)
}

// Close закрывает соединение с базой данных
func (s *PostgresStorage) Close() error {
	return s.db.Close()
}
