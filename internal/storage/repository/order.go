package repository

import (
	"database/sql"
	"fmt"

	"github.com/BenSmith123/crypto-analyser/internal/domain"
)

// OrderRepository реализует аудит размещённых ордеров
type OrderRepository struct {
	db *sql.DB
}

// NewOrderRepository создает новый репозиторий ордеров
func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Save сохраняет размещённый ордер
func (r *OrderRepository) Save(detail *domain.OrderDetail) error {
	if detail == nil || detail.OrderID == "" {
		return fmt.Errorf("%w: order id is empty", domain.ErrInvalidInput)
	}

	query := `
		INSERT INTO orders (order_id, currency, side, status, avg_price, raw, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(
		query,
		detail.OrderID,
		detail.Currency,
		detail.Side,
		detail.Status,
		detail.AvgPrice,
		detail.Raw,
		detail.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save order %s: %w", detail.OrderID, err)
	}

	return nil
}

// GetRecent получает последние N ордеров по валюте
func (r *OrderRepository) GetRecent(currency string, limit int) ([]domain.OrderDetail, error) {
	query := `
		SELECT order_id, currency, side, status, avg_price, COALESCE(raw, ''), created_at
		FROM orders
		WHERE currency = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.db.Query(query, currency, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []domain.OrderDetail
	for rows.Next() {
		var detail domain.OrderDetail
		err := rows.Scan(
			&detail.OrderID,
			&detail.Currency,
			&detail.Side,
			&detail.Status,
			&detail.AvgPrice,
			&detail.Raw,
			&detail.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		orders = append(orders, detail)
	}

	return orders, rows.Err()
}
