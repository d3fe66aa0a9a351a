package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/paincake00/radarcore/internal/entity"
)

// PostgresRepo реализация справочника пользователей и журнала доставок на основе PostgreSQL.
type PostgresRepo struct {
	Pool *pgxpool.Pool
}

// New создает новое подключение к PostgreSQL.
func New(dsn string) (*PostgresRepo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to parse dsn: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("ping failed: %w", err)
	}

	return &PostgresRepo{Pool: pool}, nil
}

// Close закрывает пул соединений.
func (r *PostgresRepo) Close() {
	r.Pool.Close()
}

// Ping проверяет соединение с БД.
func (r *PostgresRepo) Ping(ctx context.Context) error {
	return r.Pool.Ping(ctx)
}

// User Directory

// GetDeviceToken возвращает FCM-токен пользователя. Таблица users ведется другим сервисом, здесь только чтение.
func (r *PostgresRepo) GetDeviceToken(ctx context.Context, userID string) (string, bool, error) {
	sql := `SELECT fcm_token FROM users WHERE id = $1`
	var token *string
	err := r.Pool.QueryRow(ctx, sql, userID).Scan(&token)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	if token == nil || *token == "" {
		return "", false, nil
	}
	return *token, true, nil
}

// Delivery Log

// RecordDelivery сохраняет факт доставки; повтор message_id игнорируется.
func (r *PostgresRepo) RecordDelivery(ctx context.Context, d *entity.Delivery) error {
	sql := `INSERT INTO notification_deliveries (message_id, user_id, event_id, delivered_at)
            VALUES ($1, $2, $3, NOW())
            ON CONFLICT (message_id) DO NOTHING
            RETURNING id, delivered_at`
	err := r.Pool.QueryRow(ctx, sql, d.MessageID, d.UserID, d.EventID).Scan(&d.ID, &d.DeliveredAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil
	}
	return err
}

// GetStats возвращает статистику: уникальные пользователи на событие за период.
func (r *PostgresRepo) GetStats(ctx context.Context, windowMinutes int) (map[string]int, error) {
	startTime := time.Now().Add(-time.Duration(windowMinutes) * time.Minute)

	sql := `
    SELECT event_id, COUNT(DISTINCT user_id)
    FROM notification_deliveries
    WHERE delivered_at >= $1
    GROUP BY event_id
    `

	rows, err := r.Pool.Query(ctx, sql, startTime)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stats := make(map[string]int)
	for rows.Next() {
		var eventID string
		var count int
		if err := rows.Scan(&eventID, &count); err != nil {
			return nil, err
		}
		stats[eventID] = count
	}
	return stats, rows.Err()
}
