package database

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func InitDB(logger *zap.Logger) (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "postgres")
	password := getEnv("DB_PASSWORD", "postgres")
	dbname := getEnv("DB_NAME", "panedb")

	psqlInfo := fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		host, port, user, password, dbname)

	db, err := sql.Open("postgres", psqlInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(1 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := createSchema(db); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	logger.Info("Database connection established")
	return db, nil
}

// createSchema runs once at startup. The events table in particular used to
// be created lazily inside the tracking endpoint; doing it here keeps schema
// DDL out of the request path.
func createSchema(db *sql.DB) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS sales (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(64),
			channel VARCHAR(64) NOT NULL DEFAULT 'site',
			payment_method VARCHAR(64) NOT NULL DEFAULT 'other',
			total_value_cents BIGINT NOT NULL DEFAULT 0,
			discount_cents BIGINT NOT NULL DEFAULT 0,
			cost_freight_cents BIGINT NOT NULL DEFAULT 0,
			cost_packaging_cents BIGINT NOT NULL DEFAULT 0,
			cost_card_fee_cents BIGINT NOT NULL DEFAULT 0,
			cost_other_cents BIGINT NOT NULL DEFAULT 0,
			notes TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS orders (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			delivery_date VARCHAR(32),
			delivery_period VARCHAR(32),
			customer_name VARCHAR(255) NOT NULL,
			customer_phone VARCHAR(64),
			customer_address TEXT,
			notes TEXT,
			origin VARCHAR(64),
			status VARCHAR(32) NOT NULL DEFAULT 'new',
			total_cents BIGINT NOT NULL DEFAULT 0,
			brand_slug VARCHAR(64)
		);`,
		`CREATE TABLE IF NOT EXISTS events (
			id SERIAL PRIMARY KEY,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			type VARCHAR(64) NOT NULL,
			product_slug VARCHAR(255),
			page_path VARCHAR(255),
			session_id VARCHAR(128),
			extra TEXT
		);`,
	}

	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
