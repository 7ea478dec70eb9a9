package db

import (
	"context"
	"fmt"
)

type tableDDL struct {
	name string
	ddl  string
}

// Order matters: foreign keys point backwards.
var schema = []tableDDL{
	{"users", `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	email VARCHAR(100) NOT NULL UNIQUE,
	password_hash VARCHAR(255),
	first_name VARCHAR(50),
	last_name VARCHAR(50),
	phone VARCHAR(20),
	is_host BOOLEAN NOT NULL DEFAULT false,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"cars", `
CREATE TABLE IF NOT EXISTS cars (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	title VARCHAR(255) NOT NULL,
	make VARCHAR(50) NOT NULL,
	model VARCHAR(50) NOT NULL,
	year INT NOT NULL,
	image_url VARCHAR(255),
	price DECIMAL(12,2) NOT NULL DEFAULT 0,
	host_id BIGINT NOT NULL,
	is_available BOOLEAN NOT NULL DEFAULT true,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	deleted_at TIMESTAMP NULL,
	KEY idx_cars_host (host_id),
	FOREIGN KEY (host_id) REFERENCES users (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"bookings", `
CREATE TABLE IF NOT EXISTS bookings (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	pickup_at DATETIME NOT NULL,
	pickup_time VARCHAR(10) NOT NULL,
	return_at DATETIME NOT NULL,
	return_time VARCHAR(10) NOT NULL,
	total_price DECIMAL(12,2) NOT NULL,
	insurance_option ENUM('basic', 'premium') NOT NULL DEFAULT 'basic',
	additional_drivers INT NOT NULL DEFAULT 0,
	special_requests TEXT,
	agree_to_terms BOOLEAN NOT NULL DEFAULT TRUE,
	status ENUM('PENDING', 'CONFIRMED', 'CANCELLED', 'COMPLETED') NOT NULL DEFAULT 'PENDING',
	car_id BIGINT NOT NULL,
	tenant_id BIGINT NOT NULL,
	host_id BIGINT NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	KEY idx_bookings_tenant (tenant_id, created_at),
	KEY idx_bookings_host (host_id, created_at),
	KEY idx_bookings_car (car_id, pickup_at, return_at),
	FOREIGN KEY (car_id) REFERENCES cars (id),
	FOREIGN KEY (tenant_id) REFERENCES users (id),
	FOREIGN KEY (host_id) REFERENCES users (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"payments", `
CREATE TABLE IF NOT EXISTS payments (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	amount DECIMAL(12,2) NOT NULL,
	status ENUM('PENDING', 'COMPLETED', 'FAILED', 'REFUNDED') NOT NULL DEFAULT 'PENDING',
	booking_id BIGINT NOT NULL,
	payment_method VARCHAR(50) NOT NULL,
	transaction_id VARCHAR(100) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_payments_booking (booking_id),
	UNIQUE KEY uniq_payments_txn (transaction_id),
	FOREIGN KEY (booking_id) REFERENCES bookings (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
	{"user_cards", `
CREATE TABLE IF NOT EXISTS user_cards (
	id BIGINT AUTO_INCREMENT PRIMARY KEY,
	user_id BIGINT NOT NULL,
	card_fingerprint CHAR(64) NOT NULL,
	card_name VARCHAR(255) NOT NULL,
	expiry_date VARCHAR(10) NOT NULL,
	last_four_digits VARCHAR(4) NOT NULL,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
	UNIQUE KEY uniq_user_card (user_id, card_fingerprint),
	FOREIGN KEY (user_id) REFERENCES users (id)
) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4 COLLATE=utf8mb4_unicode_ci`},
}

// Migrate creates missing tables and returns the names it created.
func Migrate(ctx context.Context, q DBTX) ([]string, error) {
	created := []string{}
	for _, t := range schema {
		if HasTable(ctx, q, t.name) {
			continue
		}
		if _, err := q.ExecContext(ctx, t.ddl); err != nil {
			return created, fmt.Errorf("create table %s: %w", t.name, err)
		}
		created = append(created, t.name)
	}
	return created, nil
}
