// Package repository handles all interactions with the database.
//
// It contains raw SQL queries and methods to fetch, persist
// or update data, abstracting SQL away from the service layer.
// Multi-statement operations (checkout, payment capture, cart merge)
// run inside a single transaction here.
package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is satisfied by *pgxpool.Pool, *pgx.Conn and pgx.Tx.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

var (
	// ErrNegativeStock is returned when a stock adjustment would go below zero.
	ErrNegativeStock = errors.New("stock cannot drop below zero")

	// ErrOrderNotAwaitingPayment is returned when a payment result arrives
	// for an order that already left the payment stage.
	ErrOrderNotAwaitingPayment = errors.New("order is not awaiting payment")

	// ErrOrderStatusChanged is returned when an order moved between read and update.
	ErrOrderStatusChanged = errors.New("order status changed concurrently")

	// ErrCampaignNotDraft is returned when sending a campaign twice.
	ErrCampaignNotDraft = errors.New("campaign is not a draft")
)
