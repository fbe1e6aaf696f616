package core

import "context"

// Table names, as stored and as carried by change notifications.
const (
	TableReceipts        = "recebimento"
	TableWithdrawals     = "retiradas"
	TableWithdrawalItems = "retirada_itens"
)

// Change operations.
const (
	OpInsert = "INSERT"
	OpUpdate = "UPDATE"
	OpDelete = "DELETE"
)

// Ports for persistence adapters.
type (
	ReceiptStore interface {
		ListReceipts(ctx context.Context) ([]Receipt, error)
		GetReceipt(ctx context.Context, id int64) (Receipt, error)
		CreateReceipt(ctx context.Context, r Receipt) (Receipt, error)
		UpdateReceipt(ctx context.Context, r Receipt) (Receipt, error)
		DeleteReceipt(ctx context.Context, id int64) error
	}

	WithdrawalStore interface {
		ListWithdrawals(ctx context.Context) ([]Withdrawal, error)
		GetWithdrawal(ctx context.Context, id int64) (Withdrawal, error)
		CreateWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error)
		UpdateWithdrawal(ctx context.Context, w Withdrawal) (Withdrawal, error)
		DeleteWithdrawal(ctx context.Context, id int64) error
	}

	WithdrawalItemStore interface {
		ListWithdrawalItems(ctx context.Context) ([]WithdrawalItem, error)
		GetWithdrawalItem(ctx context.Context, id int64) (WithdrawalItem, error)
		CreateWithdrawalItem(ctx context.Context, it WithdrawalItem) (WithdrawalItem, error)
		UpdateWithdrawalItem(ctx context.Context, it WithdrawalItem) (WithdrawalItem, error)
		DeleteWithdrawalItem(ctx context.Context, id int64) error
	}

	// Store is everything a backend provides.
	Store interface {
		ReceiptStore
		WithdrawalStore
		WithdrawalItemStore
	}

	// Change describes a write to one of the tables. Consumers treat it
	// only as a signal to re-read everything.
	Change struct {
		Table string `json:"table"`
		Op    string `json:"op"`
		ID    int64  `json:"id"`
	}

	// Notifier announces changes to interested consumers.
	Notifier interface {
		Notify(ctx context.Context, c Change) error
	}
)
