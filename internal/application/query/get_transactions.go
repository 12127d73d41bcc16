package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET TRANSACTIONS QUERY
// Последние записи журнала операций участника.
// ══════════════════════════════════════════════════════════════════════════════

// GetTransactionsQuery содержит параметры запроса.
type GetTransactionsQuery struct {
	TelegramID int64

	// Limit - количество записей (по умолчанию 10, максимум 50).
	Limit int
}

// Validate проверяет корректность параметров запроса.
func (q *GetTransactionsQuery) Validate() error {
	if q.TelegramID <= 0 {
		return errors.New("telegram_id must be positive")
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 50 {
		q.Limit = 50
	}
	return nil
}

// TransactionDTO - одна запись журнала.
type TransactionDTO struct {
	Type         string    `json:"type"`
	Amount       int       `json:"amount"`
	BalanceAfter int       `json:"balance_after"`
	Reference    string    `json:"reference"`
	CreatedAt    time.Time `json:"created_at"`
}

// GetTransactionsHandler обрабатывает запрос журнала.
type GetTransactionsHandler struct {
	ledger account.Ledger
	log    account.TransactionLog
}

// NewGetTransactionsHandler создаёт обработчик запроса журнала.
func NewGetTransactionsHandler(ledger account.Ledger, log account.TransactionLog) *GetTransactionsHandler {
	return &GetTransactionsHandler{ledger: ledger, log: log}
}

// Handle выполняет запрос.
func (h *GetTransactionsHandler) Handle(ctx context.Context, q GetTransactionsQuery) ([]TransactionDTO, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	acc, err := h.ledger.GetByTelegramID(ctx, account.TelegramID(q.TelegramID))
	if err != nil {
		return nil, fmt.Errorf("get_transactions: %w", err)
	}

	txs, err := h.log.ListByAccount(ctx, acc.ID, q.Limit)
	if err != nil {
		return nil, fmt.Errorf("get_transactions: %w", err)
	}

	out := make([]TransactionDTO, 0, len(txs))
	for _, tx := range txs {
		out = append(out, TransactionDTO{
			Type:         string(tx.Type),
			Amount:       tx.Amount,
			BalanceAfter: tx.BalanceAfter,
			Reference:    tx.Reference,
			CreatedAt:    tx.CreatedAt,
		})
	}
	return out, nil
}
