package account

import (
	"context"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEDGER INTERFACE
// Ledger - единственная точка доступа к аккаунтам и единственная граница
// конкурентности системы. Реализации находятся в infrastructure/persistence.
// ══════════════════════════════════════════════════════════════════════════════

// MutateFn - атомарная функция мутации. Получает актуальный снимок
// аккаунта и правит его на месте; экономические операции дописываются
// в журнал j и сохраняются той же единицей работы. Возврат ошибки
// отменяет мутацию целиком: ни одно изменение не сохраняется.
//
// Внутри MutateFn запрещён любой I/O: функция должна быть чистой
// по отношению к внешнему миру, сторонние эффекты (уведомления,
// события) выполняются после успешного коммита.
type MutateFn func(a *Account, j *Journal) error

// Ledger определяет контракт хранилища аккаунтов.
type Ledger interface {
	// ─────────────────────────────────────────────────────────────────────────
	// Reads
	// ─────────────────────────────────────────────────────────────────────────

	// GetByID возвращает снимок аккаунта по внутреннему ID.
	// Возвращает ErrAccountNotFound, если аккаунт не найден.
	GetByID(ctx context.Context, id string) (*Account, error)

	// GetByTelegramID возвращает снимок аккаунта по Telegram ID.
	// Возвращает ErrAccountNotFound, если аккаунт не найден.
	GetByTelegramID(ctx context.Context, telegramID TelegramID) (*Account, error)

	// GetOrCreate возвращает аккаунт, создавая его при первом обращении.
	// Создание идемпотентно: гонка двух вызовов даёт один аккаунт.
	GetOrCreate(ctx context.Context, telegramID TelegramID, username, firstName string) (*Account, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Mutations
	// ─────────────────────────────────────────────────────────────────────────

	// Mutate выполняет атомарную мутацию аккаунта по Telegram ID.
	// Для одного аккаунта в каждый момент выполняется не более одной
	// мутации; мутация либо применяется целиком, либо не применяется
	// вовсе. Несуществующий аккаунт создаётся перед применением fn.
	// Возвращает снимок аккаунта после применения мутации.
	Mutate(ctx context.Context, telegramID TelegramID, username, firstName string, fn MutateFn) (*Account, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Bulk Operations
	// ─────────────────────────────────────────────────────────────────────────

	// GetAll возвращает аккаунты с пагинацией.
	GetAll(ctx context.Context, opts ListOptions) ([]*Account, error)

	// GetTop возвращает топ аккаунтов в порядке рейтинга:
	// престиж по убыванию, затем уровень, затем XP.
	GetTop(ctx context.Context, limit int) ([]*Account, error)

	// Count возвращает общее количество аккаунтов.
	Count(ctx context.Context) (int, error)

	// ─────────────────────────────────────────────────────────────────────────
	// Maintenance
	// ─────────────────────────────────────────────────────────────────────────

	// FindExpiredGrants возвращает Telegram ID аккаунтов, у которых
	// хотя бы одна привилегия истекла к моменту now. Используется
	// sweep-джобой; сама чистка идёт через Mutate.
	FindExpiredGrants(ctx context.Context, now time.Time, limit int) ([]TelegramID, error)

	// FindActiveSince возвращает аккаунты с активностью после since.
	// Используется при розыгрыше ежедневного spotlight.
	FindActiveSince(ctx context.Context, since time.Time, limit int) ([]*Account, error)
}

// ListOptions содержит параметры для пагинации и сортировки.
type ListOptions struct {
	// Offset - смещение (для пагинации).
	Offset int

	// Limit - максимальное количество записей.
	Limit int

	// SortBy - поле для сортировки.
	SortBy string

	// SortDesc - сортировка по убыванию.
	SortDesc bool
}

// DefaultListOptions возвращает параметры по умолчанию.
func DefaultListOptions() ListOptions {
	return ListOptions{
		Offset:   0,
		Limit:    50,
		SortBy:   "xp",
		SortDesc: true,
	}
}

// WithOffset устанавливает смещение.
func (o ListOptions) WithOffset(offset int) ListOptions {
	o.Offset = offset
	return o
}

// WithLimit устанавливает лимит.
func (o ListOptions) WithLimit(limit int) ListOptions {
	o.Limit = limit
	return o
}

// WithSort устанавливает сортировку.
func (o ListOptions) WithSort(field string, desc bool) ListOptions {
	o.SortBy = field
	o.SortDesc = desc
	return o
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION LOG
// Журнал экономических операций для аудита. Пишется в той же
// транзакции, что и мутация аккаунта.
// ══════════════════════════════════════════════════════════════════════════════

// TransactionType определяет тип записи журнала.
type TransactionType string

const (
	// TransactionEarn - начисление HubCoins.
	TransactionEarn TransactionType = "earn"
	// TransactionSpend - списание HubCoins.
	TransactionSpend TransactionType = "spend"
	// TransactionDaily - дневной бонус.
	TransactionDaily TransactionType = "daily"
	// TransactionPurchase - покупка предмета.
	TransactionPurchase TransactionType = "purchase"
	// TransactionReward - награда (ачивка, mystery box, престиж).
	TransactionReward TransactionType = "reward"
)

// Journal накапливает записи журнала внутри одной мутации.
// Реализация Ledger сохраняет их той же единицей работы, что и аккаунт.
type Journal struct {
	entries []Transaction
}

// Record добавляет запись. ID, AccountID и CreatedAt проставляет
// реализация Ledger при сохранении.
func (j *Journal) Record(typ TransactionType, amount int, balanceAfter Coins, reference string) {
	j.entries = append(j.entries, Transaction{
		Type:         typ,
		Amount:       amount,
		BalanceAfter: int(balanceAfter),
		Reference:    reference,
	})
}

// Entries возвращает накопленные записи.
func (j *Journal) Entries() []Transaction {
	return j.entries
}

// Transaction - одна запись журнала операций.
type Transaction struct {
	ID         string
	AccountID  string
	TelegramID TelegramID
	Type       TransactionType
	Amount     int
	// BalanceAfter - баланс после применения операции.
	BalanceAfter int
	// Reference - человекочитаемая ссылка на источник (id предмета,
	// id ачивки, "daily" и т.п.).
	Reference string
	CreatedAt time.Time
}

// TransactionLog определяет контракт журнала операций.
type TransactionLog interface {
	// Append добавляет запись в журнал.
	Append(ctx context.Context, tx Transaction) error

	// ListByAccount возвращает последние записи аккаунта.
	ListByAccount(ctx context.Context, accountID string, limit int) ([]Transaction, error)
}

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// Кеш рейтинга (обычно реализуется через Redis). Источник истины -
// Ledger; кеш перестраивается джобой и инвалидируется при мутациях.
// ══════════════════════════════════════════════════════════════════════════════

// RankedEntry - одна строка кешированного рейтинга.
type RankedEntry struct {
	TelegramID  TelegramID
	DisplayName string
	Prestige    int
	Level       int
	XP          int
	Rank        int
}

// LeaderboardCache определяет операции кеша рейтинга.
type LeaderboardCache interface {
	// Rebuild атомарно заменяет содержимое рейтинга.
	Rebuild(ctx context.Context, entries []RankedEntry) error

	// Top возвращает первые limit строк рейтинга.
	Top(ctx context.Context, limit int) ([]RankedEntry, error)

	// Rank возвращает позицию аккаунта (1-based).
	// Возвращает 0, если аккаунта нет в рейтинге.
	Rank(ctx context.Context, telegramID TelegramID) (int, error)

	// Invalidate сбрасывает кеш. Следующий Top пойдёт в Ledger.
	Invalidate(ctx context.Context) error
}
