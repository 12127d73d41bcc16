// Package account содержит доменную модель участника LevelUp Hub.
// Это ядро бизнес-логики - здесь нет внешних зависимостей.
//
// Аккаунт - это персональный журнал прогресса и экономики: XP, уровень,
// HubCoins, стрик, престиж и временные привилегии. Все мутации проходят
// через Ledger (см. repository.go), который гарантирует атомарность
// на уровне одного аккаунта.
package account

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/progression"
	"github.com/promohub/levelup-hub/pkg/timeutil"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// TelegramID представляет уникальный идентификатор пользователя Telegram.
type TelegramID int64

// IsValid проверяет, что TelegramID положительный.
func (t TelegramID) IsValid() bool {
	return t > 0
}

// Int64 возвращает числовое представление идентификатора.
func (t TelegramID) Int64() int64 {
	return int64(t)
}

// Coins представляет баланс HubCoins.
type Coins int

// IsValid проверяет, что баланс неотрицательный.
func (c Coins) IsValid() bool {
	return c >= 0
}

// GrantKind определяет вид временной привилегии.
type GrantKind string

const (
	// GrantTitle - кастомный титул рядом с именем.
	GrantTitle GrantKind = "title"
	// GrantVIP - VIP-членство (x2 HubCoins за активность).
	GrantVIP GrantKind = "vip"
	// GrantBoost - буст опыта (x2 XP за активность).
	GrantBoost GrantKind = "boost"
)

// MaxTitleLength - максимальная длина кастомного титула.
const MaxTitleLength = 20

// ══════════════════════════════════════════════════════════════════════════════
// DOMAIN ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrInvalidTelegramID - невалидный Telegram ID.
	ErrInvalidTelegramID = errors.New("account: invalid telegram id: must be positive")

	// ErrInvalidDisplayName - невалидное отображаемое имя.
	ErrInvalidDisplayName = errors.New("account: invalid display name: must be 1-100 chars")

	// ErrNegativeAmount - отрицательная сумма начисления.
	ErrNegativeAmount = errors.New("account: amount cannot be negative")

	// ErrInsufficientBalance - списание увело бы баланс в минус.
	ErrInsufficientBalance = errors.New("account: insufficient balance")

	// ErrTitleTooLong - титул длиннее MaxTitleLength символов.
	ErrTitleTooLong = errors.New("account: custom title too long")

	// ErrAccountNotFound - аккаунт не найден.
	ErrAccountNotFound = errors.New("account: not found")

	// ErrSelfReputation - репутацию нельзя начислить самому себе.
	ErrSelfReputation = errors.New("account: cannot give reputation to self")

	// ErrAlreadyClaimedToday - дневной бонус уже получен сегодня.
	ErrAlreadyClaimedToday = errors.New("account: daily bonus already claimed today")

	// ErrPrestigeLevelNotReached - для престижа нужен уровень 100.
	ErrPrestigeLevelNotReached = errors.New("account: prestige requires level 100")
)

// ══════════════════════════════════════════════════════════════════════════════
// MAIN ENTITY: ACCOUNT
// ══════════════════════════════════════════════════════════════════════════════

// Account - центральная сущность системы: запись прогресса и экономики
// одного участника группы.
type Account struct {
	// ID - внутренний уникальный идентификатор (UUID в строковом формате).
	ID string

	// TelegramID - идентификатор пользователя в Telegram.
	TelegramID TelegramID

	// Username - @username в Telegram (может быть пустым).
	Username string

	// FirstName - имя, которым подписаны сообщения участника.
	FirstName string

	// XP - накопленные очки опыта. Монотонно растёт при обычной игре,
	// сбрасывается только престижем.
	XP int

	// Level - кешированный уровень. Производное поле: пересчитывается
	// и сверяется с кривой при каждой мутации (см. ReconcileLevel).
	Level int

	// Prestige - сколько раз участник брал престиж.
	Prestige int

	// Coins - текущий баланс HubCoins. Никогда не уходит в минус.
	Coins Coins

	// TotalEarned / TotalSpent - монотонные счётчики для аудита.
	TotalEarned int
	TotalSpent  int

	// MessageCount - количество засчитанных сообщений.
	MessageCount int

	// Reputation - репутация, начисляемая только другими участниками.
	Reputation int

	// LastActivityAt - время последнего засчитанного сообщения.
	LastActivityAt time.Time

	// DailyStreak - текущий дневной стрик.
	DailyStreak int

	// LastDailyAt - когда был получен последний дневной бонус.
	LastDailyAt *time.Time

	// CustomTitle + CustomTitleExpiry - купленный титул и срок его действия.
	CustomTitle       string
	CustomTitleExpiry *time.Time

	// VIP + VIPExpiry - VIP-членство.
	VIP       bool
	VIPExpiry *time.Time

	// Boost + BoostExpiry - буст опыта.
	Boost       bool
	BoostExpiry *time.Time

	// SpotlightPriority - одноразовый флаг приоритета в ежедневном
	// spotlight. Гасится при розыгрыше, а не по таймеру.
	SpotlightPriority bool

	// Achievements - полученные ачивки. Set-семантика: каждый id
	// встречается не более одного раза и никогда не удаляется.
	Achievements []string

	// JoinedAt - время первого появления в боте.
	JoinedAt time.Time

	// CreatedAt / UpdatedAt - служебные метки времени.
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// FACTORY & VALIDATION
// ══════════════════════════════════════════════════════════════════════════════

// NewAccountParams содержит параметры для создания нового аккаунта.
type NewAccountParams struct {
	ID            string
	TelegramID    TelegramID
	Username      string
	FirstName     string
	StartingCoins Coins
}

// NewAccount создаёт новый аккаунт с валидацией всех полей.
// Баланс сеется конфигурируемой положительной константой StartingCoins.
func NewAccount(params NewAccountParams) (*Account, error) {
	if params.ID == "" {
		return nil, errors.New("account: id is required")
	}

	if !params.TelegramID.IsValid() {
		return nil, ErrInvalidTelegramID
	}

	firstName := strings.TrimSpace(params.FirstName)
	if len(firstName) == 0 || len(firstName) > 100 {
		return nil, ErrInvalidDisplayName
	}

	if !params.StartingCoins.IsValid() {
		return nil, ErrNegativeAmount
	}

	now := time.Now().UTC()

	return &Account{
		ID:           params.ID,
		TelegramID:   params.TelegramID,
		Username:     params.Username,
		FirstName:    firstName,
		XP:           0,
		Level:        0,
		Coins:        params.StartingCoins,
		Achievements: []string{},
		JoinedAt:     now,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// PROGRESSION
// ══════════════════════════════════════════════════════════════════════════════

// AddExperience начисляет XP и пересчитывает уровень.
// Возвращает старый и новый уровень; отрицательная дельта отклоняется.
func (a *Account) AddExperience(delta int) (oldLevel, newLevel int, err error) {
	if delta < 0 {
		return 0, 0, ErrNegativeAmount
	}

	oldLevel = a.Level
	a.XP += delta

	newLevel, err = a.ReconcileLevel()
	if err != nil {
		return 0, 0, err
	}

	a.touch()
	return oldLevel, newLevel, nil
}

// ReconcileLevel пересчитывает кешированный уровень из XP.
// Вызывается в конце каждой мутации: инвариант
// Level == progression.LevelFor(XP) держится на этом методе.
func (a *Account) ReconcileLevel() (int, error) {
	level, err := progression.LevelFor(a.XP)
	if err != nil {
		return 0, err
	}
	a.Level = level
	return level, nil
}

// TakePrestige выполняет престиж: счётчик престижа растёт, аккаунт
// возвращается на первый уровень. XP ставится ровно на порог первого
// уровня, чтобы инвариант Level == LevelFor(XP) сохранялся.
// Необратимая операция; бонус начисляет вызывающая сторона, исходя
// из нового значения Prestige.
func (a *Account) TakePrestige() error {
	if a.Level < 100 {
		return ErrPrestigeLevelNotReached
	}

	a.Prestige++
	a.XP = progression.ThresholdFor(1)
	if _, err := a.ReconcileLevel(); err != nil {
		return err
	}
	a.touch()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// ECONOMY
// ══════════════════════════════════════════════════════════════════════════════

// Credit начисляет HubCoins и увеличивает счётчик заработанного.
func (a *Account) Credit(amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}

	a.Coins += Coins(amount)
	a.TotalEarned += amount
	a.touch()
	return nil
}

// Debit списывает HubCoins. Списание, уводящее баланс в минус,
// отклоняется без каких-либо изменений.
func (a *Account) Debit(amount int) error {
	if amount < 0 {
		return ErrNegativeAmount
	}
	if a.Coins < Coins(amount) {
		return ErrInsufficientBalance
	}

	a.Coins -= Coins(amount)
	a.TotalSpent += amount
	a.touch()
	return nil
}

// CanAfford проверяет, хватает ли баланса на сумму.
func (a *Account) CanAfford(amount int) bool {
	return amount >= 0 && a.Coins >= Coins(amount)
}

// ══════════════════════════════════════════════════════════════════════════════
// ENGAGEMENT
// ══════════════════════════════════════════════════════════════════════════════

// RecordMessage фиксирует засчитанное сообщение.
func (a *Account) RecordMessage(at time.Time) {
	a.MessageCount++
	a.LastActivityAt = at.UTC()
	a.touch()
}

// InCooldown проверяет, попадает ли момент now в окно обезвреживания
// после последней активности. Жёсткий rate limit, не вероятностный.
func (a *Account) InCooldown(now time.Time, window time.Duration) bool {
	if a.LastActivityAt.IsZero() {
		return false
	}
	return now.Sub(a.LastActivityAt) < window
}

// ClaimDailyStreak продвигает дневной стрик по правилам:
//   - второй клейм в тот же календарный день отклоняется;
//   - клейм ровно на следующий календарный день: стрик +1;
//   - любой другой разрыв: стрик сбрасывается в 1 (не в 0).
//
// Возвращает новое значение стрика и признак того, что прежний стрик
// был сломан.
func (a *Account) ClaimDailyStreak(now time.Time) (streak int, broken bool, err error) {
	nowUTC := now.UTC()

	if a.LastDailyAt != nil {
		last := *a.LastDailyAt
		switch {
		case timeutil.SameDay(last, nowUTC):
			return a.DailyStreak, false, ErrAlreadyClaimedToday
		case timeutil.IsNextDay(last, nowUTC):
			a.DailyStreak++
		default:
			broken = a.DailyStreak > 1
			a.DailyStreak = 1
		}
	} else {
		a.DailyStreak = 1
	}

	a.LastDailyAt = &nowUTC
	a.touch()
	return a.DailyStreak, broken, nil
}

// GiveReputation начисляет репутацию от другого участника.
// Самоначисление запрещено на уровне домена.
func (a *Account) GiveReputation(from TelegramID) error {
	if from == a.TelegramID {
		return ErrSelfReputation
	}

	a.Reputation++
	a.touch()
	return nil
}

// AwardReputation начисляет репутацию от системы (например, из mystery box).
func (a *Account) AwardReputation(n int) {
	if n <= 0 {
		return
	}
	a.Reputation += n
	a.touch()
}

// ══════════════════════════════════════════════════════════════════════════════
// GRANTS
// Чтение привилегий ленивое: флаг считается активным только если срок
// не истёк на момент наблюдения. Периодический sweep дополнительно
// чистит протухшие поля, но корректность от него не зависит.
// ══════════════════════════════════════════════════════════════════════════════

// TitleActiveAt возвращает титул, если он активен на момент now.
func (a *Account) TitleActiveAt(now time.Time) (string, bool) {
	if a.CustomTitle == "" {
		return "", false
	}
	if a.CustomTitleExpiry != nil && !now.Before(*a.CustomTitleExpiry) {
		return "", false
	}
	return a.CustomTitle, true
}

// VIPActiveAt проверяет VIP-статус на момент now.
func (a *Account) VIPActiveAt(now time.Time) bool {
	if !a.VIP {
		return false
	}
	return a.VIPExpiry == nil || now.Before(*a.VIPExpiry)
}

// BoostActiveAt проверяет буст опыта на момент now.
func (a *Account) BoostActiveAt(now time.Time) bool {
	if !a.Boost {
		return false
	}
	return a.BoostExpiry == nil || now.Before(*a.BoostExpiry)
}

// SetTitle устанавливает кастомный титул со сроком действия.
// Содержательную валидацию (запрещённые слова) выполняет экономика;
// здесь проверяется только инвариант длины.
func (a *Account) SetTitle(title string, expiry time.Time) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrInvalidDisplayName
	}
	if len([]rune(title)) > MaxTitleLength {
		return ErrTitleTooLong
	}

	e := expiry.UTC()
	a.CustomTitle = title
	a.CustomTitleExpiry = &e
	a.touch()
	return nil
}

// GrantVIPUntil включает VIP до указанного момента.
func (a *Account) GrantVIPUntil(expiry time.Time) {
	e := expiry.UTC()
	a.VIP = true
	a.VIPExpiry = &e
	a.touch()
}

// GrantBoostUntil включает буст опыта до указанного момента.
func (a *Account) GrantBoostUntil(expiry time.Time) {
	e := expiry.UTC()
	a.Boost = true
	a.BoostExpiry = &e
	a.touch()
}

// MarkSpotlightPriority взводит одноразовый флаг приоритета.
func (a *Account) MarkSpotlightPriority() {
	a.SpotlightPriority = true
	a.touch()
}

// ConsumeSpotlightPriority гасит флаг приоритета при розыгрыше.
// Возвращает true, если флаг был взведён.
func (a *Account) ConsumeSpotlightPriority() bool {
	if !a.SpotlightPriority {
		return false
	}
	a.SpotlightPriority = false
	a.touch()
	return true
}

// ClearExpiredGrants чистит привилегии, истёкшие к моменту now,
// и возвращает список затронутых видов. Используется sweep-джобой;
// обязана вызываться только внутри Mutate.
func (a *Account) ClearExpiredGrants(now time.Time) []GrantKind {
	var cleared []GrantKind

	if a.CustomTitle != "" && a.CustomTitleExpiry != nil && !now.Before(*a.CustomTitleExpiry) {
		a.CustomTitle = ""
		a.CustomTitleExpiry = nil
		cleared = append(cleared, GrantTitle)
	}

	if a.VIP && a.VIPExpiry != nil && !now.Before(*a.VIPExpiry) {
		a.VIP = false
		a.VIPExpiry = nil
		cleared = append(cleared, GrantVIP)
	}

	if a.Boost && a.BoostExpiry != nil && !now.Before(*a.BoostExpiry) {
		a.Boost = false
		a.BoostExpiry = nil
		cleared = append(cleared, GrantBoost)
	}

	if len(cleared) > 0 {
		a.touch()
	}
	return cleared
}

// HasExpiredGrants проверяет, есть ли что чистить на момент now.
func (a *Account) HasExpiredGrants(now time.Time) bool {
	if a.CustomTitle != "" && a.CustomTitleExpiry != nil && !now.Before(*a.CustomTitleExpiry) {
		return true
	}
	if a.VIP && a.VIPExpiry != nil && !now.Before(*a.VIPExpiry) {
		return true
	}
	if a.Boost && a.BoostExpiry != nil && !now.Before(*a.BoostExpiry) {
		return true
	}
	return false
}

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENTS
// ══════════════════════════════════════════════════════════════════════════════

// HasAchievement проверяет наличие ачивки.
func (a *Account) HasAchievement(id string) bool {
	for _, got := range a.Achievements {
		if got == id {
			return true
		}
	}
	return false
}

// GrantAchievement добавляет ачивку. Повторное добавление - no-op:
// ачивка выдаётся ровно один раз и никогда не отзывается.
func (a *Account) GrantAchievement(id string) bool {
	if id == "" || a.HasAchievement(id) {
		return false
	}

	a.Achievements = append(a.Achievements, id)
	a.touch()
	return true
}

// ══════════════════════════════════════════════════════════════════════════════
// PRESENTATION
// ══════════════════════════════════════════════════════════════════════════════

// DisplayName возвращает имя с бейджами: титул, звёзды престижа, корона VIP.
// Привилегии читаются лениво относительно now.
func (a *Account) DisplayName(now time.Time) string {
	name := a.FirstName

	if title, ok := a.TitleActiveAt(now); ok {
		name = fmt.Sprintf("%s [%s]", name, title)
	}
	if a.Prestige > 0 {
		name += " " + strings.Repeat("🌟", a.Prestige)
	}
	if a.VIPActiveAt(now) {
		name += " 👑"
	}
	return name
}

// UpdateIdentity обновляет изменяемые поля, приходящие из Telegram.
func (a *Account) UpdateIdentity(username, firstName string) {
	changed := false
	if username != "" && username != a.Username {
		a.Username = username
		changed = true
	}
	if firstName = strings.TrimSpace(firstName); firstName != "" && firstName != a.FirstName {
		a.FirstName = firstName
		changed = true
	}
	if changed {
		a.touch()
	}
}

// String возвращает строковое представление аккаунта для логирования.
func (a *Account) String() string {
	return fmt.Sprintf(
		"Account{ID: %s, TelegramID: %d, XP: %d, Level: %d, Coins: %d, Prestige: %d}",
		a.ID, a.TelegramID, a.XP, a.Level, a.Coins, a.Prestige,
	)
}

// Clone создаёт глубокую копию аккаунта.
func (a *Account) Clone() *Account {
	if a == nil {
		return nil
	}

	clone := *a
	clone.Achievements = append([]string(nil), a.Achievements...)
	if a.LastDailyAt != nil {
		t := *a.LastDailyAt
		clone.LastDailyAt = &t
	}
	if a.CustomTitleExpiry != nil {
		t := *a.CustomTitleExpiry
		clone.CustomTitleExpiry = &t
	}
	if a.VIPExpiry != nil {
		t := *a.VIPExpiry
		clone.VIPExpiry = &t
	}
	if a.BoostExpiry != nil {
		t := *a.BoostExpiry
		clone.BoostExpiry = &t
	}
	return &clone
}

// touch обновляет метку времени последнего изменения.
func (a *Account) touch() {
	a.UpdatedAt = time.Now().UTC()
}
