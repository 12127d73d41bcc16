// Package shared contains common domain types, errors, and events that are
// used across all domain packages.
package shared

import (
	"encoding/json"
	"time"
)

// EventType represents the type of domain event.
type EventType string

// Domain event types - these drive the event-driven architecture.
// Each event represents something significant that happened in the domain.
const (
	// Account events
	EventAccountCreated EventType = "account.created"
	EventAccountUpdated EventType = "account.updated"

	// Progression events
	EventXPGained      EventType = "progression.xp_gained"
	EventLevelUp       EventType = "progression.level_up"
	EventStreakUpdated EventType = "progression.streak_updated"
	EventStreakBroken  EventType = "progression.streak_broken"
	EventPrestigeTaken EventType = "progression.prestige_taken"

	// Economy events
	EventCoinsEarned   EventType = "economy.coins_earned"
	EventItemPurchased EventType = "economy.item_purchased"
	EventDailyClaimed  EventType = "economy.daily_claimed"

	// Achievement events
	EventAchievementUnlocked EventType = "achievement.unlocked"

	// Social events
	EventReputationGiven EventType = "social.reputation_given"
	EventSpotlightChosen EventType = "social.spotlight_chosen"

	// Grant events
	EventGrantExpired EventType = "grant.expired"

	// System events
	EventSweepCompleted EventType = "system.sweep_completed"
)

// Event is the base interface for all domain events.
type Event interface {
	// EventType returns the type of the event.
	EventType() EventType

	// OccurredAt returns when the event occurred.
	OccurredAt() time.Time

	// AggregateID returns the ID of the aggregate that produced this event.
	AggregateID() string

	// Payload returns the event data as a map for serialization.
	Payload() map[string]interface{}
}

// BaseEvent provides common event functionality.
type BaseEvent struct {
	Type          EventType `json:"type"`
	Timestamp     time.Time `json:"timestamp"`
	AggregateId   string    `json:"aggregate_id"`
	Version       int       `json:"version"`
	CorrelationID string    `json:"correlation_id,omitempty"`
}

// EventType implements Event interface.
func (e BaseEvent) EventType() EventType {
	return e.Type
}

// OccurredAt implements Event interface.
func (e BaseEvent) OccurredAt() time.Time {
	return e.Timestamp
}

// Payload implements Event interface. Typed events override it.
func (e BaseEvent) Payload() map[string]interface{} {
	return map[string]interface{}{}
}

// AggregateID implements Event interface.
func (e BaseEvent) AggregateID() string {
	return e.AggregateId
}

// NewBaseEvent creates a new base event.
func NewBaseEvent(eventType EventType, aggregateID string) BaseEvent {
	return BaseEvent{
		Type:        eventType,
		Timestamp:   time.Now().UTC(),
		AggregateId: aggregateID,
		Version:     1,
	}
}

// WithCorrelationID sets the correlation ID for tracing.
func (e BaseEvent) WithCorrelationID(id string) BaseEvent {
	e.CorrelationID = id
	return e
}

// ═══════════════════════════════════════════════════════════════════════════
// Progression Events
// ═══════════════════════════════════════════════════════════════════════════

// LevelUpEvent is emitted when an account crosses a level threshold.
type LevelUpEvent struct {
	BaseEvent
	TelegramID int64 `json:"telegram_id"`
	FromLevel  int   `json:"from_level"`
	ToLevel    int   `json:"to_level"`
	BonusCoins int   `json:"bonus_coins"`
}

// Payload implements Event interface.
func (e LevelUpEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"from_level":  e.FromLevel,
		"to_level":    e.ToLevel,
		"bonus_coins": e.BonusCoins,
	}
}

// NewLevelUpEvent creates a new LevelUpEvent.
func NewLevelUpEvent(accountID string, telegramID int64, fromLevel, toLevel, bonusCoins int) LevelUpEvent {
	return LevelUpEvent{
		BaseEvent:  NewBaseEvent(EventLevelUp, accountID),
		TelegramID: telegramID,
		FromLevel:  fromLevel,
		ToLevel:    toLevel,
		BonusCoins: bonusCoins,
	}
}

// PrestigeTakenEvent is emitted when an account takes prestige.
type PrestigeTakenEvent struct {
	BaseEvent
	TelegramID    int64 `json:"telegram_id"`
	PrestigeCount int   `json:"prestige_count"`
	BonusCoins    int   `json:"bonus_coins"`
}

// Payload implements Event interface.
func (e PrestigeTakenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id":    e.TelegramID,
		"prestige_count": e.PrestigeCount,
		"bonus_coins":    e.BonusCoins,
	}
}

// NewPrestigeTakenEvent creates a new PrestigeTakenEvent.
func NewPrestigeTakenEvent(accountID string, telegramID int64, prestigeCount, bonusCoins int) PrestigeTakenEvent {
	return PrestigeTakenEvent{
		BaseEvent:     NewBaseEvent(EventPrestigeTaken, accountID),
		TelegramID:    telegramID,
		PrestigeCount: prestigeCount,
		BonusCoins:    bonusCoins,
	}
}

// StreakBrokenEvent is emitted when a daily streak resets.
type StreakBrokenEvent struct {
	BaseEvent
	TelegramID     int64 `json:"telegram_id"`
	PreviousStreak int   `json:"previous_streak"`
}

// Payload implements Event interface.
func (e StreakBrokenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id":     e.TelegramID,
		"previous_streak": e.PreviousStreak,
	}
}

// NewStreakBrokenEvent creates a new StreakBrokenEvent.
func NewStreakBrokenEvent(accountID string, telegramID int64, previousStreak int) StreakBrokenEvent {
	return StreakBrokenEvent{
		BaseEvent:      NewBaseEvent(EventStreakBroken, accountID),
		TelegramID:     telegramID,
		PreviousStreak: previousStreak,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Economy Events
// ═══════════════════════════════════════════════════════════════════════════

// ItemPurchasedEvent is emitted when a shop purchase succeeds.
type ItemPurchasedEvent struct {
	BaseEvent
	TelegramID int64  `json:"telegram_id"`
	ItemID     string `json:"item_id"`
	Price      int    `json:"price"`
	NewBalance int    `json:"new_balance"`
}

// Payload implements Event interface.
func (e ItemPurchasedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"item_id":     e.ItemID,
		"price":       e.Price,
		"new_balance": e.NewBalance,
	}
}

// NewItemPurchasedEvent creates a new ItemPurchasedEvent.
func NewItemPurchasedEvent(accountID string, telegramID int64, itemID string, price, newBalance int) ItemPurchasedEvent {
	return ItemPurchasedEvent{
		BaseEvent:  NewBaseEvent(EventItemPurchased, accountID),
		TelegramID: telegramID,
		ItemID:     itemID,
		Price:      price,
		NewBalance: newBalance,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Achievement Events
// ═══════════════════════════════════════════════════════════════════════════

// AchievementUnlockedEvent is emitted when an account earns an achievement.
type AchievementUnlockedEvent struct {
	BaseEvent
	TelegramID    int64  `json:"telegram_id"`
	AchievementID string `json:"achievement_id"`
	RewardCoins   int    `json:"reward_coins"`
}

// Payload implements Event interface.
func (e AchievementUnlockedEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id":    e.TelegramID,
		"achievement_id": e.AchievementID,
		"reward_coins":   e.RewardCoins,
	}
}

// NewAchievementUnlockedEvent creates a new AchievementUnlockedEvent.
func NewAchievementUnlockedEvent(accountID string, telegramID int64, achievementID string, rewardCoins int) AchievementUnlockedEvent {
	return AchievementUnlockedEvent{
		BaseEvent:     NewBaseEvent(EventAchievementUnlocked, accountID),
		TelegramID:    telegramID,
		AchievementID: achievementID,
		RewardCoins:   rewardCoins,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Grant / System Events
// ═══════════════════════════════════════════════════════════════════════════

// GrantExpiredEvent is emitted when the sweep clears an expired grant.
type GrantExpiredEvent struct {
	BaseEvent
	TelegramID int64     `json:"telegram_id"`
	GrantKind  string    `json:"grant_kind"` // "title", "vip", "boost"
	ExpiredAt  time.Time `json:"expired_at"`
}

// Payload implements Event interface.
func (e GrantExpiredEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id": e.TelegramID,
		"grant_kind":  e.GrantKind,
		"expired_at":  e.ExpiredAt.Format(time.RFC3339),
	}
}

// NewGrantExpiredEvent creates a new GrantExpiredEvent.
func NewGrantExpiredEvent(accountID string, telegramID int64, grantKind string, expiredAt time.Time) GrantExpiredEvent {
	return GrantExpiredEvent{
		BaseEvent:  NewBaseEvent(EventGrantExpired, accountID),
		TelegramID: telegramID,
		GrantKind:  grantKind,
		ExpiredAt:  expiredAt,
	}
}

// SpotlightChosenEvent is emitted when the daily spotlight draw picks a winner.
type SpotlightChosenEvent struct {
	BaseEvent
	TelegramID  int64  `json:"telegram_id"`
	DisplayName string `json:"display_name"`
	Priority    bool   `json:"priority"`
}

// Payload implements Event interface.
func (e SpotlightChosenEvent) Payload() map[string]interface{} {
	return map[string]interface{}{
		"telegram_id":  e.TelegramID,
		"display_name": e.DisplayName,
		"priority":     e.Priority,
	}
}

// NewSpotlightChosenEvent creates a new SpotlightChosenEvent.
func NewSpotlightChosenEvent(accountID string, telegramID int64, displayName string, priority bool) SpotlightChosenEvent {
	return SpotlightChosenEvent{
		BaseEvent:   NewBaseEvent(EventSpotlightChosen, accountID),
		TelegramID:  telegramID,
		DisplayName: displayName,
		Priority:    priority,
	}
}

// ═══════════════════════════════════════════════════════════════════════════
// Event Envelope (for serialization and transport)
// ═══════════════════════════════════════════════════════════════════════════

// EventEnvelope wraps an event for transport/storage.
type EventEnvelope struct {
	ID            string          `json:"id"`
	Type          EventType       `json:"type"`
	AggregateID   string          `json:"aggregate_id"`
	Timestamp     time.Time       `json:"timestamp"`
	Version       int             `json:"version"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

// EventHandler is a function that handles an event.
type EventHandler func(event Event) error

// EventPublisher defines the interface for publishing events.
type EventPublisher interface {
	// Publish sends an event to subscribers.
	Publish(event Event) error
}

// EventSubscriber defines the interface for subscribing to events.
type EventSubscriber interface {
	// Subscribe registers a handler for an event type.
	Subscribe(eventType EventType, handler EventHandler) error

	// SubscribeAll registers a handler for all events.
	SubscribeAll(handler EventHandler) error
}

// EventBus combines publishing and subscribing.
type EventBus interface {
	EventPublisher
	EventSubscriber
}
