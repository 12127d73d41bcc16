// Package achievement contains the one-time reward catalog and its
// evaluator. Every achievement is granted exactly once and never revoked.
package achievement

import (
	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// ACHIEVEMENT IDS
// Stable identifiers, persisted in the account's achievement set.
// ══════════════════════════════════════════════════════════════════════════════

const (
	FirstMessage  = "first_message"
	Messages100   = "messages_100"
	Messages1000  = "messages_1000"
	Messages10000 = "messages_10000"

	Level10  = "level_10"
	Level50  = "level_50"
	Level100 = "level_100"

	Streak7   = "streak_7"
	Streak30  = "streak_30"
	Streak100 = "streak_100"

	Rich          = "rich"
	VIPMember     = "vip_member"
	FirstPrestige = "first_prestige"
)

// Definition is one catalog entry: a predicate over the account plus a
// HubCoins reward paid on unlock.
type Definition struct {
	ID          string
	Name        string
	Emoji       string
	Description string
	Reward      int

	// Predicate reads the account snapshot only; it must not mutate.
	Predicate func(a *account.Account) bool
}

// Catalog is the fixed evaluation table. Order is the order definitions
// are checked and reported in, so milestone chains unlock low to high.
type Catalog struct {
	defs []Definition
}

// NewCatalog builds the production achievement table.
func NewCatalog() *Catalog {
	return &Catalog{defs: []Definition{
		{
			ID: FirstMessage, Name: "First Words", Emoji: "💬",
			Description: "Send your first message.", Reward: 10,
			Predicate:   func(a *account.Account) bool { return a.MessageCount >= 1 },
		},
		{
			ID: Messages100, Name: "Chatterbox", Emoji: "🗣",
			Description: "Send 100 messages.", Reward: 100,
			Predicate:   func(a *account.Account) bool { return a.MessageCount >= 100 },
		},
		{
			ID: Messages1000, Name: "Town Crier", Emoji: "📣",
			Description: "Send 1,000 messages.", Reward: 500,
			Predicate:   func(a *account.Account) bool { return a.MessageCount >= 1000 },
		},
		{
			ID: Messages10000, Name: "Voice of the Hub", Emoji: "🎙",
			Description: "Send 10,000 messages.", Reward: 2000,
			Predicate:   func(a *account.Account) bool { return a.MessageCount >= 10000 },
		},
		{
			ID: Level10, Name: "Getting Serious", Emoji: "🔟",
			Description: "Reach level 10.", Reward: 100,
			Predicate:   func(a *account.Account) bool { return a.Level >= 10 },
		},
		{
			ID: Level50, Name: "Halfway to Glory", Emoji: "⭐",
			Description: "Reach level 50.", Reward: 500,
			Predicate:   func(a *account.Account) bool { return a.Level >= 50 },
		},
		{
			ID: Level100, Name: "Centurion", Emoji: "💯",
			Description: "Reach level 100.", Reward: 2000,
			Predicate:   func(a *account.Account) bool { return a.Level >= 100 },
		},
		{
			ID: Streak7, Name: "One Week Strong", Emoji: "🔥",
			Description: "Claim the daily bonus 7 days in a row.", Reward: 150,
			Predicate:   func(a *account.Account) bool { return a.DailyStreak >= 7 },
		},
		{
			ID: Streak30, Name: "Month of Fire", Emoji: "🌋",
			Description: "Claim the daily bonus 30 days in a row.", Reward: 750,
			Predicate:   func(a *account.Account) bool { return a.DailyStreak >= 30 },
		},
		{
			ID: Streak100, Name: "Unstoppable", Emoji: "☄️",
			Description: "Claim the daily bonus 100 days in a row.", Reward: 3000,
			Predicate:   func(a *account.Account) bool { return a.DailyStreak >= 100 },
		},
		{
			ID: Rich, Name: "HubCoin Magnate", Emoji: "💰",
			Description: "Hold 10,000 HubCoins at once.", Reward: 500,
			Predicate:   func(a *account.Account) bool { return a.Coins >= 10000 },
		},
		{
			ID: VIPMember, Name: "Inner Circle", Emoji: "👑",
			Description: "Buy the VIP membership.", Reward: 1000,
			Predicate:   func(a *account.Account) bool { return a.VIP },
		},
		{
			ID: FirstPrestige, Name: "Born Again", Emoji: "🌟",
			Description: "Take your first prestige.", Reward: 5000,
			Predicate:   func(a *account.Account) bool { return a.Prestige >= 1 },
		},
	}}
}

// Definitions returns all catalog entries in evaluation order.
func (c *Catalog) Definitions() []Definition {
	return c.defs
}

// Lookup returns the definition by id.
func (c *Catalog) Lookup(id string) (Definition, bool) {
	for _, def := range c.defs {
		if def.ID == id {
			return def, true
		}
	}
	return Definition{}, false
}

// Evaluate checks every definition against the account and grants the
// ones that newly qualify, crediting their rewards. Runs inside the
// same ledger mutation as the change that triggered it, so rewards
// commit together with the trigger or not at all.
//
// Idempotent: achievements already held are skipped, a second call with
// the same state grants nothing.
func (c *Catalog) Evaluate(acc *account.Account) ([]Definition, error) {
	var granted []Definition

	for _, def := range c.defs {
		if acc.HasAchievement(def.ID) || !def.Predicate(acc) {
			continue
		}

		acc.GrantAchievement(def.ID)
		if err := acc.Credit(def.Reward); err != nil {
			return nil, err
		}
		granted = append(granted, def)
	}
	return granted, nil
}
