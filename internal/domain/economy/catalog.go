// Package economy contains the HubCoins shop: the closed set of purchasable
// items and the effect each purchase applies to an account.
//
// The catalog is a dispatch table built once at startup. Item kinds are a
// closed enumeration, so an unknown id fails fast instead of leaking string
// comparisons through control flow.
package economy

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// ITEM KINDS
// ══════════════════════════════════════════════════════════════════════════════

// ItemKind identifies a purchasable item.
type ItemKind string

const (
	// ItemCustomTitle - a custom title rendered next to the display name.
	ItemCustomTitle ItemKind = "custom-title"

	// ItemXPBoost - doubles XP gains for a limited time.
	ItemXPBoost ItemKind = "xp-boost"

	// ItemSpotlightPriority - priority in the next daily spotlight draw.
	// One-shot: consumed by the draw, never time-expired.
	ItemSpotlightPriority ItemKind = "spotlight-priority"

	// ItemVIPMembership - doubles HubCoins gains and adds the crown badge.
	ItemVIPMembership ItemKind = "vip-membership"

	// ItemMysteryBox - a bundle of independent random rewards.
	ItemMysteryBox ItemKind = "mystery-box"
)

// ══════════════════════════════════════════════════════════════════════════════
// ERRORS
// ══════════════════════════════════════════════════════════════════════════════

var (
	// ErrUnknownItem - the item id is not in the catalog.
	ErrUnknownItem = errors.New("economy: unknown item")

	// ErrTitleRequired - a custom-title purchase needs the title option.
	ErrTitleRequired = errors.New("economy: title option is required")

	// ErrTitleTooLong - the requested title exceeds the length limit.
	ErrTitleTooLong = errors.New("economy: title too long")

	// ErrTitleForbidden - the requested title contains a forbidden word.
	ErrTitleForbidden = errors.New("economy: title contains a forbidden word")
)

// forbiddenTitleWords are rejected as case-insensitive substrings so a
// bought title cannot impersonate group staff.
var forbiddenTitleWords = []string{"admin", "moder", "owner", "staff", "telegram"}

// ══════════════════════════════════════════════════════════════════════════════
// CATALOG CONFIGURATION
// Prices and durations are configuration, not structure.
// ══════════════════════════════════════════════════════════════════════════════

// CatalogConfig holds the tunable prices and grant durations.
type CatalogConfig struct {
	TitlePrice    int
	TitleDuration time.Duration

	BoostPrice    int
	BoostDuration time.Duration

	SpotlightPrice int

	VIPPrice    int
	VIPDuration time.Duration

	MysteryBoxPrice int
	MysteryBox      MysteryBoxConfig
}

// DefaultCatalogConfig returns the production price list.
func DefaultCatalogConfig() CatalogConfig {
	return CatalogConfig{
		TitlePrice:    1000,
		TitleDuration: 7 * 24 * time.Hour,

		BoostPrice:    500,
		BoostDuration: 24 * time.Hour,

		SpotlightPrice: 2500,

		VIPPrice:    10000,
		VIPDuration: 30 * 24 * time.Hour,

		MysteryBoxPrice: 1000,
		MysteryBox:      DefaultMysteryBoxConfig(),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ITEMS & DISPATCH TABLE
// ══════════════════════════════════════════════════════════════════════════════

// PurchaseOptions carries per-item purchase parameters.
type PurchaseOptions struct {
	// Title - requested title text, only for ItemCustomTitle.
	Title string
}

// Effect describes what a purchase actually granted. The presenter turns
// Lines into the confirmation message.
type Effect struct {
	// Lines - one human-readable line per granted reward.
	Lines []string

	// CoinsWon / XPWon / ReputationWon - mystery box winnings.
	CoinsWon      int
	XPWon         int
	ReputationWon int

	// BoostWon - mystery box granted a temporary boost.
	BoostWon bool

	// Consolation - all mystery box draws missed, the guaranteed
	// minimum was paid out instead.
	Consolation bool
}

// applyFn mutates the account in place. It runs inside the ledger's
// atomic mutation, after the price has been debited; returning an error
// discards the whole mutation including the debit.
type applyFn func(acc *account.Account, now time.Time, opts PurchaseOptions, rng Rand) (*Effect, error)

// Item is one catalog entry.
type Item struct {
	Kind        ItemKind
	Name        string
	Emoji       string
	Description string
	Price       int

	validate func(opts PurchaseOptions) error
	apply    applyFn
}

// Catalog is the fixed item dispatch table.
type Catalog struct {
	cfg   CatalogConfig
	items map[ItemKind]*Item
	order []ItemKind
}

// NewCatalog builds the dispatch table once.
func NewCatalog(cfg CatalogConfig) *Catalog {
	c := &Catalog{
		cfg:   cfg,
		items: make(map[ItemKind]*Item),
	}

	c.register(&Item{
		Kind:        ItemCustomTitle,
		Name:        "Custom Title",
		Emoji:       "🏷",
		Description: fmt.Sprintf("A title of your choice next to your name for %d days.", int(cfg.TitleDuration.Hours()/24)),
		Price:       cfg.TitlePrice,
		validate:    validateTitleOption,
		apply: func(acc *account.Account, now time.Time, opts PurchaseOptions, _ Rand) (*Effect, error) {
			if err := acc.SetTitle(opts.Title, now.Add(cfg.TitleDuration)); err != nil {
				return nil, err
			}
			return &Effect{Lines: []string{fmt.Sprintf("Title [%s] is yours for %d days.", strings.TrimSpace(opts.Title), int(cfg.TitleDuration.Hours()/24))}}, nil
		},
	})

	c.register(&Item{
		Kind:        ItemXPBoost,
		Name:        "XP Boost",
		Emoji:       "⚡",
		Description: fmt.Sprintf("Double XP from every message for %d hours.", int(cfg.BoostDuration.Hours())),
		Price:       cfg.BoostPrice,
		apply: func(acc *account.Account, now time.Time, _ PurchaseOptions, _ Rand) (*Effect, error) {
			acc.GrantBoostUntil(now.Add(cfg.BoostDuration))
			return &Effect{Lines: []string{fmt.Sprintf("Double XP for the next %d hours.", int(cfg.BoostDuration.Hours()))}}, nil
		},
	})

	c.register(&Item{
		Kind:        ItemSpotlightPriority,
		Name:        "Spotlight Priority",
		Emoji:       "🔦",
		Description: "Guaranteed priority in the next daily spotlight draw.",
		Price:       cfg.SpotlightPrice,
		apply: func(acc *account.Account, _ time.Time, _ PurchaseOptions, _ Rand) (*Effect, error) {
			acc.MarkSpotlightPriority()
			return &Effect{Lines: []string{"You are first in line for the next spotlight."}}, nil
		},
	})

	c.register(&Item{
		Kind:        ItemVIPMembership,
		Name:        "VIP Membership",
		Emoji:       "👑",
		Description: fmt.Sprintf("Double HubCoins and the crown badge for %d days.", int(cfg.VIPDuration.Hours()/24)),
		Price:       cfg.VIPPrice,
		apply: func(acc *account.Account, now time.Time, _ PurchaseOptions, _ Rand) (*Effect, error) {
			acc.GrantVIPUntil(now.Add(cfg.VIPDuration))
			return &Effect{Lines: []string{fmt.Sprintf("Welcome to the VIP club for %d days.", int(cfg.VIPDuration.Hours()/24))}}, nil
		},
	})

	c.register(&Item{
		Kind:        ItemMysteryBox,
		Name:        "Mystery Box",
		Emoji:       "🎁",
		Description: "A box of random rewards. Never empty.",
		Price:       cfg.MysteryBoxPrice,
		apply: func(acc *account.Account, now time.Time, _ PurchaseOptions, rng Rand) (*Effect, error) {
			return openMysteryBox(acc, now, cfg.MysteryBox, rng)
		},
	})

	return c
}

func (c *Catalog) register(item *Item) {
	c.items[item.Kind] = item
	c.order = append(c.order, item.Kind)
}

// Lookup returns the item by id. Unknown ids fail with ErrUnknownItem.
func (c *Catalog) Lookup(kind ItemKind) (*Item, error) {
	item, ok := c.items[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownItem, kind)
	}
	return item, nil
}

// Items returns all items in stable registration order, for the shop view.
func (c *Catalog) Items() []*Item {
	out := make([]*Item, 0, len(c.order))
	for _, kind := range c.order {
		out = append(out, c.items[kind])
	}
	return out
}

// Validate checks per-item purchase options before any mutation.
func (i *Item) Validate(opts PurchaseOptions) error {
	if i.validate == nil {
		return nil
	}
	return i.validate(opts)
}

// Apply executes the item's effect against the account. Must only be
// called inside a ledger mutation, after the price debit.
func (i *Item) Apply(acc *account.Account, now time.Time, opts PurchaseOptions, rng Rand) (*Effect, error) {
	return i.apply(acc, now, opts, rng)
}

func validateTitleOption(opts PurchaseOptions) error {
	title := strings.TrimSpace(opts.Title)
	if title == "" {
		return ErrTitleRequired
	}
	if len([]rune(title)) > account.MaxTitleLength {
		return fmt.Errorf("%w: max %d chars", ErrTitleTooLong, account.MaxTitleLength)
	}

	lower := strings.ToLower(title)
	for _, word := range forbiddenTitleWords {
		if strings.Contains(lower, word) {
			return fmt.Errorf("%w: %q", ErrTitleForbidden, word)
		}
	}
	return nil
}
