package economy

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

// ══════════════════════════════════════════════════════════════════════════════
// MYSTERY BOX
// Each reward is an independent weighted draw. If every draw misses,
// a guaranteed consolation payout makes sure the box is never empty.
// ══════════════════════════════════════════════════════════════════════════════

// Rand is the randomness source for box draws. *math/rand.Rand satisfies
// it; tests inject a deterministic implementation.
type Rand interface {
	Float64() float64
	Intn(n int) int
}

// NewRand returns a production randomness source.
func NewRand() Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

// MysteryBoxConfig holds the draw probabilities and magnitudes.
type MysteryBoxConfig struct {
	// CoinChance with a payout drawn from the fixed CoinAmounts set.
	CoinChance  float64
	CoinAmounts []int

	// XPChance with a payout drawn uniformly from [XPMin, XPMax].
	XPChance float64
	XPMin    int
	XPMax    int

	// BoostChance grants a temporary XP boost of BoostDuration.
	BoostChance   float64
	BoostDuration time.Duration

	// ReputationChance grants ReputationAmount reputation points.
	ReputationChance float64
	ReputationAmount int

	// ConsolationCoins is paid out when all draws miss.
	ConsolationCoins int
}

// DefaultMysteryBoxConfig returns the production draw table.
func DefaultMysteryBoxConfig() MysteryBoxConfig {
	return MysteryBoxConfig{
		CoinChance:  0.7,
		CoinAmounts: []int{50, 100, 250, 500},

		XPChance: 0.5,
		XPMin:    25,
		XPMax:    100,

		BoostChance:   0.2,
		BoostDuration: 6 * time.Hour,

		ReputationChance: 0.3,
		ReputationAmount: 1,

		ConsolationCoins: 25,
	}
}

// openMysteryBox runs the four independent draws against the account.
func openMysteryBox(acc *account.Account, now time.Time, cfg MysteryBoxConfig, rng Rand) (*Effect, error) {
	effect := &Effect{}

	if rng.Float64() < cfg.CoinChance {
		amount := cfg.CoinAmounts[rng.Intn(len(cfg.CoinAmounts))]
		if err := acc.Credit(amount); err != nil {
			return nil, err
		}
		effect.CoinsWon = amount
		effect.Lines = append(effect.Lines, fmt.Sprintf("💰 %d HubCoins", amount))
	}

	if rng.Float64() < cfg.XPChance {
		amount := cfg.XPMin + rng.Intn(cfg.XPMax-cfg.XPMin+1)
		if _, _, err := acc.AddExperience(amount); err != nil {
			return nil, err
		}
		effect.XPWon = amount
		effect.Lines = append(effect.Lines, fmt.Sprintf("✨ %d XP", amount))
	}

	if rng.Float64() < cfg.BoostChance {
		acc.GrantBoostUntil(now.Add(cfg.BoostDuration))
		effect.BoostWon = true
		effect.Lines = append(effect.Lines, fmt.Sprintf("⚡ Double XP for %d hours", int(cfg.BoostDuration.Hours())))
	}

	if rng.Float64() < cfg.ReputationChance {
		acc.AwardReputation(cfg.ReputationAmount)
		effect.ReputationWon = cfg.ReputationAmount
		effect.Lines = append(effect.Lines, fmt.Sprintf("🤝 +%d reputation", cfg.ReputationAmount))
	}

	if len(effect.Lines) == 0 {
		if err := acc.Credit(cfg.ConsolationCoins); err != nil {
			return nil, err
		}
		effect.CoinsWon = cfg.ConsolationCoins
		effect.Consolation = true
		effect.Lines = append(effect.Lines, fmt.Sprintf("🪙 %d HubCoins (better luck next time)", cfg.ConsolationCoins))
	}

	return effect, nil
}
