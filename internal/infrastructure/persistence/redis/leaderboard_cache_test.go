package redis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/promohub/levelup-hub/internal/domain/account"
)

func TestCompositeScore_Ordering(t *testing.T) {
	// Престиж перевешивает любой уровень, уровень перевешивает любой опыт.
	prestiged := account.RankedEntry{Prestige: 1, Level: 0, XP: 0}
	grinder := account.RankedEntry{Prestige: 0, Level: 100, XP: 67250}
	assert.Greater(t, compositeScore(prestiged), compositeScore(grinder))

	higherLevel := account.RankedEntry{Prestige: 2, Level: 51, XP: 0}
	richerXP := account.RankedEntry{Prestige: 2, Level: 50, XP: 999999}
	assert.Greater(t, compositeScore(higherLevel), compositeScore(richerXP))

	// При равных престиже и уровне решает опыт.
	a := account.RankedEntry{Prestige: 3, Level: 40, XP: 5000}
	b := account.RankedEntry{Prestige: 3, Level: 40, XP: 4999}
	assert.Greater(t, compositeScore(a), compositeScore(b))
}

func TestCompositeScore_ExactAtScale(t *testing.T) {
	// Составной score должен оставаться точным целым в float64.
	e := account.RankedEntry{Prestige: 500, Level: 999, XP: 999999}
	s := compositeScore(e)
	assert.Equal(t, float64(500)*1e12+float64(999)*1e6+999999, s)
	assert.Equal(t, s, float64(int64(s)))
}
