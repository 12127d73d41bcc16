package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIntervalSchedule_Next(t *testing.T) {
	s := NewIntervalSchedule(5 * time.Minute)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, base.Add(5*time.Minute), s.Next(base))
	assert.Equal(t, "@every 5m0s", s.String())
}

func TestDailyAtSchedule_Next(t *testing.T) {
	s := NewDailyAtSchedule(12, 0)

	morning := time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC), s.Next(morning))

	// Ровно в момент запуска переносим на завтра, иначе двойной выбор дня.
	atNoon := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), s.Next(atNoon))

	evening := time.Date(2026, 3, 1, 18, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC), s.Next(evening))
}

func TestParseCronSchedule_EveryFiveMinutes(t *testing.T) {
	cs, err := ParseCronSchedule("*/5 * * * *")
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 12, 3, 20, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC), cs.Next(base))

	onBoundary := time.Date(2026, 3, 1, 12, 5, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 12, 10, 0, 0, time.UTC), cs.Next(onBoundary))
}

func TestParseCronSchedule_DailyAtNine(t *testing.T) {
	cs, err := ParseCronSchedule("0 9 * * *")
	require.NoError(t, err)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), cs.Next(base))
}

func TestParseCronSchedule_SundayMidnight(t *testing.T) {
	cs, err := ParseCronSchedule("0 0 * * 0")
	require.NoError(t, err)

	// 1 марта 2026 - воскресенье.
	saturday := time.Date(2026, 2, 28, 15, 0, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), cs.Next(saturday))
}

func TestParseCronSchedule_ListsAndRanges(t *testing.T) {
	cs, err := ParseCronSchedule("0,30 9-17 * * 1-5")
	require.NoError(t, err)

	// Пятница 17:30 -> понедельник 09:00.
	friday := time.Date(2026, 3, 6, 17, 30, 0, 0, time.UTC)
	assert.Equal(t, time.Date(2026, 3, 9, 9, 0, 0, 0, time.UTC), cs.Next(friday))
}

func TestParseCronSchedule_Invalid(t *testing.T) {
	cases := []string{
		"* * * *",
		"60 * * * *",
		"* 24 * * *",
		"*/0 * * * *",
		"abc * * * *",
	}
	for _, expr := range cases {
		_, err := ParseCronSchedule(expr)
		assert.Error(t, err, expr)
	}
}
