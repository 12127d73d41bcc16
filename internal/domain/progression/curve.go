// Package progression содержит кривую прокачки LevelUp Hub.
// Это чистая доменная логика - здесь нет внешних зависимостей.
//
// Кривая многоуровневая: ранние уровни дешёвые, чтобы новичок быстро
// почувствовал прогресс, поздние - дорогие, чтобы ветеранам было
// к чему стремиться.
package progression

import (
	"errors"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFERENCE CURVE
// ══════════════════════════════════════════════════════════════════════════════

// Стоимость одного уровня в XP по ярусам. Исторически кривая считалась
// в сообщениях (10/25/50/100 сообщений за уровень при ~10 XP за сообщение);
// здесь единица измерения - только XP, сообщениями кривая не оперирует.
const (
	// TierOneMax - последний уровень первого яруса.
	TierOneMax = 10
	// TierTwoMax - последний уровень второго яруса.
	TierTwoMax = 25
	// TierThreeMax - последний уровень третьего яруса.
	TierThreeMax = 50

	// CostTierOne - XP за уровень на ярусе 1..10.
	CostTierOne = 100
	// CostTierTwo - XP за уровень на ярусе 11..25.
	CostTierTwo = 250
	// CostTierThree - XP за уровень на ярусе 26..50.
	CostTierThree = 500
	// CostTierFour - XP за уровень начиная с 51-го.
	CostTierFour = 1000
)

// Накопленные пороги на границах ярусов. Вычисляются один раз,
// чтобы ThresholdFor и LevelFor оставались чистой целочисленной арифметикой.
const (
	tierOneTotal   = TierOneMax * CostTierOne                             // 1000
	tierTwoTotal   = tierOneTotal + (TierTwoMax-TierOneMax)*CostTierTwo   // 4750
	tierThreeTotal = tierTwoTotal + (TierThreeMax-TierTwoMax)*CostTierThree // 17250
)

// ErrNegativeExperience - отрицательный XP невалиден; вызывающая сторона
// обязана отклонить его, а не молча обрезать до нуля.
var ErrNegativeExperience = errors.New("progression: experience cannot be negative")

// ══════════════════════════════════════════════════════════════════════════════
// CURVE
// ══════════════════════════════════════════════════════════════════════════════

// ThresholdFor возвращает минимальный накопленный XP, необходимый для
// владения уровнем level. ThresholdFor(0) == 0; функция строго возрастает
// по level.
func ThresholdFor(level int) int {
	switch {
	case level <= 0:
		return 0
	case level <= TierOneMax:
		return level * CostTierOne
	case level <= TierTwoMax:
		return tierOneTotal + (level-TierOneMax)*CostTierTwo
	case level <= TierThreeMax:
		return tierTwoTotal + (level-TierTwoMax)*CostTierThree
	default:
		return tierThreeTotal + (level-TierThreeMax)*CostTierFour
	}
}

// LevelFor возвращает наибольший уровень L такой, что ThresholdFor(L) <= xp.
// Обратная функция к ThresholdFor, замкнутая форма по ярусам - без
// итеративного перебора и без потери точности.
func LevelFor(xp int) (int, error) {
	if xp < 0 {
		return 0, ErrNegativeExperience
	}

	switch {
	case xp < tierOneTotal:
		return xp / CostTierOne, nil
	case xp < tierTwoTotal:
		return TierOneMax + (xp-tierOneTotal)/CostTierTwo, nil
	case xp < tierThreeTotal:
		return TierTwoMax + (xp-tierTwoTotal)/CostTierThree, nil
	default:
		return TierThreeMax + (xp-tierThreeTotal)/CostTierFour, nil
	}
}

// XPToNextLevel возвращает, сколько XP осталось до следующего уровня.
func XPToNextLevel(xp int) (int, error) {
	level, err := LevelFor(xp)
	if err != nil {
		return 0, err
	}
	return ThresholdFor(level+1) - xp, nil
}

// ProgressWithinLevel возвращает прогресс внутри текущего уровня
// в диапазоне [0.0, 1.0). Используется презентером для progress bar.
func ProgressWithinLevel(xp int) (float64, error) {
	level, err := LevelFor(xp)
	if err != nil {
		return 0, err
	}

	lower := ThresholdFor(level)
	upper := ThresholdFor(level + 1)
	return float64(xp-lower) / float64(upper-lower), nil
}
