package models

import "github.com/shopspring/decimal"

// Level is one purchasable tier on the level ladder. Buying a tier widens
// the caps on peer transfers.
type Level struct {
	ID         int
	Name       string
	Cost       decimal.Decimal
	Color      int
	UpperLimit decimal.Decimal
	LowerLimit decimal.Decimal
}

// MaxLevel is the highest purchasable tier. Level 0 means no tier.
const MaxLevel = 11

// DefaultUpperLimit and DefaultLowerLimit are the transfer caps for users
// who have not purchased any level.
var (
	DefaultUpperLimit = decimal.NewFromInt(10)
	DefaultLowerLimit = decimal.NewFromInt(-5)
)

// Levels is the full tier table, keyed by level id.
var Levels = map[int]Level{
	1:  lvl(1, "Neanderthal Brain", 75, 0x992D22, 15, -10),
	2:  lvl(2, "Extremely Smooth Brain", 100, 0xE74C3C, 15, -10),
	3:  lvl(3, "Very Smooth Brain", 125, 0xE67E22, 16, -11),
	4:  lvl(4, "Smooth Brain", 150, 0xF1C40F, 16, -11),
	5:  lvl(5, "Unwrinkled Brain", 175, 0x2ECC71, 17, -12),
	6:  lvl(6, "Has-One-Wrinkle Brain", 200, 0x1F8B4C, 17, -12),
	7:  lvl(7, "Kinda Wrinkle Brain", 200, 0x3498DB, 18, -13),
	8:  lvl(8, "Wrinkle Brain", 200, 0x206694, 18, -13),
	9:  lvl(9, "Very Wrinkle Brain", 200, 0x9B59B6, 19, -14),
	10: lvl(10, "Extremely Wrinkle Brain", 200, 0x71368A, 19, -14),
	11: lvl(11, "Galaxy Brain", 250, 0xE91E63, 20, -15),
}

func lvl(id int, name string, cost int64, color int, upper, lower int64) Level {
	return Level{
		ID:         id,
		Name:       name,
		Cost:       decimal.NewFromInt(cost),
		Color:      color,
		UpperLimit: decimal.NewFromInt(upper),
		LowerLimit: decimal.NewFromInt(lower),
	}
}

// TransferLimits returns the give/take caps for a user at the given level.
func TransferLimits(level int) (upper, lower decimal.Decimal) {
	if l, ok := Levels[level]; ok {
		return l.UpperLimit, l.LowerLimit
	}
	return DefaultUpperLimit, DefaultLowerLimit
}
