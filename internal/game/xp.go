package game

import "github.com/tahcohcat/liferpg-web/internal/models"

// XPNeededFor is the XP that must be collected at level to reach the next
// one. It grows linearly: level N needs N times the base.
func XPNeededFor(level, base int) int {
	return base * level
}

// GrantXP adds amount to the profile and levels up while the XP covers the
// current threshold. It returns the number of levels gained. Non-positive
// amounts and a non-positive base are no-ops.
func GrantXP(p *models.Profile, amount int) int {
	if amount <= 0 || p.XPBasePerLevel <= 0 {
		return 0
	}
	p.CurrentXP += amount
	return Normalize(p)
}

// Normalize restores current_xp < XPNeededFor(current_level) by spending XP
// on level ups, and returns how many happened.
func Normalize(p *models.Profile) int {
	if p.XPBasePerLevel <= 0 {
		return 0
	}
	if p.CurrentLevel < 1 {
		p.CurrentLevel = 1
	}
	gained := 0
	for {
		threshold := XPNeededFor(p.CurrentLevel, p.XPBasePerLevel)
		if p.CurrentXP < threshold {
			break
		}
		p.CurrentXP -= threshold
		p.CurrentLevel++
		gained++
	}
	return gained
}

// GrantAttributeXP adds amount to the attribute with id. A dangling id is
// ignored and reported as false.
func GrantAttributeXP(attrs []models.Attribute, id string, amount int) bool {
	a := models.FindAttribute(attrs, id)
	if a == nil {
		return false
	}
	if amount > 0 {
		a.CurrentXP += amount
	}
	return true
}

// GrantTokens is a flat add with no cap.
func GrantTokens(p *models.Profile, amount int) {
	if amount > 0 {
		p.TotalTokens += amount
	}
}

// Progress returns current XP over the current threshold, in [0,1).
func Progress(p models.Profile) float64 {
	needed := XPNeededFor(p.CurrentLevel, p.XPBasePerLevel)
	if needed <= 0 {
		return 0
	}
	return float64(p.CurrentXP) / float64(needed)
}

// TouchStreak records activity on day. Consecutive days extend the streak,
// a gap restarts it at 1, and activity on an already counted or earlier day
// changes nothing.
func TouchStreak(p *models.Profile, day models.Date) {
	if p.LastActiveDate != nil {
		last := *p.LastActiveDate
		switch {
		case !day.After(last):
			return
		case day == last.AddDays(1):
			p.StreakDays++
		default:
			p.StreakDays = 1
		}
	} else {
		p.StreakDays = 1
	}
	d := day
	p.LastActiveDate = &d
}
