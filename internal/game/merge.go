package game

import "time"

// MergeResult describes one resolved merge.
type MergeResult struct {
	TokenID   int    `json:"token_id"`
	From      TypeID `json:"from"`
	To        TypeID `json:"to"`
	Collected bool   `json:"collected"`
	Points    int    `json:"points"`
}

// ResolveMerge promotes primary in place after it absorbed a same-type
// partner. A merge that counts toward an open goal schedules the primary to
// vanish; any other merge leaves it on the field for further chaining.
// The caller removes the secondary and applies Points to the score.
func ResolveMerge(primary *Token, goals *GoalTracker, now time.Time) MergeResult {
	from := primary.Type
	to, ok := PromotionOf(from)
	if !ok {
		return MergeResult{TokenID: primary.ID, From: from, To: from}
	}

	collected := false
	if goals != nil {
		collected = goals.RecordCollection(to)
	}

	primary.Type = to
	primary.Radius = RadiusOf(to)
	primary.Velocity = MergePopVelocity
	primary.CooldownUntil = now.Add(MergeCooldown)
	primary.DropTime = now

	if collected {
		primary.VanishAt = now.Add(VanishDelay)
	} else {
		primary.VanishAt = time.Time{}
	}

	return MergeResult{
		TokenID:   primary.ID,
		From:      from,
		To:        to,
		Collected: collected,
		Points:    (int(to) + 1) * 10,
	}
}
