package game

import (
	"fmt"
	"time"

	"github.com/tahcohcat/liferpg-web/internal/models"
)

// Redeem spends tokens on a reward and appends the redemption to the ledger.
func Redeem(data *models.UserData, rewardID string, day models.Date, now time.Time) (models.Redemption, error) {
	var reward *models.Reward
	for i := range data.Rewards.Rewards {
		if data.Rewards.Rewards[i].ID == rewardID {
			reward = &data.Rewards.Rewards[i]
			break
		}
	}
	if reward == nil {
		return models.Redemption{}, NotFoundError{Kind: "reward", ID: rewardID}
	}
	if data.Profile.TotalTokens < reward.CostTokens {
		return models.Redemption{}, invalid("tokens", fmt.Sprintf("%s costs %d tokens, you have %d",
			reward.Name, reward.CostTokens, data.Profile.TotalTokens))
	}

	data.Profile.TotalTokens -= reward.CostTokens
	r := models.Redemption{
		ID:          NewID(),
		RewardID:    reward.ID,
		Date:        day,
		TokensSpent: reward.CostTokens,
		Timestamp:   now,
	}
	data.Rewards.Redemptions = append(data.Rewards.Redemptions, r)
	return r, nil
}
