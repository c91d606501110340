package entities

// Pool is one staking pool as read from the staking manager, joined with
// the caller's position in it
type Pool struct {
	DepositTokenAddress string `json:"depositTokenAddress"`
	RewardTokenAddress  string `json:"rewardTokenAddress"`
	DepositToken        *Token `json:"depositToken"`
	RewardToken         *Token `json:"rewardToken"`
	DepositedAmount     string `json:"depositedAmount"`
	APY                 string `json:"apy"`
	LockDays            string `json:"lockDays"`

	// Caller position
	UserAmount   string `json:"userAmount"`
	UserReward   string `json:"userReward"`
	LockUntil    string `json:"lockUntil"`
	LastRewardAt string `json:"lastRewardAt"`
}

// PoolParams are the inputs of an addPool call
type PoolParams struct {
	DepositToken string `json:"_depositToken"`
	RewardToken  string `json:"_rewardToken"`
	APY          string `json:"_apy"`
	LockDays     string `json:"_lockDays"`
}

// SweepParams are the inputs of a sweep call
type SweepParams struct {
	Token  string `json:"token"`
	Amount string `json:"amount"`
}
