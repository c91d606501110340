package entities

// Dashboard is the consolidated staking view for one account
type Dashboard struct {
	ContractOwner        string         `json:"contractOwner"`
	ContractAddress      string         `json:"contractAddress"`
	Notifications        []Notification `json:"notifications"`
	Pools                []Pool         `json:"poolInfoArray"`
	TotalDepositedAmount float64        `json:"totalDepositedAmount"`
	RewardToken          *Token         `json:"rewardToken"`
	DepositToken         *Token         `json:"depositToken"`
	ContractTokenBalance string         `json:"contractTokenBalance"`
}
