package entities

// Notification is an entry of the staking manager's activity log
type Notification struct {
	PoolID    int64  `json:"poolID"`
	Amount    string `json:"amount"`
	User      string `json:"user"`
	TypeOf    string `json:"typeOf"`
	TimeStamp string `json:"timeStamp"`
}
