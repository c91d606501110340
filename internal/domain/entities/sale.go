package entities

// Sale is the state of the token sale contract
type Sale struct {
	TokenBalance string     `json:"tokenBal"`
	Name         string     `json:"name"`
	Symbol       string     `json:"symbol"`
	Supply       string     `json:"supply"`
	TokenPrice   string     `json:"tokenPrice"`
	TokenAddress string     `json:"tokenAddr"`
	Owner        string     `json:"owner"`
	SoldTokens   int64      `json:"soldTokens"`
	Token        *SaleToken `json:"token"`
}

// SaleToken describes the sold token from the signer's point of view
type SaleToken struct {
	Address       string `json:"address"`
	Name          string `json:"name"`
	Symbol        string `json:"symbol"`
	Decimals      int    `json:"decimals"`
	Supply        string `json:"supply"`
	Balance       string `json:"balance"`
	NativeBalance string `json:"nativeBalance"`
}

// WatchAssetRequest asks a wallet to display a custom token
type WatchAssetRequest struct {
	Type    string            `json:"type"`
	Options WatchAssetOptions `json:"options"`
}

// WatchAssetOptions identifies the token to display
type WatchAssetOptions struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Image    string `json:"image"`
}
