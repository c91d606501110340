package entities

// Token is an ERC-20 snapshot for one holder. Amounts are decimal strings.
type Token struct {
	Name                 string `json:"name"`
	Symbol               string `json:"symbol"`
	Address              string `json:"address"`
	Decimals             int    `json:"decimals"`
	TotalSupply          string `json:"totalSupply"`
	Balance              string `json:"balance"`
	ContractTokenBalance string `json:"contractTokenBalance"`
}
