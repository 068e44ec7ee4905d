package types

// TokenInfo 代币元数据，按合约地址解析一次后进程内常驻缓存
type TokenInfo struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
}

// MoralisTokenMetadata is one entry of the Moralis erc20/metadata response.
type MoralisTokenMetadata struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals string `json:"decimals"`
}

// MoralisPriceResp is the Moralis erc20 price endpoint response.
type MoralisPriceResp struct {
	UsdPrice float64 `json:"usd_price"`
}

// DefiLlamaCoin is one priced coin in a DeFiLlama historical response.
type DefiLlamaCoin struct {
	Price  float64 `json:"price"`
	Symbol string  `json:"symbol"`
}

// DefiLlamaPriceResp is the DeFiLlama /prices/historical response.
type DefiLlamaPriceResp struct {
	Coins map[string]DefiLlamaCoin `json:"coins"`
}

// CommunityReport 社区举报详情（仅在 is_safe=false 时返回）
type CommunityReport struct {
	ReportId    int64    `json:"report_id"`
	Address     string   `json:"address"`
	Chain       string   `json:"chain"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Evidence    []string `json:"evidence,omitempty"`
	VotesYes    int64    `json:"votes_yes"`
	VotesNo     int64    `json:"votes_no"`
}

// CommunityCheckResp is the community-flag oracle response for an address.
type CommunityCheckResp struct {
	IsSafe bool             `json:"is_safe"`
	Report *CommunityReport `json:"report,omitempty"`
	Error  string           `json:"error,omitempty"`
}

// ModelScoreReq is the payload sent to the external scoring model service.
type ModelScoreReq struct {
	Address          string    `json:"address"`
	Network          string    `json:"network"`
	FeatureNames     []string  `json:"feature_names"`
	Features         []float64 `json:"features"`
	TransactionCount int       `json:"transaction_count"`
}

// ModelScoreResp is the scoring model result. Error 非空表示模型侧失败。
type ModelScoreResp struct {
	IsRansomware          bool    `json:"is_ransomware"`
	RansomwareProbability float64 `json:"ransomware_probability"` // 0.0-1.0
	Confidence            float64 `json:"confidence"`             // 0.0-1.0
	TransactionsAnalyzed  int     `json:"transactions_analyzed"`
	ChainType             string  `json:"chain_type"`
	ThresholdUsed         float64 `json:"threshold_used"`
	DataSource            string  `json:"data_source"`
	Error                 string  `json:"error,omitempty"`
}
