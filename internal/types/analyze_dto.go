package types

// Analysis provenance: which subsystem produced the final verdict.
const (
	SourceCommunity         = "community"
	SourceModel             = "model"
	SourceCommunityAndModel = "community_and_model"
)

const (
	RiskLevelLow    = "LOW"
	RiskLevelMedium = "MEDIUM"
	RiskLevelHigh   = "HIGH"
)

// AnalyzeAddressReq defines the request for a full address risk analysis.
type AnalyzeAddressReq struct {
	Address string `json:"address" validate:"required"`
}

// AnalysisVerdict is the final, immutable result of one analysis request.
type AnalysisVerdict struct {
	Address              string              `json:"address"`
	Network              string              `json:"network"`
	IsSafe               bool                `json:"is_safe"`
	Confidence           int                 `json:"confidence"` // 0-100
	RiskLevel            string              `json:"risk_level"` // LOW | MEDIUM | HIGH
	Source               string              `json:"source"`     // community | model | community_and_model
	Description          string              `json:"description"`
	TransactionsAnalyzed int                 `json:"transactions_analyzed"`
	AnalyzedAt           string              `json:"analyzed_at"`
	ModelResult          *ModelScoreResp     `json:"model_result,omitempty"`
	CommunityResult      *CommunityCheckResp `json:"community_result,omitempty"`
}

// ExtractFeaturesReq defines the request for standalone feature extraction.
type ExtractFeaturesReq struct {
	Address string `json:"address" validate:"required"`
}

// ExtractFeaturesResp carries the fixed-order feature vector for an address.
type ExtractFeaturesResp struct {
	Address          string    `json:"address"`
	Network          string    `json:"network"`
	FeatureNames     []string  `json:"feature_names"`
	Features         []float64 `json:"features"`
	TransactionCount int       `json:"transaction_count"`
}

// ResolveRatioReq defines the request for a direct token ratio resolution.
type ResolveRatioReq struct {
	ContractAddress string `json:"contract_address" validate:"required"`
	Timestamp       int64  `json:"timestamp" validate:"required"` // unix seconds
}

// ResolveRatioResp 返回代币在指定月份折算为 ETH 的比率，0 表示无法定价
type ResolveRatioResp struct {
	ContractAddress string  `json:"contract_address"`
	Symbol          string  `json:"symbol"`
	Ratio           float64 `json:"ratio"`
}

// HistoryListReq defines the request for listing persisted verdicts.
type HistoryListReq struct {
	Limit int `form:"limit,default=20"`
}

// HistoryRecord is one persisted verdict as returned by the history endpoint.
type HistoryRecord struct {
	AnalysisId string `json:"analysis_id"`
	Address    string `json:"address"`
	Network    string `json:"network"`
	IsSafe     bool   `json:"is_safe"`
	Confidence int    `json:"confidence"`
	RiskLevel  string `json:"risk_level"`
	Source     string `json:"source"`
	CreatedAt  string `json:"created_at"`
}

// HistoryListResp wraps the history listing.
type HistoryListResp struct {
	Records []HistoryRecord `json:"records"`
	Total   int             `json:"total"`
}
