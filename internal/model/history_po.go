package model

import "time"

// AnalysisHistories corresponds to the analysis_histories table in the database.
type AnalysisHistories struct {
	Id                   int64     `db:"id"`
	AnalysisId           string    `db:"analysis_id"` // uuid
	Address              string    `db:"address"`
	Network              string    `db:"network"`
	IsSafe               bool      `db:"is_safe"`
	Confidence           int       `db:"confidence"`
	RiskLevel            string    `db:"risk_level"`
	Source               string    `db:"source"`
	Description          string    `db:"description"`
	TransactionsAnalyzed int       `db:"transactions_analyzed"`
	CreatedAt            time.Time `db:"created_at"`
}
