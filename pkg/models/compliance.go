package models

// ComplianceRecord is the derived on-time score for one party over a trailing
// window. Recomputed on demand from exchange instances; never a source of
// truth. When no exchanges fall in the window the score is absent and
// InsufficientData is set — callers must not render that as 0%.
type ComplianceRecord struct {
	CaseID             string  `json:"case_id"`
	PartyID            string  `json:"party_id"`
	PeriodDays         int     `json:"period_days"`
	TotalExchanges     int     `json:"total_exchanges"`
	OnTimeCount        int     `json:"on_time_count"`
	WithinGraceCount   int     `json:"within_grace_count"`
	LateCount          int     `json:"late_count"`
	MissedCount        int     `json:"missed_count"`
	AverageMinutesLate float64 `json:"average_minutes_late"`
	ComplianceScore    *int    `json:"compliance_score,omitempty"` // 0-100, strict on-time only
	InsufficientData   bool    `json:"insufficient_data,omitempty"`
}
