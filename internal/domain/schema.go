package domain

import "time"

// Metric names stored in the metrics table.
const (
	MetricMonthlyPrice = "monthly_price"
	MetricUsableArea   = "usable_area_m2"
)

// KnownMetrics lists the metric names the warehouse recognizes.
var KnownMetrics = []string{MetricMonthlyPrice, MetricUsableArea}

// SchemaInfo contains warehouse schema information used for SQL generation
type SchemaInfo struct {
	DatabaseType string    `json:"database_type"`
	Tables       []string  `json:"tables"`
	DDL          string    `json:"ddl"`
	CachedAt     time.Time `json:"cached_at"`
}
