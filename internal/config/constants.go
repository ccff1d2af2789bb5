package config

// Application constants
const (
	AppName    = "CFEM CRM Analytics"
	AppVersion = "1.0.0"

	// Ingestion
	DefaultDelimiter      = ";"
	DefaultMaxUploadBytes = 50 << 20 // 50MB

	// Analytics
	DefaultParetoThreshold    = 80.0
	DefaultCaptureRate        = 30.0
	DefaultSimulationTopN     = 50
	DefaultOpportunitiesTopN  = 20
	DefaultGroupChartTopN     = 15
	DefaultPriorityGroupsTopN = 10
	DefaultMinTEC01Sample     = 5

	// Export file names
	RecordsExportName    = "cfem_crm_export"
	SimulationExportName = "simulacao_potencial"
	ExportTimestampLayout = "20060102_150405"

	// Summary timestamp, dd/mm/yyyy hh:mm
	SummaryDateLayout = "02/01/2006 15:04"
)
