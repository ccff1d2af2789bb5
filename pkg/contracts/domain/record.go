package domain

import (
	"time"
)

// Normalized column names of the CFEM × CRM extract
const (
	ColumnPrimaryKey    = "chaveprimaria"
	ColumnTaxID         = "cpf_cnpj"
	ColumnCompany       = "empresa_por_cnpj"
	ColumnGroup         = "pai"
	ColumnState         = "uf"
	ColumnMunicipality  = "município"
	ColumnSubstance     = "substanciamaiscomercializada"
	ColumnRoyaltyTotal  = "totalvalorrecolhido"
	ColumnVolumeTotal   = "totalquantidadecomercializada"
	ColumnValue         = "valor"
	ColumnStrategyTier  = "tec"
	ColumnFirstScope    = "primeiro_escopo"
	ColumnMonthlyValue  = "valor_total_mensal"
	ColumnOutsourcing   = "terceiriza_lavra?"
	ColumnDuration      = "duração"
	ColumnTotalScopes   = "total_escopos"
	ColumnAnnualMapped  = "valor_anual_mapeado"
	ColumnMappingStatus = "status_mapeamento"
	MappingStatusYes    = "Sim"
	MappingStatusNo     = "Não"
)

// Field names a logical attribute of a Record
type Field string

const (
	FieldPrimaryKey   Field = "primary_key"
	FieldTaxID        Field = "tax_id"
	FieldCompany      Field = "company"
	FieldGroup        Field = "group_id"
	FieldState        Field = "state"
	FieldMunicipality Field = "municipality"
	FieldSubstance    Field = "substance"
	FieldRoyalty      Field = "royalty_total"
	FieldVolume       Field = "volume_total"
	FieldTier         Field = "strategy_tier"
	FieldFirstScope   Field = "first_scope"
	FieldMonthlyValue Field = "monthly_value_mapped"
	FieldOutsourcing  Field = "outsources_mining"
)

// FieldColumns maps each logical field to its source column
var FieldColumns = map[Field]string{
	FieldPrimaryKey:   ColumnPrimaryKey,
	FieldTaxID:        ColumnTaxID,
	FieldCompany:      ColumnCompany,
	FieldGroup:        ColumnGroup,
	FieldState:        ColumnState,
	FieldMunicipality: ColumnMunicipality,
	FieldSubstance:    ColumnSubstance,
	FieldRoyalty:      ColumnRoyaltyTotal,
	FieldVolume:       ColumnVolumeTotal,
	FieldTier:         ColumnStrategyTier,
	FieldFirstScope:   ColumnFirstScope,
	FieldMonthlyValue: ColumnMonthlyValue,
	FieldOutsourcing:  ColumnOutsourcing,
}

// Schema records which logical fields the cleaned table provided.
// Analytics check it before relying on a field and fall back to neutral
// defaults when it is missing.
type Schema map[Field]bool

// Has reports whether the field was present in the source
func (s Schema) Has(f Field) bool {
	return s[f]
}

// HasAll reports whether every field is present
func (s Schema) HasAll(fields ...Field) bool {
	for _, f := range fields {
		if !s[f] {
			return false
		}
	}
	return true
}

// FullSchema returns a schema with every field present; handy for callers
// that build records by hand.
func FullSchema() Schema {
	s := make(Schema, len(FieldColumns))
	for f := range FieldColumns {
		s[f] = true
	}
	return s
}

// Record is one mine/operation after cleaning and derivation
type Record struct {
	Row                int      `json:"row"`
	PrimaryKey         string   `json:"primary_key"`
	TaxID              string   `json:"tax_id"`
	Company            string   `json:"company,omitempty"`
	GroupID            string   `json:"group_id,omitempty"`
	State              string   `json:"state,omitempty"`
	Municipality       string   `json:"municipality,omitempty"`
	Substance          string   `json:"substance,omitempty"`
	RoyaltyTotal       float64  `json:"royalty_total"`
	VolumeTotal        float64  `json:"volume_total"`
	StrategyTier       string   `json:"strategy_tier,omitempty"`
	FirstScope         string   `json:"first_scope,omitempty"`
	MonthlyValueMapped *float64 `json:"monthly_value_mapped,omitempty"`
	OutsourcesMining   string   `json:"outsources_mining,omitempty"`

	AnnualValueMapped float64 `json:"annual_value_mapped"`
	IsMapped          bool    `json:"is_mapped"`
}

// MappingStatus returns the Sim/Não label of the derived mapping flag
func (r Record) MappingStatus() string {
	if r.IsMapped {
		return MappingStatusYes
	}
	return MappingStatusNo
}

// DisplayName returns the best human label for the record
func (r Record) DisplayName() string {
	if r.PrimaryKey != "" {
		return r.PrimaryKey
	}
	if r.Company != "" {
		return r.Company
	}
	return "N/A"
}

// Dataset is the immutable base table of a session
type Dataset struct {
	ID             string    `json:"id"`
	Source         string    `json:"source"`
	Encoding       string    `json:"encoding"`
	LoadedAt       time.Time `json:"loaded_at"`
	Table          *Table    `json:"-"`
	Records        []Record  `json:"-"`
	Schema         Schema    `json:"schema"`
	DroppedRows    int       `json:"dropped_rows"`
	DroppedColumns []string  `json:"dropped_columns,omitempty"`
}

// DataSummary is the load report returned to callers
type DataSummary struct {
	DatasetID      string   `json:"dataset_id"`
	Source         string   `json:"source"`
	Encoding       string   `json:"encoding"`
	RowCount       int      `json:"row_count"`
	ColumnCount    int      `json:"column_count"`
	DateProcessed  string   `json:"date_processed"`
	MemoryUsageMB  float64  `json:"memory_usage_mb"`
	DroppedRows    int      `json:"dropped_rows"`
	DroppedColumns []string `json:"dropped_columns,omitempty"`
	Columns        []string `json:"columns"`
}
