package dataprocessing

import (
	"unsafe"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

const bytesPerMB = 1024 * 1024

// Summarize builds the load report for a dataset
func Summarize(ds *domain.Dataset) domain.DataSummary {
	if ds == nil {
		return domain.DataSummary{Columns: []string{}}
	}

	summary := domain.DataSummary{
		DatasetID:      ds.ID,
		Source:         ds.Source,
		Encoding:       ds.Encoding,
		RowCount:       len(ds.Records),
		DroppedRows:    ds.DroppedRows,
		DroppedColumns: ds.DroppedColumns,
		Columns:        []string{},
		DateProcessed:  ds.LoadedAt.Format(config.SummaryDateLayout),
	}
	if ds.Table != nil {
		summary.ColumnCount = len(ds.Table.Columns)
		summary.Columns = append(summary.Columns, ds.Table.Columns...)
	}
	summary.MemoryUsageMB = float64(EstimateSize(ds)) / bytesPerMB

	return summary
}

// EstimateSize approximates the bytes held by the dataset's table and records
func EstimateSize(ds *domain.Dataset) int64 {
	if ds == nil {
		return 0
	}

	var size int64
	if ds.Table != nil {
		cellSize := int64(unsafe.Sizeof(domain.Cell{}))
		for _, c := range ds.Table.Columns {
			size += int64(len(c))
		}
		for _, row := range ds.Table.Rows {
			size += int64(len(row)) * cellSize
			for _, cell := range row {
				size += int64(len(cell.Text))
			}
		}
	}

	recordSize := int64(unsafe.Sizeof(domain.Record{}))
	for _, r := range ds.Records {
		size += recordSize + int64(len(r.PrimaryKey)+len(r.TaxID)+len(r.Company)+len(r.GroupID)+
			len(r.State)+len(r.Municipality)+len(r.Substance)+len(r.StrategyTier)+
			len(r.FirstScope)+len(r.OutsourcesMining))
	}
	return size
}
