// Package dataprocessing turns a raw CFEM × CRM extract into an immutable
// Dataset.
//
// # Stages
//
//  1. Decode: UTF-8 (BOM aware), falling back to Latin-1
//  2. ReadTable / ReadXLSX: delimited text or the first sheet of a workbook
//  3. Clean: column normalization, missing tokens, locale parsing, trimming
//  4. Derive: typed records with the annual mapped value and mapping status
//
// Pipeline composes the stages with tracing, metrics and structured logging:
//
//	p := dataprocessing.NewPipeline(cfg.Ingestion, logger, metrics)
//	ds, err := p.Load(ctx, "base.csv", file)
//
// # Error Handling
//
// Only ingestion failures are returned (undecodable input, no header,
// malformed delimited text). Malformed cells resolve locally: tax ids fall
// back to the raw literal, decimals to NULL and integers to 0.
//
// Clean is idempotent: Clean(Clean(t).Table) equals Clean(t).
package dataprocessing
