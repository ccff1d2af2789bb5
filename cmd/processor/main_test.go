package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/config"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/exporter"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/infrastructure"
	"github.com/leonardosegantin10-br/dashboard-cfem-crm/internal/shared/testutil"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o options)
	}{
		{
			name: "defaults",
			args: []string{"-in", "base.csv"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, "base.csv", o.In)
				assert.Equal(t, ".", o.Out)
				assert.Equal(t, exporter.FormatCSV, o.Format)
				assert.Nil(t, o.Rate)
			},
		},
		{
			name: "all flags",
			args: []string{"-in", "base.csv", "-out", "out", "-format", "XLSX", "-rate", "0", "-delimiter", "tab"},
			check: func(t *testing.T, o options) {
				assert.Equal(t, exporter.FormatXLSX, o.Format)
				require.NotNil(t, o.Rate)
				assert.Equal(t, 0.0, *o.Rate)
				assert.Equal(t, "tab", o.Delimiter)
			},
		},
		{name: "missing input", args: []string{"-out", "x"}, wantErr: true},
		{name: "bad format", args: []string{"-in", "a.csv", "-format", "pdf"}, wantErr: true},
		{name: "negative rate", args: []string{"-in", "a.csv", "-rate", "-1"}, wantErr: true},
		{name: "bad delimiter", args: []string{"-in", "a.csv", "-delimiter", ";;"}, wantErr: true},
		{name: "unknown flag", args: []string{"-in", "a.csv", "-bogus"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o, err := parseFlags(tt.args, io.Discard)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, o)
		})
	}
}

func TestDelimiterRune(t *testing.T) {
	tests := []struct {
		in      string
		want    rune
		wantErr bool
	}{
		{in: ";", want: ';'},
		{in: ",", want: ','},
		{in: "tab", want: '\t'},
		{in: `\t`, want: '\t'},
		{in: "|", want: '|'},
		{in: `"`, wantErr: true},
		{in: "ab", wantErr: true},
	}

	for _, tt := range tests {
		got, err := delimiterRune(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestRun(t *testing.T) {
	for _, format := range []exporter.Format{exporter.FormatCSV, exporter.FormatXLSX} {
		t.Run(string(format), func(t *testing.T) {
			in := testutil.WriteFile(t, "base.csv", testutil.BaseCSV)
			out := filepath.Join(filepath.Dir(in), "exports")

			rate := 50.0
			opts := options{In: in, Out: out, Format: format, Rate: &rate}

			var stdout bytes.Buffer
			err := run(context.Background(), config.Default(), opts, &stdout, infrastructure.NewLogger(io.Discard, "error"))
			require.NoError(t, err)

			var rep struct {
				Summary struct {
					RowCount int    `json:"row_count"`
					Source   string `json:"source"`
				} `json:"summary"`
				Overview map[string]interface{} `json:"overview"`
				Exports  []string               `json:"exports"`
			}
			require.NoError(t, json.Unmarshal(stdout.Bytes(), &rep))
			assert.Equal(t, testutil.BaseCSVRows, rep.Summary.RowCount)
			assert.Equal(t, "base.csv", rep.Summary.Source)
			assert.NotEmpty(t, rep.Overview)
			require.Len(t, rep.Exports, 2)

			assert.Equal(t, filepath.Join(out, config.RecordsExportName+"."+string(format)), rep.Exports[0])
			assert.True(t, strings.HasPrefix(filepath.Base(rep.Exports[1]), config.SimulationExportName+"_"))
			for _, path := range rep.Exports {
				info, err := os.Stat(path)
				require.NoError(t, err)
				assert.Positive(t, info.Size())
			}
		})
	}
}

func TestRun_Errors(t *testing.T) {
	dir := t.TempDir()
	logger := infrastructure.NewLogger(io.Discard, "error")

	empty := filepath.Join(dir, "empty.csv")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))

	tests := []struct {
		name string
		opts options
	}{
		{"missing input", options{In: filepath.Join(dir, "missing.csv"), Out: dir, Format: exporter.FormatCSV}},
		{"empty input", options{In: empty, Out: dir, Format: exporter.FormatCSV}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout bytes.Buffer
			err := run(context.Background(), config.Default(), tt.opts, &stdout, logger)
			assert.Error(t, err)
			assert.Zero(t, stdout.Len())
		})
	}
}
