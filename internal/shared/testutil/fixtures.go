package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// BaseCSV is a small semicolon separated CFEM × CRM table in the Brazilian
// number format: two Vale mines, one without group and one CSN mine.
const BaseCSV = "chaveprimaria;pai;uf;tec;totalvalorrecolhido;primeiro_escopo;valor_total_mensal\n" +
	"M1;Vale;MG;TEC01;1.000,00;Sim;10,00\n" +
	"M2;NA;PA;TEC02;500,00;NÃO;\n" +
	"M3;CSN;MG;TEC01;300,00;;\n"

// BaseCSVRows is the number of data rows in BaseCSV
const BaseCSVRows = 3

// WriteFile writes content under a fresh temp dir and returns its path
func WriteFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}
