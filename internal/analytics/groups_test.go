package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/leonardosegantin10-br/dashboard-cfem-crm/pkg/contracts/domain"
)

func TestIsSentinelGroup(t *testing.T) {
	tests := []struct {
		group string
		want  bool
	}{
		{"NA", true},
		{"na", true},
		{"Na", true},
		{"nA", true},
		{"FORA", true},
		{"fora", true},
		{" Fora ", true},
		{"", true},
		{"   ", true},
		{"Vale", false},
		{"NAO", false},
		{"FORAX", false},
	}

	for _, tt := range tests {
		t.Run(tt.group, func(t *testing.T) {
			assert.Equal(t, tt.want, IsSentinelGroup(tt.group))
		})
	}
}

func TestSumByOrdersKeysAscending(t *testing.T) {
	records := []domain.Record{
		mine("1", 10, state("SP")),
		mine("2", 5, state("MG")),
		mine("3", 1, state("SP")),
		mine("4", 7),
	}

	aggs := sumBy(records, func(r domain.Record) string { return r.State }, royaltyOf)
	assert.Equal(t, []aggregate{{key: "MG", value: 5, count: 1}, {key: "SP", value: 11, count: 2}}, aggs)
}
