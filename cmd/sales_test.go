package cmd

import (
	"testing"
	"time"

	"region-sync/core/record"

	"github.com/stretchr/testify/assert"
)

func TestConsistency(t *testing.T) {
	at := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	v := func(ts time.Time) record.Record { return record.Record{UpdatedAt: ts} }

	tests := []struct {
		name     string
		versions []record.Record
		missing  int
		want     string
	}{
		{"None", nil, 3, "NOT FOUND"},
		{"All equal", []record.Record{v(at), v(at), v(at)}, 0, "CONSISTENT"},
		{"One stale", []record.Record{v(at), v(at.Add(time.Minute)), v(at)}, 0, "DIVERGENT"},
		{"One missing", []record.Record{v(at), v(at)}, 1, "DIVERGENT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _ := consistency(tt.versions, tt.missing)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range RootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"start", "sync", "migrate", "sales"} {
		assert.True(t, names[want], want)
	}

	assert.NotNil(t, syncCmd.Flags().Lookup("dry-run"))
	assert.NotNil(t, migrateCmd.Flags().Lookup("check"))
}
