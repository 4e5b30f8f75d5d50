package main

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/srgjo27/smart_parking/internal/app"
	"github.com/srgjo27/smart_parking/internal/config"
	"github.com/srgjo27/smart_parking/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func useMemoryEngine(t *testing.T) {
	original := engineFactory
	t.Cleanup(func() { engineFactory = original })

	engineFactory = func(ctx context.Context, _ string) (*app.App, error) {
		return app.New(ctx, &config.Config{
			Store:    config.StoreConfig{Driver: "memory"},
			Facility: config.FacilityConfig{DefaultLot: "main", Timezone: "UTC"},
			Lots:     []config.LotConfig{{Name: "main", Capacity: 4}},
		})
	}
}

func run(t *testing.T, args ...string) (string, error) {
	cmd := rootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestStatsCommand(t *testing.T) {
	useMemoryEngine(t)

	out, err := run(t, "stats")
	require.NoError(t, err)

	var stats domain.LotStats
	require.NoError(t, json.Unmarshal([]byte(out), &stats))
	assert.Equal(t, domain.LotStats{Lot: "main", Total: 4, Available: 4}, stats)

	_, err = run(t, "stats", "west")
	assert.ErrorIs(t, err, domain.ErrLotNotFound)
}

func TestReportCommand(t *testing.T) {
	useMemoryEngine(t)

	out, err := run(t, "report", "2026-09", "--save")
	require.NoError(t, err)

	var report domain.MonthlyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "2026-09", report.Month)
	assert.Zero(t, report.Sessions)

	_, err = run(t, "report", "Sept")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestMigrateAndSeedOnMemoryStore(t *testing.T) {
	useMemoryEngine(t)

	_, err := run(t, "migrate")
	require.NoError(t, err)

	_, err = run(t, "seed-lots")
	require.NoError(t, err)
}
