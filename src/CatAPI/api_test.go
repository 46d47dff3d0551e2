package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stake-plus/spycat-agency/src/CatAPI/config"
	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
)

func TestRenderMissions(t *testing.T) {
	cat := uint64(4)
	missions := []types.Mission{
		{ID: 1, CatID: &cat, Targets: []types.Target{{IsComplete: true}, {}, {}}},
		{ID: 2, IsComplete: true, Targets: []types.Target{{IsComplete: true}}},
	}

	var buf bytes.Buffer
	renderMissions(&buf, missions, false)
	out := buf.String()
	assert.Contains(t, out, "1/3")
	assert.Contains(t, out, "1/1")

	buf.Reset()
	renderMissions(&buf, missions, true)
	out = buf.String()
	assert.Contains(t, out, "1/3")
	assert.NotContains(t, out, "1/1")
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	t.Setenv("DB_DRIVER", "postgres")
	v := viper.New()
	root := &cobra.Command{Use: "spycat"}
	addPersistentFlags(root, v)
	require.NoError(t, root.PersistentFlags().Set("db-driver", "sqlite"))
	require.NoError(t, root.PersistentFlags().Set("database-url", "file.db"))

	cfg, err := config.Load(v)
	require.NoError(t, err)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, "file.db", cfg.DSN)
}
