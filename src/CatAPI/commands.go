package main

import (
	"fmt"
	"io"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gorm.io/gorm"

	"github.com/stake-plus/spycat-agency/src/CatAPI/agency"
	"github.com/stake-plus/spycat-agency/src/CatAPI/config"
	"github.com/stake-plus/spycat-agency/src/CatAPI/data"
	"github.com/stake-plus/spycat-agency/src/CatAPI/types"
	"github.com/stake-plus/spycat-agency/src/logging"
)

func openDB(v *viper.Viper) (config.Config, *gorm.DB, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, nil, err
	}
	db, err := data.Open(cfg.DBDriver, cfg.DSN)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, db, nil
}

func migrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(v)
			if err != nil {
				return err
			}
			if err := data.Migrate(db); err != nil {
				return err
			}
			logging.New(cfg.LogLevel, cfg.AppName).Info("schema migrated", "db_driver", cfg.DBDriver)
			return nil
		},
	}
}

func missionsCmd(v *viper.Viper) *cobra.Command {
	var activeOnly bool
	cmd := &cobra.Command{
		Use:   "missions",
		Short: "Print a mission status report",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, err := openDB(v)
			if err != nil {
				return err
			}
			svc := agency.NewService(db, nil, nil, logging.New(cfg.LogLevel, cfg.AppName))
			missions, err := svc.ListMissions(cmd.Context())
			if err != nil {
				return err
			}
			renderMissions(os.Stdout, missions, activeOnly)
			return nil
		},
	}
	cmd.Flags().BoolVar(&activeOnly, "active", false, "only incomplete missions")
	return cmd
}

func renderMissions(w io.Writer, missions []types.Mission, activeOnly bool) {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.AppendHeader(table.Row{"Mission", "Cat", "Targets done", "Complete"})
	for _, m := range missions {
		if activeOnly && m.IsComplete {
			continue
		}
		cat := "-"
		if m.CatID != nil {
			cat = fmt.Sprintf("%d", *m.CatID)
		}
		done := 0
		for _, t := range m.Targets {
			if t.IsComplete {
				done++
			}
		}
		tw.AppendRow(table.Row{m.ID, cat, fmt.Sprintf("%d/%d", done, len(m.Targets)), m.IsComplete})
	}
	tw.Render()
}
