package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/rota-engine/api"
	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/generic"
	"github.com/warp/rota-engine/rota"
)

func generateCmd() *cobra.Command {
	var (
		start, end string
		names      []string
		posts      []string
		legacyPath string
		compact    bool
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Print schedules as JSON",
		Long: "Classify every day of [start, end] for the whole roster, some posts or some employees.\n" +
			"Configuration comes from the store, or from a legacy JSON file with --legacy.",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(names) > 0 && len(posts) > 0 {
				return errors.New("use either --employee or --post, not both")
			}

			period, err := generic.ParsePeriod(start, end)
			if err != nil {
				return err
			}
			if limit := cfg.Schedule.MaxRangeDays; period.Len() > limit {
				return fmt.Errorf("%w: %d days (max %d)", generic.ErrRangeTooLong, period.Len(), limit)
			}

			snap, err := loadSnapshot(cmd, legacyPath)
			if err != nil {
				return err
			}
			for _, w := range snap.Warnings {
				logger.Warn("skipped configuration entry", zap.String("entry", w))
			}

			sel := rota.Selection{Mode: rota.SelectAll}
			switch {
			case len(names) > 0:
				sel = rota.Selection{Mode: rota.SelectNames, Values: upper(names)}
			case len(posts) > 0:
				sel = rota.Selection{Mode: rota.SelectPosts, Values: upper(posts)}
			}

			results, err := rota.BatchBuilder{Workers: cfg.Schedule.BatchWorkers}.Build(cmd.Context(), period, snap, sel)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				logger.Warn("selection matched no employees", zap.Strings("values", sel.Values))
			}

			resp := api.BatchResponse{
				Start:     period.Start.String(),
				End:       period.End.String(),
				Schedules: make([]api.ScheduleResponse, 0, len(results)),
				Warnings:  append([]string{}, snap.Warnings...),
			}
			for _, res := range results {
				resp.Schedules = append(resp.Schedules, api.NewScheduleResponse(res))
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			if !compact {
				enc.SetIndent("", "  ")
			}
			return enc.Encode(resp)
		},
	}

	cmd.Flags().StringVar(&start, "start", "", "First day (YYYY-MM-DD or DD/MM/YYYY)")
	cmd.Flags().StringVar(&end, "end", "", "Last day, inclusive")
	cmd.Flags().StringSliceVarP(&names, "employee", "e", nil, "Employee name (repeatable)")
	cmd.Flags().StringSliceVar(&posts, "post", nil, "Post (repeatable)")
	cmd.Flags().StringVar(&legacyPath, "legacy", "", "Read configuration from a legacy JSON store instead of the database")
	cmd.Flags().BoolVar(&compact, "compact", false, "Single-line JSON")
	_ = cmd.MarkFlagRequired("start")
	_ = cmd.MarkFlagRequired("end")
	return cmd
}

// loadSnapshot reads configuration from a legacy file or the database.
func loadSnapshot(cmd *cobra.Command, legacyPath string) (rota.Snapshot, error) {
	if legacyPath != "" {
		data, err := os.ReadFile(legacyPath)
		if err != nil {
			return rota.Snapshot{}, err
		}
		imp, err := factory.NewStoreFactory(cfg.Schedule.LegacyVariant()).ParseStore(data)
		if err != nil {
			return rota.Snapshot{}, err
		}
		return imp.Snapshot, nil
	}

	store, err := openStore()
	if err != nil {
		return rota.Snapshot{}, err
	}
	defer store.Close()
	return store.Snapshot(cmd.Context())
}

func upper(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToUpper(strings.TrimSpace(v))
	}
	return out
}
