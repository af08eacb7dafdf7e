package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/warp/rota-engine/factory"
	"github.com/warp/rota-engine/roster"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Load rosters into the store",
	}
	cmd.AddCommand(importRosterCmd())
	cmd.AddCommand(importLegacyCmd())
	return cmd
}

func importRosterCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "roster FILE",
		Short: "Import employees from an .xlsx or .csv roster",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			f := roster.Format(format)
			if f == "" {
				var err error
				if f, err = roster.FormatFromFilename(path); err != nil {
					return err
				}
			}

			file, err := os.Open(path)
			if err != nil {
				return err
			}
			defer file.Close()

			res, err := roster.NewImporter(cfg.Schedule.DefaultVariant()).Import(file, f)
			if err != nil {
				return err
			}
			for _, issue := range res.Skipped {
				logger.Warn("skipped row", zap.Int("row", issue.Row), zap.String("reason", issue.Reason))
			}
			for _, issue := range res.Warnings {
				logger.Warn("ignored value", zap.String("issue", issue.String()))
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := res.Apply(cmd.Context(), store); err != nil {
				return err
			}

			logger.Info("roster imported",
				zap.String("batch_id", res.BatchID),
				zap.String("file", path),
				zap.Int("employees", len(res.Employees)),
				zap.Int("skipped", len(res.Skipped)))
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d employees (%d rows skipped, %d warnings)\n",
				len(res.Employees), len(res.Skipped), len(res.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "xlsx or csv (default: from extension)")
	return cmd
}

func importLegacyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "legacy FILE",
		Short: "Import a legacy escalas_store.json",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			imp, err := factory.NewStoreFactory(cfg.Schedule.LegacyVariant()).ParseStore(data)
			if err != nil {
				return err
			}
			for _, w := range imp.Snapshot.Warnings {
				logger.Warn("skipped legacy entry", zap.String("entry", w))
			}

			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()
			if err := imp.Apply(cmd.Context(), store); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "imported %d employees, %d holidays, %d events (%d entries skipped)\n",
				len(imp.Snapshot.Employees), len(imp.Holidays), len(imp.Events), len(imp.Snapshot.Warnings))
			return nil
		},
	}
}

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the store in other formats",
	}

	var output string
	legacy := &cobra.Command{
		Use:   "legacy",
		Short: "Write the store as a legacy escalas_store.json",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore()
			if err != nil {
				return err
			}
			defer store.Close()

			sj, err := factory.NewStoreFactory(cfg.Schedule.LegacyVariant()).Export(cmd.Context(), store)
			if err != nil {
				return err
			}

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			return enc.Encode(sj)
		},
	}
	legacy.Flags().StringVarP(&output, "output", "o", "", "Output file (default: stdout)")

	template := &cobra.Command{
		Use:   "template FILE",
		Short: "Write a blank roster workbook",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := os.Create(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			return roster.WriteTemplate(f, true)
		},
	}

	cmd.AddCommand(legacy, template)
	return cmd
}
