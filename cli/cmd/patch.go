package cmd

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nordsil/libpatch"
	"github.com/nordsil/libpatch/config"
	"github.com/nordsil/libpatch/liberty"
	"github.com/nordsil/libpatch/patch"
	"github.com/nordsil/libpatch/provenance"
)

var (
	configPath  string
	description string
	dbDSN       string

	patchCmd = &cobra.Command{
		Use:   "patch",
		Short: "Apply a patch configuration to a Liberty file",
		Long: `Applies the modifications of a patch config to the input file and writes
the canonical result. YAML configs are compiled on the fly; JSON configs
must already be in the normalized form. With --db set, the run is logged
to the provenance store (a sqlite path, or a postgres:// / sqlserver://
DSN); an empty --db disables logging.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := logrus.StandardLogger()
			ctx := context.Background()

			if inputPath == "" || outputPath == "" {
				return errors.New("--input and --output are required")
			}
			if configPath == "" {
				return errors.New("--config is required")
			}
			text, err := os.ReadFile(inputPath)
			if err != nil {
				return err
			}
			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			var sink provenance.Sink
			if dbDSN != "" {
				store, err := provenance.Open(ctx, dbDSN, logger)
				if err != nil {
					return err
				}
				defer store.Close()
				sink = store
			}

			result, err := libpatch.ApplyPatch(ctx, libpatch.PatchRequest{
				File:        liberty.FileRef(inputPath),
				Input:       string(text),
				Config:      cfg,
				Description: description,
				IndentSize:  indentSize,
				OutputPath:  outputPath,
				Sink:        sink,
				Logger:      logger,
			})
			if err != nil {
				return err
			}
			if err := writeDumpParse(result.Parse); err != nil {
				return err
			}
			if err := os.WriteFile(outputPath, []byte(result.Output), 0o644); err != nil {
				return err
			}
			logger.WithFields(logrus.Fields{
				"batch_id": result.Summary.BatchID,
				"groups":   result.Summary.ModifiedGroups,
			}).Info("patch applied")
			return nil
		},
	}
)

func loadConfig(path string) (patch.Config, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return patch.Config{}, err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return config.Compile(text)
	}
	return config.LoadNormalized(text)
}

func init() {
	patchCmd.Flags().StringVarP(&configPath, "config", "c", "", "patch config file (YAML dialect or normalized JSON)")
	patchCmd.Flags().StringVar(&description, "description", "", "free-text description recorded with the batch")
	patchCmd.Flags().StringVar(&dbDSN, "db", "provenance.db", "provenance store location; empty disables")
	rootCmd.AddCommand(patchCmd)
}
