package cmd

import (
	"errors"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/naka-gawa/gh-log/internal/clierr"
	"github.com/naka-gawa/gh-log/internal/config"
)

var configOpts struct {
	yaml bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Create or show the configuration file",
	Long: `Config writes a commented template to the config path when no file exists.
Otherwise it validates the file and prints the effective configuration.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := configPath()
		if err != nil {
			return clierr.Wrap(clierr.CodeConfig, "cannot locate config", err)
		}
		out := cmd.OutOrStdout()

		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			if err := config.WriteTemplate(path); err != nil {
				return clierr.Wrap(clierr.CodeConfig, "config error", err)
			}
			fprintf(out, "Created config template at %s\n", path)
			return nil
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		encode := cfg.EncodeTOML
		if configOpts.yaml {
			encode = cfg.EncodeYAML
		}
		body, err := encode()
		if err != nil {
			return err
		}
		fprintf(out, "# %s\n", path)
		_, err = out.Write(body)
		return err
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.Flags().BoolVar(&configOpts.yaml, "yaml", false, "Print the effective config as YAML")
}
