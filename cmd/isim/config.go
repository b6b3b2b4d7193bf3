package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/1broseidon/isim/internal/config"
)

var configOpts struct {
	defaults bool
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and validate configuration",
	// Skips the root config load so broken files can still be inspected.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setupLogger(cmd, config.DefaultConfig().Logging)
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the config file for errors",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfigResult()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config: ok (%d file(s))\n", len(res.Files))
		return nil
	},
}

var configPrintCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the effective config as YAML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := config.DefaultConfig()
		if !configOpts.defaults {
			res, err := loadConfigResult()
			if err != nil {
				return err
			}
			c = res.Config
		}
		data, err := yaml.Marshal(c)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configExplainCmd = &cobra.Command{
	Use:   "explain PATH",
	Short: "Show a config value and where it was set",
	Example: `  isim config explain wait.timeout_ms
  isim config explain logging.level`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		res, err := loadConfigResult()
		if err != nil {
			return err
		}
		value, src, err := config.Explain(res, args[0])
		if err != nil {
			return err
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			return err
		}
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "path: %s\n", args[0])
		fmt.Fprintf(w, "source: %s\n", src)
		fmt.Fprintf(w, "value: %s", out)
		return nil
	},
}

func loadConfigResult() (*config.LoadResult, error) {
	path, err := resolveConfigPath()
	if err != nil {
		return nil, err
	}
	return config.LoadFromPath(path)
}

func init() {
	rootCmd.AddCommand(configCmd)
	configPrintCmd.Flags().BoolVar(&configOpts.defaults, "defaults", false,
		"Print built-in defaults without reading any file")
	configCmd.AddCommand(configValidateCmd, configPrintCmd, configExplainCmd)
}
