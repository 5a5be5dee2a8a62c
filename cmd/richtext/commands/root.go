// Package commands implements the CLI commands for richtext.
package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/weirin1/html/internal/logger"
)

var rootCmd = &cobra.Command{
	Use:   "richtext",
	Short: "Translate HTML into rich-text node trees",
	Long: `Richtext converts HTML fragments into the name/attrs/children node
tree accepted by rich-text renderers.

Inputs may be files, URLs or "-" for stdin. Output is JSON by default;
JSONL and YAML are also available.

Examples:
  # Translate a fragment from stdin
  echo '<p>Hello <b>world</b></p>' | richtext translate

  # Translate a GBK encoded file, keeping whitespace-only text
  richtext translate --charset gbk --keep-empty page.html

  # Translate a rendered page with metadata and stats
  richtext translate --fetch-mode dynamic --include-metadata --stats https://example.com

  # Split an inline style attribute into declarations
  richtext css 'color: red; background: url(a;b.png)'`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		level := viper.GetString("log_level")
		if _, err := logger.ParseLevel(level); err != nil {
			return err
		}
		logger.Init(logger.Options{
			Level:  level,
			Debug:  viper.GetBool("debug"),
			Quiet:  viper.GetBool("quiet"),
			JSON:   viper.GetBool("log_json"),
			Output: cmd.ErrOrStderr(),
		})
		if f := viper.ConfigFileUsed(); f != "" {
			logger.Debug("config file loaded", "path", f)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().String("config", "", "config file (default $HOME/.richtext.yaml)")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "only log errors")
	rootCmd.PersistentFlags().Bool("log-json", false, "write logs as JSON")

	_ = viper.BindPFlag("config", rootCmd.PersistentFlags().Lookup("config"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("quiet", rootCmd.PersistentFlags().Lookup("quiet"))
	_ = viper.BindPFlag("log_json", rootCmd.PersistentFlags().Lookup("log-json"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".richtext")
		viper.SetConfigType("yaml")
	}

	// Environment variables, e.g. RICHTEXT_CHARSET
	viper.SetEnvPrefix("RICHTEXT")
	viper.AutomaticEnv()
	_ = viper.BindEnv("log_level")

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// logInfo prints a progress message to stderr unless quiet mode is on.
func logInfo(cmd *cobra.Command, format string, args ...any) {
	if !viper.GetBool("quiet") {
		fmt.Fprintf(cmd.ErrOrStderr(), format+"\n", args...)
	}
}
