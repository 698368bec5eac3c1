package cli

import (
	"github.com/spf13/cobra"

	"subburn/internal/config"
	"subburn/internal/logging"
)

var (
	verbose    bool
	configPath string
	logger     *logging.Logger
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "subburn",
	Short: "Burn translated subtitles into videos",
	Long: `Subburn transcribes a video's audio, translates it, and renders
a new video with the translated subtitles burned in.

Translation prefers dedicated per-pair models and falls back to a hosted
LLM when no model pair is available.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if loaded.Verbose {
			verbose = true
		}
		cfg = loaded
		logger = logging.NewLogger(verbose)
		return nil
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().
		BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().
		StringVarP(&configPath, "config", "c", "", "Config file path (default ~/.config/subburn/config.toml)")
}
