// wlcomp runs a headless Wayland compositor and provides tools for
// inspecting Wayland servers.
package main

import (
	"os"

	"deedles.dev/wlcomp/config"
	"deedles.dev/wlcomp/internal/debug"
	"github.com/spf13/cobra"
)

var (
	configPath string
	cfg        *config.Config
)

var rootCmd = &cobra.Command{
	Use:          "wlcomp",
	Short:        "A headless Wayland compositor",
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if c.Logging.Level != "" {
			debug.SetLevel(c.Logging.Level)
		}
		cfg = c
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to wlcomp.toml")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(globalsCmd)
	rootCmd.AddCommand(protocolCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		debug.Error("command failed", "err", err)
		os.Exit(1)
	}
}
