// Command hqpikctl is the operator-facing CLI for the hierarchical-QP
// controller: it can start the daemon itself (serve), check a config
// file before handing it to a daemon (validate-config), or push a
// recorded config's preload sections into one that's already running
// (replay).
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/taskstack/hqpik/internal/config"
	"github.com/taskstack/hqpik/internal/daemon"
	"github.com/taskstack/hqpik/internal/replay"
)

var rootCmd = &cobra.Command{
	Use:   "hqpikctl",
	Short: "Operate the hierarchical-QP inverse-kinematics controller",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the controller daemon in the foreground",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		return daemon.Run(configPath)
	},
}

var validateConfigCmd = &cobra.Command{
	Use:   "validate-config",
	Short: "Load and resolve a startup config without starting the daemon",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		r, err := config.NewLoader(configPath).Load()
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "config OK: %d joints, %d preloaded tasks, %d preloaded primitives, %d preloaded joint limits\n",
			len(r.Joints), len(r.PreloadTasks), len(r.PreloadGeometricPrimitives), len(r.PreloadJointLimits))
		return nil
	},
}

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Push a config file's preload sections into a running daemon's command surface",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		target, _ := cmd.Flags().GetString("target")

		r, err := config.NewLoader(configPath).Load()
		if err != nil {
			return err
		}
		return replay.NewClient(target).Apply(r)
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "hqpikd.yaml", "path to the startup config file")
	replayCmd.Flags().String("target", "http://localhost:8080", "base URL of the running daemon's command surface")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(validateConfigCmd)
	rootCmd.AddCommand(replayCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
