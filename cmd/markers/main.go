// Command markers renders, inspects and serves chart marker frames.
package main

import (
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ha1tch/chartmarkers/pkg/config"
)

// settings is loaded before any subcommand runs.
var settings *config.Config

var viperInstance = config.New()

var RootCmd = &cobra.Command{
	Use:   "markers",
	Short: "chart marker toolkit",
	Long:  "render, hit-test and preview chart marker frames",

	// SilenceUsage is an option to silence usage when an error occurs.
	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return loadSettings(viperInstance, cmd)
	},
}

func init() {
	RootCmd.PersistentFlags().Bool("debug", false, "debug flag")
	RootCmd.PersistentFlags().String("config", "", "config file")
}

func loadSettings(v *viper.Viper, cmd *cobra.Command) error {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}
	c, err := config.Load(v, path, cmd.Flags())
	if err != nil {
		return errors.Wrap(err, "load config")
	}
	settings = c

	if c.Debug {
		log.SetLevel(log.DebugLevel)
	}
	log.WithField("config", v.ConfigFileUsed()).Debug("config loaded")
	return nil
}

func main() {
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	if err := RootCmd.Execute(); err != nil {
		log.WithError(err).Fatal("cannot execute command")
	}
}
