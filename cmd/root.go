// Copyright (c) 2026 John Dewey

// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to
// deal in the Software without restriction, including without limitation the
// rights to use, copy, modify, merge, publish, distribute, sublicense, and/or
// sell copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:

// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.

// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING
// FROM, OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER
// DEALINGS IN THE SOFTWARE.

package cmd

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/cardbridge-io/cardbridge/internal/cli"
	"github.com/cardbridge-io/cardbridge/internal/config"
	"github.com/cardbridge-io/cardbridge/internal/telemetry"
)

var (
	appConfig  config.Config
	appFs      = afero.NewOsFs()
	logger     = slog.New(slog.NewTextHandler(os.Stdout, nil))
	jsonOutput bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cardbridge",
	Short: "A Thai national ID card reader streaming card data to WebSocket subscribers.",
	Long: `A daemon that reads Thai national ID smart cards through PC/SC readers
and streams the decoded card data to WebSocket subscribers.

┌─┐┌─┐┬─┐┌┬┐┌┐ ┬─┐┬┌┬┐┌─┐┌─┐
│  ├─┤├┬┘ ││├┴┐├┬┘│ │││ ┬├┤
└─┘┴ ┴┴└──┴┘└─┘┴└─┴─┴┘└─┘└─┘

https://github.com/cardbridge-io/cardbridge
`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	err := rootCmd.ExecuteContext(ctx)
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogger)

	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Enable or disable debug mode")
	rootCmd.PersistentFlags().BoolVarP(&jsonOutput, "json", "j", false, "Enable JSON output")

	rootCmd.PersistentFlags().
		StringP("cardbridge-file", "f", "/etc/cardbridge/cardbridge.yaml", "Path to config file")

	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("cardbridgeFile", rootCmd.PersistentFlags().Lookup("cardbridge-file"))
}

func initConfig() {
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	viper.SetConfigType("yaml")
	viper.AutomaticEnv()
	viper.SetEnvPrefix("cardbridge")
	viper.SetFs(appFs)

	// The daemon runs without a config file; file values merge over
	// these defaults.
	appConfig = config.Default()

	cfgFile := viper.GetString("cardbridgeFile")
	found, err := afero.Exists(appFs, cfgFile)
	if err != nil {
		cli.LogFatal(logger, "failed to probe config file", err, "cardbridgeFile", cfgFile)
	}

	if found {
		viper.SetConfigFile(cfgFile)
		if err := viper.ReadInConfig(); err != nil {
			cli.LogFatal(logger, "failed to read config", err, "cardbridgeFile", cfgFile)
		}
	}

	if err := viper.Unmarshal(&appConfig); err != nil {
		cli.LogFatal(logger, "failed to unmarshal config", err, "cardbridgeFile", cfgFile)
	}

	// Auto-enable tracing in debug mode so trace_id appears in log lines.
	// No exporter is set, only log correlation.
	if appConfig.Debug && !appConfig.Telemetry.Tracing.Enabled {
		appConfig.Telemetry.Tracing.Enabled = true
	}

	if err := config.Validate(&appConfig); err != nil {
		cli.LogFatal(logger, "validation failed", err, "cardbridgeFile", cfgFile)
	}
}

func initLogger() {
	logLevel := slog.LevelInfo
	if viper.GetBool("debug") {
		logLevel = slog.LevelDebug
	}

	var handler slog.Handler
	if jsonOutput {
		handler = slog.NewJSONHandler(os.Stderr, nil)
	} else {
		handler = tint.NewHandler(os.Stderr, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.Kitchen,
			NoColor:    !term.IsTerminal(int(os.Stdout.Fd())),
		})
	}

	handler = telemetry.NewTraceHandler(handler)
	logger = slog.New(handler)
}
