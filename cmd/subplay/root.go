package main

import (
	"os"

	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/subplay/subplay/internal/config"
	"github.com/subplay/subplay/internal/logging"
)

var (
	configFile string
	settings   = viper.New()
	appConfig  config.Config
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configFile, "config", "", "Config file (default ./subplay.yaml)")

	flags.StringP("port", "p", "8080", "Port to listen on")
	lo.Must0(settings.BindPFlag(config.KeyPort, flags.Lookup("port")))

	flags.StringP("media-dir", "d", "video", "Directory holding videos and subtitles")
	lo.Must0(settings.BindPFlag(config.KeyMediaDir, flags.Lookup("media-dir")))

	flags.String("source", config.SourceFS, "Media backend: fs or s3")
	lo.Must0(rootCmd.RegisterFlagCompletionFunc("source", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return []string{config.SourceFS, config.SourceS3}, cobra.ShellCompDirectiveNoFileComp
	}))
	lo.Must0(settings.BindPFlag(config.KeyMediaSource, flags.Lookup("source")))

	flags.String("video", "", "Video to serve, skipping selection")
	lo.Must0(settings.BindPFlag(config.KeyVideo, flags.Lookup("video")))

	flags.String("subtitle", "", "Subtitle to serve, skipping selection")
	lo.Must0(settings.BindPFlag(config.KeySubtitle, flags.Lookup("subtitle")))

	flags.String("web-dir", "", "Directory with index.html and static assets")
	lo.Must0(settings.BindPFlag(config.KeyWebDir, flags.Lookup("web-dir")))

	flags.Bool("interactive", true, "Ask which video and subtitle to serve when run in a terminal")
	lo.Must0(settings.BindPFlag(config.KeyInteractive, flags.Lookup("interactive")))

	flags.Bool("trust-proxy", false, "Trust X-Forwarded-* headers")
	lo.Must0(settings.BindPFlag(config.KeyTrustProxy, flags.Lookup("trust-proxy")))

	flags.String("log-level", "info", "Log level: debug, info, warn or error")
	lo.Must0(settings.BindPFlag(config.KeyLogLevel, flags.Lookup("log-level")))
}

var rootCmd = &cobra.Command{
	Use:           "subplay",
	Short:         "Stream a video with its subtitle to browsers on the local network",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		if err := config.Setup(settings, afero.NewOsFs(), configFile); err != nil {
			return err
		}
		cfg, err := config.Load(settings)
		if err != nil {
			return err
		}
		if err := logging.Setup(os.Stderr, cfg.LogLevel, cfg.LogJSON); err != nil {
			log.WithError(err).Warn("invalid log level, using info")
		}
		appConfig = cfg
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		return serve(cmd.Context(), cmd.OutOrStdout(), appConfig)
	},
}
