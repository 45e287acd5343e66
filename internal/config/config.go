// Package config loads subplay settings from flags, environment variables and
// an optional subplay.yaml, in that order of precedence.
package config

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
	"github.com/spf13/viper"

	"github.com/subplay/subplay/internal/storage"
)

const (
	KeyPort        = "port"
	KeyBaseURL     = "base_url"
	KeyMediaDir    = "media.dir"
	KeyMediaSource = "media.source"
	KeyVideo       = "video"
	KeySubtitle    = "subtitle"
	KeyWebDir      = "web.dir"
	KeyMountAnchor = "mount.anchor"
	KeyTitle       = "title"
	KeyTrustProxy  = "trust_proxy"
	KeyCORSOrigins = "cors.origins"
	KeyInteractive = "interactive"
	KeyDatabaseURL = "database_url"
	KeyGeoIPDB     = "geoip_db"
	KeyS3Endpoint  = "s3.endpoint"
	KeyS3Bucket    = "s3.bucket"
	KeyS3Prefix    = "s3.prefix"
	KeyS3AccessKey = "s3.access_key"
	KeyS3SecretKey = "s3.secret_key"
	KeyS3Region    = "s3.region"
	KeyLogLevel    = "log.level"
	KeyLogJSON     = "log.json"
	KeyDocsEnabled = "docs.enabled"
)

const (
	SourceFS = "fs"
	SourceS3 = "s3"
)

// EnvKeyReplacer maps nested keys to environment variable names.
var EnvKeyReplacer = strings.NewReplacer(".", "_")

// Default holds the factory value of every key.
var Default = map[string]any{
	KeyPort:        "8080",
	KeyBaseURL:     "",
	KeyMediaDir:    "video",
	KeyMediaSource: SourceFS,
	KeyVideo:       "",
	KeySubtitle:    "",
	KeyWebDir:      "",
	KeyMountAnchor: "root",
	KeyTitle:       "Video Streaming App",
	KeyTrustProxy:  false,
	KeyCORSOrigins: []string{"*"},
	KeyInteractive: true,
	KeyDatabaseURL: "",
	KeyGeoIPDB:     "",
	KeyS3Endpoint:  "",
	KeyS3Bucket:    "subplay",
	KeyS3Prefix:    "",
	KeyS3AccessKey: "",
	KeyS3SecretKey: "",
	KeyS3Region:    "eu-central-1",
	KeyLogLevel:    "info",
	KeyLogJSON:     false,
	KeyDocsEnabled: false,
}

// sharedEnv keeps the unprefixed variable names common to deployments.
// Every other key reads SUBPLAY_<KEY>.
var sharedEnv = map[string]string{
	KeyPort:        "PORT",
	KeyBaseURL:     "BASE_URL",
	KeyDatabaseURL: "DATABASE_URL",
	KeyGeoIPDB:     "GEOIP_DB",
	KeyS3Endpoint:  "S3_ENDPOINT",
	KeyS3Bucket:    "S3_BUCKET",
	KeyS3AccessKey: "S3_ACCESS_KEY",
	KeyS3SecretKey: "S3_SECRET_KEY",
	KeyS3Region:    "S3_REGION",
	KeyDocsEnabled: "API_DOCS_ENABLED",
}

type Config struct {
	Port        string
	BaseURL     string
	MediaDir    string
	MediaSource string
	Video       string
	Subtitle    string
	WebDir      string
	MountAnchor string
	Title       string
	TrustProxy  bool
	CORSOrigins []string
	Interactive bool
	DatabaseURL string
	GeoIPDB     string
	S3          storage.Config
	LogLevel    string
	LogJSON     bool
	DocsEnabled bool
}

// Setup registers defaults and environment bindings on v and reads the
// config file. configFile may be empty, in which case subplay.yaml is looked
// up in the working directory and its absence is not an error.
func Setup(v *viper.Viper, fs afero.Fs, configFile string) error {
	v.SetFs(fs)

	v.SetEnvPrefix("subplay")
	v.SetEnvKeyReplacer(EnvKeyReplacer)
	v.AutomaticEnv()
	for key, env := range sharedEnv {
		if err := v.BindEnv(key, env, "SUBPLAY_"+strings.ToUpper(EnvKeyReplacer.Replace(key))); err != nil {
			return errors.Wrapf(err, "bind env %s", env)
		}
	}

	for key, value := range Default {
		v.SetDefault(key, value)
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("subplay")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return errors.Wrap(err, "read config")
	}
	return nil
}

func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		Port:        v.GetString(KeyPort),
		BaseURL:     v.GetString(KeyBaseURL),
		MediaDir:    v.GetString(KeyMediaDir),
		MediaSource: strings.ToLower(v.GetString(KeyMediaSource)),
		Video:       v.GetString(KeyVideo),
		Subtitle:    v.GetString(KeySubtitle),
		WebDir:      v.GetString(KeyWebDir),
		MountAnchor: v.GetString(KeyMountAnchor),
		Title:       v.GetString(KeyTitle),
		TrustProxy:  v.GetBool(KeyTrustProxy),
		CORSOrigins: splitList(v.GetStringSlice(KeyCORSOrigins)),
		Interactive: v.GetBool(KeyInteractive),
		DatabaseURL: v.GetString(KeyDatabaseURL),
		GeoIPDB:     v.GetString(KeyGeoIPDB),
		S3: storage.Config{
			Endpoint:  v.GetString(KeyS3Endpoint),
			Bucket:    v.GetString(KeyS3Bucket),
			Prefix:    v.GetString(KeyS3Prefix),
			AccessKey: v.GetString(KeyS3AccessKey),
			SecretKey: v.GetString(KeyS3SecretKey),
			Region:    v.GetString(KeyS3Region),
		},
		LogLevel:    v.GetString(KeyLogLevel),
		LogJSON:     v.GetBool(KeyLogJSON),
		DocsEnabled: v.GetBool(KeyDocsEnabled),
	}

	switch cfg.MediaSource {
	case SourceFS, SourceS3:
	default:
		return Config{}, errors.Errorf("media.source must be %q or %q, got %q", SourceFS, SourceS3, cfg.MediaSource)
	}
	if cfg.Port == "" {
		return Config{}, errors.New("port must not be empty")
	}
	return cfg, nil
}

// splitList accepts both repeated values and a single comma separated value,
// as environment variables only carry the latter.
func splitList(values []string) []string {
	var out []string
	for _, value := range values {
		for _, part := range strings.Split(value, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
