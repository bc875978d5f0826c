package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type LocalBackend string

const (
	LocalBackendFile   LocalBackend = "file"
	LocalBackendSQLite LocalBackend = "sqlite"
)

// ClientConfig configures the studyctl data-access layer.
// An empty APIURL keeps every call on the on-device store.
type ClientConfig struct {
	APIURL        string
	DataDir       string
	LocalBackend  LocalBackend
	Timeout       time.Duration
	LogMode       string
	LookupBaseURL string
}

// NewClientViper returns a viper instance reading PHARMASTUDY_* environment
// variables. Callers may bind command-line flags onto it before loading.
func NewClientViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix("pharmastudy")
	v.AutomaticEnv()
	v.SetDefault("api_url", "")
	v.SetDefault("data_dir", DefaultClientDataDir)
	v.SetDefault("local_backend", string(LocalBackendFile))
	v.SetDefault("timeout", "10s")
	v.SetDefault("log_mode", "development")
	v.SetDefault("lookup_base_url", DefaultLookupBaseURL)
	return v
}

func LoadClientConfig(v *viper.Viper) ClientConfig {
	return ClientConfig{
		APIURL:        strings.TrimRight(strings.TrimSpace(v.GetString("api_url")), "/"),
		DataDir:       v.GetString("data_dir"),
		LocalBackend:  LocalBackend(strings.ToLower(v.GetString("local_backend"))),
		Timeout:       v.GetDuration("timeout"),
		LogMode:       v.GetString("log_mode"),
		LookupBaseURL: v.GetString("lookup_base_url"),
	}
}

// NewClientConfig loads the client configuration from the environment only.
func NewClientConfig() ClientConfig {
	return LoadClientConfig(NewClientViper())
}
