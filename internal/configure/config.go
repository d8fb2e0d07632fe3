package configure

import (
	"bytes"
	"errors"
	"io/fs"
	"os"
	"reflect"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

func checkErr(err error) {
	if err != nil {
		zap.S().Fatalw("config",
			"error", err,
		)
	}
}

func New() *Config {
	initLogging("info")

	c, err := Load(pflag.CommandLine, os.Args[1:])
	checkErr(err)

	initLogging(c.Level)

	return c
}

// Load resolves the config from defaults, the config file, the environment
// and flags, in increasing order of precedence.
func Load(flags *pflag.FlagSet, args []string) (*Config, error) {
	config := viper.New()

	if err := setDefaults(config, Defaults()); err != nil {
		return nil, err
	}

	flags.String("mode", "", "The running mode, `api`, `worker` or `generate`")
	flags.String("config", "config.yaml", "Config file location")
	flags.Bool("noheader", false, "Disable the startup header")
	flags.String("level", "", "Log level")
	flags.String("input", "", "Source image for generate mode")
	flags.String("output", "", "Output directory for generate mode")

	if err := flags.Parse(args); err != nil {
		return nil, err
	}

	for key, flag := range map[string]string{
		"mode":            "mode",
		"config":          "config",
		"noheader":        "noheader",
		"level":           "level",
		"generate.input":  "input",
		"generate.output": "output",
	} {
		if f := flags.Lookup(flag); f != nil && f.Changed {
			if err := config.BindPFlag(key, f); err != nil {
				return nil, err
			}
		}
	}

	// File
	config.SetConfigFile(config.GetString("config"))
	config.AddConfigPath(".")
	if err := config.ReadInConfig(); err != nil && !errors.As(err, &viper.ConfigFileNotFoundError{}) && !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// Environment
	config.SetEnvPrefix("ICONGEN")
	config.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	config.AllowEmptyEnv(true)
	config.AutomaticEnv()

	bindEnvs(config, Config{})

	c := &Config{}
	if err := config.Unmarshal(c); err != nil {
		return nil, err
	}

	return c, nil
}

// setDefaults registers every leaf of defaults as a viper default, so keys a
// config file leaves out keep their default value.
func setDefaults(config *viper.Viper, defaults Config) error {
	b, err := json.Marshal(defaults)
	if err != nil {
		return err
	}

	tmp := viper.New()
	tmp.SetConfigType("json")
	if err := tmp.ReadConfig(bytes.NewReader(b)); err != nil {
		return err
	}

	for _, key := range tmp.AllKeys() {
		config.SetDefault(key, tmp.Get(key))
	}

	return nil
}

func bindEnvs(config *viper.Viper, iface interface{}, parts ...string) {
	ifv := reflect.ValueOf(iface)
	ift := reflect.TypeOf(iface)
	for i := 0; i < ift.NumField(); i++ {
		v := ifv.Field(i)
		t := ift.Field(i)
		tv, ok := t.Tag.Lookup("mapstructure")
		if !ok {
			continue
		}
		switch v.Kind() {
		case reflect.Struct:
			bindEnvs(config, v.Interface(), append(parts, tv)...)
		default:
			_ = config.BindEnv(strings.Join(append(parts, tv), "."))
		}
	}
}

type Mode string

const (
	ModeAPI      Mode = "api"
	ModeWorker   Mode = "worker"
	ModeGenerate Mode = "generate"
)

type Config struct {
	Level      string `mapstructure:"level" json:"level"`
	Mode       Mode   `mapstructure:"mode" json:"mode"`
	ConfigFile string `mapstructure:"config" json:"config"`
	NoHeader   bool   `mapstructure:"noheader" json:"noheader"`

	API struct {
		Bind           string `mapstructure:"bind" json:"bind"`
		MaxUploadBytes int    `mapstructure:"max_upload_bytes" json:"max_upload_bytes"`
		MaxPixels      int    `mapstructure:"max_pixels" json:"max_pixels"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
		RateLimit      struct {
			Enabled       bool `mapstructure:"enabled" json:"enabled"`
			Requests      int  `mapstructure:"requests" json:"requests"`
			WindowSeconds int  `mapstructure:"window_seconds" json:"window_seconds"`
		} `mapstructure:"rate_limit" json:"rate_limit"`
	} `mapstructure:"api" json:"api"`

	Worker struct {
		Jobs           int    `mapstructure:"jobs" json:"jobs"`
		TimeoutSeconds int    `mapstructure:"timeout_seconds" json:"timeout_seconds"`
		MaxPixels      int    `mapstructure:"max_pixels" json:"max_pixels"`
		JobsChannel    string `mapstructure:"jobs_channel" json:"jobs_channel"`
		ResultsChannel string `mapstructure:"results_channel" json:"results_channel"`
	} `mapstructure:"worker" json:"worker"`

	Generate struct {
		Input  string `mapstructure:"input" json:"input"`
		Output string `mapstructure:"output" json:"output"`
	} `mapstructure:"generate" json:"generate"`

	Health struct {
		Bind    string `mapstructure:"bind" json:"bind"`
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
	} `mapstructure:"health" json:"health"`

	KubeMQ struct {
		Host      string `mapstructure:"host" json:"host"`
		Port      int    `mapstructure:"port" json:"port"`
		ClientID  string `mapstructure:"client_id" json:"client_id"`
		AuthToken string `mapstructure:"auth_token" json:"auth_token"`

		WaitSeconds       int `mapstructure:"wait_seconds" json:"wait_seconds"`
		VisibilitySeconds int `mapstructure:"visibility_seconds" json:"visibility_seconds"`
	} `mapstructure:"kubemq" json:"kubemq"`

	S3 struct {
		Region      string `mapstructure:"region" json:"region"`
		Endpoint    string `mapstructure:"endpoint" json:"endpoint"`
		AccessToken string `mapstructure:"access_token" json:"access_token"`
		SecretKey   string `mapstructure:"secret_key" json:"secret_key"`
	} `mapstructure:"s3" json:"s3"`

	Monitoring struct {
		Bind    string `mapstructure:"bind" json:"bind"`
		Enabled bool   `mapstructure:"enabled" json:"enabled"`
		Labels  Labels `mapstructure:"labels" json:"labels"`
	} `mapstructure:"monitoring" json:"monitoring"`
}

func Defaults() Config {
	c := Config{
		Level:      "info",
		Mode:       ModeAPI,
		ConfigFile: "config.yaml",
	}

	c.API.Bind = "0.0.0.0:8080"
	c.API.MaxUploadBytes = 5 * 1024 * 1024
	c.API.MaxPixels = 64 * 1024 * 1024
	c.API.TimeoutSeconds = 30
	c.API.RateLimit.Enabled = true
	c.API.RateLimit.Requests = 100
	c.API.RateLimit.WindowSeconds = 15 * 60

	c.Worker.TimeoutSeconds = 120
	c.Worker.MaxPixels = 64 * 1024 * 1024
	c.Worker.JobsChannel = "icon-generator-jobs"
	c.Worker.ResultsChannel = "icon-generator-results"

	c.Generate.Input = "resources/images/source.png"
	c.Generate.Output = "output"

	c.Health.Bind = "0.0.0.0:9100"
	c.Monitoring.Bind = "0.0.0.0:9200"

	c.KubeMQ.Host = "localhost"
	c.KubeMQ.Port = 50000
	c.KubeMQ.ClientID = "icon-generator"
	c.KubeMQ.WaitSeconds = 10
	c.KubeMQ.VisibilitySeconds = 60

	return c
}

type Labels []struct {
	Key   string `mapstructure:"key" json:"key"`
	Value string `mapstructure:"value" json:"value"`
}

func (l Labels) ToPrometheus() prometheus.Labels {
	mp := prometheus.Labels{}

	for _, v := range l {
		mp[v.Key] = v.Value
	}

	return mp
}
