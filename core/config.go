package core

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string
		DisableReqLogs  bool
		ShutdownTimeout time.Duration
	}

	DatabaseConfig struct {
		Engine string // memory | sqlite | postgres
		DSN    string
	}

	ListConfig struct {
		ItemHeight      int
		ContainerHeight int
		Overscan        int
	}

	LogConfig struct {
		Level  string
		Pretty bool
	}

	Config struct {
		Env          string
		Debug        bool
		TestMode     bool
		AppName      string
		Locale       string
		DatasetPath  string
		RollbarToken string
		Build        string
		Server       ServerConfig
		Database     DatabaseConfig
		List         ListConfig
		Log          LogConfig
	}
)

func setDefaults(conf *viper.Viper) {
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("testMode", false)
	conf.SetDefault("appName", "Ratiba")
	conf.SetDefault("locale", "ar")
	conf.SetDefault("datasetPath", "")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("build", "dev")
	conf.SetDefault("serverAddress", ":8000")
	conf.SetDefault("serverDisableReqLogs", false)
	conf.SetDefault("serverShutdownTimeout", 5*time.Second)
	conf.SetDefault("databaseEngine", "sqlite")
	conf.SetDefault("databaseDSN", "file::memory:?cache=shared")
	conf.SetDefault("listItemHeight", 64)
	conf.SetDefault("listContainerHeight", 400)
	conf.SetDefault("listOverscan", 5)
	conf.SetDefault("logLevel", "info")
	conf.SetDefault("logPretty", true)
}

// NewConfig loads the configuration from defaults, `config/.env.<env>` (if it exists) and the environment.
// ENV selects the environment (DEV by default) and is also used as the variables prefix, eg. DEV_LOGLEVEL.
func NewConfig() (*Config, error) {
	conf := viper.New()
	setDefaults(conf)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	if root, err := ProjectRoot(); err == nil {
		dotEnvPath := filepath.Join(root, "config", ".env."+strings.ToLower(env))
		if _, err := os.Stat(dotEnvPath); err == nil {
			if err := godotenv.Load(dotEnvPath); err != nil {
				return nil, errors.Wrapf(err, "loading %s", dotEnvPath)
			}
		} else if !os.IsNotExist(err) {
			return nil, errors.Wrapf(err, "checking %s", dotEnvPath)
		}
	}
	conf.AutomaticEnv()

	return &Config{
		Env:          env,
		Debug:        conf.GetBool("debug"),
		TestMode:     conf.GetBool("testMode"),
		AppName:      conf.GetString("appName"),
		Locale:       conf.GetString("locale"),
		DatasetPath:  conf.GetString("datasetPath"),
		RollbarToken: conf.GetString("rollbarToken"),
		Build:        conf.GetString("build"),
		Server: ServerConfig{
			Address:         conf.GetString("serverAddress"),
			DisableReqLogs:  conf.GetBool("serverDisableReqLogs"),
			ShutdownTimeout: conf.GetDuration("serverShutdownTimeout"),
		},
		Database: DatabaseConfig{
			Engine: conf.GetString("databaseEngine"),
			DSN:    conf.GetString("databaseDSN"),
		},
		List: ListConfig{
			ItemHeight:      conf.GetInt("listItemHeight"),
			ContainerHeight: conf.GetInt("listContainerHeight"),
			Overscan:        conf.GetInt("listOverscan"),
		},
		Log: LogConfig{
			Level:  conf.GetString("logLevel"),
			Pretty: conf.GetBool("logPretty"),
		},
	}, nil
}
