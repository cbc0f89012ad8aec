package config

import (
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	Host     string   `koanf:"host"`
	Server   Server   `koanf:"server"`
	Database Database `koanf:"db"`
	Redis    Redis    `koanf:"redis"`
	Timings  Timings  `koanf:"timings"`
	Metrics  Metrics  `koanf:"metrics"`
}

type Server struct {
	Port int `koanf:"port"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Redis configures the optional shared backend for the branch timings cache.
// When disabled every editor session keeps its cache in memory.
type Redis struct {
	Enabled    bool   `koanf:"enabled"`
	Addr       string `koanf:"addr"`
	Password   string `koanf:"password"`
	DB         int    `koanf:"db"`
	TTLSeconds int    `koanf:"ttlseconds"`
}

type Timings struct {
	// TransactionalSave runs the delete and the insert of a save in a single transaction.
	TransactionalSave bool `koanf:"transactionalsave"`
	// MaxSessions caps the number of editor sessions kept open at once.
	MaxSessions int `koanf:"maxsessions"`
	// SessionIdleMinutes closes editor sessions unused for this long.
	SessionIdleMinutes int `koanf:"sessionidleminutes"`
}

type Metrics struct {
	Enabled bool `koanf:"enabled"`
}

const envPrefix = "LIBRADESK_"

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		Host: "http://localhost:3000",
		Server: Server{
			Port: 8181,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "libradesk",
			Pass:   "",
			Name:   "libradesk",
			Schema: "libradesk",
		},
		Redis: Redis{
			Enabled:    false,
			Addr:       "localhost:6379",
			TTLSeconds: 3600,
		},
		Timings: Timings{
			MaxSessions:        256,
			SessionIdleMinutes: 30,
		},
		Metrics: Metrics{
			Enabled: true,
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: envPrefix,
		TransformFunc: func(k, v string) (string, any) {
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, envPrefix)), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
