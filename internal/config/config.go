package config

import (
	"context"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

const envPrefix = "FAMILYHUB_"

type Application struct {
	Host     string   `koanf:"host"`
	Port     int      `koanf:"port"`
	Frontend Frontend `koanf:"frontend"`
	Google   Google   `koanf:"google"`
	Database Database `koanf:"db"`
	Layout   Layout   `koanf:"layout"`
	Storage  Storage  `koanf:"storage"`
}

type Frontend struct {
	Enabled bool `koanf:"enabled"`
}

type Google struct {
	ClientId     string `koanf:"clientid"`
	ClientSecret string `koanf:"clientsecret"`
}

type Database struct {
	Host   string `koanf:"host"`
	Port   int    `koanf:"port"`
	User   string `koanf:"user"`
	Pass   string `koanf:"pass"`
	Name   string `koanf:"name"`
	Schema string `koanf:"schema"`
}

// Layout holds the scale of the calendar time grid.
type Layout struct {
	PixelsPerHour  float64 `koanf:"pixelsperhour"`
	MinEventHeight float64 `koanf:"mineventheight"`
}

type Storage struct {
	Avatars string `koanf:"avatars"`
}

func defaults() Application {
	return Application{
		Host: "http://localhost:3000",
		Port: 8181,
		Frontend: Frontend{
			Enabled: true,
		},
		Database: Database{
			Host:   "localhost",
			Port:   5432,
			User:   "familyhub",
			Pass:   "",
			Name:   "familyhub",
			Schema: "familyhub",
		},
		Layout: Layout{
			PixelsPerHour:  80,
			MinEventHeight: 20,
		},
		Storage: Storage{
			Avatars: "storage/avatars",
		},
	}
}

// Load reads the configuration from defaults, the YAML file at path and FAMILYHUB_ environment
// variables, in that order. A .env file in the working directory is loaded into the environment first.
// Values referencing AWS SSM parameters (ssm:/name) are resolved last.
func Load(path string) (Application, error) {
	if err := godotenv.Load(); err != nil {
		log.Debugf("no .env file loaded: %v", err)
	}

	app, err := load(path)
	if err != nil {
		return Application{}, err
	}

	if !hasSecretRefs(app) {
		return app, nil
	}
	resolver, err := NewSSMResolver(context.Background())
	if err != nil {
		return Application{}, err
	}
	if err := ResolveSecrets(context.Background(), &app, resolver); err != nil {
		return Application{}, err
	}
	return app, nil
}

func load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(defaults(), "koanf"), nil)
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
