package main

import (
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Config holds the daemon configuration.
type Config struct {
	Listen struct {
		Host string `mapstructure:"host"`
		Port int    `mapstructure:"port"`
	} `mapstructure:"listen"`
	Library struct {
		Root string `mapstructure:"root"`
	} `mapstructure:"library"`
	Artwork struct {
		MaxDimension int    `mapstructure:"max_dimension"`
		CacheDir     string `mapstructure:"cache_dir"`
	} `mapstructure:"artwork"`
	Session struct {
		BusName string `mapstructure:"bus_name"`
	} `mapstructure:"session"`
	App struct {
		Path string `mapstructure:"path"`
	} `mapstructure:"app"`
	DataDir string `mapstructure:"data_dir"`
}

// xdgDir resolves an XDG base directory, falling back to the home
// directory convention.
func xdgDir(envVar, fallback string) string {
	if dir := os.Getenv(envVar); dir != "" {
		return dir
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}

	return filepath.Join(home, fallback)
}

func initConfig(defaultHost string) Config {
	viper.SetDefault("listen.host", defaultHost)
	viper.SetDefault("listen.port", 2287)
	viper.SetDefault("library.root", "")
	viper.SetDefault("artwork.max_dimension", 320)
	viper.SetDefault("artwork.cache_dir", filepath.Join(xdgDir("XDG_CACHE_HOME", ".cache"), "widdle", "artwork"))
	viper.SetDefault("session.bus_name", "")
	viper.SetDefault("app.path", "")
	viper.SetDefault("data_dir", filepath.Join(xdgDir("XDG_DATA_HOME", filepath.Join(".local", "share")), "widdle"))

	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(filepath.Join(xdgDir("XDG_CONFIG_HOME", ".config"), "widdle"))

	viper.SetEnvPrefix("WIDDLE")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Println("config:", err)
		}
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		log.Println("config:", err)
	}

	viper.OnConfigChange(func(e fsnotify.Event) {
		log.Println("config changed:", e.Name)
	})
	viper.WatchConfig()

	return cfg
}
