package config

import (
	"djp.chapter42.de/beeper/internal/data"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	DefaultPort        string = "3000"
	DefaultPendingFile string = "pending_emails.json"
)

var Config *data.BeeperConfig

func InitConfig(logger *zap.Logger) {
	v := viper.New()
	v.SetDefault("port", DefaultPort)
	v.SetDefault("pending_file", DefaultPendingFile)
	v.SetConfigName("beeper.cfg")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.Warn("Konfigurationsdatei nicht gefunden, verwende Standardwerte")
		} else {
			logger.Error("Fehler beim Lesen der Konfigurationsdatei:", zap.Error(err))
		}
	}

	if err := v.Unmarshal(&Config); err != nil {
		logger.Error("Fehler beim Lesen der Konfigurationsdatei:", zap.Error(err))
	}
}
