package main

import (
	"log"

	"github.com/joho/godotenv"

	corecmd "github.com/m3rciful/psfastpay/core/cmd"
	"github.com/m3rciful/psfastpay/internal/app"
	"github.com/m3rciful/psfastpay/internal/config"
)

func main() {
	// Missing .env is fine, variables may come from the environment.
	_ = godotenv.Load()

	err := corecmd.Run(corecmd.Options{
		ConfigEnvVar:      "CONFIG_PATH",
		DefaultConfigPath: "configs/config.yml",
		LoadConfig: func(path string) (corecmd.ConfigCarrier, error) {
			return config.Load(path)
		},
		Bootstrap: func(cfg corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
			appCfg, ok := cfg.(*config.Config)
			if !ok {
				log.Fatalf("unexpected config type %T", cfg)
			}
			return app.Bootstrap(appCfg)
		},
	})
	if err != nil {
		log.Fatalf("psfastpay: %v", err)
	}
}
