package main

import (
	"flag"
	"log"

	"github.com/simp-lee/shopadmin/internal/app"
	"github.com/simp-lee/shopadmin/internal/config"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal("load config: ", err)
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Fatal("create app: ", err)
	}

	if err := a.Run(); err != nil {
		log.Fatal("server error: ", err)
	}
}
