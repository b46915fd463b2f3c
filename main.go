package main

import (
	"os"

	"attendance_ms/config"

	"github.com/gofiber/fiber/v2/log"
)

func main() {
	// NOTE: Exit non-zero when startup panics
	defer func() {
		if r := recover(); r != nil {
			os.Exit(1)
		}
	}()

	log.Info("Loading configuration...")
	if err := config.Load(os.Getenv("CONFIG_PATH")); err != nil {
		log.Panic("invalid configuration: ", err)
	}
	log.Info("Configuration loaded successfully")

	s := new(service)
	s.Start()
}
