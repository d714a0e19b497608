package main

import (
	"log"

	"github.com/Ashenafi-pixel/deepdive-fractions/config"
	"github.com/Ashenafi-pixel/deepdive-fractions/server"

	"github.com/joho/godotenv"
)

func main() {
	// .env in cwd, then the project root
	_ = godotenv.Load(".env")
	_ = godotenv.Load("../.env")
	_ = godotenv.Load("../.env.local")
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}
	srv, err := server.New(cfg)
	if err != nil {
		log.Fatal(err)
	}
	if err := srv.Run(); err != nil {
		log.Fatal(err)
	}
}
