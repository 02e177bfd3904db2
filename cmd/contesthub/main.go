package main

import (
	"log"

	"github.com/MrSnakeDoc/contesthub/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("❌ contesthub failed to start: %v", err)
	}
}
