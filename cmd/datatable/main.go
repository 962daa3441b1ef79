package main

import (
	"log"

	"github.com/jask/datatable/internal/commands"
)

func main() {
	if err := commands.New().Execute(); err != nil {
		log.Fatalf("datatable: %v", err)
	}
}
