package main

import (
	"log"

	"github.com/thiagokokada/git2html/cmd"
)

func main() {
	if err := cmd.Run(); err != nil {
		log.Fatalf("git2html: %v", err)
	}
}
