package main

import (
	"os"

	_ "github.com/joho/godotenv/autoload"

	"github.com/lexware-office/go-lexware-client/internal/command"
)

func main() {
	os.Exit(command.Main(os.Args))
}
