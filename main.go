package main

import (
	"fmt"
	"inkwell-entitlement/src"
	"inkwell-entitlement/src/license"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	if len(os.Args) < 2 {
		src.InitServer()
	} else {
		switch strings.ToLower(os.Args[1]) {
		case "server":
			src.InitServer()
		case "license":
			fmt.Println(license.GenerateKey())
		default:
			fmt.Println("unsupported command")
		}
	}
}
