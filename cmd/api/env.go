package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// dotEnvFiles are read in order; earlier files win and the process
// environment beats all of them. They usually carry CALC_RATES_API_KEY and
// CALC_QUOTES_API_KEY.
var dotEnvFiles = []string{".env.local", ".env"}

// loadDotEnv loads the dotenv files that exist.
func loadDotEnv() error {
	for _, file := range dotEnvFiles {
		err := godotenv.Load(file)
		if err == nil || errors.Is(err, os.ErrNotExist) {
			continue
		}
		return fmt.Errorf("load %s: %w", file, err)
	}
	return nil
}
