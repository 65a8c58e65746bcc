package main

import (
	"currency-crossover/internal/calculator"
	"currency-crossover/internal/widget"
)

// initMetrics creates the application-specific metric instruments. Add new
// domain InitMetrics calls here as the project grows.
func initMetrics() error {
	if err := calculator.InitMetrics(); err != nil {
		return err
	}

	if err := widget.InitMetrics(); err != nil {
		return err
	}

	return nil
}
