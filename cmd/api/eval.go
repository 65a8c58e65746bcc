package main

import (
	"fmt"
	"strings"

	"currency-crossover/internal/calculator"

	"github.com/spf13/cobra"
)

func newEvalCmd() *cobra.Command {
	var (
		mode     string
		from, to string
		steps    bool
	)

	cmd := &cobra.Command{
		Use:   "eval KEY...",
		Short: "Replay keypad presses and print the display",
		Example: `  currency-crossover eval 1 0 0 + 5 0 =
  currency-crossover eval --mode currency --from USD --to INR 2 5 =`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := calculator.ParseMode(mode)
			if err != nil {
				return err
			}

			keys := make([]calculator.Key, 0, len(args))
			for _, arg := range args {
				k, err := calculator.ParseKey(arg)
				if err != nil {
					return err
				}
				keys = append(keys, k)
			}

			engine := calculator.Engine{}
			if m == calculator.ModeCurrency {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				cache, snapshot := newRateCache(cmd.Context(), cfg)
				if snapshot != nil {
					defer snapshot.Close()
				}
				if err := cache.Load(cmd.Context()); err != nil {
					return fmt.Errorf("%s: %w", cache.Notice(), err)
				}
				engine = calculator.Engine{Rates: cache, HomeCurrency: cfg.Rates.HomeCurrency}
				if from == "" || to == "" {
					defFrom, defTo := cache.Defaults()
					from = firstNonEmpty(from, defFrom)
					to = firstNonEmpty(to, defTo)
				}
			}

			state := calculator.NewState(strings.ToUpper(from), strings.ToUpper(to))
			state.Mode = m

			out := cmd.OutOrStdout()
			for _, k := range keys {
				var effects []calculator.Effect
				state, effects = engine.Apply(state, k)
				if steps {
					fmt.Fprintf(out, "%-4s %s", k, calculator.Display(state))
					for _, e := range effects {
						fmt.Fprintf(out, " [%s]", e.Kind)
					}
					fmt.Fprintln(out)
				}
			}

			fmt.Fprintln(out, calculator.Display(state))
			return nil
		},
	}

	cmd.Flags().StringVar(&mode, "mode", "classic", "calculator mode: classic or currency")
	cmd.Flags().StringVar(&from, "from", "", "source currency (currency mode)")
	cmd.Flags().StringVar(&to, "to", "", "target currency (currency mode)")
	cmd.Flags().BoolVar(&steps, "steps", false, "print the display after every key")

	return cmd
}

func newRatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rates",
		Short: "Fetch the latest rate table and list the supported currencies",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			cache, snapshot := newRateCache(cmd.Context(), cfg)
			if snapshot != nil {
				defer snapshot.Close()
			}
			if err := cache.Load(cmd.Context()); err != nil {
				return fmt.Errorf("%s: %w", cache.Notice(), err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "base %s, home %s\n", cache.Base(), cache.Home())
			for _, code := range cache.Currencies() {
				rate, _ := cache.Rate(code)
				fmt.Fprintf(out, "%s\t%s\n", code, calculator.FormatNumber(rate))
			}
			return nil
		},
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
