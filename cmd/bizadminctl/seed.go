package main

import (
	"github.com/BradenHooton/bizadmin/internal/repositories"
	"github.com/BradenHooton/bizadmin/internal/seed"
	"github.com/spf13/cobra"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load reference catalog data from a YAML file",
	Long:  "Insert currencies, countries and products from a YAML file. Rows that already exist are skipped.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		file, err := seed.ParseFile(seedFile)
		if err != nil {
			return err
		}

		logger := newLogger(cmd)
		db, err := openDB(cmd.Context(), logger)
		if err != nil {
			return err
		}
		defer db.Close()

		res, err := seed.Load(cmd.Context(), file, seed.Stores{
			Currencies: repositories.NewCurrencyRepository(db),
			Countries:  repositories.NewCountryRepository(db),
			Products:   repositories.NewProductRepository(db),
		}, logger)
		if err != nil {
			return err
		}

		cmd.Printf("Inserted %d, skipped %d existing\n", res.Inserted, res.Skipped)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "", "Path to the seed YAML file")
	_ = seedCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(seedCmd)
}
