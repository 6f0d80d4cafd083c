package main

import (
	"dropskills/internal/logger"
	"dropskills/internal/service"

	"github.com/spf13/cobra"
)

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Insert the default mentors, tools and products into empty tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, db, err := openDB()
			if err != nil {
				return err
			}
			res, err := service.Seed(contextOf(cmd), db)
			if err != nil {
				return err
			}
			logger.Info("seed.done", "mentors", res.Mentors, "tools", res.Tools, "products", res.Products)
			return nil
		},
	}
}
