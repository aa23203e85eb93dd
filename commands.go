package main

import (
	"context"
	"fmt"
	"shop-api/services"
	"time"

	"github.com/spf13/cobra"
)

const commandTimeout = 30 * time.Second

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage admin accounts",
}

var adminCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an admin account",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")

		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		user, err := services.NewUserService(env.stores.Users).CreateAdmin(ctx, name, email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "created admin %s (%s)\n", user.Email, user.ID.Hex())
		return nil
	},
}

// sampleCategories are created by the seed command.
var sampleCategories = []services.CategoryInput{
	{Name: "Watches", Description: "Analog and smart watches"},
	{Name: "Shoes", Description: "Sneakers, boots and sandals"},
	{Name: "Bags", Description: "Backpacks, handbags and travel bags"},
	{Name: "Accessories", Description: "Belts, wallets and sunglasses"},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Create the sample categories",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, cancel := context.WithTimeout(cmd.Context(), commandTimeout)
		defer cancel()
		env, err := setup(ctx)
		if err != nil {
			return err
		}
		defer env.close()

		catalog := services.NewCatalogService(env.stores.Categories, env.stores.Products, nil)
		return seedCategories(ctx, catalog, cmd)
	},
}

func seedCategories(ctx context.Context, catalog *services.CatalogService, cmd *cobra.Command) error {
	for _, in := range sampleCategories {
		category, err := catalog.CreateCategory(ctx, in)
		switch {
		case services.IsKind(err, services.KindConflict):
			fmt.Fprintf(cmd.OutOrStdout(), "skipped %s (exists)\n", in.Name)
		case err != nil:
			return err
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "created %s (%s)\n", category.Name, category.ID.Hex())
		}
	}
	return nil
}

func init() {
	adminCreateCmd.Flags().String("name", "Admin", "display name")
	adminCreateCmd.Flags().String("email", "", "login email")
	adminCreateCmd.Flags().String("password", "", "password (min 6 characters)")
	_ = adminCreateCmd.MarkFlagRequired("email")
	_ = adminCreateCmd.MarkFlagRequired("password")
	adminCmd.AddCommand(adminCreateCmd)
}
