// Greenprint operational CLI: migrations, seeding and admin promotion.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"github.com/greenprint-app/greenprint-backend/internal/notify"
	"github.com/greenprint-app/greenprint-backend/internal/seed"
)

func main() {
	_ = godotenv.Load()

	root := &cobra.Command{
		Use:          "greenprint",
		Short:        "Greenprint backend operations",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := logger.Initialize(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_FILE")); err != nil {
				return err
			}
			return database.Initialize()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = database.Close()
			_ = logger.Close()
		},
	}

	root.AddCommand(migrateCmd(), seedCmd(), promoteAdminCmd(), sendTipCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			fmt.Println("migrations applied")
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	var users int
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Fill the database with development data",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := database.Migrate(); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}
			if err := seed.Run(users); err != nil {
				return fmt.Errorf("seeding failed: %w", err)
			}
			fmt.Printf("seeded %d users\n", users)
			return nil
		},
	}
	cmd.Flags().IntVar(&users, "users", 25, "number of users to create")
	return cmd
}

func sendTipCmd() *cobra.Command {
	var title string
	cmd := &cobra.Command{
		Use:   "send-tip <message>",
		Short: "Send an eco tip notification to every active user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No live push from the CLI process; users see the tip on
			// their next notification fetch.
			notify.NewService(nil).EcoTip(title, args[0])
			fmt.Println("tip sent")
			return nil
		},
	}
	cmd.Flags().StringVar(&title, "title", "Eco tip of the day", "notification title")
	return cmd
}

func promoteAdminCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "promote-admin <email>",
		Short: "Grant admin rights to an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var user models.User
			if err := database.DB.Where("LOWER(email) = LOWER(?)", args[0]).First(&user).Error; err != nil {
				return fmt.Errorf("no user with email %s", args[0])
			}
			if err := database.DB.Model(&user).Update("is_admin", true).Error; err != nil {
				return fmt.Errorf("promoting user: %w", err)
			}
			fmt.Printf("%s is now an admin\n", user.Username)
			return nil
		},
	}
}
