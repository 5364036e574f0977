package cmd

import (
	"fmt"

	"booking-platform/internal/data/repository"
	"booking-platform/internal/dto/request"
	"booking-platform/internal/usecase"
	"booking-platform/pkg/database"

	"github.com/spf13/cobra"
)

func userCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "user",
		Short: "Manage staff accounts",
	}
	cmd.AddCommand(userCreateCmd())
	return cmd
}

// userCreateCmd bootstraps accounts, including the first admin.
func userCreateCmd() *cobra.Command {
	var req request.CreateUserRequest

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a staff or admin account",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := bootstrap()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			db, err := database.InitDB(config.Database)
			if err != nil {
				return err
			}
			defer db.Close()

			auth := usecase.NewAuthService(repository.NewRepository(db, logger), config, logger)
			user, err := auth.CreateUser(cmd.Context(), &req)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %s %s (%s)\n", user.Role, user.Email, user.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&req.Name, "name", "", "display name")
	cmd.Flags().StringVar(&req.Email, "email", "", "login e-mail")
	cmd.Flags().StringVar(&req.Password, "password", "", "initial password")
	cmd.Flags().StringVar(&req.Role, "role", "staff", "staff or admin")
	_ = cmd.MarkFlagRequired("email")
	_ = cmd.MarkFlagRequired("password")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}
