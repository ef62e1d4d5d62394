package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/imrishuroy/go-shop-admin/cmd/adminctl/output"
	"github.com/imrishuroy/go-shop-admin/internal/auth"
)

var (
	userEmail    string
	userPassword string
	userRole     string
	userActive   bool
)

var createAdminCmd = &cobra.Command{
	Use:   "create-admin",
	Short: "Create an admin or staff account",
	Long: `Create a dashboard account. The password is read from --password or, when
omitted, from ADMIN_PASSWORD so it stays out of shell history.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		password := userPassword
		if password == "" {
			password = os.Getenv("ADMIN_PASSWORD")
		}
		if password == "" {
			return fmt.Errorf("--password or ADMIN_PASSWORD is required")
		}

		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		u, err := a.Auth.CreateUser(cmd.Context(), userEmail, password, userRole)
		if err != nil {
			return err
		}

		output.Success("account created")
		output.Field("email", u.Email)
		output.Field("role", u.Role)
		output.Field("state", output.ActiveBadge(u.IsActive))
		return nil
	},
}

var setActiveCmd = &cobra.Command{
	Use:   "set-active",
	Short: "Enable or disable an account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.Auth.SetActive(cmd.Context(), userEmail, userActive); err != nil {
			return err
		}
		if !userActive {
			output.Warning("%s disabled; open sessions are rejected on their next request", userEmail)
			return nil
		}
		output.Success("%s enabled", userEmail)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(createAdminCmd, setActiveCmd)

	createAdminCmd.Flags().StringVar(&userEmail, "email", "", "Login email (required)")
	createAdminCmd.Flags().StringVar(&userPassword, "password", "", "Password, at least 8 characters")
	createAdminCmd.Flags().StringVar(&userRole, "role", auth.RoleAdmin, "Role: admin or staff")
	_ = createAdminCmd.MarkFlagRequired("email")

	setActiveCmd.Flags().StringVar(&userEmail, "email", "", "Login email (required)")
	setActiveCmd.Flags().BoolVar(&userActive, "active", true, "Whether the account may log in")
	_ = setActiveCmd.MarkFlagRequired("email")
}
