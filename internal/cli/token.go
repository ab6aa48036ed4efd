package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/noah-isme/hr-letter-api/internal/models"
	"github.com/noah-isme/hr-letter-api/internal/service"
	"github.com/noah-isme/hr-letter-api/pkg/config"
)

// TokenCmd mints a bearer token signed with the configured JWT secret.
func TokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token [employee-id]",
		Short: "Mint a bearer token for local testing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			name, _ := cmd.Flags().GetString("name")
			role, _ := cmd.Flags().GetString("role")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			tokens := service.NewTokenService(service.TokenConfig{
				Secret:     cfg.JWT.Secret,
				Issuer:     cfg.JWT.Issuer,
				Expiration: cfg.JWT.Expiration,
			})
			return mintToken(cmd, tokens, args[0], name, models.UserRole(strings.ToUpper(role)), ttl)
		},
	}
	cmd.Flags().String("name", "", "Display name embedded in the token")
	cmd.Flags().String("role", string(models.RoleEmployee), "ADMIN or EMPLOYEE")
	cmd.Flags().Duration("ttl", 0, "Token lifetime (defaults to JWT_EXPIRATION)")
	return cmd
}

func mintToken(cmd *cobra.Command, tokens *service.TokenService, employeeID, name string, role models.UserRole, ttl time.Duration) error {
	token, expiresAt, err := tokens.Mint(employeeID, name, role, ttl)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintln(out, token)
	fmt.Fprintf(cmd.ErrOrStderr(), "expires %s\n", expiresAt.Format(time.RFC3339))
	return nil
}
