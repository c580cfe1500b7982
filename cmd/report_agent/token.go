package main

import (
	"fmt"
	"os"

	"github.com/jonathan/strategy-report/internal/config"
	"github.com/jonathan/strategy-report/internal/server"
	"github.com/jonathan/strategy-report/internal/server/middleware"
	"github.com/spf13/cobra"
)

var (
	tokenSubject string
	tokenRole    string
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Issue a bearer token signed with AUTH_JWT_SECRET",
	Long:  "Issues a token for local use and tests. Production tokens come from the authentication service.",
	RunE:  runToken,
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSubject, "subject", "", "Token subject (required)")
	tokenCmd.Flags().StringVar(&tokenRole, "role", middleware.RoleAdmin, "Role: admin or viewer")

	if err := tokenCmd.MarkFlagRequired("subject"); err != nil {
		panic(fmt.Sprintf("failed to mark subject flag as required: %v", err))
	}
	rootCmd.AddCommand(tokenCmd)
}

func runToken(_ *cobra.Command, _ []string) error {
	jwtConfig, err := config.NewJWTConfig()
	if err != nil {
		return err
	}
	token, err := server.NewJWTService(jwtConfig).GenerateToken(tokenSubject, tokenRole)
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintln(os.Stdout, token)
	return nil
}
