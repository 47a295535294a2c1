package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/repositories"
	"github.com/BradenHooton/bizadmin/internal/services"
	pkgauth "github.com/BradenHooton/bizadmin/pkg/auth"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	principalUsername    string
	principalEmail       string
	principalPassword    string
	principalDisplayName string
	principalRole        string
)

var principalCmd = &cobra.Command{
	Use:   "principal",
	Short: "Manage principals",
}

var principalCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a principal",
	Long:  "Create a principal. The password is prompted for when --password is omitted.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if principalPassword == "" {
			pw, err := readPassword(cmd)
			if err != nil {
				return err
			}
			principalPassword = pw
		}

		svc, closeDB, err := newPrincipalService(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := svc.Create(cmd.Context(), services.CreatePrincipalInput{
			Username:    principalUsername,
			Email:       principalEmail,
			DisplayName: principalDisplayName,
			Password:    principalPassword,
			Role:        principalRole,
		})
		if err != nil {
			return describe(err)
		}

		cmd.Printf("Created %s principal %s (%s)\n", p.Role, p.Username, p.ID)
		return nil
	},
}

var principalUnlockCmd = &cobra.Command{
	Use:   "unlock <username|email>",
	Short: "Clear a principal's lockout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := newPrincipalService(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		p, err := svc.UnlockByIdentifier(cmd.Context(), args[0])
		if err != nil {
			return describe(err)
		}

		cmd.Printf("Unlocked %s\n", p.Username)
		return nil
	},
}

func init() {
	principalCreateCmd.Flags().StringVar(&principalUsername, "username", "", "Username")
	principalCreateCmd.Flags().StringVar(&principalEmail, "email", "", "Email address")
	principalCreateCmd.Flags().StringVar(&principalPassword, "password", "", "Password (will prompt if not provided)")
	principalCreateCmd.Flags().StringVar(&principalDisplayName, "display-name", "", "Display name (defaults to the username)")
	principalCreateCmd.Flags().StringVar(&principalRole, "role", models.RoleUser, "Role (admin or user)")
	_ = principalCreateCmd.MarkFlagRequired("username")
	_ = principalCreateCmd.MarkFlagRequired("email")

	principalCmd.AddCommand(principalCreateCmd)
	principalCmd.AddCommand(principalUnlockCmd)
	rootCmd.AddCommand(principalCmd)
}

func newPrincipalService(cmd *cobra.Command) (*services.PrincipalService, func(), error) {
	logger := newLogger(cmd)
	db, err := openDB(cmd.Context(), logger)
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewPrincipalService(
		repositories.NewPrincipalRepository(db),
		pkgauth.NewPasswordHasher(pkgauth.DefaultBcryptCost),
		logger,
		pkglogger.NewAuditLogger(logger),
	)
	return svc, db.Close, nil
}

// readPassword prompts without echo on a terminal and reads a single line
// otherwise, so passwords can be piped in.
func readPassword(cmd *cobra.Command) (string, error) {
	if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(cmd.OutOrStdout(), "Password: ")
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(cmd.OutOrStdout())
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return string(b), nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return "", fmt.Errorf("password is required")
	}
	return line, nil
}

// describe turns service errors into messages fit for a terminal
func describe(err error) error {
	var verr *models.ValidationError
	if errors.As(err, &verr) {
		var parts []string
		for field, msgs := range verr.Fields {
			parts = append(parts, field+" "+strings.Join(msgs, ", "))
		}
		slices.Sort(parts)
		return fmt.Errorf("%s: %s", verr.Message, strings.Join(parts, "; "))
	}
	if errors.Is(err, models.ErrConflict) {
		return fmt.Errorf("a principal with that username or email already exists")
	}
	if errors.Is(err, models.ErrNotFound) {
		return fmt.Errorf("no principal matches that username or email")
	}
	return err
}
