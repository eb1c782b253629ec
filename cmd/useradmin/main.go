package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dvynshuu/fintrack/internal/auth"
	"github.com/dvynshuu/fintrack/internal/models"
	"github.com/dvynshuu/fintrack/internal/storage"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

const defaultDBPath = "fintrack.db"

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	root := newRootCmd()
	root.SetArgs(args)
	root.SetIn(stdin)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root.ExecuteContext(context.Background())
}

func newRootCmd() *cobra.Command {
	// A fresh viper per invocation keeps repeated runs independent.
	v := viper.New()

	root := &cobra.Command{
		Use:           "useradmin",
		Short:         "Manage fintrack accounts directly in the database",
		SilenceErrors: true,
	}
	root.PersistentFlags().String("db", defaultDBPath, "path to database file (env DB_PATH)")
	_ = v.BindPFlag("db", root.PersistentFlags().Lookup("db"))
	_ = v.BindEnv("db", "DB_PATH")

	root.AddCommand(addCmd(v), deleteCmd(v))
	return root
}

func addCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create an account",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")
			name, _ := cmd.Flags().GetString("name")
			password, _ := cmd.Flags().GetString("password")

			email = strings.TrimSpace(email)
			if email == "" {
				return errors.New("email cannot be empty")
			}
			if name = strings.TrimSpace(name); name == "" {
				name, _, _ = strings.Cut(email, "@")
			}

			if password == "" {
				fmt.Fprint(cmd.OutOrStdout(), "Password: ")
				var err error
				password, err = readPassword(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("failed to read password: %w", err)
				}
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if strings.TrimSpace(password) == "" {
				return errors.New("password cannot be empty")
			}

			db, err := storage.NewDB(v.GetString("db"))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			ctx := cmd.Context()
			if _, err := db.GetUserByEmail(ctx, email); err == nil {
				return fmt.Errorf("user %s already exists", email)
			} else if !errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("failed to look up user: %w", err)
			}

			hash, err := auth.HashPassword(password)
			if err != nil {
				return fmt.Errorf("failed to hash password: %w", err)
			}

			user, err := db.CreateUser(ctx, models.NewUser{Name: name, Email: email, PasswordHash: hash})
			if errors.Is(err, storage.ErrDuplicateEmail) {
				return fmt.Errorf("user %s already exists", email)
			}
			if err != nil {
				return fmt.Errorf("failed to create user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s created successfully with ID %s\n", user.Email, user.ID)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	cmd.Flags().String("name", "", "display name (defaults to the email's local part)")
	cmd.Flags().String("password", "", "password (prompted for if omitted)")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func deleteCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete an account and everything it owns",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			email, _ := cmd.Flags().GetString("email")

			db, err := storage.NewDB(v.GetString("db"))
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer db.Close()

			err = db.DeleteUserByEmail(cmd.Context(), strings.TrimSpace(email))
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("user %s not found", email)
			}
			if err != nil {
				return fmt.Errorf("failed to delete user: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "User %s deleted\n", email)
			return nil
		},
	}
	cmd.Flags().String("email", "", "account email")
	_ = cmd.MarkFlagRequired("email")
	return cmd
}

func readPassword(stdin io.Reader) (string, error) {
	if f, ok := stdin.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		if err != nil {
			return "", err
		}
		return string(b), nil
	}

	// Pipes and tests.
	scanner := bufio.NewScanner(stdin)
	if scanner.Scan() {
		return scanner.Text(), nil
	}
	if err := scanner.Err(); err != nil {
		return "", err
	}
	return "", io.EOF
}
