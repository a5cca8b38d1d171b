// rescue-admin agrupa las tareas de operación que no pasan por la API:
// generar el hash de la contraseña del dashboard y correr migraciones.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"animal-rescue/internal/adapters/auth/password"
	"animal-rescue/internal/adapters/storage/sqlstore"
	"animal-rescue/internal/config"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "rescue-admin",
		Short:        "Operational tasks for the animal-rescue service",
		SilenceUsage: true,
	}
	root.PersistentFlags().String("config", os.Getenv("CONFIG_PATH"), "path to the YAML config file")

	root.AddCommand(newHashPasswordCmd(), newMigrateCmd())
	return root
}

func newHashPasswordCmd() *cobra.Command {
	var cost int
	cmd := &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print the bcrypt hash for ADMIN_PASSWORD_HASH",
		Long: `Print the bcrypt hash of the dashboard password.

The password is taken from the first argument or, if absent, from the
first line of stdin so it does not end up in the shell history.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			plain, err := readPassword(cmd.InOrStdin(), args)
			if err != nil {
				return err
			}
			hash, err := password.HashWithCost(plain, cost)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
	cmd.Flags().IntVar(&cost, "cost", bcrypt.DefaultCost, "bcrypt cost")
	return cmd
}

func readPassword(in io.Reader, args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long: `Apply the embedded migrations for the configured DB_DRIVER.

Nothing to do for the memory driver. Running it twice is a no-op.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Flags().GetString("config")
			cfg, err := config.Load(path)
			if err != nil {
				return err
			}
			return runMigrate(cmd.Context(), cmd.OutOrStdout(), cfg)
		},
	}
}

func runMigrate(ctx context.Context, out io.Writer, cfg config.Config) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if cfg.DBDriver == config.DriverMemory {
		fmt.Fprintln(out, "memory driver: nothing to migrate")
		return nil
	}

	db, err := sqlstore.Open(ctx, sqlstore.Dialect(cfg.DBDriver), cfg.DBDSN)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer db.Close()

	if err := db.Migrate(); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s: migrations applied\n", cfg.DBDriver)
	return nil
}
