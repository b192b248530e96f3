package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"filippo.io/age"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/iliyamo/pdfsum/internal/app"
	"github.com/iliyamo/pdfsum/internal/config"
	"github.com/iliyamo/pdfsum/internal/database"
	"github.com/iliyamo/pdfsum/internal/database/migrations"
	"github.com/iliyamo/pdfsum/internal/logger"
	"github.com/iliyamo/pdfsum/internal/queue"
	"github.com/iliyamo/pdfsum/internal/repository"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env (if any), then the TOML file and environment, and
// builds the process logger.
func loadConfig() (config.Config, *slog.Logger, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return config.Config{}, nil, fmt.Errorf("reading .env: %w", err)
	}
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("loading config: %w", err)
	}
	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, os.Stderr)
	if err != nil {
		return config.Config{}, nil, err
	}
	return cfg, log, nil
}

// newApp loads configuration and creates the App. The caller must defer a.Close().
func newApp(ctx context.Context) (*app.App, error) {
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initializing app: %w", err)
	}
	return a, nil
}

func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

var rootCmd = &cobra.Command{
	Use:          "pdfsum",
	Short:        "PDF storage and summarization service",
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		addr := ":" + a.Cfg.Port
		errCh := make(chan error, 1)
		go func() {
			a.Log.Info("listening", "addr", addr, "env", a.Cfg.Env)
			if err := a.Echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		select {
		case err := <-errCh:
			if err != nil {
				return fmt.Errorf("http server: %w", err)
			}
			return nil
		case <-ctx.Done():
		}

		a.Log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.Echo.Shutdown(shutdownCtx)
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		if check, _ := cmd.Flags().GetBool("check"); check {
			if err := migrations.CheckDBMigrationStatus(db, cfg.Database.Driver); err != nil {
				return err
			}
			fmt.Println("Database schema is up to date")
			return nil
		}
		if err := migrations.MigrateUp(db, cfg.Database.Driver); err != nil {
			return err
		}
		log.Info("migrations applied", "driver", cfg.Database.Driver)
		return nil
	},
}

var workerCmd = &cobra.Command{
	Use:   "worker",
	Short: "Consume pdf.uploaded events and generate summaries",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext(cmd)
		defer stop()

		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if a.Cfg.Events.RabbitMQURL == "" {
			return errors.New("worker needs RABBITMQ_URL")
		}
		mode, _ := cmd.Flags().GetString("mode")
		c := &queue.Consumer{
			URL:       a.Cfg.Events.RabbitMQURL,
			Generator: a.Summaries,
			Mode:      mode,
			Log:       a.Log.With("component", "worker"),
		}
		a.Log.Info("worker started", "queue", queue.PDFUploadedQueue)
		if err := c.Run(ctx); !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

// user command
var userCmd = &cobra.Command{
	Use:   "user",
	Short: "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a user",
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if strings.TrimSpace(name) == "" || strings.TrimSpace(email) == "" {
			return errors.New("--name and --email are required")
		}
		if password == "" {
			if !term.IsTerminal(int(os.Stdin.Fd())) {
				return errors.New("--password is required when stdin is not a terminal")
			}
			fmt.Print("Password: ")
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return fmt.Errorf("reading password: %w", err)
			}
			password = string(raw)
		}
		if password == "" {
			return errors.New("password must not be empty")
		}

		cfg, _, err := loadConfig()
		if err != nil {
			return err
		}
		db, err := database.Open(cfg.Database)
		if err != nil {
			return fmt.Errorf("opening database: %w", err)
		}
		defer db.Close()

		u, err := repository.NewUserRepo(db).Create(cmd.Context(), strings.TrimSpace(name), email, password, cfg.Auth.BcryptCost)
		if err != nil {
			return err
		}
		fmt.Printf("Created user %d <%s>\n", u.ID, u.Email)
		return nil
	},
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an age identity for encrypting stored PDFs",
	RunE: func(cmd *cobra.Command, args []string) error {
		out, _ := cmd.Flags().GetString("out")

		id, err := age.GenerateX25519Identity()
		if err != nil {
			return fmt.Errorf("generating identity: %w", err)
		}
		content := fmt.Sprintf("# created: %s\n# public key: %s\n%s\n",
			time.Now().UTC().Format(time.RFC3339), id.Recipient(), id)

		f, err := os.OpenFile(out, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
		if err != nil {
			return fmt.Errorf("writing identity: %w", err)
		}
		if _, err := f.WriteString(content); err != nil {
			f.Close()
			return fmt.Errorf("writing identity: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}

		fmt.Printf("Identity written to %s\n", out)
		fmt.Printf("Public key: %s\n", id.Recipient())
		fmt.Println("Set BLOB_AGE_IDENTITY to this path to encrypt stored PDFs.")
		return nil
	},
}

func init() {
	migrateCmd.Flags().Bool("check", false, "Only verify the schema version")

	workerCmd.Flags().String("mode", "", "Summarizer mode (default \"detailed\")")

	userCmd.AddCommand(userAddCmd)
	userAddCmd.Flags().String("name", "", "Display name")
	userAddCmd.Flags().String("email", "", "Email address")
	userAddCmd.Flags().String("password", "", "Password (prompted when omitted)")

	keygenCmd.Flags().String("out", "age-identity.txt", "Path of the identity file")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(workerCmd)
	rootCmd.AddCommand(userCmd)
	rootCmd.AddCommand(keygenCmd)
}
