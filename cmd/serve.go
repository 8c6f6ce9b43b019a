package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/authgate/authgate"
	"github.com/authgate/authgate/pkg/redact"
	httptransport "github.com/authgate/authgate/pkg/transport/http"
)

type serveConfig struct {
	Address string `yaml:"address"`
	Auth    struct {
		Mode              string   `yaml:"mode"`
		SessionTTLSeconds int      `yaml:"session_ttl_seconds"`
		CookieName        string   `yaml:"cookie_name"`
		ExcludedPaths     []string `yaml:"excluded_paths"`
	} `yaml:"auth"`
	Storage struct {
		Backend  string `yaml:"backend"`
		Postgres struct {
			DSN string `yaml:"dsn"`
		} `yaml:"postgres"`
		Bolt struct {
			Path string `yaml:"path"`
		} `yaml:"bbolt"`
	} `yaml:"storage"`
	Cache struct {
		Backend string `yaml:"backend"`
		Redis   struct {
			Address   string `yaml:"address"`
			Username  string `yaml:"username"`
			Password  string `yaml:"password"`
			Database  int    `yaml:"database"`
			Namespace string `yaml:"namespace"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Logging struct {
		Verbosity      int      `yaml:"verbosity"`
		RedactedFields []string `yaml:"redacted_fields"`
	} `yaml:"logging"`
}

func defaultServeConfig() *serveConfig {
	config := &serveConfig{}
	config.Address = ":8080"
	config.Auth.Mode = string(authgate.ModeSession)
	config.Auth.ExcludedPaths = []string{"/api/v1/status/", "/login"}
	config.Storage.Backend = string(authgate.StorageBackendMemory)
	config.Logging.RedactedFields = []string{"password", "token", "reset_token"}
	return config
}

func loadServeConfig(path string) (*serveConfig, error) {
	config := defaultServeConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	applyServeEnvOverrides(config)

	if config.Address == "" {
		return nil, errors.New("server address cannot be empty")
	}
	return config, nil
}

func applyServeEnvOverrides(config *serveConfig) {
	if addr := os.Getenv("AUTHGATE_ADDR"); addr != "" {
		config.Address = addr
	}
	if mode := os.Getenv("AUTHGATE_AUTH_MODE"); mode != "" {
		config.Auth.Mode = mode
	}
	if dsn := os.Getenv("AUTHGATE_DATABASE_URL"); dsn != "" {
		config.Storage.Postgres.DSN = dsn
	}
	if password := os.Getenv("AUTHGATE_REDIS_PASSWORD"); password != "" {
		config.Cache.Redis.Password = password
	}
}

func init() {
	rootCmd.AddCommand(newServeCommand())
}

func newServeCommand() *cobra.Command {
	var configPath string

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the AuthGate HTTP server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := loadServeConfig(configPath)
			if err != nil {
				return err
			}
			return runServer(cmd.Context(), config)
		},
	}

	serveCmd.Flags().StringVar(&configPath, "config", "", "Path to the YAML server configuration file.")
	return serveCmd
}

func newServeLogger(config *serveConfig) logr.Logger {
	base := funcr.New(func(prefix, args string) {
		if prefix != "" {
			fmt.Fprintln(os.Stderr, prefix, args)
			return
		}
		fmt.Fprintln(os.Stderr, args)
	}, funcr.Options{Verbosity: config.Logging.Verbosity})

	return redact.NewLogger(base, config.Logging.RedactedFields...)
}

func runServer(ctx context.Context, config *serveConfig) error {
	logger := newServeLogger(config)

	client, err := authgate.New(authgate.Config{
		Logger: logger,
		Runtime: authgate.RuntimeConfig{
			Auth: authgate.AuthConfig{
				Mode:          authgate.Mode(config.Auth.Mode),
				SessionTTL:    time.Duration(config.Auth.SessionTTLSeconds) * time.Second,
				CookieName:    config.Auth.CookieName,
				ExcludedPaths: config.Auth.ExcludedPaths,
			},
			Storage: authgate.StorageConfig{
				Backend: authgate.StorageBackend(config.Storage.Backend),
				Postgres: authgate.PostgresConfig{
					DSN: config.Storage.Postgres.DSN,
				},
				Bolt: authgate.BoltConfig{
					Path: config.Storage.Bolt.Path,
				},
			},
			Cache: authgate.CacheConfig{
				Backend: authgate.CacheBackend(config.Cache.Backend),
				Redis: authgate.RedisCacheConfig{
					Address:   config.Cache.Redis.Address,
					Username:  config.Cache.Redis.Username,
					Password:  config.Cache.Redis.Password,
					Database:  config.Cache.Redis.Database,
					Namespace: config.Cache.Redis.Namespace,
				},
			},
		},
	})
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := client.Close(); closeErr != nil {
			logger.Error(closeErr, "failed to close client resources")
		}
	}()

	handlers := client.Handlers()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /login", handlers.Login)
	mux.HandleFunc("POST /logout", handlers.Logout)
	mux.HandleFunc("GET /api/v1/status", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintln(w, `{"status":"ok"}`)
	})
	mux.HandleFunc("GET /api/v1/me", func(w http.ResponseWriter, r *http.Request) {
		user, ok := httptransport.UserFromContext(r.Context())
		if !ok {
			http.Error(w, "unauthenticated", http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, "{\"user_id\":%q,\"email\":%q}\n", user.ID, user.Email)
	})

	server := &http.Server{
		Addr:              config.Address,
		Handler:           client.Middleware()(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server listening", "address", config.Address, "mode", config.Auth.Mode)
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-serveCtx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown server: %w", err)
	}
	return nil
}
