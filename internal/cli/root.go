package cli

import (
	"context"
	"net/url"
	"os"
	"strings"
	"time"

	"classpoll-client/internal/config"
	"classpoll-client/internal/infra/memory"
	redisregistry "classpoll-client/internal/infra/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// defaultTabTTL bounds how long an idle tab identity is resumable.
const defaultTabTTL = 12 * time.Hour

var (
	serverURL  string
	configPath string
)

// Execute runs the CLI.
func Execute() error {
	return newRootCmd().Execute()
}

func newRootCmd() *cobra.Command {
	envServer := os.Getenv("POLL_SERVER_URL")
	if envServer == "" {
		envServer = "http://localhost:5001"
	}
	envConfig := os.Getenv("CONFIG_PATH")
	if envConfig == "" {
		envConfig = "config/config.yaml"
	}

	cmd := &cobra.Command{
		Use:   "classpoll",
		Short: "Headless classroom poll client over Gorilla WebSocket",
	}

	cmd.PersistentFlags().StringVar(&serverURL, "server", envServer, "poll server base URL")
	cmd.PersistentFlags().StringVar(&configPath, "config", envConfig, "path to YAML config")
	cmd.AddCommand(NewStartCmd(&configPath, &serverURL))
	cmd.AddCommand(NewSnapshotCmd(&configPath, &serverURL))
	return cmd
}

// TabRegistry resolves the stable tab identity for a client profile.
type TabRegistry interface {
	GetOrCreate(ctx context.Context, name string) (string, error)
}

// loadConfig reads the YAML config, treating a missing file as empty so
// the client can run on flags and env alone.
func loadConfig(path string) (config.Config, error) {
	cfg, err := config.Load(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config.Config{}, nil
		}
		return config.Config{}, err
	}
	return cfg, nil
}

// buildRegistry picks the Redis-backed registry when configured, the
// in-process one otherwise.
func buildRegistry(cfg config.Config) TabRegistry {
	if cfg.Redis.Addr == "" {
		return memory.NewTabRegistry()
	}
	client := goredis.NewClient(&goredis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ttl := config.TTLDuration(cfg.Tab.TTL, defaultTabTTL)
	return redisregistry.NewTabRegistry(client, ttl)
}

// resolveBase prefers the flag/env value; config fills in when the flag
// is left at its default.
func resolveBase(cfg config.Config, flagValue string) string {
	if flagValue != "" && flagValue != "http://localhost:5001" {
		return flagValue
	}
	if cfg.Server.URL != "" {
		return cfg.Server.URL
	}
	return "http://localhost:5001"
}

// wsEndpoint derives the websocket URL from the HTTP base.
func wsEndpoint(base, wsPath string) (string, error) {
	u, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	if wsPath == "" {
		wsPath = "/ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + wsPath
	return u.String(), nil
}
