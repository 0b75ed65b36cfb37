package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	site "github.com/bcmimarlik/site"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	configFileName   = "site"
	contextDir       = "./.tmp"
	defaultServerURL = "http://localhost:4001"
)

var contextCommand = &cobra.Command{
	Use:   "context",
	Short: "context commands",
}

func init() {
	contextCommand.AddCommand(currentContextCommand())
	contextCommand.AddCommand(resetContextCommand())
}

// Context is what the CLI remembers between calls.
type Context struct {
	Server    string `mapstructure:"server"`
	Token     string `mapstructure:"token"`
	ExpiresAt string `mapstructure:"expires_at"`
}

// Expiry parses ExpiresAt, the zero time when unset.
func (c Context) Expiry() time.Time {
	t, _ := time.Parse(time.RFC3339, c.ExpiresAt)
	return t
}

func currentContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "current",
		Short: "current context",
		Run: func(cmd *cobra.Command, args []string) {
			ctx := readContext()
			fmt.Println("server: ", resolveServer(ctx))
			switch {
			case ctx.Token == "":
				color.Yellow("not logged in")
			case !ctx.Expiry().IsZero() && time.Now().After(ctx.Expiry()):
				color.Yellow("token expired at %s", ctx.ExpiresAt)
			default:
				color.Green("logged in until %s", ctx.ExpiresAt)
			}
		},
	}

	return command
}

func resetContextCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "reset",
		Short: "reset context",
		Run: func(cmd *cobra.Command, args []string) {
			writeContext(Context{})
			fmt.Println("context reset")
		},
	}

	return command
}

func contextViper() *viper.Viper {
	v := viper.New()
	v.SetConfigName(configFileName)
	v.AddConfigPath(contextDir)
	v.SetConfigType("yml")
	return v
}

func writeContext(context Context) {
	if err := os.MkdirAll(contextDir, 0o700); err != nil {
		fmt.Println("error creating context dir: ", err)
		return
	}

	v := contextViper()
	v.Set("context", map[string]any{
		"server":     context.Server,
		"token":      context.Token,
		"expires_at": context.ExpiresAt,
	})

	if err := v.WriteConfigAs(filepath.Join(contextDir, configFileName+".yml")); err != nil {
		fmt.Println("error writing config file: ", err)
	}
}

func readContext() Context {
	var ctx Context

	v := contextViper()
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Println("error reading config file: ", err)
		}
		return ctx
	}

	if err := v.UnmarshalKey("context", &ctx); err != nil {
		fmt.Println("error unmarshalling config file: ", err)
	}

	return ctx
}

func resolveServer(ctx Context) string {
	switch {
	case serverURL != "":
		return serverURL
	case ctx.Server != "":
		return ctx.Server
	default:
		return defaultServerURL
	}
}

// newClient returns an SDK client for the current context.
func newClient() *site.Client {
	ctx := readContext()
	client := site.NewClient(resolveServer(ctx))
	if ctx.Token != "" {
		client.SetToken(ctx.Token)
	}
	return client
}
