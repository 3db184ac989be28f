package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aretw0/coredata/internal/config"
)

// cfg is resolved once per invocation by the root PersistentPreRunE.
var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "coredata",
	Short: "coredata resolves WordPress REST entities, embed previews and autosaves",
	Long: `coredata runs the editor data resolvers against a WordPress REST API.
Each command fetches what the resolver asks for and prints the received data.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(cmd.Flags())
		if err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.String("config", "coredata.yaml", "Configuration file (YAML or JSON)")
	flags.String("env-file", ".env", "Environment file loaded before COREDATA_* variables")
	flags.String("api-url", "", "REST API root, e.g. https://example.com/wp-json")
	flags.String("username", "", "User for application password authentication")
	flags.String("application-password", "", "Application password")
	flags.String("nonce", "", "REST nonce sent as X-WP-Nonce")
	flags.Duration("timeout", 0, "Request timeout")
	flags.String("entities", "", "Entities file (YAML or JSON) registered on top of the defaults")
	flags.String("redis-addr", "", "Redis address; records are kept in memory when empty")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.Bool("json", false, "Print raw JSON even on a terminal")
}

// loadConfig resolves file, env file, COREDATA_* variables, then explicitly set flags.
func loadConfig(flags *pflag.FlagSet) (*config.Config, error) {
	path, _ := flags.GetString("config")
	envFile, _ := flags.GetString("env-file")

	c, err := config.Load(path, envFile)
	if err != nil {
		return nil, err
	}

	strs := map[string]*string{
		"api-url":              &c.APIURL,
		"username":             &c.Username,
		"application-password": &c.ApplicationPassword,
		"nonce":                &c.Nonce,
		"entities":             &c.EntitiesFile,
		"redis-addr":           &c.RedisAddr,
		"log-level":            &c.LogLevel,
	}
	for name, dst := range strs {
		if flags.Changed(name) {
			*dst, _ = flags.GetString(name)
		}
	}

	if flags.Changed("timeout") {
		var d time.Duration
		d, _ = flags.GetDuration("timeout")
		c.RequestTimeout = d
	}
	if f := flags.Lookup("listen"); f != nil && f.Changed {
		c.Listen = f.Value.String()
	}
	return c, nil
}
