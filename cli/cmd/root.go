// ABOUTME: Root command for learnctl
// ABOUTME: Handles global flags and viper configuration from file and LEARNCTL_ environment

package cmd

import (
	"errors"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MohamedIjlal27/LMS/services"
)

var (
	cfgFile    string
	apiURL     string
	jsonOutput bool

	v = viper.New()
)

const (
	defaultAPIURL  = "http://localhost:3001/api"
	configFileName = ".learnctl.yaml"

	keyAPIURL = "api_url"
	keyToken  = "token"
	keyJSON   = "json"
)

// rootCmd is the base command
var rootCmd = &cobra.Command{
	Use:   "learnctl",
	Short: "CLI for the LMS backend",
	Long: `learnctl is a command-line interface for the LMS REST backend.

It signs operators in and lists courses, students and enrollments with the same
filters the web console uses.

Configuration is read from ~/.learnctl.yaml and the environment:
  LEARNCTL_API_URL  Backend API URL (default: ` + defaultAPIURL + `)
  LEARNCTL_TOKEN    Bearer token (normally written by "learnctl login")`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ~/"+configFileName+")")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend API URL (overrides LEARNCTL_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output JSON instead of human-readable text")
}

// initConfig loads the config file when present. A missing file is not an error.
func initConfig() error {
	v = viper.New()
	v.SetEnvPrefix("LEARNCTL")
	v.AutomaticEnv()
	v.SetDefault(keyAPIURL, defaultAPIURL)
	v.SetConfigType("yaml")
	v.SetConfigFile(configPath())

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(home, configFileName)
}

// GetAPIURL returns the API URL from flag, env, config file, or default (in priority order)
func GetAPIURL() string {
	if apiURL != "" {
		return apiURL
	}
	return v.GetString(keyAPIURL)
}

// IsJSONOutput returns whether JSON output is requested
func IsJSONOutput() bool {
	return jsonOutput || v.GetBool(keyJSON)
}

// storedToken is the bearer token saved by login, if any.
func storedToken() string {
	return v.GetString(keyToken)
}

// saveToken persists token to the config file, readable only by the owner.
// An empty token removes it.
func saveToken(token string) error {
	v.Set(keyToken, token)
	path := configPath()
	if err := v.WriteConfigAs(path); err != nil {
		return err
	}
	return os.Chmod(path, 0o600)
}

func newClient() *services.APIClient {
	return services.NewAPIClient(GetAPIURL(), 3)
}
