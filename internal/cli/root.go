package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/phishlens/internal/model"
)

// version is overridden at build time with -ldflags "-X .../cli.version=..."
var version = "v0.1.0"

var (
	cfgFile string
	verbose bool
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "phishlens",
	Short: "PhishLens - heuristic phishing URL risk analysis",
	Long: `PhishLens inspects a URL the way a careful analyst would:
it follows redirects, checks threat-intel feeds, looks up registration age,
reads the TLS certificate, parses the landing page and compares the domain
against well-known brands.

Every observation becomes a weighted signal. The signals add up to a
0-100 risk score and a verdict: PROBABLY_SAFE, SUSPICIOUS or MALICIOUS.

PhishLens only scores and reports. It never blocks anything.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "phishlens %s\n", version)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	// Global flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: $HOME/.phishlens/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))

	rootCmd.AddCommand(versionCmd)
}

// initConfig reads .env, the config file and environment variables
func initConfig() {
	// A missing .env is the normal case
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Warning: could not load .env: %v\n", err)
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".phishlens"))
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	if err := configureViper(viper.GetViper()); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	if err := viper.ReadInConfig(); err == nil {
		if verbose {
			fmt.Fprintf(os.Stderr, "Using config file: %s\n", viper.ConfigFileUsed())
		}
	} else if cfgFile != "" {
		fmt.Fprintf(os.Stderr, "Warning: could not read config %s: %v\n", cfgFile, err)
	}
}

// legacyEnv maps config keys to the bare environment names older
// deployments use. PHISHLENS_* names take precedence.
var legacyEnv = map[string]string{
	"feeds.ttl_hours":       "FEED_TTL_HOURS",
	"safe_browsing.api_key": "GOOGLE_SAFEBROWSING_API_KEY",
	"llm.api_key":           "OPENAI_API_KEY",
}

// optionalKeys are omitted from the rendered defaults when empty and
// need an explicit binding to be settable from the environment.
var optionalKeys = []string{
	"http.http_proxy",
	"http.https_proxy",
	"dns.resolver",
	"llm.base_url",
}

const envPrefix = "PHISHLENS"

// configureViper registers every default key so environment overrides
// reach Unmarshal, then binds the legacy variable names.
func configureViper(v *viper.Viper) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	defaults, err := configMap(model.DefaultConfig())
	if err != nil {
		return fmt.Errorf("register defaults: %w", err)
	}
	setDefaults(v, "", defaults)

	for _, key := range optionalKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}

	for key, legacy := range legacyEnv {
		prefixed := envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return fmt.Errorf("bind %s: %w", legacy, err)
		}
	}
	return nil
}

// configMap renders cfg through its yaml tags into nested maps
func configMap(cfg *model.Config) (map[string]any, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, err
	}
	out := map[string]any{}
	if err := yaml.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func setDefaults(v *viper.Viper, prefix string, values map[string]any) {
	for key, value := range values {
		full := key
		if prefix != "" {
			full = prefix + "." + key
		}
		if nested, ok := value.(map[string]any); ok {
			setDefaults(v, full, nested)
			continue
		}
		v.SetDefault(full, value)
	}
}

// decodeConfig builds the effective configuration from v
func decodeConfig(v *viper.Viper) (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	// PORT predates the listen address setting
	if port := os.Getenv("PORT"); port != "" && os.Getenv(envPrefix+"_SERVER_LISTEN_ADDR") == "" {
		cfg.Server.ListenAddr = ":" + port
	}
	return cfg, nil
}

// loadConfig returns the effective configuration of this invocation
func loadConfig() (*model.Config, error) {
	return decodeConfig(viper.GetViper())
}

// newLogger builds the stderr logger shared by every component
func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
