package cmd

import (
	"log"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai/gemini"
	"github.com/PhoenixMystique/alice-jobseeker/internal/answers"
	"github.com/PhoenixMystique/alice-jobseeker/internal/applicant"
	"github.com/PhoenixMystique/alice-jobseeker/internal/board"
	"github.com/PhoenixMystique/alice-jobseeker/internal/filtering"
	"github.com/PhoenixMystique/alice-jobseeker/internal/resume"
	"github.com/PhoenixMystique/alice-jobseeker/internal/runner"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	app = "alice-jobseeker"

	defaultTrackerPath = "alice-jobseeker.db"
	defaultJournalDir  = "application-logs"
)

type Config struct {
	Runner           *runner.Config            `mapstructure:"runner"`
	Browser          *board.Config             `mapstructure:"browser"`
	Application      *applicant.Config         `mapstructure:"application"`
	Resume           *resume.Settings          `mapstructure:"resume"`
	Answers          *answers.Defaults         `mapstructure:"default-answers"`
	Keywords         *filtering.KeywordConfig  `mapstructure:"keywords"`
	External         *filtering.ExternalConfig `mapstructure:"external"`
	ExcludeCompanies []string                  `mapstructure:"exclude-companies"`
	Preferences      string                    `mapstructure:"job-preferences"`
	TrackerPath      string                    `mapstructure:"tracker-db"`
	JournalDir       string                    `mapstructure:"journal-dir"`
	AI               *AIConfig                 `mapstructure:"ai"`
}

type AIConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Provider string        `mapstructure:"provider"`
	Gemini   *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKeyFile   string                  `mapstructure:"api-key-file"`
	Model        string                  `mapstructure:"model"`
	MaxRetries   int                     `mapstructure:"max-retries"`
	MaxLogLength int                     `mapstructure:"max-log-length"`
	Generation   gemini.GenerationParams `mapstructure:"generation"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "alice-jobseeker is a cli for discovering job listings on a job board and applying to them automatically",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is alice-jobseeker.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// Config needed only for run command now. If there is no config, we can skip initialization
	if runCmd.CalledAs() == "" {
		return
	}

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app + ".yaml")
	}

	// We can't proceed if the config file parsed with error.
	if err := viper.ReadInConfig(); err != nil {
		log.Fatal(err)
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config != nil {
		if config.TrackerPath == "" {
			config.TrackerPath = defaultTrackerPath
		}
		if config.JournalDir == "" {
			config.JournalDir = defaultJournalDir
		}
	}

	return config, nil
}
