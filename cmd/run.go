package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/PhoenixMystique/alice-jobseeker/internal/ai"
	"github.com/PhoenixMystique/alice-jobseeker/internal/ai/gemini"
	"github.com/PhoenixMystique/alice-jobseeker/internal/applicant"
	"github.com/PhoenixMystique/alice-jobseeker/internal/board"
	"github.com/PhoenixMystique/alice-jobseeker/internal/filtering"
	"github.com/PhoenixMystique/alice-jobseeker/internal/journal"
	"github.com/PhoenixMystique/alice-jobseeker/internal/listing"
	"github.com/PhoenixMystique/alice-jobseeker/internal/logger"
	"github.com/PhoenixMystique/alice-jobseeker/internal/resume"
	"github.com/PhoenixMystique/alice-jobseeker/internal/runner"
	"github.com/PhoenixMystique/alice-jobseeker/internal/secrets"
	"github.com/PhoenixMystique/alice-jobseeker/internal/tracker"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const (
	PromptYes             = "Yes"
	PromptNo              = "No"
	PromptReportByCompany = "Report by company"
	PromptListingsToFile  = "Dump listings to file"
	PromptExit            = "Exit"
)

var errExit = errors.New("exit requested")

var resultPrompt = promptui.Select{
	Label: "What next?",
	Items: []string{PromptReportByCompany, PromptListingsToFile, PromptExit},
}

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the alice-jobseeker main command",
	Run: func(cmd *cobra.Command, _ []string) {
		run(cmd)
	},
}

func init() {
	rootCmd.AddCommand(runCmd)

	runCmd.Flags().BoolP("ignore-processed", "f", false, "do not exclude jobs processed in previous runs")
	runCmd.Flags().BoolP("auto-approve", "y", false, "do not ask for confirmation before applying")
	runCmd.Flags().Bool("dry-run", false, "discover and filter listings without applying")
}

// run is the main command for the cli.
func run(cmd *cobra.Command) {
	ctx := context.Background()

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Info("starting the alice-jobseeker", zap.String("version", version))

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(config, "", "  ")
	logger.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	if config == nil {
		logger.Fatal("config is required")
	}

	if config.Runner == nil || config.Runner.SearchURL == "" {
		logger.Fatal("a search url is required under runner.search-url to discover job listings")
	}

	if flagSet(cmd, "dry-run") {
		config.Runner.DryRun = true
	}

	store, err := tracker.Open(config.TrackerPath)
	if err != nil {
		logger.Fatal("opening the tracker database", zap.Error(err), zap.String("path", config.TrackerPath))
	}
	defer store.Close()

	jrnl, err := journal.Open(config.JournalDir)
	if err != nil {
		logger.Fatal("opening the journal directory", zap.Error(err), zap.String("dir", config.JournalDir))
	}

	resumeData, err := resume.Load(config.Resume, config.Answers)
	if err != nil {
		logger.Fatal("loading the resume", zap.Error(err))
	}

	if resumeData.Fallback {
		logger.Warn("resume file not found, answers are synthesized from default answers",
			zap.String("hint", "point resume.folder and resume.filename at your resume json"),
		)
	}

	resumeJSON, err := resumeData.JSON()
	if err != nil {
		logger.Fatal("encoding the resume", zap.Error(err))
	}

	matcher, answerer, err := newAssistants(ctx, config, resumeJSON, logger)
	if err != nil {
		logger.Fatal("preparing the AI assistants", zap.Error(err))
	}

	client := board.NewClient(config.Browser, logger)
	defer client.Close()

	seeker := applicant.New(config.Application, answerer, config.Answers, jrnl, logger)

	steps := func(source filtering.Source) []filtering.Filter {
		return prepareFilters(cmd, config, store, matcher, source, jrnl, logger)
	}

	if !flagSet(cmd, "auto-approve") && !config.Runner.DryRun {
		confirm := promptui.Select{
			Label: fmt.Sprintf("Start an application session for %s?", config.Runner.SearchURL),
			Items: []string{PromptYes, PromptNo},
		}

		_, answer, err := confirm.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if answer != PromptYes {
			logger.Info("exiting", zap.String("reason", "got no from prompt"))
			return
		}
	}

	result, err := runner.New(config.Runner, client, steps, seeker, store, jrnl, logger).Run(ctx)
	if err != nil {
		logger.Fatal("the session failed", zap.Error(err))
	}

	logger.Info("session summary",
		zap.Int("applied", result.Applied),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
		zap.Int("pages", result.Pages),
	)

	if flagSet(cmd, "auto-approve") {
		return
	}

	for {
		_, action, err := resultPrompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleAction(action, logger, result.Listings); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleAction(action string, logger *zap.Logger, jobs *listing.Listings) error {
	switch action {
	case PromptReportByCompany:
		pretty, _ := json.MarshalIndent(jobs.ReportByCompany(), "", "  ")
		logger.Info(string(pretty), zap.Int("listings count", jobs.Len()))
		return nil
	case PromptListingsToFile:
		filename, err := jobs.DumpToTmpFile()
		if err != nil {
			return fmt.Errorf("dump results to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// newAssistants builds the preference matcher and the question answerer when
// AI is enabled. Both are nil when it is not.
func newAssistants(ctx context.Context, config *Config, resumeJSON string, log *zap.Logger) (ai.Matcher, ai.Answerer, error) {
	if config.AI == nil || !config.AI.Enabled {
		return nil, nil, nil
	}

	provider := strings.TrimSpace(strings.ToLower(config.AI.Provider))
	if provider != "" && provider != "gemini" {
		return nil, nil, fmt.Errorf("unsupported ai provider: %s", config.AI.Provider)
	}

	if config.AI.Gemini == nil {
		return nil, nil, errors.New("gemini configuration is required when ai is enabled")
	}

	if strings.TrimSpace(config.Preferences) == "" {
		return nil, nil, errors.New("job-preferences text is required when ai is enabled")
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name: "gemini api key",
		File: config.AI.Gemini.APIKeyFile,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	genLogger := logger.WithCommonFields(log, "gemini", config.AI.Gemini.Model)

	generator, err := gemini.NewGenerator(ctx, apiKey, config.AI.Gemini.Model,
		config.AI.Gemini.Generation, config.AI.Gemini.MaxRetries, genLogger)
	if err != nil {
		return nil, nil, err
	}

	matcher := gemini.NewMatcher(generator, config.Preferences, genLogger, config.AI.Gemini.MaxLogLength)
	answerer := gemini.NewAnswerer(generator, resumeJSON, genLogger, config.AI.Gemini.MaxLogLength)

	return matcher, answerer, nil
}

func prepareFilters(cmd *cobra.Command, config *Config, store *tracker.Store, matcher ai.Matcher, source filtering.Source, jrnl *journal.Journal, logger *zap.Logger) []filtering.Filter {
	processed := filtering.NewProcessed(
		&filtering.ProcessedConfig{Ignore: flagSet(cmd, "ignore-processed")},
		&filtering.ProcessedDeps{Tracker: store, Logger: logger},
	)

	preference := filtering.NewPreference(
		&filtering.PreferenceConfig{Enabled: matcher != nil},
		&filtering.PreferenceDeps{
			Logger:  logger,
			Matcher: matcher,
			Source:  source,
			Journal: jrnl,
		},
	)

	external := filtering.NewExternal(config.External, &filtering.ExternalDeps{
		Logger:  logger,
		Journal: jrnl,
	})

	return []filtering.Filter{
		processed,
		filtering.NewExcludedCompanies(config.ExcludeCompanies),
		filtering.NewKeyword(config.Keywords, logger),
		preference,
		external,
	}
}

func flagSet(cmd *cobra.Command, name string) bool {
	if cmd == nil {
		return false
	}
	flag := cmd.Flag(name)
	return flag != nil && strings.EqualFold(flag.Value.String(), "true")
}
