package cmd

import (
	"errors"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/interviewer/internal/interview"
	"github.com/spigell/interviewer/internal/skills"
	"github.com/spigell/interviewer/internal/termination"
)

const (
	app = "interviewer"
)

type Config struct {
	Interview   *interview.Config   `mapstructure:"interview"`
	Termination *termination.Config `mapstructure:"termination"`
	Skills      *SkillsConfig       `mapstructure:"skills"`
	AI          *AIConfig           `mapstructure:"ai"`
	Reports     *ReportsConfig      `mapstructure:"reports"`
	Metrics     *MetricsConfig      `mapstructure:"metrics"`
}

type SkillsConfig struct {
	Fallback string          `mapstructure:"fallback"`
	Domains  []skills.Domain `mapstructure:"domains"`
}

type AIConfig struct {
	Enabled      bool          `mapstructure:"enabled"`
	Provider     string        `mapstructure:"provider"`
	MaxLogLength int           `mapstructure:"max-log-length"`
	Gemini       *GeminiConfig `mapstructure:"gemini"`
	OpenAI       *OpenAIConfig `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKeyFile string `mapstructure:"api-key-file"`
	APIKeyEnv  string `mapstructure:"api-key-env"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries"`
}

type OpenAIConfig struct {
	BaseURL     string        `mapstructure:"base-url"`
	APIKeyFile  string        `mapstructure:"api-key-file"`
	APIKeyEnv   string        `mapstructure:"api-key-env"`
	Model       string        `mapstructure:"model"`
	Timeout     time.Duration `mapstructure:"timeout"`
	MaxRetries  int           `mapstructure:"max-retries"`
	Temperature float64       `mapstructure:"temperature"`
}

type ReportsConfig struct {
	Dir      string `mapstructure:"dir"`
	Database string `mapstructure:"database"`
}

type MetricsConfig struct {
	Listen string `mapstructure:"listen"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "interviewer runs adaptive screening interviews in the terminal",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	icfg := interview.DefaultConfig()
	v.SetDefault("interview.total-questions", icfg.TotalQuestions)
	v.SetDefault("interview.collaborator-timeout", icfg.CollaboratorTimeout)
	v.SetDefault("interview.poor-performance-floor", icfg.PoorPerformanceFloor)
	v.SetDefault("interview.poor-performance-window", icfg.PoorPerformanceWindow)

	tcfg := termination.DefaultConfig()
	v.SetDefault("termination.misconduct-signals", tcfg.MisconductSignals)
	v.SetDefault("termination.abusive-keywords", tcfg.AbusiveKeywords)
	v.SetDefault("termination.quit-keywords", tcfg.QuitKeywords)
	v.SetDefault("termination.min-words", tcfg.MinWords)
	v.SetDefault("termination.skip-command", tcfg.SkipCommand)
	v.SetDefault("termination.suspicious-activity-limit", tcfg.SuspiciousActivityLimit)

	v.SetDefault("skills.fallback", skills.DefaultDomain)

	v.SetDefault("ai.enabled", false)
	v.SetDefault("ai.provider", "openai")
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.openai.api-key-env", "GROQ_API_KEY")
	v.SetDefault("ai.openai.max-retries", 2)
	v.SetDefault("ai.openai.timeout", 30*time.Second)
	v.SetDefault("ai.gemini.api-key-env", "GEMINI_API_KEY")
	v.SetDefault("ai.gemini.max-retries", 3)

	v.SetDefault("reports.dir", "reports")
}

func initConfig() {
	// API keys are usually kept in .env next to the config.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("loading .env: %s", err)
	}

	viper.SetEnvPrefix(strings.ToUpper(app))
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	// The default config file is optional, an explicit one is not.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	if config.Interview == nil {
		icfg := interview.DefaultConfig()
		config.Interview = &icfg
	}
	if config.Termination == nil {
		tcfg := termination.DefaultConfig()
		config.Termination = &tcfg
	}
	if config.Skills == nil {
		config.Skills = &SkillsConfig{Fallback: skills.DefaultDomain}
	}
	if config.AI == nil {
		config.AI = &AIConfig{}
	}
	if config.Reports == nil {
		config.Reports = &ReportsConfig{}
	}
	if config.Metrics == nil {
		config.Metrics = &MetricsConfig{}
	}

	return config, nil
}

func catalogueFromConfig(cfg *SkillsConfig) (*skills.Catalogue, error) {
	if cfg == nil || len(cfg.Domains) == 0 {
		c := skills.Default()
		if cfg != nil && strings.TrimSpace(cfg.Fallback) != "" {
			c.Fallback = strings.ToLower(strings.TrimSpace(cfg.Fallback))
		}
		return c, nil
	}
	return skills.NewCatalogue(cfg.Domains, cfg.Fallback)
}
