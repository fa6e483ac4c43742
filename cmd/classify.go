package cmd

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/skills"
)

type classification struct {
	Keywords []string       `json:"keywords"`
	Scores   []skills.Score `json:"scores"`
	Domain   string         `json:"domain"`
}

var classifyCmd = &cobra.Command{
	Use:   "classify [text...]",
	Short: "Detect skill keywords in a text and lock a skill domain",
	Run: func(cmd *cobra.Command, args []string) {
		logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
		if err != nil {
			log.Fatalf("creating a logger: %s", err)
		}

		config, err := getConfig()
		if err != nil {
			logger.Fatal("getting a config", zap.Error(err))
		}

		catalogue, err := catalogueFromConfig(config.Skills)
		if err != nil {
			logger.Fatal("building skill catalogue", zap.Error(err))
		}

		text := strings.Join(args, " ")
		if file, _ := cmd.Flags().GetString("file"); file != "" {
			data, err := os.ReadFile(file)
			if err != nil {
				logger.Fatal("reading input file", zap.Error(err))
			}
			text = string(data)
		}
		if strings.TrimSpace(text) == "" {
			logger.Fatal("nothing to classify, pass text or --file")
		}

		keywords := catalogue.Extract(text)
		out, _ := json.MarshalIndent(classification{
			Keywords: keywords,
			Scores:   catalogue.Scores(keywords),
			Domain:   catalogue.Classify(keywords),
		}, "", "  ")
		fmt.Println(string(out))
	},
}

func init() {
	rootCmd.AddCommand(classifyCmd)

	classifyCmd.Flags().StringP("file", "f", "", "read the text from a file instead of arguments")
}
