package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/spigell/interviewer/internal/logger"
	"github.com/spigell/interviewer/internal/report"
)

var reportsCmd = &cobra.Command{
	Use:   "reports",
	Short: "Inspect stored interview reports",
}

var reportsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the newest reports from the database",
	Run: func(cmd *cobra.Command, _ []string) {
		logger, store := openStore()
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		listings, err := store.List(context.Background(), limit)
		if err != nil {
			logger.Fatal("listing reports", zap.Error(err))
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "SESSION\tSKILL\tPHASE\tFINAL\tRECOMMENDATION\tTERMINATION\tCREATED")
		for _, l := range listings {
			fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%s\t%s\t%s\n",
				l.SessionID, l.PrimarySkill, l.Phase, l.Final, l.Recommendation, l.TerminationReason,
				l.CreatedAt.Format("2006-01-02 15:04"))
		}
		w.Flush()
	},
}

var reportsShowCmd = &cobra.Command{
	Use:   "show [session-id]",
	Short: "Print a stored report",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var (
			r   *report.Report
			err error
		)

		if file, _ := cmd.Flags().GetString("file"); file != "" {
			r, err = report.ReadFile(file)
			if err != nil {
				log.Fatalf("reading report file: %s", err)
			}
		} else {
			if len(args) == 0 {
				log.Fatal("pass a session id or --file")
			}
			logger, store := openStore()
			defer store.Close()

			r, err = store.Get(context.Background(), args[0])
			if err != nil {
				logger.Fatal("getting report", zap.Error(err))
			}
			if r == nil {
				logger.Fatal("report not found", zap.String("session_id", args[0]))
			}
		}

		output, _ := cmd.Flags().GetString("output")
		if err := printReport(os.Stdout, r, output); err != nil {
			log.Fatalf("printing report: %s", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.AddCommand(reportsListCmd, reportsShowCmd)

	reportsCmd.PersistentFlags().String("database", "", "sqlite database with reports, overrides reports.database")
	viper.BindPFlag("reports.database", reportsCmd.PersistentFlags().Lookup("database"))

	reportsListCmd.Flags().IntP("limit", "l", 20, "max number of reports")
	reportsShowCmd.Flags().StringP("file", "f", "", "read a report JSON file instead of the database")
	reportsShowCmd.Flags().StringP("output", "o", "json", "output format: json or yaml")
}

func openStore() (*zap.Logger, *report.SQLiteStore) {
	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}
	if config.Reports.Database == "" {
		logger.Fatal("no report database configured, set reports.database or --database")
	}

	store, err := report.NewSQLiteStore(config.Reports.Database)
	if err != nil {
		logger.Fatal("opening report database", zap.Error(err))
	}
	return logger, store
}

func printReport(w io.Writer, r *report.Report, format string) error {
	switch format {
	case "", "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	case "yaml":
		// Round trip through JSON so yaml keys follow the json tags.
		data, err := json.Marshal(r)
		if err != nil {
			return err
		}
		var doc map[string]any
		if err := json.Unmarshal(data, &doc); err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(doc)
	default:
		return fmt.Errorf("unsupported output format %q", format)
	}
}
