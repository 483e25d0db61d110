package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/adamdavies1915/bikecountdisplay/internal/counts"
	"github.com/adamdavies1915/bikecountdisplay/internal/domain"
	"github.com/adamdavies1915/bikecountdisplay/internal/infra"
	"github.com/adamdavies1915/bikecountdisplay/internal/providers/ecovisio"
)

func main() {
	var (
		policyFlag  string
		timeoutFlag time.Duration
		jsonFlag    bool
		langFlag    string
	)
	flag.StringVar(&policyFlag, "policy", "", "summary policy (last-complete or calendar-yesterday); defaults to SUMMARY_POLICY")
	flag.DurationVar(&timeoutFlag, "timeout", 20*time.Second, "overall deadline for the upstream request")
	flag.BoolVar(&jsonFlag, "json", false, "print the summary as JSON")
	flag.StringVar(&langFlag, "lang", "en", "language tag used for number formatting")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		exitWithError(err)
	}
	policy := cfg.SummaryPolicy
	if policyFlag != "" {
		if policy, err = counts.ParsePolicy(policyFlag); err != nil {
			exitWithError(err)
		}
	}
	tag, err := language.Parse(langFlag)
	if err != nil {
		exitWithError(fmt.Errorf("invalid -lang %q: %w", langFlag, err))
	}

	logger := infra.NewLogger("cli").With().Str("cmd", "countercheck").Logger()
	client := ecovisio.NewClient(ecovisio.Options{
		BaseURL:        cfg.EcoVisioBaseURL,
		RequestTimeout: cfg.UpstreamTimeout,
		Logger:         &logger,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeoutFlag)
	defer cancel()

	raw, err := client.FetchSeries(ctx, cfg.Counter)
	if err != nil {
		exitWithError(err)
	}
	summary := counts.New(policy).Summarize(raw, time.Now().In(cfg.Location))

	if jsonFlag {
		if err := writeJSON(os.Stdout, summary); err != nil {
			exitWithError(err)
		}
		return
	}
	printReport(os.Stdout, message.NewPrinter(tag), cfg.Counter, policy, summary)
}

func printReport(w io.Writer, p *message.Printer, counter domain.CounterConfig, policy counts.Policy, s domain.Summary) {
	p.Fprintf(w, "Counter %s (flows %s, organisation %s)\n", counter.SiteID, counter.FlowIDsParam(), counter.OrganizationID)
	p.Fprintf(w, "Policy:              %s\n", policy)
	date := s.MostRecentCompleteDayDate
	if date == "" {
		date = "n/a"
	}
	p.Fprintf(w, "Most recent day:     %s\n", date)
	p.Fprintf(w, "Riders that day:     %d\n", s.MostRecentCompleteDayCount)
	p.Fprintf(w, "Year to date (%s): %d\n", strconv.Itoa(s.Year), s.YearToDateCount)
	if s.SkippedEntries > 0 {
		p.Fprintf(w, "Skipped entries:     %d\n", s.SkippedEntries)
	}
	p.Fprintf(w, "Fetched at:          %s\n", s.FetchedAt.Format(time.RFC3339))
}

// writeJSON prints s in the same shape GET /api/counts returns.
func writeJSON(w io.Writer, s domain.Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(s.Payload())
}

func exitWithError(err error) {
	fmt.Fprintf(os.Stderr, "countercheck: %v\n", err)
	os.Exit(1)
}
