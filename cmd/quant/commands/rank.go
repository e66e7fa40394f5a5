package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"github.com/wonny/valuequant/backend/internal/brain"
	"github.com/wonny/valuequant/backend/internal/capital"
	"github.com/wonny/valuequant/backend/internal/report"
	"github.com/wonny/valuequant/backend/internal/s0_data"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
)

// rankCmd represents the rank command
var rankCmd = &cobra.Command{
	Use:   "rank [pe|rv]",
	Short: "전략 실행: 종목 순위 + 매수 수량 계산",
	Long: `유니버스를 조회해 전략 점수로 순위를 매기고 상위 종목의 매수 수량을 계산합니다.

Strategies:
  pe  - 양수 P/E 오름차순 (Quote endpoint)
  rv  - P/E, P/B, P/S, EV/EBITDA, EV/GP 백분위 평균 (Robust Value)

Capital:
  --capital 이 없으면 전략 파일의 portfolio.capital 을 사용하고,
  그것도 없으면 터미널에서 입력을 받습니다.

Example:
  go run ./cmd/quant rank pe --capital 10000
  go run ./cmd/quant rank rv --universe sp_500_stocks.csv --top 50
  go run ./cmd/quant rank rv --format csv --out robust_value.csv --save`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRank,
}

var (
	rankUniverse  string
	rankSP500     bool
	rankCapital   string
	rankTop       int
	rankBatchSize int
	rankFormat    string
	rankOut       string
	rankSave      bool
)

func init() {
	rootCmd.AddCommand(rankCmd)

	// Flags
	rankCmd.Flags().StringVar(&rankUniverse, "universe", "", "CSV file with a Ticker column")
	rankCmd.Flags().BoolVar(&rankSP500, "sp500", false, "scrape current S&P 500 constituents")
	rankCmd.Flags().StringVar(&rankCapital, "capital", "", "portfolio size, e.g. 10000 or $1,000,000")
	rankCmd.Flags().IntVar(&rankTop, "top", 0, "number of symbols to select (default from strategy)")
	rankCmd.Flags().IntVar(&rankBatchSize, "batch-size", 0, "symbols per provider request (max 100)")
	rankCmd.Flags().StringVar(&rankFormat, "format", "text", "output format (text|csv|json)")
	rankCmd.Flags().StringVar(&rankOut, "out", "", "output file (default stdout)")
	rankCmd.Flags().BoolVar(&rankSave, "save", false, "store the run in the audit database")
	rankCmd.MarkFlagsMutuallyExclusive("universe", "sp500")
}

func runRank(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	format, err := report.ParseFormat(rankFormat)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, rankSave)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := rt.cfg.RequireIEXToken(); err != nil {
		PrintError(err.Error())
		return err
	}

	name := ""
	if len(args) == 1 {
		name = args[0]
	}
	strategy, err := loadStrategy(rt.cfg, name)
	if err != nil {
		return err
	}
	applyRankFlags(strategy)

	amount, err := resolveCapital(ctx, cmd, rt, strategy)
	if err != nil {
		return err
	}

	source, err := rt.universeSource(strategy)
	if err != nil {
		return err
	}
	universe, err := rt.universe.Load(ctx, source)
	if err != nil {
		return fmt.Errorf("load universe: %w", err)
	}
	if len(universe.Excluded) > 0 {
		PrintInfo(fmt.Sprintf("%d tickers excluded from %s (duplicate or malformed)", len(universe.Excluded), universe.Source))
	}

	runConfig, err := brain.NewRunConfig(strategy, universe.Tickers, amount)
	if err != nil {
		return err
	}
	runConfig.Save = rankSave

	result, err := rt.orchestrator(strategy).Run(ctx, runConfig)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	out := cmd.OutOrStdout()
	if rankOut != "" {
		f, err := os.Create(rankOut)
		if err != nil {
			return fmt.Errorf("create %s: %w", rankOut, err)
		}
		defer f.Close()
		out = f
	}
	if err := report.Write(out, result.Table, format); err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	printRunSummary(cmd.ErrOrStderr(), result)
	return nil
}

// applyRankFlags overrides strategy settings with explicit flags
func applyRankFlags(strategy *strategyconfig.Config) {
	if rankUniverse != "" {
		strategy.Universe.Source = "csv"
		strategy.Universe.Path = rankUniverse
	}
	if rankSP500 {
		strategy.Universe.Source = "sp500"
	}
	if rankTop > 0 {
		strategy.Selection.TopN = rankTop
	}
	if rankBatchSize > 0 {
		strategy.Fetch.BatchSize = min(rankBatchSize, s0_data.MaxBatchSize)
	}
}

// resolveCapital takes --capital, then the strategy file, then asks on the terminal
func resolveCapital(ctx context.Context, cmd *cobra.Command, rt *runtime, strategy *strategyconfig.Config) (decimal.Decimal, error) {
	text := rankCapital
	if text == "" {
		text = strategy.Portfolio.Capital
	}
	if text != "" {
		result := capital.Parse(text)
		return result.Amount, result.Err
	}

	prompter := capital.NewPrompter(cmd.InOrStdin(), cmd.ErrOrStderr(), capital.DefaultAttempts, rt.log)
	result := prompter.Ask(ctx)
	return result.Amount, result.Err
}

func printRunSummary(w io.Writer, result *brain.RunResult) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Run %s (%s) finished in %s\n", result.RunID, result.Strategy, result.Duration.Round(time.Millisecond))
	fmt.Fprintf(w, "  Universe : %d symbols, %d selected\n", result.Universe.Count(), result.Portfolio.Count())
	if result.Fetch != nil && result.Fetch.FailedBatches > 0 {
		fmt.Fprintf(w, "  Batches  : %d of %d failed\n", result.Fetch.FailedBatches, result.Fetch.Batches)
	}
	if len(result.Errors) > 0 {
		fmt.Fprintf(w, "  Skipped  : %d symbols\n", len(result.Errors))
		for i, e := range result.Errors {
			if i == 10 {
				fmt.Fprintf(w, "    ... and %d more\n", len(result.Errors)-i)
				break
			}
			fmt.Fprintf(w, "    %s\n", e.Error())
		}
	}
	if result.Saved {
		fmt.Fprintln(w, "  Saved    : audit.runs")
	}
}
