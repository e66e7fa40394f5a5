package commands

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/report"
)

// runsCmd represents the runs command
var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "저장된 실행 기록 조회 (DATABASE_URL 필요)",
	Long: `rank --save 또는 스케줄러가 저장한 실행 기록을 조회합니다.

Example:
  go run ./cmd/quant runs list rv --limit 10
  go run ./cmd/quant runs show pe --format csv`,
}

var (
	runsListCmd = &cobra.Command{
		Use:   "list [pe|rv]",
		Short: "최근 실행 목록",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsList,
	}

	runsShowCmd = &cobra.Command{
		Use:   "show [pe|rv]",
		Short: "마지막 실행 결과 출력",
		Args:  cobra.ExactArgs(1),
		RunE:  runRunsShow,
	}
)

var (
	runsLimit  int
	runsFormat string
)

func init() {
	rootCmd.AddCommand(runsCmd)
	runsCmd.AddCommand(runsListCmd)
	runsCmd.AddCommand(runsShowCmd)

	runsListCmd.Flags().IntVar(&runsLimit, "limit", 20, "number of runs")
	runsShowCmd.Flags().StringVar(&runsFormat, "format", "text", "output format (text|csv|json)")
}

func runRunsList(cmd *cobra.Command, args []string) error {
	strategy, err := contracts.ParseStrategy(args[0])
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.runs == nil {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	runs, err := rt.runs.ListRuns(cmd.Context(), strategy, runsLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		PrintInfo(fmt.Sprintf("No stored runs for %s", strategy))
		return nil
	}

	columns := []string{"Run At", "Run ID", "Positions", "Invested", "Cash", "Errors", "Duration"}
	widths := []int{19, 36, 9, 14, 10, 6, 10}
	rows := make([][]string, len(runs))
	for i, r := range runs {
		rows[i] = []string{
			r.RunAt.Local().Format("2006-01-02 15:04:05"),
			r.ID.String(),
			fmt.Sprintf("%d", r.Positions),
			r.Invested.StringFixed(2),
			r.Cash.StringFixed(2),
			fmt.Sprintf("%d", len(r.Errors)),
			r.Duration.Round(time.Millisecond).String(),
		}
	}
	PrintTable(cmd.OutOrStdout(), columns, widths, rows)
	return nil
}

func runRunsShow(cmd *cobra.Command, args []string) error {
	strategy, err := contracts.ParseStrategy(args[0])
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(runsFormat)
	if err != nil {
		return err
	}

	rt, err := newRuntime(cmd.Context(), true)
	if err != nil {
		return err
	}
	defer rt.Close()
	if rt.runs == nil {
		return fmt.Errorf("DATABASE_URL is not set")
	}

	run, err := rt.runs.GetLatestRun(cmd.Context(), strategy)
	if err != nil {
		return err
	}
	table, err := run.DecodeTable()
	if err != nil {
		return err
	}
	table.Metrics = strategy.DefaultMetrics()

	fmt.Fprintf(cmd.ErrOrStderr(), "Run %s at %s (config %s)\n", run.ID, run.RunAt.Local().Format(time.RFC3339), shortHash(run.ConfigHash))
	return report.Write(cmd.OutOrStdout(), table, format)
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
