package commands

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
	env        string
	verbose    bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "quant",
	Short: "valuequant - 가치 전략 종목 선정 및 포지션 사이징",
	Long: `valuequant Unified CLI

S&P 500 유니버스를 배치로 조회해 P/E 또는 Robust Value 점수로 순위를 매기고,
상위 종목을 동일 금액으로 나누어 매수 수량을 계산합니다.

Pipeline:
  S0 Fetch → S0 Assemble → S2 Screen/Signals → S3 Select → S4 Size → S5 Report

Usage:
  go run ./cmd/quant [command]

Examples:
  go run ./cmd/quant rank pe --capital 10000
  go run ./cmd/quant rank rv --universe sp_500_stocks.csv --format csv --out rv.csv
  go run ./cmd/quant api
  go run ./cmd/quant config check config/strategy/robust_value.yaml`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "strategy YAML file (default: built-in strategy defaults)")
	rootCmd.PersistentFlags().StringVar(&env, "env", "", "environment override (development|staging|production)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}
