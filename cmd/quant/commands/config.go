package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wonny/valuequant/backend/internal/strategyconfig"
)

// configCmd represents the config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "전략 설정 파일 관리",
}

// configCheckCmd validates a strategy YAML file
var configCheckCmd = &cobra.Command{
	Use:   "check [file]",
	Short: "전략 YAML 검증",
	Long: `전략 YAML을 로드하고 검증합니다. 실패하면 종료 코드 1.

출력:
- 검증 결과 (필수 제약)
- 경고 (권장 위반)
- Config Hash (실행 기록과 대조용)

Example:
  go run ./cmd/quant config check config/strategy/robust_value.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runConfigCheck,
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configCheckCmd)
}

func runConfigCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	cfg, raw, err := strategyconfig.Load(path)
	if err != nil {
		PrintError(err.Error())
		return err
	}

	if err := strategyconfig.Validate(cfg); err != nil {
		PrintError(fmt.Sprintf("%s: %v", path, err))
		return err
	}

	snapshot, err := strategyconfig.NewDecisionSnapshot(cfg, raw)
	if err != nil {
		return fmt.Errorf("hash config: %w", err)
	}

	PrintSuccess(fmt.Sprintf("%s is valid", path))
	PrintKeyValue("Strategy", fmt.Sprintf("%s (%s v%s)", cfg.Strategy, cfg.Meta.StrategyID, cfg.Meta.Version), 10)
	PrintKeyValue("Universe", cfg.Universe.Source, 10)
	PrintKeyValue("Metrics", fmt.Sprintf("%v", cfg.Ranking.Metrics), 10)
	PrintKeyValue("Top N", fmt.Sprintf("%d", cfg.Selection.TopN), 10)
	PrintKeyValue("Hash", snapshot.ConfigHash, 10)

	for _, w := range strategyconfig.Warn(cfg) {
		PrintWarning(fmt.Sprintf("[%s] %s", w.Code, w.Message))
	}

	return nil
}
