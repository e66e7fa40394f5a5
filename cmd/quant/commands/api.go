package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuequant/backend/internal/api"
	"github.com/wonny/valuequant/backend/internal/api/handlers"
	"github.com/wonny/valuequant/backend/internal/contracts"
	"github.com/wonny/valuequant/backend/internal/strategyconfig"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET  /health                        - Health check
  GET  /api/strategies/{pe|rv}        - 전략 실행 (?capital=&top=&save=true)
  GET  /api/runs/{pe|rv}/latest       - 마지막 저장된 실행 조회 (DATABASE_URL 필요)

Example:
  go run ./cmd/quant api
  go run ./cmd/quant api --port 8080`,
	RunE: runAPIServer,
}

var (
	apiPort string
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT env)")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== valuequant API Server ===")

	ctx := cmd.Context()

	rt, err := newRuntime(ctx, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	if apiPort != "" {
		rt.cfg.Port = apiPort
	}

	// 전략 파일이 있으면 해당 전략만 교체, 나머지는 기본값
	configs := map[contracts.Strategy]*strategyconfig.Config{
		contracts.StrategyPE: strategyconfig.Default(string(contracts.StrategyPE)),
		contracts.StrategyRV: strategyconfig.Default(string(contracts.StrategyRV)),
	}
	if configFile != "" || rt.cfg.StrategyFile != "" {
		custom, err := loadStrategy(rt.cfg, "")
		if err != nil {
			return err
		}
		configs[contracts.Strategy(custom.Strategy)] = custom
	}

	// 유니버스 소스와 캐시 TTL은 RV 설정을 기준으로 공유
	shared := configs[contracts.StrategyRV]
	source, err := rt.universeSource(shared)
	if err != nil {
		return err
	}

	var runs handlers.RunReader
	if rt.runs != nil {
		runs = rt.runs
	}

	strategyHandler := handlers.NewStrategyHandler(configs, source, rt.universe, rt.orchestrator(shared), runs, rt.log)
	router := api.NewRouter(strategyHandler, nil, rt.log)
	server := api.New(rt.cfg, rt.log, router)

	go func() {
		if err := server.Start(); err != nil {
			rt.log.WithError(err).Fatal("Failed to start server")
		}
	}()

	fmt.Printf("\n✅ Server running on http://localhost:%s\n", rt.cfg.Port)
	fmt.Println("\nAvailable endpoints:")
	fmt.Println("  GET  /health")
	fmt.Println("  GET  /api/strategies/{pe|rv}")
	fmt.Println("  GET  /api/runs/{pe|rv}/latest")
	if rt.runs == nil {
		PrintWarning("DATABASE_URL not set: run history endpoints return 503")
	}
	fmt.Println("Press Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	rt.log.Info("Server stopped")
	return nil
}
