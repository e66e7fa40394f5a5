package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/valuequant/backend/internal/api"
	"github.com/wonny/valuequant/backend/internal/api/handlers"
	"github.com/wonny/valuequant/backend/internal/s1_universe"
	"github.com/wonny/valuequant/backend/internal/scheduler"
	"github.com/wonny/valuequant/backend/internal/scheduler/jobs"
)

// schedulerCmd represents the scheduler command
var schedulerCmd = &cobra.Command{
	Use:   "scheduler",
	Short: "스케줄러 관리",
	Long: `전략 파일의 schedule.cron 에 따라 순위 작업을 주기적으로 실행합니다.

Subcommands:
  start   - 스케줄러 시작 (--port 지정 시 /api/scheduler/jobs 제공)
  list    - 등록된 작업 목록
  run     - 특정 작업 즉시 실행

Example:
  go run ./cmd/quant scheduler start --config config/strategy/robust_value.yaml
  go run ./cmd/quant scheduler list --config config/strategy/pe_value.yaml
  go run ./cmd/quant scheduler run rank_robust_value --config config/strategy/robust_value.yaml`,
}

var (
	schedulerStartCmd = &cobra.Command{
		Use:   "start",
		Short: "스케줄러 시작",
		RunE:  runScheduler,
	}

	schedulerListCmd = &cobra.Command{
		Use:   "list",
		Short: "등록된 작업 목록",
		RunE:  listJobs,
	}

	schedulerRunCmd = &cobra.Command{
		Use:   "run [job_name]",
		Short: "특정 작업 즉시 실행",
		Args:  cobra.ExactArgs(1),
		RunE:  runJob,
	}
)

var schedulerPort string

func init() {
	rootCmd.AddCommand(schedulerCmd)
	schedulerCmd.AddCommand(schedulerStartCmd)
	schedulerCmd.AddCommand(schedulerListCmd)
	schedulerCmd.AddCommand(schedulerRunCmd)

	schedulerStartCmd.Flags().StringVar(&schedulerPort, "port", "", "serve job stats on this port")
}

func runScheduler(cmd *cobra.Command, args []string) error {
	fmt.Println("=== valuequant Scheduler ===")

	sched, rt, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	sched.Start()

	if schedulerPort != "" {
		rt.cfg.Port = schedulerPort
		router := api.NewRouter(nil, handlers.NewSchedulerHandler(sched), rt.log)
		server := api.New(rt.cfg, rt.log, router)
		go func() {
			if err := server.Start(); err != nil {
				rt.log.WithError(err).Error("Scheduler stats server stopped")
			}
		}()
		defer server.Shutdown(cmd.Context())
	}

	PrintSuccess("Scheduler started")
	fmt.Println("\nRegistered jobs:")
	printJobList(sched)
	fmt.Println("\nPress Ctrl+C to stop")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	fmt.Println("\nShutting down scheduler...")
	sched.Stop()
	fmt.Println("Scheduler stopped")

	return nil
}

func listJobs(cmd *cobra.Command, args []string) error {
	sched, rt, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	fmt.Println("Registered jobs:")
	printJobList(sched)
	return nil
}

func runJob(cmd *cobra.Command, args []string) error {
	jobName := args[0]

	sched, rt, err := initScheduler(cmd)
	if err != nil {
		return fmt.Errorf("init scheduler: %w", err)
	}
	defer rt.Close()

	fmt.Printf("Running job: %s\n", jobName)
	result, err := sched.RunJob(jobName)
	if err != nil {
		return fmt.Errorf("run job: %w", err)
	}

	if !result.Success {
		PrintError(fmt.Sprintf("%s failed after %d attempt(s): %s", jobName, result.Attempts, result.Error))
		return fmt.Errorf("job %s failed", jobName)
	}
	PrintSuccess(fmt.Sprintf("%s completed in %s", jobName, result.Duration.Round(time.Millisecond)))
	return nil
}

func printJobList(sched *scheduler.Scheduler) {
	stats := sched.GetJobStats()
	for _, name := range sched.GetAllJobs() {
		stat := stats[name]
		next := "-"
		if stat.NextRun != nil {
			next = stat.NextRun.Format("2006-01-02 15:04:05")
		}
		fmt.Printf("  - %-24s %-20s next: %s\n", name, stat.Schedule, next)
	}
}

// initScheduler registers the ranking job of the strategy file and,
// for scraped universes, the daily constituents refresh.
func initScheduler(cmd *cobra.Command) (*scheduler.Scheduler, *runtime, error) {
	rt, err := newRuntime(cmd.Context(), true)
	if err != nil {
		return nil, nil, err
	}

	strategy, err := loadStrategy(rt.cfg, "")
	if err != nil {
		rt.Close()
		return nil, nil, err
	}
	if !strategy.Schedule.Enabled {
		rt.Close()
		return nil, nil, fmt.Errorf("schedule is disabled in the strategy file (set schedule.enabled and schedule.cron)")
	}

	source, err := rt.universeSource(strategy)
	if err != nil {
		rt.Close()
		return nil, nil, err
	}

	sched := scheduler.New(rt.log, scheduler.WithRetry(2, 30*time.Second))

	if err := sched.AddJob(jobs.NewRankJob(strategy, source, rt.universe, rt.orchestrator(strategy), rt.log)); err != nil {
		rt.Close()
		return nil, nil, err
	}
	if scraper, ok := source.(*s1_universe.Scraper); ok {
		if err := sched.AddJob(jobs.NewUniverseRefreshJob(scraper, rt.cache, rt.universe, rt.log)); err != nil {
			rt.Close()
			return nil, nil, err
		}
	}

	return sched, rt, nil
}
