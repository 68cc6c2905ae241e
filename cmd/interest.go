package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/simonvc/tellerledger/internal/scheduler"
)

var interestCmd = &cobra.Command{
	Use:   "interest",
	Short: "Apply monthly interest",
}

var interestApplyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Credit one month of interest to every eligible account now",
	RunE: func(cmd *cobra.Command, args []string) error {
		n, err := svc.ApplyInterestToAll(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("Interest credited to %d account(s).\n", n)
		return nil
	},
}

var interestSchedule string

var interestScheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Apply interest on a cron schedule until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec := cfg.InterestSchedule
		if interestSchedule != "" {
			spec = interestSchedule
		}
		sched, err := scheduler.New(svc, spec, logger)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		sched.Start()
		fmt.Printf("Interest schedule %q, next run %s. Press Ctrl+C to stop.\n",
			sched.Spec(), sched.Next().Format(time.RFC1123))
		<-ctx.Done()

		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return sched.Stop(shutdown)
	},
}

func init() {
	interestScheduleCmd.Flags().StringVar(&interestSchedule, "cron", "", "Cron schedule (default from config, @monthly)")

	interestCmd.AddCommand(interestApplyCmd)
	interestCmd.AddCommand(interestScheduleCmd)

	rootCmd.AddCommand(interestCmd)
}
