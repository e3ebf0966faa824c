package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"skillbridge/internal/client"

	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var (
		apiURL   string
		email    string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Sign in and stream live changes to your submissions",
		Long: `Signs in with MARKETCTL_PASSWORD, keeps the session fresh in the
background and prints every change pushed on the submissions feed.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			password := os.Getenv("MARKETCTL_PASSWORD")
			if email == "" || password == "" {
				return errors.New("--email and MARKETCTL_PASSWORD are required")
			}

			logger := log.New(cmd.ErrOrStderr(), "", log.LstdFlags)
			api := client.New(apiURL, logger)
			if api == nil {
				return errors.New("--api is required")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			session, err := api.Login(ctx, email, password)
			if err != nil {
				return fmt.Errorf("login: %w", err)
			}

			list, err := api.MySubmissions(ctx, session.AccessToken)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			printCounts(out, list)

			keeper := client.NewSessionKeeper(api, session, logger)
			keeper.SetInterval(interval)
			go keeper.Run(ctx)

			onChange := refetchOnChange(ctx, api, func() string { return keeper.Current().AccessToken }, out, logger)
			for ctx.Err() == nil {
				err := api.StreamSubmissions(ctx, keeper.Current().AccessToken, onChange)
				if err == nil {
					break
				}
				logger.Printf("[Watch] feed dropped err=%v", err)
				select {
				case <-ctx.Done():
				case <-time.After(5 * time.Second):
				}
			}

			logoutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := api.Logout(logoutCtx, keeper.Current()); err != nil {
				logger.Printf("[Watch] logout failed err=%v", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "api", "http://localhost:8080", "API base URL")
	cmd.Flags().StringVar(&email, "email", "", "account email")
	cmd.Flags().DurationVar(&interval, "refresh-check", time.Minute, "how often to check the access token expiry")
	return cmd
}

type submissionLister interface {
	MySubmissions(ctx context.Context, accessToken string) (client.SubmissionList, error)
}

// refetchOnChange prints each feed event and then reloads the submission
// list, so counts stay right even when the event is only a resync hint.
func refetchOnChange(ctx context.Context, api submissionLister, token func() string, out io.Writer, logger *log.Logger) func(client.FeedEvent) {
	return func(ev client.FeedEvent) {
		fmt.Fprintf(out, "%s op=%s submission=%s job=%s status=%s\n",
			time.Now().Format(time.RFC3339), ev.Submission.Op, ev.Submission.ID, ev.Submission.JobID, ev.Submission.Status)

		list, err := api.MySubmissions(ctx, token())
		if err != nil {
			logger.Printf("[Watch] refetch failed err=%v", err)
			return
		}
		printCounts(out, list)
	}
}

func printCounts(out io.Writer, list client.SubmissionList) {
	fmt.Fprintf(out, "submissions total=%d pending=%d approved=%d rejected=%d\n",
		list.Counts.Total, list.Counts.Pending, list.Counts.Approved, list.Counts.Rejected)
}
