package main

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/layout-verifier/constants"
	"github.com/joseph-ayodele/layout-verifier/internal/core/async"
	"github.com/joseph-ayodele/layout-verifier/internal/ingest"
	"github.com/joseph-ayodele/layout-verifier/internal/services/verify"
)

func newWatchCmd(g *globals) *cobra.Command {
	var (
		workbook string
		initial  bool
		debounce time.Duration
	)
	cmd := &cobra.Command{
		Use:   "watch <dir>...",
		Short: "Verify layouts as they appear in the watched directories",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := g.profile()
			if err != nil {
				return err
			}

			var (
				mu     sync.Mutex
				hashes = map[string]string{}
			)
			out := cmd.OutOrStdout()
			handler := func(ctx context.Context, job async.Job) error {
				sum, err := ingest.HashFile(job.Path)
				if err != nil {
					return err
				}
				mu.Lock()
				unchanged := hashes[job.Path] == sum
				hashes[job.Path] = sum
				mu.Unlock()
				if unchanged {
					g.logger.Debug("layout unchanged, skipping", "path", job.Path)
					return nil
				}

				resp, err := g.app.Verify.VerifySingle(ctx, verify.SingleRequest{Workbook: workbook, Profile: p, Document: job.Path})
				if err != nil {
					return err
				}
				mu.Lock()
				defer mu.Unlock()
				if resp.Unresolved != nil {
					fmt.Fprintf(out, "%s  NO_MATCH  %s\n", resp.Unresolved.Document, resp.Unresolved.Reason)
					return nil
				}
				printResult(out, resp.Result)
				return nil
			}

			queue := async.NewQueue(handler, g.logger,
				async.WithQueueWorkers(g.cfg.Batch.Workers),
				async.WithBuffer(g.cfg.Batch.QueueSize),
				async.WithJobTimeout(2*g.cfg.Extract.Timeout),
			)
			defer func() {
				sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
				defer cancel()
				queue.Shutdown(sctx)
			}()

			events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
				Roots:       args,
				AllowedExts: constants.ExtensionSet(p.Extensions()),
				InitialScan: initial,
				Debounce:    debounce,
				Logger:      g.logger,
			})
			if err != nil {
				return err
			}
			g.logger.Info("watching for layouts", "roots", args, "workbook", workbook)

			for {
				select {
				case <-ctx.Done():
					return nil
				case path, ok := <-events:
					if !ok {
						return nil
					}
					queue.Enqueue(ctx, async.Job{Path: path, SubmittedAt: time.Now()})
				case err, ok := <-errs:
					if !ok {
						errs = nil
						continue
					}
					g.logger.Warn("watcher error", "error", err)
				}
			}
		},
	}
	cmd.Flags().StringVar(&workbook, "workbook", "", "catalog workbook (.xlsx, .xlsm) (required)")
	cmd.Flags().BoolVar(&initial, "initial-scan", true, "verify layouts already present when watching starts")
	cmd.Flags().DurationVar(&debounce, "debounce", 750*time.Millisecond, "quiet period before a changed file is verified")
	_ = cmd.MarkFlagRequired("workbook")
	return cmd
}
