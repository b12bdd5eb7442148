package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/engine"
	"github.com/kikiluvv/frameforge/internal/session"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var (
	extractOpts    planFlags
	extractWorkers int
)

var extractCmd = &cobra.Command{
	Use:   "extract <video>",
	Short: "Plan and export clips from a source video",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		if extractWorkers > 0 {
			cfg.Workers = extractWorkers
		}

		sess, err := session.New(cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		if err := sess.Open(ctx, args[0]); err != nil {
			return err
		}

		plan, spec, outputDir, err := extractOpts.build(sess, cfg)
		if err != nil {
			return err
		}

		batch, err := sess.PlanAndExport(ctx, plan, spec, outputDir)
		if err != nil {
			return err
		}

		report := batch.Report()
		bar := progressbar.NewOptions(len(report),
			progressbar.OptionSetDescription("exporting"),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionShowCount(),
			progressbar.OptionClearOnFinish(),
		)

		batch.Observe(func(r engine.JobResult) {
			if r.Status == engine.StatusCompleted || r.Status == engine.StatusFailed {
				bar.Add(1)
			}
		})

		// Ctrl-C cancels the batch; in-flight jobs drop their partial
		// outputs and finished clips are kept
		go func() {
			<-ctx.Done()
			batch.Cancel()
		}()

		batch.Wait()
		bar.Finish()

		renderReport(batch.Report())

		if batch.Failed() {
			return fmt.Errorf("batch %s finished with failed jobs", batch.ID)
		}
		return nil
	},
}

func init() {
	extractOpts.register(extractCmd)
	extractCmd.Flags().IntVar(&extractWorkers, "workers", 0, "concurrent export jobs (0 = one per CPU)")
}

func renderReport(results []engine.JobResult) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Status", "Frames", "Skipped", "Output", "Error"})
	for _, r := range results {
		errText := ""
		if r.Err != nil {
			errText = r.Err.Error()
		}
		out := r.OutputPath
		if r.Status != engine.StatusCompleted {
			out = "-"
		}
		t.AppendRow(table.Row{r.Index, r.Status, r.FramesEncoded, r.FramesSkipped, out, errText})
	}
	t.Render()
}
