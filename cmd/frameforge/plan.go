package main

import (
	"fmt"
	"os"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/extraction"
	"github.com/kikiluvv/frameforge/internal/planner"
	"github.com/kikiluvv/frameforge/internal/session"
	"github.com/kikiluvv/frameforge/internal/source"
	"github.com/kikiluvv/frameforge/internal/transform"
	"github.com/kikiluvv/frameforge/pkg/util"
	"github.com/spf13/cobra"
)

// planning flags shared by the plan and extract commands
type planFlags struct {
	clipSeconds   float64
	strideSeconds float64
	clips         int
	start         string
	crop          string
	size          string
	policy        string
	deletes       []string
	outputDir     string
}

func (f *planFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.clipSeconds, "clip-seconds", 0, "clip length in seconds (default: min(6, source duration))")
	cmd.Flags().Float64Var(&f.strideSeconds, "stride-seconds", 0, "distance between clip starts in seconds (default: clip length)")
	cmd.Flags().IntVar(&f.clips, "clips", 0, "maximum number of clips (0 = until end of source)")
	cmd.Flags().StringVar(&f.start, "start", "", "start position: frame number or MM:SS timestamp")
	cmd.Flags().StringVar(&f.crop, "crop", "", "crop rectangle as w:h:x:y in source pixels")
	cmd.Flags().StringVar(&f.size, "size", "", "target resolution as WxH (default: native)")
	cmd.Flags().StringVar(&f.policy, "policy", "stretch", "scale policy: stretch, letterbox or cover")
	cmd.Flags().StringArrayVar(&f.deletes, "delete", nil, "frame range start-end to drop before planning (repeatable)")
	cmd.Flags().StringVarP(&f.outputDir, "out", "o", "", "output directory (default from config)")
}

// build turns the flags into validated plan inputs for the open source
func (f *planFlags) build(sess *session.Session, cfg *config.Config) (extraction.Plan, transform.Spec, string, error) {
	var plan extraction.Plan
	var spec transform.Spec

	src := sess.Source()

	for _, d := range f.deletes {
		r, err := parseFrameRange(d)
		if err != nil {
			return plan, spec, "", err
		}
		if err := sess.DeleteFrames(r); err != nil {
			return plan, spec, "", err
		}
	}

	clipSeconds := f.clipSeconds
	if clipSeconds <= 0 {
		clipSeconds = min(6, src.Info().Duration.Seconds())
	}
	strideSeconds := f.strideSeconds
	if strideSeconds <= 0 {
		strideSeconds = clipSeconds
	}

	offset, err := parseStart(f.start, src.FPS())
	if err != nil {
		return plan, spec, "", err
	}

	plan = extraction.Plan{
		ClipFrames: int(clipSeconds * src.FPS()),
		Stride:     int(strideSeconds * src.FPS()),
		Offset:     offset,
		MaxClips:   f.clips,
	}

	crop, err := parseCrop(f.crop)
	if err != nil {
		return plan, spec, "", err
	}
	width, height, err := parseSize(f.size)
	if err != nil {
		return plan, spec, "", err
	}
	policy, err := transform.ParsePolicy(f.policy)
	if err != nil {
		return plan, spec, "", err
	}

	spec = transform.Spec{
		Crop:     crop,
		Width:    width,
		Height:   height,
		Policy:   policy,
		PadColor: cfg.Export.PadColor,
	}

	outputDir := f.outputDir
	if outputDir == "" {
		outputDir = cfg.OutputDir
	}

	return plan, spec, outputDir, nil
}

var planOpts planFlags

var planCmd = &cobra.Command{
	Use:   "plan <video>",
	Short: "Show the export jobs a plan would produce, without running them",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())

		sess, err := session.New(cfg)
		if err != nil {
			return err
		}
		defer sess.Close()

		if err := sess.Open(cmd.Context(), args[0]); err != nil {
			return err
		}

		plan, spec, outputDir, err := planOpts.build(sess, cfg)
		if err != nil {
			return err
		}

		jobs, err := sess.Plan(plan, spec, outputDir)
		if err != nil {
			return err
		}

		renderPlanTable(sess.Source(), jobs)
		fmt.Printf("%d jobs, %d retained frames\n", len(jobs), sess.Edits().RetainedCount())
		return nil
	},
}

func init() {
	planOpts.register(planCmd)
}

func renderPlanTable(src *source.Video, jobs []planner.Job) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Frames", "Count", "Duration", "Output"})
	for _, job := range jobs {
		t.AppendRow(table.Row{
			job.Index,
			job.Range.String(),
			job.Range.Len(),
			util.FramesToDuration(job.Range.Len(), src.FPS()).Round(time.Millisecond),
			job.OutputPath,
		})
	}
	t.Render()
}
