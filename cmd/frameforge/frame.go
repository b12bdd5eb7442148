package main

import (
	"fmt"
	"image/png"
	"os"

	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/session"
	"github.com/spf13/cobra"
)

var (
	frameNumber int
	frameOutput string
	frameStrip  bool
	frameCount  int
)

var frameCmd = &cobra.Command{
	Use:   "frame <video>",
	Short: "Export a single frame, or a five-thumbnail preview strip, as PNG",
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

		if frameStrip {
			return writeStrip(cmd, sess)
		}

		out := frameOutput
		if out == "" {
			out = fmt.Sprintf("frame_%d.png", frameNumber)
		}

		if err := sess.ExportFrame(cmd.Context(), frameNumber, out); err != nil {
			return err
		}

		fmt.Println(out)
		return nil
	},
}

// writeStrip samples five thumbnails over [frame, frame+count) and writes
// each as strip_f<N>.png, named by the sampled frame number
func writeStrip(cmd *cobra.Command, sess *session.Session) error {
	length := frameCount
	if length <= 0 {
		length = sess.Source().TotalFrames() - frameNumber
	}

	thumbs, err := sess.PreviewStrip(cmd.Context(), frameNumber, length)
	if err != nil {
		return err
	}

	positions := session.StripPositions(frameNumber, length)
	for i, img := range thumbs {
		name := fmt.Sprintf("strip_f%d.png", positions[i])
		f, err := os.Create(name)
		if err != nil {
			return err
		}
		if err := png.Encode(f, img); err != nil {
			f.Close()
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Println(name)
	}
	return nil
}

func init() {
	frameCmd.Flags().IntVarP(&frameNumber, "frame", "n", 0, "logical frame number to export")
	frameCmd.Flags().StringVarP(&frameOutput, "out", "o", "", "output PNG path")
	frameCmd.Flags().BoolVar(&frameStrip, "strip", false, "export a five-thumbnail preview strip instead")
	frameCmd.Flags().IntVar(&frameCount, "frames", 0, "strip window length in frames (default: to end of source)")
	frameCmd.MarkFlagsMutuallyExclusive("strip", "out")
}

func fmtResolution(w, h int) string {
	return fmt.Sprintf("%dx%d", w, h)
}
