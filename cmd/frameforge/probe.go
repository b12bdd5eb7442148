package main

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/kikiluvv/frameforge/internal/config"
	"github.com/kikiluvv/frameforge/internal/session"
	"github.com/spf13/cobra"
)

var probeCmd = &cobra.Command{
	Use:   "probe <video>",
	Short: "Show source video metadata and frame index summary",
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

		src := sess.Source()
		info := src.Info()

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.AppendRows([]table.Row{
			{"Path", src.Path()},
			{"Resolution", fmtResolution(info.Width, info.Height)},
			{"FPS", info.FPS},
			{"Frames", src.TotalFrames()},
			{"Duration", info.Duration},
			{"Video codec", info.VideoCodec},
			{"Audio", info.HasAudio},
		})
		t.Render()

		return nil
	},
}
