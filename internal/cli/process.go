package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"subburn/internal/audio"
	"subburn/internal/pipeline"
)

var processCmd = &cobra.Command{
	Use:   "process [video_file]",
	Short: "Process a single video from the command line",
	Long: `Run the full pipeline on one video file: extract audio, detect the
source language, transcribe, translate, and render a subtitled copy.

Examples:
  subburn process clip.mp4 --target en
  subburn process clip.mp4 --source es --target en --font-size 28`,
	Args: cobra.ExactArgs(1),
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringP("source", "s", "auto", "Source language (code or name, 'auto' to detect)")
	processCmd.Flags().StringP("target", "t", "en", "Target language (code or name)")
	processCmd.Flags().Int("font-size", 0, "Subtitle font size override")
}

func runProcess(cmd *cobra.Command, args []string) error {
	videoPath, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	if _, err := os.Stat(videoPath); err != nil {
		return fmt.Errorf("file not found: %s", videoPath)
	}
	if !audio.IsVideoFile(videoPath) {
		if audio.IsAudioFile(videoPath) {
			return fmt.Errorf("audio-only input is not supported: a video stream is required")
		}
		return fmt.Errorf("unsupported file type: %s (expected a video file)", filepath.Ext(videoPath))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a, err := buildApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	sourceLang, _ := cmd.Flags().GetString("source")
	targetLang, _ := cmd.Flags().GetString("target")
	fontSize, _ := cmd.Flags().GetInt("font-size")

	rec, err := a.records.Create(ctx, filepath.Base(videoPath), videoPath)
	if err != nil {
		return err
	}

	req := pipeline.Request{
		RecordID:   rec.ID,
		VideoPath:  videoPath,
		SourceLang: sourceLang,
		TargetLang: targetLang,
		FontSize:   fontSize,
	}

	emit := func(ev pipeline.Event) {
		switch {
		case ev.Progress < 0:
			fmt.Fprintf(os.Stderr, "failed: %s\n", ev.Error)
		case ev.OutputPath != "":
			fmt.Printf("[%3d%%] %s: %s\n", ev.Progress, ev.Step, ev.OutputPath)
		default:
			fmt.Printf("[%3d%%] %s\n", ev.Progress, ev.Step)
		}
	}

	if err := a.pipeline.Run(ctx, req, emit); err != nil {
		return err
	}

	final, err := a.records.GetRecord(ctx, rec.ID)
	if err != nil {
		return err
	}
	logger.Infow("processing complete", "record", final.ID, "output", final.OutputPath)
	return nil
}
