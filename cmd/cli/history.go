package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/himanishpuri/AutoTabber/internal/tab"
	"github.com/himanishpuri/AutoTabber/pkg/autotabber"
	"github.com/himanishpuri/AutoTabber/pkg/logger"
)

var keysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List supported harmonica keys",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		for _, k := range tab.Keys() {
			hole1 := tab.Frequency(uint8(60 + k.Offset()))
			fmt.Printf("%-3s %+4d   hole 1 blow %7.2f Hz\n", k, k.Offset(), hole1)
		}
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved recordings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetLogger()

		svc, err := createHistoryService()
		if err != nil {
			return err
		}
		defer svc.Close()

		recs, err := svc.ListRecordings()
		if err != nil {
			log.Errorf("ListRecordings failed: %v", err)
			return err
		}

		if len(recs) == 0 {
			fmt.Println("📭 No recordings in history")
			return nil
		}

		fmt.Printf("📚 Found %d recording(s):\n\n", len(recs))
		for i, r := range recs {
			fmt.Printf("%d. %s (ID: %s)\n", i+1, r.Source, r.ID)
			fmt.Printf("   Key: %s | Notes: %d | %s\n", r.Settings.Key, r.NoteCount, r.CreatedAt.Format("2006-01-02 15:04:05"))
		}
		log.Debugf("Listed %d recordings", len(recs))
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <recording_id>",
	Short: "Print a saved recording's tab",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, err := createHistoryService()
		if err != nil {
			return err
		}
		defer svc.Close()

		rec, err := svc.GetRecording(args[0])
		if err != nil {
			if errors.Is(err, autotabber.ErrRecordingNotFound) {
				fmt.Fprintf(os.Stderr, "❌ Recording not found (ID: %s)\n", args[0])
			}
			return err
		}

		s := rec.Settings
		fmt.Fprintf(os.Stderr, "🎵 %s | key %s | %d Hz | frame %d | count %d | min volume %.3f\n",
			rec.Source, s.Key, s.SampleRate, s.FrameSize, s.MinCount, s.MinVolume)
		fmt.Print(rec.Text)
		if !strings.HasSuffix(rec.Text, "\n") {
			fmt.Println()
		}
		return nil
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete <recording_id>",
	Short: "Delete a saved recording",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		log := logger.GetLogger()

		svc, err := createHistoryService()
		if err != nil {
			return err
		}
		defer svc.Close()

		if err := svc.DeleteRecording(args[0]); err != nil {
			log.Errorf("DeleteRecording failed: %v", err)
			return err
		}

		fmt.Printf("✅ Deleted recording %s\n", args[0])
		log.Infof("Deleted recording ID=%s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(keysCmd, listCmd, showCmd, deleteCmd)
}
