package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/remaimber-it/interview-coach/internal/resume"
	"github.com/remaimber-it/interview-coach/internal/service"
	"github.com/remaimber-it/interview-coach/internal/store"
)

var textOnly bool

var extractCmd = &cobra.Command{
	Use:   "extract-skills <resume>",
	Short: "Extract a skill list from a PDF, DOCX or TXT resume",
	Long:  "Read a resume and print the comma-separated skills the model finds. With --text-only the extracted text is printed and no model call is made.",
	Args:  cobra.ExactArgs(1),
	RunE:  runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&textOnly, "text-only", false, "print the extracted resume text and stop")
	rootCmd.AddCommand(extractCmd)
}

func runExtract(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	doc := resume.Document{Filename: filepath.Base(args[0]), Data: data}

	if textOnly {
		text, err := resume.Extract(doc)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), text)
		return nil
	}

	cfg, err := loadConfig(cfgPath)
	if err != nil {
		return err
	}
	logger := setupLogger(cfg.LogLevel, debug)

	gateway, err := setupGateway(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	// Resumes read from disk are never archived.
	svc := service.NewInterviewService(store.NewMemory(), gateway, setupPrompts(cfg), nil, logger)
	skills, err := svc.ExtractSkills(cmd.Context(), "cli", doc)
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), skills)
	return nil
}
