package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/remaimber-it/interview-coach/internal/scoring"
)

var scoreCmd = &cobra.Command{
	Use:   "score <file|->",
	Short: "Print the score found in an evaluation text",
	Long:  "Parse the SCORE: line of an evaluation the way reports do. Prints N/A when no valid score is present.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var (
			data []byte
			err  error
		)
		if args[0] == "-" {
			data, err = io.ReadAll(cmd.InOrStdin())
		} else {
			data, err = os.ReadFile(args[0])
		}
		if err != nil {
			return err
		}

		score := scoring.ExtractScore(string(data))
		if score == scoring.NoScore {
			fmt.Fprintln(cmd.OutOrStdout(), "N/A")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), score)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)
}
