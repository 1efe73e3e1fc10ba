package main

import (
	"os"

	_ "github.com/remaimber-it/interview-coach/docs" // swagger docs
)

// @title           Interview Coach API
// @version         1.0
// @description     Mock interviews with AI-generated questions, per-answer evaluation and a hiring recommendation.

// @host      localhost:8080
// @BasePath  /

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
