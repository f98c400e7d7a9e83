/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func RootApp() *cli.App {
	return &cli.App{
		Name:  "aiconnct",
		Usage: "An AI analyzed feed of citizen innovation posts",
		Description: `A feed service that analyzes submitted posts with Gemini.

		Every submitted post is placed at the head of the feed immediately and
		analyzed in the background. The analysis carries sentiment and innovation
		scores, key insights and a Socratic follow-up question, and each analyzed
		post gets its own chat thread with the AI.

		Flags can generally be set via environment variables, e.g.:

		--port => AICONNECT_PORT=3000
		--model => AICONNECT_MODEL=gemini-2.5-flash

		The Gemini API key is only ever read from GEMINI_API_KEY.
		`,
		Commands: []*cli.Command{
			serveCmd(),
			analyzeCmd(),
			correctCmd(),
		},
		Action: func(ctx *cli.Context) error {
			// Show help if no command is specified
			return ctx.App.Run([]string{"", "help"})
		},
	}
}

func Execute() {
	if err := RootApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
