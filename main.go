package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/urfave/cli/v3"

	"github.com/xeptore/innertune/constants"
	"github.com/xeptore/innertune/log"
)

func main() {
	logger := log.NewDefault()

	//nolint:exhaustruct
	app := &cli.Command{
		Name:    "innertune",
		Version: constants.Version,
		Metadata: map[string]any{
			"compiled_at": constants.CompileTime,
		},
		Suggest:                    true,
		Usage:                      "YouTube Music InnerTube client",
		EnableShellCompletion:      true,
		ShellCompletionCommandName: "shell-completion",
		AllowExtFlags:              false,
		Flags: []cli.Flag{
			//nolint:exhaustruct
			&cli.StringFlag{
				Name:     "config",
				Usage:    "Config file path",
				Required: false,
			},
			//nolint:exhaustruct
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Print results as JSON even when stdout is a terminal",
			},
		},
		Commands: []*cli.Command{
			//nolint:exhaustruct
			{
				Name:      "search",
				Usage:     "Search the catalog",
				ArgsUsage: "<query...>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.BoolFlag{
						Name:  "songs",
						Usage: "Only return songs",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "params",
						Usage: "Raw search filter params",
					},
				},
				Action: searchAction,
			},
			//nolint:exhaustruct
			{
				Name:  "home",
				Usage: "Show the home feed",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "chip",
						Usage: "Params of a home chip to filter the feed by",
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "continuation",
						Usage: "Continuation token of a previously fetched page",
					},
				},
				Action: homeAction,
			},
			//nolint:exhaustruct
			{
				Name:   "trending",
				Usage:  "Show trending songs",
				Action: trendingAction,
			},
			//nolint:exhaustruct
			{
				Name:      "artist",
				Usage:     "Show an artist page",
				ArgsUsage: "<browse-id>",
				Action:    artistAction,
			},
			//nolint:exhaustruct
			{
				Name:      "artist-items",
				Usage:     "Show every item of an artist page section",
				ArgsUsage: "<browse-id> [params]",
				Action:    artistItemsAction,
			},
			//nolint:exhaustruct
			{
				Name:      "queue",
				Usage:     "Show the up-next queue of a song",
				ArgsUsage: "<video-id>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "playlist",
						Usage: "Playlist the song is played from",
					},
				},
				Action: queueAction,
			},
			//nolint:exhaustruct
			{
				Name:      "album",
				Usage:     "Find the album a song belongs to",
				ArgsUsage: "<video-id>",
				Flags: []cli.Flag{
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:     "title",
						Usage:    "Song title",
						Required: true,
					},
					//nolint:exhaustruct
					&cli.StringFlag{
						Name:  "artist",
						Usage: "Song artist",
					},
				},
				Action: albumAction,
			},
			//nolint:exhaustruct
			{
				Name:      "play",
				Usage:     "Resolve a playable audio stream",
				ArgsUsage: "<video-id>",
				Action:    playAction,
			},
			{
				Name:  "token",
				Usage: "Visitor token commands",
				Commands: []*cli.Command{
					//nolint:exhaustruct
					{
						Name:   "refresh",
						Usage:  "Fetch a fresh visitor token and persist it",
						Action: tokenRefreshAction,
					},
					{
						Name:   "show",
						Usage:  "Show the visitor token in use",
						Action: tokenShowAction,
					},
				},
			},
		},
	}

	if err := app.Run(context.Background(), os.Args); nil != err {
		if errors.Is(err, context.Canceled) {
			logger.Trace().Msg("Application was canceled")
			os.Exit(1)
		}

		var exitCode exitCodeError
		if errors.As(err, &exitCode) {
			os.Exit(int(exitCode))
		}

		logger.Error().Err(err).Msg("Application exited with error")
		os.Exit(10)
	}
}

type exitCodeError int

func (e exitCodeError) Error() string {
	return "error with exit code: " + strconv.Itoa(int(e))
}
