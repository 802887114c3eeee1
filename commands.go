package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v3"

	"github.com/xeptore/innertune/config"
	"github.com/xeptore/innertune/innertube"
	"github.com/xeptore/innertune/innertube/apierr"
	"github.com/xeptore/innertune/innertube/service"
	"github.com/xeptore/innertune/innertube/types"
	"github.com/xeptore/innertune/log"
)

type action func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error

// withClient performs the setup shared by every command and hands a ready
// client to fn. The client is closed once fn returns.
func withClient(ctx context.Context, cmd *cli.Command, fn action) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := log.NewDefault()

	if err := godotenv.Load(); nil != err {
		if !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("load .env file: %v", err)
		}
		logger.Debug().Msg(".env file was not found")
	} else {
		logger.Debug().Msg(".env file was loaded")
	}

	conf, err := config.Load(cmd.String("config"))
	if nil != err {
		return fmt.Errorf("load config: %v", err)
	}

	logger = log.FromConfig(conf.Log)

	logger.Debug().Dict("config", conf.ToDict()).Msg("Config loaded")

	client, err := innertube.NewClient(ctx, logger, conf)
	if nil != err {
		return fmt.Errorf("create innertube client: %v", err)
	}
	defer func() {
		if err := client.Close(); nil != err {
			logger.Error().Err(err).Msg("Failed to close innertube client")
		}
	}()
	logger.Debug().Msg("Innertube client created")

	return fn(ctx, logger, client, newPrinter(os.Stdout, cmd.Bool("json")))
}

// failed reports err to the user in plain words and turns it into an exit
// code. Cancellation is passed through untouched.
func failed(logger zerolog.Logger, op string, err error) error {
	if errors.Is(err, context.Canceled) {
		return err
	}

	logger.Debug().Err(err).Str("operation", op).Msg("Operation failed")
	fmt.Fprintln(os.Stderr, apierr.UserMessage(err))

	return exitCodeError(3)
}

func requireArg(cmd *cli.Command, name string) (string, error) {
	v := cmd.Args().First()
	if len(v) == 0 {
		fmt.Fprintf(os.Stderr, "missing required argument: %s\n", name)
		return "", exitCodeError(2)
	}

	return v, nil
}

// requireQuery joins every positional argument, so an unquoted multi word
// query is searched as a whole.
func requireQuery(cmd *cli.Command) (string, error) {
	query := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
	if len(query) == 0 {
		fmt.Fprintln(os.Stderr, "missing required argument: query")
		return "", exitCodeError(2)
	}

	return query, nil
}

func searchAction(ctx context.Context, cmd *cli.Command) error {
	query, err := requireQuery(cmd)
	if nil != err {
		return err
	}

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		var (
			res types.SearchResults
			err error
		)
		if cmd.Bool("songs") {
			res, err = client.SearchSongs(ctx, query)
		} else {
			res, err = client.Search(ctx, query, cmd.String("params"))
		}
		if nil != err {
			return failed(logger, "search", err)
		}

		return out.searchResults(res)
	})
}

func homeAction(ctx context.Context, cmd *cli.Command) error {
	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		var (
			page types.HomePage
			err  error
		)
		switch chip, continuation := cmd.String("chip"), cmd.String("continuation"); {
		case len(continuation) > 0:
			page, err = client.HomeContinuation(ctx, continuation)
		case len(chip) > 0:
			page, err = client.HomeWithChip(ctx, chip)
		default:
			page, err = client.Home(ctx)
		}
		if nil != err {
			return failed(logger, "home", err)
		}

		return out.homePage(page)
	})
}

func trendingAction(ctx context.Context, cmd *cli.Command) error {
	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		songs, err := client.Trending(ctx)
		if nil != err {
			return failed(logger, "trending", err)
		}

		return out.results("Trending", songs)
	})
}

func artistAction(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "browse-id")
	if nil != err {
		return err
	}

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		artist, err := client.Artist(ctx, id)
		if nil != err {
			return failed(logger, "artist", err)
		}

		return out.artist(artist)
	})
}

func artistItemsAction(ctx context.Context, cmd *cli.Command) error {
	id, err := requireArg(cmd, "browse-id")
	if nil != err {
		return err
	}
	params := cmd.Args().Get(1)

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		items, err := client.ArtistItems(ctx, id, params)
		if nil != err {
			return failed(logger, "artist items", err)
		}

		return out.artistItems("Items", items)
	})
}

func queueAction(ctx context.Context, cmd *cli.Command) error {
	videoID, err := requireArg(cmd, "video-id")
	if nil != err {
		return err
	}

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		songs, err := client.Queue(ctx, videoID, cmd.String("playlist"))
		if nil != err {
			return failed(logger, "queue", err)
		}

		return out.queue(songs)
	})
}

func albumAction(ctx context.Context, cmd *cli.Command) error {
	videoID, err := requireArg(cmd, "video-id")
	if nil != err {
		return err
	}

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		album, err := client.AlbumFor(ctx, videoID, cmd.String("title"), cmd.String("artist"))
		if nil != err {
			if errors.Is(err, service.ErrAlbumNotFound) {
				fmt.Fprintln(os.Stderr, "No album found for this song")
				return exitCodeError(4)
			}

			return failed(logger, "album", err)
		}

		return out.album(album)
	})
}

func playAction(ctx context.Context, cmd *cli.Command) error {
	videoID, err := requireArg(cmd, "video-id")
	if nil != err {
		return err
	}

	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		info, err := client.Playback(ctx, videoID)
		if nil != err {
			var exhausted *apierr.StreamExhaustedError
			if errors.As(err, &exhausted) {
				logger.Warn().Strs("personas", exhausted.Personas()).Msg("Every persona failed to provide a stream")
			}

			return failed(logger, "playback", err)
		}

		return out.playback(info)
	})
}

func tokenRefreshAction(ctx context.Context, cmd *cli.Command) error {
	return withClient(ctx, cmd, func(ctx context.Context, logger zerolog.Logger, client *innertube.Client, out *printer) error {
		if client.RefreshVisitorToken(ctx) {
			logger.Info().Msg("Visitor token refresh attempted")
		} else {
			logger.Info().Msg("Visitor token was refreshed recently, keeping it")
		}
		if err := ctx.Err(); nil != err {
			return err
		}

		return out.token(client.VisitorData(), client.VisitorDataRefreshedAt())
	})
}

func tokenShowAction(ctx context.Context, cmd *cli.Command) error {
	return withClient(ctx, cmd, func(_ context.Context, _ zerolog.Logger, client *innertube.Client, out *printer) error {
		return out.token(client.VisitorData(), client.VisitorDataRefreshedAt())
	})
}
