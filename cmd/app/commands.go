package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/allisson/secrets/cmd/app/commands"
)

func getObjectCommands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "put-object",
			Usage: "Encrypt a file and upload it as an object",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "bucket",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Destination bucket",
				},
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Object key",
				},
				&cli.StringFlag{
					Name:  "file",
					Usage: "Path to the plaintext file to encrypt (reads stdin when omitted)",
				},
				&cli.StringFlag{
					Name:  "content-type",
					Value: "application/octet-stream",
					Usage: "Content-Type to store alongside the object",
				},
				&cli.StringSliceFlag{
					Name:  "context",
					Usage: "Encryption context entry, name=value (repeatable)",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunPutObject(
					ctx,
					cmd.String("bucket"),
					cmd.String("key"),
					cmd.String("content-type"),
					cmd.String("file"),
					cmd.StringSlice("context"),
				)
			},
		},
		{
			Name:  "get-object",
			Usage: "Download an object and decrypt it",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "bucket",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Source bucket",
				},
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Object key",
				},
				&cli.StringFlag{
					Name:    "output",
					Aliases: []string{"o"},
					Usage:   "Path to write decrypted plaintext (writes stdout when omitted)",
				},
				&cli.StringSliceFlag{
					Name:  "context",
					Usage: "Encryption context entry, name=value (repeatable), must match the one used on put-object",
				},
				&cli.BoolFlag{
					Name:  "allow-legacy",
					Value: false,
					Usage: "Permit decrypting objects still using the unauthenticated v1 envelope",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunGetObject(
					ctx,
					cmd.String("bucket"),
					cmd.String("key"),
					cmd.String("output"),
					cmd.StringSlice("context"),
					cmd.Bool("allow-legacy"),
				)
			},
		},
		{
			Name:  "describe-object",
			Usage: "Print an object's envelope metadata without decrypting it",
			Flags: []cli.Flag{
				&cli.StringFlag{
					Name:     "bucket",
					Aliases:  []string{"b"},
					Required: true,
					Usage:    "Bucket to inspect",
				},
				&cli.StringFlag{
					Name:     "key",
					Aliases:  []string{"k"},
					Required: true,
					Usage:    "Object key to inspect",
				},
			},
			Action: func(ctx context.Context, cmd *cli.Command) error {
				return commands.RunDescribeObject(ctx, cmd.String("bucket"), cmd.String("key"), os.Stdout)
			},
		},
	}
}

func getCommands(version string) []*cli.Command {
	cmds := []*cli.Command{}
	cmds = append(cmds, getObjectCommands()...)
	return cmds
}
