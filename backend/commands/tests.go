package commands

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/nikitalevshuk/university-tests/backend/models"
	"github.com/nikitalevshuk/university-tests/backend/store"
	"github.com/nikitalevshuk/university-tests/backend/testloader"
)

func TestsCmd() *cli.Command {
	return &cli.Command{
		Name:  "tests",
		Usage: "Manage the test catalog",
		Subcommands: []*cli.Command{
			addTestCmd(),
			availabilityCmd("enable", "Open a test for taking", true),
			availabilityCmd("disable", "Hide a test from students", false),
			listTestsCmd(),
		},
	}
}

func addTestCmd() *cli.Command {
	var unavailable bool
	return &cli.Command{
		Name:      "add",
		Usage:     "Register a test file from TESTS_DIR in the catalog",
		ArgsUsage: "<filename>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "unavailable",
				Usage:       "Add the test hidden from students",
				Destination: &unavailable,
			},
		},
		Action: func(ctx *cli.Context) error {
			filename := ctx.Args().First()
			if filename == "" {
				return cli.Exit("filename is required", 2)
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			loader, err := testloader.New(env.cfg.TestsDir, 0, env.logger)
			if err != nil {
				return err
			}
			content, ok := loader.Load(filename)
			if !ok {
				return fmt.Errorf("test file %q is missing or malformed in %s", filename, env.cfg.TestsDir)
			}

			test, err := store.NewTestStore(env.db).Create(ctx.Context, filename, !unavailable)
			if errors.Is(err, store.ErrConflict) {
				return cli.Exit(fmt.Sprintf("test %q is already in the catalog", filename), 1)
			}
			if err != nil {
				return err
			}

			printTest(ctx, *test, content.Title)
			return nil
		},
	}
}

func availabilityCmd(name, usage string, available bool) *cli.Command {
	return &cli.Command{
		Name:      name,
		Usage:     usage,
		ArgsUsage: "<id>",
		Action: func(ctx *cli.Context) error {
			id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
			if err != nil {
				return cli.Exit("test id must be a positive integer", 2)
			}

			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			test, err := store.NewTestStore(env.db).SetAvailability(ctx.Context, uint(id), available)
			if errors.Is(err, store.ErrNotFound) {
				return cli.Exit(fmt.Sprintf("test %d not found", id), 1)
			}
			if err != nil {
				return err
			}

			printTest(ctx, *test, testloader.TitleFromFilename(test.Filename))
			return nil
		},
	}
}

func listTestsCmd() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print every test in the catalog",
		Action: func(ctx *cli.Context) error {
			env, err := openEnvironment()
			if err != nil {
				return err
			}
			defer env.Close()

			loader, err := testloader.New(env.cfg.TestsDir, 0, env.logger)
			if err != nil {
				return err
			}

			tests, err := store.NewTestStore(env.db).All(ctx.Context)
			if err != nil {
				return err
			}
			for _, test := range tests {
				printTest(ctx, test, loader.Title(test.Filename))
			}
			return nil
		},
	}
}

func printTest(ctx *cli.Context, test models.Test, title string) {
	state := "available"
	if !test.IsAvailable {
		state = "hidden"
	}
	fmt.Fprintf(ctx.App.Writer, "%d\t%s\t%s\t%s\n", test.ID, state, test.Filename, title)
}
