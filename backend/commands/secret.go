package commands

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/nikitalevshuk/university-tests/backend/config"
)

func SecretCmd() *cli.Command {
	return &cli.Command{
		Name:  "secret",
		Usage: "Print a new random JWT_SECRET value",
		Action: func(ctx *cli.Context) error {
			secret, err := config.GenerateSecret()
			if err != nil {
				return err
			}
			fmt.Fprintln(ctx.App.Writer, secret)
			return nil
		},
	}
}
