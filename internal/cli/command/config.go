package command

import (
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/ecigate-go/internal/cli/config"
	"github.com/yndnr/ecigate-go/internal/cli/output"
)

// ConfigCommand returns the config command group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Inspect and write the CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:  "show",
				Usage: "Print the effective configuration with secrets masked",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "reveal", Usage: "do not mask secrets"},
				},
				Action: configShow,
			},
			{
				Name:  "init",
				Usage: "Write the effective configuration to the config file",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "force", Usage: "overwrite an existing file"},
				},
				Action: configInit,
			},
			{
				Name:   "validate",
				Usage:  "Check that the effective configuration can open a connection",
				Action: configValidate,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := loadedConfig(c)
	if !c.Bool("reveal") {
		cfg = config.Sanitize(cfg)
	}

	format := outputFormat(c)
	if format != output.FormatJSON {
		format = output.FormatYAML
	}
	return output.NewFormatter(format).Format(stdout(c), cfg)
}

func configInit(c *cli.Context) error {
	path := c.String("config")
	if _, err := os.Stat(path); err == nil && !c.Bool("force") {
		return fmt.Errorf("%s already exists, use --force to overwrite", path)
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	if err := config.Save(loadedConfig(c), path); err != nil {
		return err
	}
	fmt.Fprintf(stdout(c), "wrote %s\n", path)
	return nil
}

func configValidate(c *cli.Context) error {
	if err := loadedConfig(c).Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	fmt.Fprintln(stdout(c), "configuration is valid")
	return nil
}
