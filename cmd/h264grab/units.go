package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/ideamans/go-l10n"
	"github.com/urfave/cli/v2"

	"github.com/user/h264grab/pkg/adapters/mp4source"
	"github.com/user/h264grab/pkg/adapters/osfilesystem"
	"github.com/user/h264grab/pkg/orchestrator"
)

// unitsCommand lists the NAL units of a stream without decoding it.
func unitsCommand() *cli.Command {
	return &cli.Command{
		Name:      "units",
		Usage:     l10n.T("List the NAL units of a stream"),
		ArgsUsage: "<input-path>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: l10n.T("Print the listing as JSON"),
			},
		},
		Action: runUnits,
	}
}

func runUnits(c *cli.Context) error {
	if c.NArg() == 0 {
		_ = cli.ShowSubcommandHelp(c)
		return errMissingInput
	}

	fs := osfilesystem.New()
	data, err := fs.ReadFile(c.Args().First())
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	if mp4source.IsMP4(data) {
		data, _, err = mp4source.Extract(data, mp4source.Options{})
		if err != nil {
			return fmt.Errorf("unwrap mp4: %w", err)
		}
	}

	units := orchestrator.ListUnits(data)
	out := c.App.Writer

	if c.Bool("json") {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(units)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, "#\tOFFSET\tLENGTH\tPREFIX\tTYPE\t")
	for _, u := range units {
		fmt.Fprintf(tw, "%d\t%d\t%d\t%d\t%d %s\t\n", u.Index, u.Offset, u.Length, u.PrefixLen, u.Type, u.TypeName)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	stats := orchestrator.CountUnits(units)
	fmt.Fprintln(out, l10n.F("%d units, %d parameter sets, %d slices", stats.Units, stats.ParameterSets, stats.Slices))
	return nil
}
