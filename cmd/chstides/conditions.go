package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/timgluz/chstides/conditions"
	"github.com/timgluz/chstides/tides"
)

// stationConditions is one entry of the conditions output.
type stationConditions struct {
	Code       string               `json:"code"`
	Name       string               `json:"name"`
	Conditions *conditions.Snapshot `json:"conditions"`
}

func newConditionsCmd(a *app) *cobra.Command {
	var sel selector
	var codes []string

	cmd := &cobra.Command{
		Use:   "conditions",
		Short: "Show the latest water level, its trend and the high/low tides around now",
		Long: `Shows the latest observed water level of one or more stations. Several
--code flags query the stations concurrently, one client per station.`,
		Example: `  chstides conditions --code 00490
  chstides conditions --code 00490 --code 01700 --unit imperial`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(codes) > 1 && (sel.id != "" || cmd.Flags().Changed("lat")) {
				return fmt.Errorf("several --code flags cannot be combined with --id or --lat/--lon")
			}

			targets := codes
			if len(targets) == 0 {
				targets = []string{""}
			}

			configs := make([]tides.Config, len(targets))
			for i, code := range targets {
				cfg, err := a.clientConfig(cmd, &sel, code)
				if err != nil {
					return err
				}
				configs[i] = cfg
			}

			results := make([]stationConditions, len(configs))
			g, ctx := errgroup.WithContext(cmd.Context())
			for i, cfg := range configs {
				g.Go(func() error {
					client, err := newClient(ctx, cfg)
					if err != nil {
						return err
					}

					snapshot, err := client.Update(ctx)
					if err != nil {
						return err
					}

					resolved, err := client.Station()
					if err != nil {
						return err
					}

					results[i] = stationConditions{
						Code:       resolved.Code,
						Name:       resolved.OfficialName,
						Conditions: snapshot,
					}
					return nil
				})
			}

			if err := g.Wait(); err != nil {
				return err
			}

			if a.output == outputText {
				return printConditionsText(cmd, results)
			}
			if len(results) == 1 {
				return printJSON(cmd.OutOrStdout(), results[0])
			}
			return printJSON(cmd.OutOrStdout(), results)
		},
	}

	cmd.Flags().StringSliceVarP(&codes, "code", "c", nil, "public station code; repeat to query several stations")
	sel.register(cmd.Flags())
	return cmd
}

// nextEventMarker flags the first high or low tide after the latest observation.
const nextEventMarker = "*"

func printConditionsText(cmd *cobra.Command, results []stationConditions) error {
	out := cmd.OutOrStdout()
	for _, result := range results {
		snapshot := result.Conditions
		title := fmt.Sprintf("%s (%s): %s, %s at %s", result.Name, result.Code,
			formatLevel(snapshot.Value, snapshot.Unit), snapshot.StatusLabel,
			snapshot.EventDate.Format(time.RFC3339))

		next, hasNext := snapshot.NextEvent(snapshot.EventDate)

		rows := make([][]string, 0, len(snapshot.HiLo))
		for _, event := range snapshot.HiLo {
			marker := ""
			if hasNext && event.EventDate.Equal(next.EventDate) {
				marker = nextEventMarker
			}
			rows = append(rows, []string{
				event.EventDate.Format(time.RFC3339),
				event.Label,
				formatLevel(event.Value, snapshot.Unit),
				marker,
			})
		}

		if err := printTable(out, title, []string{"time", "event", "level", "next"}, rows); err != nil {
			return err
		}
	}
	return nil
}
