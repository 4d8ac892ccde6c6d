package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"sort"
	"time"

	"github.com/alfredjeanlab/casos/internal/client"
	"github.com/alfredjeanlab/casos/internal/events"
	"github.com/alfredjeanlab/casos/internal/model"
	"github.com/alfredjeanlab/casos/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
)

// watchDebounce coalesces bursts of events into one re-query.
const watchDebounce = 200 * time.Millisecond

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Print cases as they change",
	GroupID: "views",
	Long: `Print the cases matching the list filters, then print them again
whenever they change. Cases that stop matching (closed out of a status
filter, or gone from the backend) are reported as removed. With nats_url set the list is re-queried on every casos
event; otherwise it is polled.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		interval, _ := cmd.Flags().GetDuration("interval")
		once, _ := cmd.Flags().GetBool("once")
		req, err := listRequestFromFlags(cmd)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		seen := make(map[string]model.CaseSummary)
		if err := queryAndPrint(ctx, req, seen); err != nil {
			return err
		}
		if once {
			return nil
		}

		if cfg.NATSURL != "" {
			return watchNATS(ctx, cfg.NATSURL, req, seen)
		}
		return watchPoll(ctx, interval, req, seen)
	},
}

// watchNATS subscribes to casos events and re-queries on changes with debounce.
func watchNATS(ctx context.Context, natsURL string, req *client.ListCasesRequest, seen map[string]model.CaseSummary) error {
	// reconnectCh receives a signal when the NATS client reconnects after
	// a disconnect, so we can immediately re-query for missed events.
	reconnectCh := make(chan struct{}, 1)

	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			log.Printf("nats: disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			log.Printf("nats: reconnected")
			select {
			case reconnectCh <- struct{}{}:
			default:
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(events.TopicAll)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	debounce := time.NewTimer(0)
	debounce.Stop()
	// Drain the timer channel in case it fired between NewTimer and Stop.
	select {
	case <-debounce.C:
	default:
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-ch:
			if !ok {
				return nil
			}
			debounce.Reset(watchDebounce)
		case <-reconnectCh:
			debounce.Reset(0)
		case <-debounce.C:
			if err := queryAndPrint(ctx, req, seen); err != nil {
				return err
			}
		}
	}
}

// watchPoll polls for changes at the given interval.
func watchPoll(ctx context.Context, interval time.Duration, req *client.ListCasesRequest, seen map[string]model.CaseSummary) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(interval):
		}
		if err := queryAndPrint(ctx, req, seen); err != nil {
			return err
		}
	}
}

// queryAndPrint lists cases, diffs against seen, and prints any changes.
func queryAndPrint(ctx context.Context, req *client.ListCasesRequest, seen map[string]model.CaseSummary) error {
	cases, err := casosClient.ListCases(ctx, req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("listing cases: %w", err)
	}
	changed, removed := diffCases(cases, seen)
	if len(changed) > 0 {
		if err := printCases(changed); err != nil {
			return err
		}
	}
	if len(removed) > 0 {
		return printRemoved(removed)
	}
	return nil
}

// diffCases returns the cases that are new or differ from the last seen
// row, and the sorted IDs of seen cases missing from cases. It updates seen
// in place.
func diffCases(cases []model.CaseSummary, seen map[string]model.CaseSummary) (changed []model.CaseSummary, removed []string) {
	current := make(map[string]bool, len(cases))
	for _, c := range cases {
		current[c.CaseID] = true
		if prev, ok := seen[c.CaseID]; !ok || prev != c {
			changed = append(changed, c)
		}
		seen[c.CaseID] = c
	}
	for id := range seen {
		if !current[id] {
			removed = append(removed, id)
			delete(seen, id)
		}
	}
	sort.Strings(removed)
	return changed, removed
}

func printRemoved(ids []string) error {
	if jsonOutput {
		return printJSON(map[string][]string{"removed": ids})
	}
	for _, id := range ids {
		fmt.Fprintf(stdout, "%s %s %s\n", ui.RenderError("-"), id, ui.RenderMuted("(removed)"))
	}
	return nil
}

func init() {
	watchCmd.Flags().Duration("interval", 5*time.Second, "polling interval")
	watchCmd.Flags().Bool("once", false, "exit after first poll")
	addListFlags(watchCmd)
}
