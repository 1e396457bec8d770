package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/alfredjeanlab/records/internal/events"
	"github.com/alfredjeanlab/records/internal/ui"
	"github.com/nats-io/nats.go"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Short:   "Print record and snapshot events as they happen",
	GroupID: "export",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		natsURL, _ := cmd.Flags().GetString("nats-url")
		topic, _ := cmd.Flags().GetString("topic")

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		show := func(msg events.Message) {
			if jsonOutput {
				fmt.Printf("{\"topic\":%q,\"data\":%s}\n", msg.Topic, msg.Data)
				return
			}
			fmt.Printf("%s %s\n", ui.RenderMuted(time.Now().Format("15:04:05")), formatEvent(msg))
		}

		if natsURL != "" {
			return watchNATS(ctx, natsURL, topic, show)
		}
		return watchStream(ctx, httpURL, topic, show)
	},
}

// watchNATS subscribes to topic on the bus until ctx is done.
func watchNATS(ctx context.Context, natsURL, topic string, fn func(events.Message)) error {
	sub, err := events.NewNATSSubscriber(natsURL,
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			fmt.Fprintf(os.Stderr, "nats: disconnected: %v\n", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			fmt.Fprintln(os.Stderr, "nats: reconnected")
		}),
	)
	if err != nil {
		return fmt.Errorf("connecting to NATS: %w", err)
	}
	defer sub.Close()

	ch, cancel, err := sub.Subscribe(topic)
	if err != nil {
		return fmt.Errorf("subscribing to events: %w", err)
	}
	defer cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			fn(msg)
		}
	}
}

// watchStream reads the server's event stream until ctx is done.
func watchStream(ctx context.Context, baseURL, topic string, fn func(events.Message)) error {
	target := strings.TrimRight(baseURL, "/") + "/api/events/stream?topics=" + url.QueryEscape(topic)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("connecting to event stream: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("event stream: HTTP %d", resp.StatusCode)
	}

	if err := readStream(resp.Body, fn); err != nil && ctx.Err() == nil {
		return fmt.Errorf("reading event stream: %w", err)
	}
	return nil
}

// readStream parses server-sent events from r and calls fn for each one.
func readStream(r io.Reader, fn func(events.Message)) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)

	var msg events.Message
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case line == "":
			if msg.Topic != "" {
				fn(msg)
			}
			msg = events.Message{}
		case strings.HasPrefix(line, ":"):
			// comment / keepalive
		case strings.HasPrefix(line, "event:"):
			msg.Topic = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			msg.Data = append(msg.Data, strings.TrimPrefix(line, "data:")...)
		}
	}
	return scanner.Err()
}

// formatEvent renders one event as a single human-readable line.
func formatEvent(msg events.Message) string {
	switch msg.Topic {
	case events.TopicRecordCreated, events.TopicRecordUpdated:
		rec := gjson.GetBytes(msg.Data, "record")
		verb := "created"
		if msg.Topic == events.TopicRecordUpdated {
			verb = "updated"
		}
		return fmt.Sprintf("%s #%d %s (%s, %s)",
			ui.RenderAccent(verb),
			rec.Get("id").Int(),
			rec.Get("name").String(),
			rec.Get("rights").String(),
			ui.RenderStatus(rec.Get("status").String()),
		)
	case events.TopicRecordDeleted:
		return fmt.Sprintf("%s #%d", ui.RenderAccent("deleted"), gjson.GetBytes(msg.Data, "id").Int())
	case events.TopicSnapshotWritten:
		res := gjson.GetManyBytes(msg.Data, "id", "records", "csv_path", "json_path", "warnings")
		line := fmt.Sprintf("%s %s %d records", ui.RenderAccent("snapshot"), res[0].String(), res[1].Int())
		for _, p := range []gjson.Result{res[2], res[3]} {
			if p.String() != "" {
				line += " " + p.String()
			}
		}
		if n := res[4].Int(); n > 0 {
			line += " " + ui.RenderWarn(fmt.Sprintf("(%d warnings)", n))
		}
		return line
	default:
		return fmt.Sprintf("%s %s", msg.Topic, msg.Data)
	}
}

func init() {
	watchCmd.Flags().String("nats-url", os.Getenv("RECORDS_NATS_URL"), "NATS server URL (default: the server's HTTP event stream)")
	watchCmd.Flags().String("topic", events.TopicAll, "topic pattern to watch")
}
