// dashboard-eval drives the dashboard controller from the command line. Each
// event is applied in order and the resulting update is printed as JSON, so
// the chart output for any sequence of selections can be inspected without a
// browser. With -remote the final input state is evaluated by a running
// autosales server over gRPC instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/chrissnell/autosales/internal/controllers/grpcserver"
	"github.com/chrissnell/autosales/internal/dataset"
	"github.com/chrissnell/autosales/internal/log"
	"github.com/chrissnell/autosales/internal/reactive"
	"github.com/chrissnell/autosales/internal/types"
	"github.com/chrissnell/autosales/pkg/config"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/encoding/protojson"
)

func main() {
	var (
		cfgFile    = flag.String("config", "", "Load the dataset described by this YAML configuration file")
		csvSource  = flag.String("csv", "", "Path or http(s) URL of the sales CSV")
		sqliteFile = flag.String("sqlite", "", "Path to an imported SQLite database")
		events     = flag.String("events", "", "Comma-separated slot=value events, e.g. report_mode=yearly,selected_year=1990")
		remote     = flag.String("remote", "", "Evaluate on a running server at host:port over gRPC")
		compact    = flag.Bool("compact", false, "Print one JSON document per line")
		debug      = flag.Bool("debug", false, "Turn on debugging output")
	)
	flag.Parse()

	if err := log.Init(*debug); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	evs, err := parseEvents(*events, flag.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	if *remote != "" {
		if err := evaluateRemote(ctx, *remote, evs, *compact); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	dc, err := datasetConfig(*cfgFile, *csvSource, *sqliteFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}

	store, err := dataset.Load(ctx, dc)
	if err != nil {
		log.Errorf("could not load dataset: %v", err)
		os.Exit(1)
	}
	log.Debugw("dataset loaded", "source", store.Source(), "records", store.Len())

	enc := json.NewEncoder(os.Stdout)
	if !*compact {
		enc.SetIndent("", "  ")
	}

	ctrl := reactive.NewController(store, types.InputState{}, log.GetSugaredLogger())
	ctrl.Subscribe(func(u reactive.Update) {
		if err := enc.Encode(u); err != nil {
			log.Errorf("could not encode update: %v", err)
		}
	})

	if len(evs) == 0 {
		enc.Encode(ctrl.Snapshot())
		return
	}

	failed := false
	for _, ev := range evs {
		u, err := ctrl.Apply(ev)
		if err != nil {
			fmt.Fprintf(os.Stderr, "event %s=%q rejected: %v\n", ev.Slot, ev.Value, err)
			failed = true
			continue
		}
		if !u.Changed {
			log.Debugw("event left state unchanged", "slot", ev.Slot, "value", ev.Value)
		}
	}
	if failed {
		os.Exit(2)
	}
}

// parseEvents combines the -events list with positional slot=value arguments
func parseEvents(list string, args []string) ([]reactive.Event, error) {
	var pairs []string
	if list != "" {
		pairs = append(pairs, strings.Split(list, ",")...)
	}
	pairs = append(pairs, args...)

	evs := make([]reactive.Event, 0, len(pairs))
	for _, p := range pairs {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		slot, value, ok := strings.Cut(p, "=")
		if !ok {
			return nil, fmt.Errorf("malformed event %q, expected slot=value", p)
		}
		evs = append(evs, reactive.Event{Slot: reactive.Slot(strings.TrimSpace(slot)), Value: strings.TrimSpace(value)})
	}
	return evs, nil
}

func datasetConfig(cfgFile, csvSource, sqliteFile string) (config.DatasetData, error) {
	switch {
	case cfgFile != "":
		filename, _ := filepath.Abs(cfgFile)
		cfg, err := config.Load(config.NewEnvProvider(config.NewYAMLProvider(filename)))
		if err != nil {
			return config.DatasetData{}, err
		}
		return cfg.Dataset, nil
	case csvSource != "":
		return config.DatasetData{Source: config.SourceCSV, Path: csvSource}, nil
	case sqliteFile != "":
		return config.DatasetData{Source: config.SourceSQLite, Path: sqliteFile}, nil
	}
	return config.DatasetData{}, fmt.Errorf("one of -config, -csv or -sqlite is required")
}

// evaluateRemote folds the events into one input state and asks the server
// to evaluate it
func evaluateRemote(ctx context.Context, addr string, evs []reactive.Event, compact bool) error {
	var (
		mode string
		year int
	)
	for _, ev := range evs {
		switch ev.Slot {
		case reactive.SlotReportMode:
			mode = ev.Value
		case reactive.SlotSelectedYear:
			if ev.Value == "" {
				year = 0
				continue
			}
			y, err := reactive.ParseYear(ev.Value)
			if err != nil {
				return err
			}
			year = y
		default:
			return fmt.Errorf("%w: %s", reactive.ErrUnknownSlot, ev.Slot)
		}
	}

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return fmt.Errorf("could not connect to %s: %w", addr, err)
	}
	defer conn.Close()

	out, err := grpcserver.NewDashboardClient(conn).Evaluate(ctx, grpcserver.NewRequest(mode, year))
	if err != nil {
		return err
	}

	opts := protojson.MarshalOptions{Multiline: !compact, Indent: "  "}
	if compact {
		opts.Indent = ""
	}
	b, err := opts.Marshal(out)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
