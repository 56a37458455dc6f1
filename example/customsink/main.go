// Demonstrates plugging a custom delivery sink into the pipeline: events go
// to stdout instead of a remote collector, useful for local development.
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/maorga/beacon"
)

type stdoutSink struct{}

func (stdoutSink) Deliver(_ context.Context, e *beacon.Event) error {
	fmt.Printf("[%s] %s %v\n", e.Timestamp.Format(time.RFC3339), e.Name, e.Params)
	return nil
}

func (stdoutSink) Name() string { return "stdout" }

func main() {
	cfg := beacon.DefaultConfig()
	cfg.Identity.Path = "./user_config.json"

	p, err := beacon.New(cfg, beacon.WithSink(stdoutSink{}))
	if err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	for i := 0; i < 5; i++ {
		p.Track("tick", map[string]any{"n": i})
	}

	p.Shutdown(time.Second)
}
