package main

import (
	"log"
	"time"

	"github.com/maorga/beacon"
)

func main() {
	cfg, err := beacon.ConfigFromEnv("")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	p, err := beacon.New(cfg)
	if err != nil {
		log.Fatalf("start pipeline: %v", err)
	}

	p.Track(beacon.EventAppOpened, map[string]any{"version": "1.0.0"})
	p.Track(beacon.EventCtrlLocked, map[string]any{"method": "button_click"})
	p.Track(beacon.EventCtrlReleased, nil)
	p.Track(beacon.EventAppClosed, nil)

	p.Shutdown(5 * time.Second)
}
