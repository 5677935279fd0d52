package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cellpotts/internal/cli"
	"cellpotts/internal/core"
	_ "cellpotts/internal/sims/cellsort"
	_ "cellpotts/internal/sims/chemotaxis"
	"cellpotts/internal/sims/cpmsim"
	_ "cellpotts/internal/sims/migration"
	"cellpotts/internal/stream"
)

//go:embed index.html
var indexHTML []byte

type config struct {
	Addr string         `env:"CPM_ADDR"`
	Sim  string         `env:"CPM_SIM"`
	SPS  int            `env:"CPM_SPS"`
	FPS  int            `env:"CPM_FPS"`
	Seed int64          `env:"CPM_SEED"`
	Set  core.Overrides `env:"CPM_SET"`
}

func (c *config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Addr, "addr", c.Addr, "listen address")
	fs.StringVar(&c.Sim, "sim", c.Sim, "scenario to serve")
	fs.IntVar(&c.SPS, "sps", c.SPS, "Monte Carlo steps per second")
	fs.IntVar(&c.FPS, "fps", c.FPS, "frames broadcast per second")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed, 0 keeps the scenario seed")
	fs.Var(c.Set, "set", "scenario override key=value, repeatable")
}

func main() {
	cfg := &config{Addr: "localhost:8080", Sim: "chemotaxis", SPS: 20, FPS: 15, Set: core.Overrides{}}
	if err := cli.ParseConfigFromArgs(cfg, flag.CommandLine, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	sim, err := core.New(cfg.Sim, cfg.Set)
	if err != nil {
		log.Fatalf("new %s: %v", cfg.Sim, err)
	}
	cs, ok := sim.(*cpmsim.Sim)
	if !ok {
		log.Fatalf("%s is not a CPM scenario", cfg.Sim)
	}
	if cfg.Seed != 0 {
		if err := cs.Reset(cfg.Seed); err != nil {
			log.Fatalf("reset: %v", err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	hub := stream.NewHub()
	go hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	mux.HandleFunc("/palette", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(cs.Palette()); err != nil {
			log.Printf("palette: %v", err)
		}
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Write(indexHTML)
	})
	httpSrv := &http.Server{Addr: cfg.Addr, Handler: mux}
	go func() {
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("listen: %v", err)
		}
	}()
	log.Printf("serving %s on http://%s", cs.Name(), cfg.Addr)

	srv := newServer(cs, hub, cfg.SPS)
	srv.run(ctx, max(cfg.FPS, 1))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}

// status is the text message sent with every frame.
type status struct {
	Paused bool `json:"paused"`
	cpmsim.Summary
}

// server owns the simulation; only its run loop touches it.
type server struct {
	sim    *cpmsim.Sim
	hub    *stream.Hub
	pacer  *core.FixedStep
	paused bool
}

func newServer(sim *cpmsim.Sim, hub *stream.Hub, sps int) *server {
	return &server{sim: sim, hub: hub, pacer: core.NewFixedStep(sps)}
}

func (s *server) run(ctx context.Context, fps int) {
	ticker := time.NewTicker(time.Second / time.Duration(fps))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case ctl := <-s.hub.Controls:
			if err := s.apply(ctl); err != nil {
				log.Printf("control %s: %v", ctl.Type, err)
			}
		case <-ticker.C:
			s.advance()
			s.publish()
		}
	}
}

func (s *server) advance() {
	if s.paused {
		return
	}
	for s.pacer.ShouldStep() {
		s.sim.Step()
	}
}

func (s *server) publish() {
	size := s.sim.Size()
	frame, err := stream.EncodeFrame(size.W, size.H, s.sim.Cells())
	if err != nil {
		log.Printf("frame: %v", err)
		return
	}
	s.hub.Broadcast(frame)
	if _, err := s.hub.BroadcastJSON(status{Paused: s.paused, Summary: s.sim.Summary()}); err != nil {
		log.Printf("status: %v", err)
	}
}

func (s *server) apply(ctl stream.Control) error {
	switch ctl.Type {
	case stream.ControlPause:
		s.paused = true
	case stream.ControlResume:
		s.paused = false
	case stream.ControlReset:
		return s.sim.Reset(int64(ctl.Value))
	case stream.ControlTemperature:
		if !s.sim.SetFloatParameter("temperature", ctl.Value) {
			return errors.New("temperature rejected")
		}
	default:
		return errors.New("unknown control")
	}
	return nil
}
