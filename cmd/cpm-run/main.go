package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"cellpotts/internal/cli"
	"cellpotts/internal/core"
	_ "cellpotts/internal/sims/cellsort"
	_ "cellpotts/internal/sims/chemotaxis"
	"cellpotts/internal/sims/cpmsim"
	_ "cellpotts/internal/sims/migration"
)

type config struct {
	Sim   string         `env:"CPM_SIM"`
	Steps int            `env:"CPM_STEPS"`
	Every int            `env:"CPM_EVERY"`
	Seed  int64          `env:"CPM_SEED"`
	Set   core.Overrides `env:"CPM_SET"`
	List  bool
}

func (c *config) Bind(fs *flag.FlagSet) {
	fs.StringVar(&c.Sim, "sim", c.Sim, "scenario to run")
	fs.IntVar(&c.Steps, "steps", c.Steps, "Monte Carlo steps to run")
	fs.IntVar(&c.Every, "every", c.Every, "print a summary every n steps")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed, 0 keeps the scenario seed")
	fs.Var(c.Set, "set", "scenario override key=value, repeatable")
	fs.BoolVar(&c.List, "list", false, "list scenarios and exit")
}

func main() {
	cfg := &config{Sim: "cellsort", Steps: 500, Every: 50, Set: core.Overrides{}}
	if err := cli.ParseConfigFromArgs(cfg, flag.CommandLine, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
	if cfg.List {
		for _, name := range core.Names() {
			fmt.Println(name)
		}
		return
	}

	sim, err := core.New(cfg.Sim, cfg.Set)
	if err != nil {
		log.Fatalf("new %s: %v", cfg.Sim, err)
	}
	if cfg.Seed != 0 {
		if err := sim.Reset(cfg.Seed); err != nil {
			log.Fatalf("reset: %v", err)
		}
	}
	cs, ok := sim.(*cpmsim.Sim)
	if !ok {
		log.Fatalf("%s is not a CPM scenario", cfg.Sim)
	}
	every := max(cfg.Every, 1)

	fmt.Printf("%s seed=%d\n", cs.Summary(), cs.Engine().Seed())
	start := time.Now()
	for step := 1; step <= cfg.Steps; step++ {
		sim.Step()
		if step%every == 0 || step == cfg.Steps {
			fmt.Println(cs.Summary())
		}
	}
	elapsed := time.Since(start)
	if cfg.Steps > 0 {
		fmt.Printf("%d steps in %s (%s/step)\n", cfg.Steps, elapsed.Round(time.Millisecond), (elapsed / time.Duration(cfg.Steps)).Round(time.Microsecond))
	}
}
