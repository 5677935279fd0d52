//go:build ebiten

package main

import (
	"errors"
	"flag"
	"log"
	"os"

	"cellpotts/internal/app"
	"cellpotts/internal/cli"
	"cellpotts/internal/core"
	_ "cellpotts/internal/sims/cellsort"
	_ "cellpotts/internal/sims/chemotaxis"
	_ "cellpotts/internal/sims/migration"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg := app.NewConfig()
	if err := cli.ParseConfigFromArgs(cfg, flag.CommandLine, os.Args[1:]); err != nil {
		log.Fatal(err)
	}

	sim, err := core.New(cfg.Sim, cfg.Set)
	if err != nil {
		log.Fatal(err)
	}
	if cfg.Seed != 0 {
		if err := sim.Reset(cfg.Seed); err != nil {
			log.Fatal(err)
		}
	}

	game := app.New(sim, cfg)
	size := sim.Size()

	ebiten.SetWindowTitle("cellpotts - " + sim.Name())
	ebiten.SetWindowSize(size.W*cfg.Scale+cfg.HUDWidth, size.H*cfg.Scale)

	if err := ebiten.RunGame(game); err != nil && !errors.Is(err, ebiten.Termination) {
		log.Fatal(err)
	}
}
