// Command boardgen prints the island a pair of seeds produces, so a table
// can agree on a map before opening a match.
package main

import (
	"encoding/json"
	"flag"
	"os"

	"github.com/pterm/pterm"

	"settlers/internal/engine"
)

func main() {
	terrain := flag.String("terrain", "", "terrain seed")
	token := flag.String("token", "", "number token seed")
	ports := flag.Int("ports", engine.DefaultPortCount, "harbour count")
	asJSON := flag.Bool("json", false, "print the board as JSON")
	flag.Parse()

	if *terrain == "" || *token == "" {
		pterm.Error.Println("both -terrain and -token are required")
		os.Exit(2)
	}
	board := engine.Generate(*terrain, *token, *ports)

	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(board); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
		return
	}
	if err := render(board, *terrain, *token); err != nil {
		pterm.Error.Println(err)
		os.Exit(1)
	}
}

func render(b *engine.Board, terrainSeed, tokenSeed string) error {
	pterm.DefaultBox.
		WithTitle(pterm.LightCyan("|ISLAND|")).
		WithTitleTopCenter().
		WithHorizontalPadding(4).
		Println(summary(b, terrainSeed, tokenSeed))

	pterm.DefaultSection.Println("Hexes")
	if err := pterm.DefaultTable.WithHasHeader().WithData(hexRows(b)).Render(); err != nil {
		return err
	}
	pterm.DefaultSection.Println("Harbours")
	return pterm.DefaultTable.WithHasHeader().WithData(portRows(b)).Render()
}
