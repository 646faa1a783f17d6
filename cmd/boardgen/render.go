package main

import (
	"fmt"
	"strconv"

	"github.com/pterm/pterm"

	"settlers/internal/engine"
)

var terrainStyle = map[engine.Terrain]func(a ...interface{}) string{
	engine.Forest:    pterm.Green,
	engine.Hills:     pterm.Red,
	engine.Pasture:   pterm.LightGreen,
	engine.Fields:    pterm.Yellow,
	engine.Mountains: pterm.Gray,
	engine.Desert:    pterm.LightYellow,
}

func summary(b *engine.Board, terrainSeed, tokenSeed string) string {
	return pterm.Sprintfln("terrain seed  %s", terrainSeed) +
		pterm.Sprintfln("token seed    %s", tokenSeed) +
		pterm.Sprintf("harbours      %d of %d", len(b.Ports), b.RequestedPorts)
}

// hexRows is the hex table, header first, in generation order.
func hexRows(b *engine.Board) pterm.TableData {
	rows := pterm.TableData{{"Hex", "Terrain", "Token", "Robber"}}
	for _, h := range b.Hexes {
		token := "-"
		if h.NumberToken > 0 {
			token = strconv.Itoa(h.NumberToken)
			if h.NumberToken == 6 || h.NumberToken == 8 {
				token = pterm.LightRed(token)
			}
		}
		robber := ""
		if h.HasRobber {
			robber = "R"
		}
		style := terrainStyle[h.Terrain]
		rows = append(rows, []string{h.ID, style(h.Terrain.String()), token, robber})
	}
	return rows
}

func portRows(b *engine.Board) pterm.TableData {
	rows := pterm.TableData{{"Port", "Trade", "Vertices"}}
	for _, p := range b.Ports {
		rows = append(rows, []string{p.ID, p.Describe(), fmt.Sprintf("%s %s", p.VertexIDs[0], p.VertexIDs[1])})
	}
	return rows
}
