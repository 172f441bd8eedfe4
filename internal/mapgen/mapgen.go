// Package mapgen derives a hex terrain grid and balanced starting
// positions from a (size, seed) pair. Generation is a pure function of
// its inputs — the only randomness used is a *rand.Rand seeded once at
// the top of Generate — so the server and any replaying client produce
// byte-identical maps given the same game id.
package mapgen

import (
	"math"
	"math/rand"
	"sort"

	"palmietopia/internal/engine"
	"palmietopia/pkg/hexgrid"
)

// StartingPosition is one player's initial capitol hex and the hex of
// their starting Conscript.
type StartingPosition struct {
	CapitolHex hexgrid.Hex
	UnitHex    hexgrid.Hex
}

const (
	clusterAttempts   = 1
	mountainClusters  = 3
	forestClusters    = 4
	desertClusters    = 2
	lakeClusters      = 2
	startRadiusFactor = 0.75
)

// Generate builds the terrain grid for size and computes starting
// positions for playerCount players (2-5), seeded by seed.
func Generate(size engine.MapSize, playerCount int, seed int64) (engine.GameMap, []StartingPosition, error) {
	radius := size.Radius()
	rng := rand.New(rand.NewSource(seed))

	all := hexgrid.New(0, 0).SpiralRange(radius)
	terrain := make(map[hexgrid.Hex]engine.Terrain, len(all))
	for _, h := range all {
		terrain[h] = engine.Grassland
	}

	growClusters(rng, all, terrain, engine.Mountain, mountainClusters, clusterSize(radius))
	growClusters(rng, all, terrain, engine.Forest, forestClusters, clusterSize(radius))
	growClusters(rng, all, terrain, engine.Desert, desertClusters, clusterSize(radius)/2+1)
	growClusters(rng, all, terrain, engine.Water, lakeClusters, clusterSize(radius)/2+1)

	tiles := make([]engine.Tile, 0, len(all))
	for _, h := range all {
		tiles = append(tiles, engine.Tile{Q: h.Q, R: h.R, Terrain: terrain[h]})
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Q != tiles[j].Q {
			return tiles[i].Q < tiles[j].Q
		}
		return tiles[i].R < tiles[j].R
	})

	gameMap := engine.GameMap{Radius: radius, Tiles: tiles}
	starts := placeStartingPositions(&gameMap, playerCount, radius)

	return gameMap, starts, nil
}

func clusterSize(radius int) int {
	size := radius
	if size < 2 {
		size = 2
	}
	return size
}

// growClusters seeds n cluster centers at random land hexes and grows
// each by breadth-first neighbor expansion up to targetSize, painting
// every visited hex with terrain. Hexes already claimed by an earlier
// cluster in this pass are left alone.
func growClusters(rng *rand.Rand, all []hexgrid.Hex, terrain map[hexgrid.Hex]engine.Terrain, t engine.Terrain, n, targetSize int) {
	for i := 0; i < n; i++ {
		center := all[rng.Intn(len(all))]
		if terrain[center] != engine.Grassland {
			continue
		}
		frontier := []hexgrid.Hex{center}
		visited := map[hexgrid.Hex]bool{center: true}
		painted := 0
		for len(frontier) > 0 && painted < targetSize {
			idx := rng.Intn(len(frontier))
			h := frontier[idx]
			frontier = append(frontier[:idx], frontier[idx+1:]...)

			if terrain[h] != engine.Grassland {
				continue
			}
			terrain[h] = t
			painted++

			for _, nb := range h.Neighbors() {
				if visited[nb] {
					continue
				}
				if _, ok := terrain[nb]; !ok {
					continue
				}
				visited[nb] = true
				frontier = append(frontier, nb)
			}
		}
	}
}

// placeStartingPositions computes N target directions around the map
// center separated by 2π/N, casts a ray outward along each, and picks
// the nearest city-capable tile to the ideal radius whose distance to
// every previously chosen start is at least the map radius, relaxing
// that minimum distance by one hex at a time until a tile qualifies.
func placeStartingPositions(gameMap *engine.GameMap, playerCount, radius int) []StartingPosition {
	center := hexgrid.New(0, 0)
	idealRadius := startRadiusFactor * float64(radius)

	chosen := make([]hexgrid.Hex, 0, playerCount)
	occupied := make([]hexgrid.Hex, 0, playerCount*2)
	results := make([]StartingPosition, 0, playerCount)

	for p := 0; p < playerCount; p++ {
		angle := 2 * math.Pi * float64(p) / float64(playerCount)
		dirQ := math.Cos(angle)
		dirR := math.Sin(angle) - 0.5*math.Cos(angle)

		candidates := candidatesAlongRay(gameMap, center, dirQ, dirR, idealRadius)

		// minDist never relaxes below 1: a capitol must never land on
		// a hex already claimed by an earlier player this game,
		// however tight the map. Above that floor it relaxes by one
		// hex at a time to favor spacing over proximity to the ideal
		// ray, but spacing never wins at the cost of a collision.
		minDist := radius
		var pick hexgrid.Hex
		found := false
		for minDist >= 1 && !found {
			for _, cand := range candidates {
				if isChosen(cand, occupied) || !farEnoughFromAll(cand, chosen, minDist) {
					continue
				}
				pick = cand
				found = true
				break
			}
			minDist--
		}
		if !found {
			for _, cand := range candidates {
				if !isChosen(cand, occupied) {
					pick = cand
					found = true
					break
				}
			}
		}
		if !found {
			pick = firstUnclaimedLandHex(gameMap, occupied)
		}

		chosen = append(chosen, pick)
		occupied = append(occupied, pick)
		unitHex := adjacentLandHex(gameMap, pick, occupied)
		occupied = append(occupied, unitHex)
		results = append(results, StartingPosition{CapitolHex: pick, UnitHex: unitHex})
	}

	return results
}

func candidatesAlongRay(gameMap *engine.GameMap, center hexgrid.Hex, dirQ, dirR, idealRadius float64) []hexgrid.Hex {
	type scored struct {
		h     hexgrid.Hex
		score float64
	}
	var scoredTiles []scored
	for _, tile := range gameMap.Tiles {
		if !tile.Terrain.CanFoundCity() {
			continue
		}
		h := tile.Hex()
		dist := center.Distance(h)
		if dist == 0 {
			continue
		}
		// projection of h onto the ray direction, favoring tiles near
		// both the ray's heading and the ideal radius.
		proj := (float64(h.Q)*dirQ + float64(h.R)*dirR) / float64(dist)
		radiusDelta := math.Abs(float64(dist) - idealRadius)
		score := radiusDelta - proj
		scoredTiles = append(scoredTiles, scored{h: h, score: score})
	}
	sort.Slice(scoredTiles, func(i, j int) bool { return scoredTiles[i].score < scoredTiles[j].score })

	out := make([]hexgrid.Hex, len(scoredTiles))
	for i, s := range scoredTiles {
		out[i] = s.h
	}
	return out
}

func farEnoughFromAll(h hexgrid.Hex, chosen []hexgrid.Hex, minDist int) bool {
	for _, c := range chosen {
		if h.Distance(c) < minDist {
			return false
		}
	}
	return true
}

func isChosen(h hexgrid.Hex, chosen []hexgrid.Hex) bool {
	for _, c := range chosen {
		if h == c {
			return true
		}
	}
	return false
}

// firstUnclaimedLandHex is the last-resort fallback when every ranked
// candidate along a player's ray already coincides with an earlier
// capitol or unit hex: it scans every city-capable tile on the map and
// returns the first one not in chosen. Tiles are iterated in the map's fixed
// sorted order, so this stays deterministic in (size, seed).
func firstUnclaimedLandHex(gameMap *engine.GameMap, chosen []hexgrid.Hex) hexgrid.Hex {
	for _, tile := range gameMap.Tiles {
		if !tile.Terrain.CanFoundCity() {
			continue
		}
		h := tile.Hex()
		if !isChosen(h, chosen) {
			return h
		}
	}
	return hexgrid.New(0, 0)
}

// adjacentLandHex picks a passable neighbor of h for a starting unit,
// skipping any hex already occupied by another player's capitol or
// unit. Falling back to h itself only happens if every neighbor is
// either impassable or occupied, which a sane map never produces for
// a freshly placed capitol.
func adjacentLandHex(gameMap *engine.GameMap, h hexgrid.Hex, occupied []hexgrid.Hex) hexgrid.Hex {
	for _, n := range h.Neighbors() {
		if isChosen(n, occupied) {
			continue
		}
		if tile, ok := gameMap.TileAt(n); ok {
			if _, passable := tile.Terrain.MovementCost(); passable {
				return n
			}
		}
	}
	return h
}
