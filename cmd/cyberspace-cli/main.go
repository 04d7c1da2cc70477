// Copyright 2025 Certen Protocol
//
// cyberspace-cli is the collaborator CLI surface named in spec.md §6:
// create a spawn chain, show the current coordinate and sector, convert
// GPS to a coordinate, dump Cantor debug info between two coordinates,
// move (absolute, relative, or toward), show chain status, list/select/
// inspect chains, set/select targets, and set/show config.
//
// Flag handling follows this repository's main.go convention of a flat
// flag.FlagSet per invocation; generalized here to one FlagSet per
// subcommand since this CLI, unlike the teacher daemon, has more than
// one verb.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/big"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/arkin0x/cyberspace-cli/pkg/chain"
	"github.com/arkin0x/cyberspace-cli/pkg/coord"
	"github.com/arkin0x/cyberspace-cli/pkg/event"
	"github.com/arkin0x/cyberspace-cli/pkg/geodetic"
	"github.com/arkin0x/cyberspace-cli/pkg/keys"
	"github.com/arkin0x/cyberspace-cli/pkg/orchestrator"
	"github.com/arkin0x/cyberspace-cli/pkg/pathing"
	"github.com/arkin0x/cyberspace-cli/pkg/proof"
	"github.com/arkin0x/cyberspace-cli/pkg/store"
	"github.com/arkin0x/cyberspace-cli/pkg/targets"
)

func main() {
	log.SetFlags(0)
	if err := run(os.Args[1:]); err != nil {
		log.Println("error:", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	if len(args) == 0 {
		printUsage()
		return fmt.Errorf("no command given")
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "spawn":
		return cmdSpawn(rest)
	case "show":
		return cmdShow(rest)
	case "sector":
		return cmdSector(rest)
	case "gps":
		return cmdGPS(rest)
	case "proof-debug":
		return cmdProofDebug(rest)
	case "move":
		return cmdMove(rest)
	case "status":
		return cmdStatus(rest)
	case "chains":
		return cmdChains(rest)
	case "targets":
		return cmdTargets(rest)
	case "config":
		return cmdConfig(rest)
	case "help", "-h", "--help":
		printUsage()
		return nil
	default:
		printUsage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `cyberspace-cli <command> [flags]

Commands:
  spawn        create an identity and a genesis (spawn) chain from a GPS fix
  show         print the current coordinate
  sector       print the sector containing the current coordinate
  gps          convert a GPS fix to a coordinate (stateless)
  proof-debug  dump Cantor debug info for a movement between two coordinates
  move         move the active chain's position (absolute, relative, or toward)
  status       print the active chain's label, length, and current position
  chains       list, select, or inspect chains
  targets      set, list, select, or remove named target coordinates
  config       show or set configuration`)
}

// ---- shared helpers -------------------------------------------------

func openHome() (string, error) {
	return store.Home()
}

func loadState(home string) (*store.State, error) {
	st, err := store.LoadState(home)
	if err != nil {
		return nil, fmt.Errorf("no initialized identity found; run 'spawn' first: %w", err)
	}
	return st, nil
}

func parseGPSFlags(fs *flag.FlagSet) (lat, lon, alt *string, clamp *bool) {
	lat = fs.String("lat", "", "latitude in decimal degrees")
	lon = fs.String("lon", "", "longitude in decimal degrees")
	alt = fs.String("alt", "0", "altitude in meters")
	clamp = fs.Bool("clamp", true, "clamp altitude to the surface")
	return
}

func axesFromGPS(lat, lon, alt string, clamp bool) (geodetic.Axes, error) {
	return geodetic.ToAxes(geodetic.Input{
		LatitudeDeg:  lat,
		LongitudeDeg: lon,
		AltitudeM:    alt,
		ClampSurface: clamp,
	})
}

func parseBigInt(s string) (*big.Int, error) {
	v, ok := new(big.Int).SetString(strings.TrimSpace(s), 10)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	return v, nil
}

// ---- spawn -----------------------------------------------------------

func cmdSpawn(args []string) error {
	fs := flag.NewFlagSet("spawn", flag.ExitOnError)
	lat, lon, alt, clamp := parseGPSFlags(fs)
	label := fs.String("chain", "main", "chain label to create")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lat == "" || *lon == "" {
		return fmt.Errorf("spawn requires --lat and --lon")
	}

	home, err := openHome()
	if err != nil {
		return err
	}
	axes, err := axesFromGPS(*lat, *lon, *alt, *clamp)
	if err != nil {
		return fmt.Errorf("convert GPS to axes: %w", err)
	}
	c, err := coord.Encode(axes.X, axes.Y, axes.Z, 0)
	if err != nil {
		return fmt.Errorf("encode coordinate: %w", err)
	}

	km := keys.NewManager(home + "/identity.key")
	if err := km.LoadOrGenerate(); err != nil {
		return fmt.Errorf("load or generate identity: %w", err)
	}

	genesis, err := event.NewSpawn(km.PublicKeyHex(), time.Now().Unix(), c)
	if err != nil {
		return fmt.Errorf("build spawn event: %w", err)
	}
	ch, err := chain.NewChain(*label, genesis)
	if err != nil {
		return fmt.Errorf("create chain: %w", err)
	}
	if err := os.MkdirAll(store.ChainsDir(home), 0700); err != nil {
		return fmt.Errorf("create chains directory: %w", err)
	}
	chainPath := store.ChainPath(home, ch.Label)
	if err := chain.AppendToFile(chainPath, genesis); err != nil {
		return fmt.Errorf("persist genesis event: %w", err)
	}

	st := &store.State{
		Version:          store.StateVersion,
		PrivkeyHex:       km.PrivateKeyHex(),
		PubkeyHex:        km.PublicKeyHex(),
		CoordHex:         coord.ToHex(c),
		ActiveChainLabel: ch.Label,
	}
	if err := store.SaveState(home, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	fmt.Printf("spawned chain %q at %s (event %s)\n", ch.Label, coord.ToHex(c), genesis.ID)
	return nil
}

// ---- show / sector -----------------------------------------------------

func cmdShow(args []string) error {
	home, err := openHome()
	if err != nil {
		return err
	}
	st, err := loadState(home)
	if err != nil {
		return err
	}
	fmt.Println(st.CoordHex)
	return nil
}

func cmdSector(args []string) error {
	home, err := openHome()
	if err != nil {
		return err
	}
	st, err := loadState(home)
	if err != nil {
		return err
	}
	c, err := coord.HexToCoord(st.CoordHex)
	if err != nil {
		return err
	}
	x, y, z, _ := coord.Decode(c)
	sec := coord.SectorOf(x, y, z)
	fmt.Println(sec.Tag())
	return nil
}

// ---- gps ---------------------------------------------------------------

func cmdGPS(args []string) error {
	fs := flag.NewFlagSet("gps", flag.ExitOnError)
	lat, lon, alt, clamp := parseGPSFlags(fs)
	plane := fs.Uint("plane", 0, "plane bit (0 or 1)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *lat == "" || *lon == "" {
		return fmt.Errorf("gps requires --lat and --lon")
	}
	axes, err := axesFromGPS(*lat, *lon, *alt, *clamp)
	if err != nil {
		return fmt.Errorf("convert GPS to axes: %w", err)
	}
	c, err := coord.Encode(axes.X, axes.Y, axes.Z, *plane)
	if err != nil {
		return fmt.Errorf("encode coordinate: %w", err)
	}
	fmt.Println(coord.ToHex(c))
	return nil
}

// ---- proof-debug ---------------------------------------------------------

func cmdProofDebug(args []string) error {
	fs := flag.NewFlagSet("proof-debug", flag.ExitOnError)
	from := fs.String("from", "", "source coordinate hex")
	to := fs.String("to", "", "destination coordinate hex")
	maxComputeHeight := fs.Int("max-compute-height", proof.DefaultMaxComputeHeight, "max LCA height before refusal")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *from == "" || *to == "" {
		return fmt.Errorf("proof-debug requires --from and --to")
	}
	cFrom, err := coord.HexToCoord(*from)
	if err != nil {
		return fmt.Errorf("parse --from: %w", err)
	}
	cTo, err := coord.HexToCoord(*to)
	if err != nil {
		return fmt.Errorf("parse --to: %w", err)
	}
	x1, y1, z1, _ := coord.Decode(cFrom)
	x2, y2, z2, _ := coord.Decode(cTo)

	mp, err := proof.Compute(x1, y1, z1, x2, y2, z2, *maxComputeHeight)
	if err != nil {
		return fmt.Errorf("compute movement proof: %w", err)
	}
	discoveryID, err := mp.DiscoveryID()
	if err != nil {
		return err
	}

	fmt.Printf("x: height=%d base=%s cantor=%s\n", mp.X.Height, mp.X.Base, mp.X.Cantor)
	fmt.Printf("y: height=%d base=%s cantor=%s\n", mp.Y.Height, mp.Y.Base, mp.Y.Cantor)
	fmt.Printf("z: height=%d base=%s cantor=%s\n", mp.Z.Height, mp.Z.Base, mp.Z.Cantor)
	fmt.Printf("combined: %s\n", mp.Combined)
	fmt.Printf("proof_hash: %s\n", mp.Hash)
	fmt.Printf("encryption_key: %s\n", mp.EncryptionKey())
	fmt.Printf("discovery_id: %s\n", discoveryID)
	return nil
}

// ---- move ----------------------------------------------------------------

func cmdMove(args []string) error {
	fs := flag.NewFlagSet("move", flag.ExitOnError)
	to := fs.String("to", "", "absolute destination coordinate hex")
	by := fs.String("by", "", "relative move as dx,dy,dz")
	toward := fs.Bool("toward", false, "move toward the active target")
	plane := fs.Int("plane", -1, "target plane bit for the final switch (-1 = the active target's plane)")
	maxHops := fs.Int("max-hops", 0, "cap on hops issued by a toward walk (0 = unbounded)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	home, err := openHome()
	if err != nil {
		return err
	}
	st, err := loadState(home)
	if err != nil {
		return err
	}
	if st.ActiveChainLabel == "" {
		return fmt.Errorf("no active chain; run 'spawn' first")
	}
	cfg, err := store.LoadConfig(home)
	if err != nil {
		return err
	}

	chainPath := store.ChainPath(home, st.ActiveChainLabel)
	chainState, err := chain.LoadChainFromFile(st.ActiveChainLabel, chainPath)
	if err != nil {
		return fmt.Errorf("load active chain: %w", err)
	}
	current, err := coord.HexToCoord(st.CoordHex)
	if err != nil {
		return err
	}
	cx, cy, cz, cplane := coord.Decode(current)

	orchCfg := orchestrator.Config{
		MaxLCAHeight: cfg.DefaultMaxLCAHeight,
		MaxHops:      *maxHops,
		Logger:       log.Default(),
	}
	o := orchestrator.New(orchCfg, st.PubkeyHex, st.ActiveChainLabel, chainPath, chainState, orchestrator.Position{X: cx, Y: cy, Z: cz, Plane: cplane})

	ctx := context.Background()
	var finalPos orchestrator.Position
	hopCount := 0

	switch {
	case *to != "":
		destCoord, err := coord.HexToCoord(*to)
		if err != nil {
			return fmt.Errorf("parse --to: %w", err)
		}
		dx, dy, dz, dplane := coord.Decode(destCoord)
		report, err := o.MoveAbsolute(ctx, orchestrator.Position{X: dx, Y: dy, Z: dz, Plane: dplane})
		if err != nil {
			return fmt.Errorf("move: %w", err)
		}
		finalPos = report.Position
		hopCount = 1

	case *by != "":
		parts := strings.Split(*by, ",")
		if len(parts) != 3 {
			return fmt.Errorf("--by must be dx,dy,dz")
		}
		dx, err := parseBigInt(parts[0])
		if err != nil {
			return err
		}
		dy, err := parseBigInt(parts[1])
		if err != nil {
			return err
		}
		dz, err := parseBigInt(parts[2])
		if err != nil {
			return err
		}
		report, err := o.MoveRelative(ctx, dx, dy, dz)
		if err != nil {
			return fmt.Errorf("move: %w", err)
		}
		finalPos = report.Position
		hopCount = 1

	case *toward:
		tgt, ok := targets.Active(st)
		if !ok {
			return fmt.Errorf("no active target set; run 'targets select' first")
		}
		tgtCoord, err := coord.HexToCoord(tgt.CoordHex)
		if err != nil {
			return err
		}
		tx, ty, tz, tplane := coord.Decode(tgtCoord)
		var planeArg *uint
		if *plane >= 0 {
			p := uint(*plane)
			planeArg = &p
		} else {
			planeArg = &tplane
		}
		result, err := o.MoveToward(ctx, pathing.Waypoint{X: tx, Y: ty, Z: tz}, planeArg)
		if err != nil {
			return fmt.Errorf("move toward: %w", err)
		}
		finalPos = o.Position()
		hopCount = len(result.Hops)
		if result.Interrupted {
			fmt.Printf("interrupted after %d hop(s)\n", hopCount)
		}

	default:
		return fmt.Errorf("move requires one of --to, --by, or --toward")
	}

	finalCoord, err := finalPos.Coord()
	if err != nil {
		return err
	}
	st.CoordHex = coord.ToHex(finalCoord)
	if err := store.SaveState(home, st); err != nil {
		return fmt.Errorf("save state: %w", err)
	}

	fmt.Printf("completed %d hop(s), now at %s\n", hopCount, st.CoordHex)
	return nil
}

// ---- status ----------------------------------------------------------------

func cmdStatus(args []string) error {
	home, err := openHome()
	if err != nil {
		return err
	}
	st, err := loadState(home)
	if err != nil {
		return err
	}
	if st.ActiveChainLabel == "" {
		return fmt.Errorf("no active chain")
	}
	chainPath := store.ChainPath(home, st.ActiveChainLabel)
	chainState, err := chain.LoadChainFromFile(st.ActiveChainLabel, chainPath)
	if err != nil {
		return fmt.Errorf("load active chain: %w", err)
	}
	fmt.Printf("chain: %s\n", st.ActiveChainLabel)
	fmt.Printf("length: %d\n", chainState.Len())
	fmt.Printf("position: %s\n", st.CoordHex)
	return nil
}

// ---- chains ------------------------------------------------------------

func cmdChains(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("chains requires a subcommand: list, select, inspect")
	}
	home, err := openHome()
	if err != nil {
		return err
	}
	switch args[0] {
	case "list":
		labels, err := store.ListChainLabels(home)
		if err != nil {
			return err
		}
		for _, l := range labels {
			fmt.Println(l)
		}
		return nil
	case "select":
		if len(args) != 2 {
			return fmt.Errorf("chains select requires a label")
		}
		st, err := loadState(home)
		if err != nil {
			return err
		}
		label := chain.NormalizeLabel(args[1])
		if _, err := os.Stat(store.ChainPath(home, label)); err != nil {
			return fmt.Errorf("chain %q not found: %w", label, err)
		}
		st.ActiveChainLabel = label
		return store.SaveState(home, st)
	case "inspect":
		if len(args) != 2 {
			return fmt.Errorf("chains inspect requires a label")
		}
		label := chain.NormalizeLabel(args[1])
		ch, err := chain.LoadChainFromFile(label, store.ChainPath(home, label))
		if err != nil {
			return err
		}
		genesis, err := ch.Genesis()
		if err != nil {
			return err
		}
		tail, err := ch.Tail()
		if err != nil {
			return err
		}
		fmt.Printf("label: %s\nlength: %d\ngenesis: %s\ntail: %s\n", ch.Label, ch.Len(), genesis.ID, tail.ID)
		return nil
	default:
		return fmt.Errorf("unknown chains subcommand %q", args[0])
	}
}

// ---- targets -----------------------------------------------------------

func cmdTargets(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("targets requires a subcommand: set, list, select, remove")
	}
	home, err := openHome()
	if err != nil {
		return err
	}
	st, err := loadState(home)
	if err != nil {
		return err
	}

	switch args[0] {
	case "set":
		if len(args) != 3 {
			return fmt.Errorf("targets set requires a label and a coordinate hex")
		}
		if err := targets.Add(st, args[1], args[2]); err != nil {
			return err
		}
	case "list":
		for _, tgt := range targets.List(st) {
			marker := " "
			if tgt.Label == st.ActiveTargetLabel {
				marker = "*"
			}
			fmt.Printf("%s %s %s\n", marker, tgt.Label, tgt.CoordHex)
		}
		return nil
	case "select":
		if len(args) != 2 {
			return fmt.Errorf("targets select requires a label")
		}
		if err := targets.Select(st, args[1]); err != nil {
			return err
		}
	case "remove":
		if len(args) != 2 {
			return fmt.Errorf("targets remove requires a label")
		}
		if err := targets.Remove(st, args[1]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown targets subcommand %q", args[0])
	}

	return store.SaveState(home, st)
}

// ---- config ------------------------------------------------------------

func cmdConfig(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("config requires a subcommand: show, set")
	}
	home, err := openHome()
	if err != nil {
		return err
	}
	switch args[0] {
	case "show":
		cfg, err := store.LoadConfig(home)
		if err != nil {
			return err
		}
		fmt.Printf("version: %d\ndefault_max_lca_height: %d\n", cfg.Version, cfg.DefaultMaxLCAHeight)
		return nil
	case "set":
		if len(args) != 3 || args[1] != "default_max_lca_height" {
			return fmt.Errorf("config set supports: default_max_lca_height <n>")
		}
		n, err := strconv.Atoi(args[2])
		if err != nil || n <= 0 {
			return fmt.Errorf("default_max_lca_height must be a positive integer")
		}
		cfg, err := store.LoadConfig(home)
		if err != nil {
			return err
		}
		cfg.DefaultMaxLCAHeight = n
		return store.SaveConfig(home, cfg)
	default:
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
}
