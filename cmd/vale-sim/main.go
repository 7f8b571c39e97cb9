package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/peterkuimelis/vale/internal/battle"
	"github.com/peterkuimelis/vale/internal/config"
	"github.com/peterkuimelis/vale/internal/content"
	"github.com/peterkuimelis/vale/internal/log"
	"github.com/peterkuimelis/vale/internal/logging"
	"github.com/peterkuimelis/vale/internal/replay"
	"github.com/peterkuimelis/vale/internal/session"
	"go.uber.org/zap"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	cmd := os.Args[1]
	switch cmd {
	case "simulate":
		err = runSimulate(cfg, os.Args[2:])
	case "replay":
		err = runReplay(cfg, os.Args[2:])
	case "content":
		err = runContent(cfg, os.Args[2:])
	default:
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage:")
	fmt.Println("  vale-sim simulate [--encounter ID] [--party IDS] [--djinn IDS] [--seed N] [--out FILE]")
	fmt.Println("  vale-sim replay [--quiet] FILE")
	fmt.Println("  vale-sim content [--content FILE]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  simulate  Auto-play a battle and print its event log")
	fmt.Println("  replay    Re-run a recorded journal and check its digest")
	fmt.Println("  content   List the loaded content tables")
	fmt.Println()
	fmt.Println("Defaults come from VALE_* environment variables.")
}

func splitIDs(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' })
}

func runSimulate(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("simulate", flag.ExitOnError)
	encounter := fs.String("encounter", "goblin-pack", "encounter ID")
	party := fs.String("party", strings.Join(cfg.Party, ","), "comma-separated party unit IDs")
	djinn := fs.String("djinn", strings.Join(cfg.Djinn, ","), "comma-separated Djinn IDs to equip")
	level := fs.Int("level", cfg.Level, "party level")
	seed := fs.Int64("seed", cfg.Seed, "master seed (0 picks one)")
	maxRounds := fs.Int("max-rounds", cfg.MaxRounds, "stop after this many rounds")
	summon := fs.Bool("summon", true, "activate every Set Djinn once all of them are Set")
	out := fs.String("out", "", "write the replay journal to this file")
	contentFile := fs.String("content", cfg.Content, "content YAML file (default: built-in)")
	fs.Parse(args)

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync()

	catalog, err := content.Load(*contentFile)
	if err != nil {
		return err
	}

	mgr := session.NewManager(catalog, logger)
	sess, err := mgr.Start(session.Options{
		Encounter: *encounter,
		Party:     splitIDs(*party),
		Level:     *level,
		Djinn:     splitIDs(*djinn),
		Seed:      *seed,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Battle %s vs %s (seed %d)\n", strings.Join(splitIDs(*party), ", "), *encounter, sess.Seed())

	text := log.NewTextLogger(os.Stdout)
	for round := 0; round < *maxRounds && !sess.State().IsOver(); round++ {
		if *summon {
			if err := queueSetDjinn(sess); err != nil {
				return err
			}
		}
		if err := sess.AutoQueue(); err != nil {
			return err
		}
		events, err := sess.Execute()
		if err != nil {
			return err
		}
		text.LogAll(events)
	}

	st := sess.State()
	if !st.IsOver() {
		logger.Warn("round limit reached", zap.Int("rounds", *maxRounds))
	}
	j := sess.Journal()
	fmt.Printf("Result: %s after %d rounds, digest %s\n", st.Outcome, len(j.Rounds), replay.Digest(st))

	if *out != "" {
		if err := j.Save(*out); err != nil {
			return fmt.Errorf("write journal: %w", err)
		}
		logger.Info("journal written", zap.String("path", *out))
	}
	return nil
}

// queueSetDjinn queues every equipped Djinn when all of them are Set.
func queueSetDjinn(sess *session.Session) error {
	st := sess.State()
	equipped := st.PlayerTeam.EquippedDjinn
	if len(equipped) == 0 {
		return nil
	}
	for _, id := range equipped {
		if st.PlayerTeam.DjinnTrackers[id].State != battle.DjinnSet {
			return nil
		}
	}
	for _, id := range equipped {
		if err := sess.QueueDjinn(id); err != nil {
			return err
		}
	}
	return nil
}

func runReplay(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("replay", flag.ExitOnError)
	quiet := fs.Bool("quiet", false, "print only the result line")
	contentFile := fs.String("content", cfg.Content, "content YAML file (default: built-in)")
	fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("replay needs exactly one journal file")
	}

	catalog, err := content.Load(*contentFile)
	if err != nil {
		return err
	}
	j, err := replay.Load(fs.Arg(0))
	if err != nil {
		return err
	}
	res, err := replay.Run(catalog, j)
	if err != nil {
		return err
	}

	if !*quiet {
		fmt.Print(log.FormatAll(res.Events))
	}
	fmt.Printf("Result: %s after %d rounds, digest %s\n", res.State.Outcome, len(j.Rounds), res.Digest)
	if j.Digest != "" && j.Digest != res.Digest {
		return fmt.Errorf("digest mismatch: journal %s, replay %s", j.Digest, res.Digest)
	}
	return nil
}

func runContent(cfg config.Config, args []string) error {
	fs := flag.NewFlagSet("content", flag.ExitOnError)
	contentFile := fs.String("content", cfg.Content, "content YAML file (default: built-in)")
	fs.Parse(args)

	catalog, err := content.Load(*contentFile)
	if err != nil {
		return err
	}
	fmt.Print(catalog.Describe())
	return nil
}
