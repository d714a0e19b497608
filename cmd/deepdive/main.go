// Command deepdive plays fraction levels in the terminal against the same
// engine the HTTP server uses.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/Ashenafi-pixel/deepdive-fractions/config"
	"github.com/Ashenafi-pixel/deepdive-fractions/difficulty"
	"github.com/Ashenafi-pixel/deepdive-fractions/game"
	"github.com/Ashenafi-pixel/deepdive-fractions/generator"

	"github.com/joho/godotenv"
)

const help = `commands:
  <n> | play <n>   play card n
  c | cut <n>      cut attached card n loose
  u | undo         take back the last card
  h | hint         show one card of a winning set
  s | solve        is the target still reachable?
  reset            start this deal over
  retry            deal this level again
  next             go to the next level
  q | quit`

func main() {
	_ = godotenv.Load(".env")
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	level := flag.Int("level", 1, "Level to start at")
	seed := flag.Int64("seed", cfg.Seed, "Generator seed; 0 picks a random one")
	failOnDeadEnd := flag.Bool("fail-on-dead-end", cfg.FailOnDeadEnd, "Lose as soon as the target is out of reach")
	flag.Parse()

	if *seed == 0 {
		if *seed, err = generator.NewSeed(); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
	}
	engine := game.NewEngine(difficulty.NewStore(cfg.DataDir), generator.NewRand(*seed),
		game.WithMaxAttempts(cfg.MaxAttempts),
		game.WithFailOnDeadEnd(*failOnDeadEnd),
	)
	if err := run(os.Stdin, os.Stdout, engine, *level); err != nil {
		fmt.Fprintf(os.Stderr, "deepdive: %v\n", err)
		os.Exit(1)
	}
}

// run reads commands from in until quit or EOF.
func run(in io.Reader, out io.Writer, engine *game.Engine, level int) error {
	sess, err := engine.StartLevel(level)
	if err != nil {
		return err
	}
	fmt.Fprintln(out, help)
	render(out, sess)

	sc := bufio.NewScanner(in)
	for {
		fmt.Fprint(out, "> ")
		if !sc.Scan() {
			fmt.Fprintln(out)
			return sc.Err()
		}
		fields := strings.Fields(strings.ToLower(sc.Text()))
		if len(fields) == 0 {
			continue
		}
		cmd, args := fields[0], fields[1:]
		if n, err := strconv.Atoi(cmd); err == nil {
			cmd, args = "play", []string{strconv.Itoa(n)}
		}

		switch cmd {
		case "q", "quit", "exit":
			return nil
		case "play", "p":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: play <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > len(sess.Hand) {
				fmt.Fprintf(out, "pick a card between 1 and %d\n", len(sess.Hand))
				continue
			}
			sess = game.Play(sess, n-1)
		case "c", "cut":
			if len(args) != 1 {
				fmt.Fprintln(out, "usage: cut <n>")
				continue
			}
			n, err := strconv.Atoi(args[0])
			if err != nil || n < 1 || n > len(sess.History) {
				fmt.Fprintf(out, "nothing attached at %s\n", args[0])
				continue
			}
			sess = game.Detach(sess, n-1)
		case "u", "undo":
			sess = game.Undo(sess)
		case "reset":
			sess = game.Reset(sess)
		case "retry":
			if sess, err = engine.Retry(sess); err != nil {
				return err
			}
		case "next":
			if sess.Status != game.StatusWon {
				fmt.Fprintln(out, "win this level first")
				continue
			}
			if sess, err = engine.NextLevel(sess); err != nil {
				return err
			}
		case "h", "hint":
			c, ok, err := game.Hint(sess)
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(out, "no hint: the target cannot be reached from here")
			} else {
				fmt.Fprintf(out, "try card %d (%s)\n", sess.Hand.IndexOf(c.ID)+1, c.Label())
			}
			continue
		case "s", "solve":
			res, err := game.IsSolvable(sess)
			if err != nil {
				return err
			}
			if res.Solvable {
				fmt.Fprintf(out, "reachable with %d card(s)\n", len(res.Subset))
			} else {
				fmt.Fprintln(out, "not reachable")
			}
			continue
		case "help", "?":
			fmt.Fprintln(out, help)
			continue
		default:
			fmt.Fprintf(out, "unknown command %q (try help)\n", cmd)
			continue
		}
		render(out, sess)
	}
}

func render(out io.Writer, s game.Session) {
	fmt.Fprintf(out, "\nlevel %d  depth %s  target %s  (%s to go)\n", s.Level, s.Current, s.Target, s.Remaining())
	if len(s.History) > 0 {
		fmt.Fprint(out, "  attached:")
		for i, m := range s.History {
			fmt.Fprintf(out, " (%d) %s", i+1, m.Card.Label())
		}
		fmt.Fprintln(out)
	}
	for i, c := range s.Hand {
		kind := "balloon"
		if c.Anchor() {
			kind = "anchor"
		}
		fmt.Fprintf(out, "  [%d] %-6s %s\n", i+1, c.Label(), kind)
	}
	switch s.Feedback.Kind {
	case game.FeedbackWon:
		fmt.Fprintln(out, "Level complete! Type next to continue.")
	case game.FeedbackLost:
		fmt.Fprintln(out, "Lost. Type undo, reset or retry.")
	case game.FeedbackOvershoot:
		fmt.Fprintln(out, "Too far. Play an anchor to come back.")
	case game.FeedbackDetach:
		if s.Feedback.Drift == game.DriftRise {
			fmt.Fprintf(out, "Cut %s loose: the sub rises.\n", s.Feedback.Card.Label())
		} else {
			fmt.Fprintf(out, "Cut %s loose: the sub sinks.\n", s.Feedback.Card.Label())
		}
	}
	if s.Feedback.DeadEnd && s.Status == game.StatusPlaying {
		fmt.Fprintln(out, "The target is out of reach from here.")
	}
}
