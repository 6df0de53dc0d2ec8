package main

import (
	"context"
	"flag"
	"log"
	"math/rand/v2"
	"os"
	"os/signal"
	"time"

	"github.com/pterm/pterm"
	"go.uber.org/zap"

	"github.com/minaorangina/kings/bot"
	"github.com/minaorangina/kings/config"
	"github.com/minaorangina/kings/engine"
	"github.com/minaorangina/kings/game"
	"github.com/minaorangina/kings/protocol"
)

func main() {
	interval := flag.Duration("interval", 300*time.Millisecond, "delay between bot moves")
	seed := flag.Uint64("seed", 0, "shuffle seed (0 picks one at random)")
	strategy := flag.String("strategy", "heuristic", "bot strategy: heuristic or passive")
	threshold := flag.Int("threshold", game.DefaultWinThreshold, "king pile cards needed to win")
	blank := flag.Int("blank", 0, "blank copies of each rank added to the deck")
	timeout := flag.Duration("timeout", 0, "give up after this long (0 runs until someone wins)")
	human := flag.Bool("human", false, "play the last seat yourself")
	flag.Parse()

	logger, err := config.NewLogger(config.LoggingConfig{Level: "warn", Format: "console"})
	if err != nil {
		log.Fatal(err.Error())
	}
	defer logger.Sync()

	s, err := bot.New(*strategy)
	if err != nil {
		log.Fatal(err.Error())
	}

	opts := game.Options{WinThreshold: *threshold, BlankFiller: *blank}
	if *seed != 0 {
		opts.Source = rand.NewPCG(*seed, *seed)
	}

	aiPlayers := engine.NumSeats
	if *human {
		aiPlayers--
	}

	ge, err := engine.NewGameEngine(engine.GameEngineOpts{
		AIPlayers:    aiPlayers,
		Strategy:     s,
		Game:         opts,
		MoveInterval: *interval,
		Backlog:      1024,
		Logger:       logger,
	})
	if err != nil {
		log.Fatal("Could not initialise a new game: " + err.Error())
	}
	defer ge.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if *timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, *timeout)
		defer cancel()
	}

	var player *terminalPlayer
	if *human {
		seat, _, err := ge.JoinAsHuman()
		if err != nil {
			log.Fatal(err.Error())
		}
		player = newTerminalPlayer(seat, conn{In: os.Stdin, Out: os.Stdout})
	}

	winner, ok := watch(ctx, ge, player)
	if !ok {
		pterm.Warning.Println("Game abandoned")
		return
	}
	logger.Info("game over", zap.Int("winner", winner))
}

// watch renders every event until the game is won or ctx ends. When
// player is set it is asked for a move whenever its seat is to play.
func watch(ctx context.Context, ge *engine.GameEngine, player *terminalPlayer) (int, bool) {
	sub := ge.Subscribe()
	defer sub.Close()

	viewer := everyone
	if player != nil {
		viewer = player.seat
	}

	for {
		select {
		case <-ctx.Done():
			return 0, false

		case ev, ok := <-sub.Events():
			if !ok {
				return 0, false
			}

			switch ev.Command {
			case protocol.StateChanged:
				renderState(ev.View, ev.Hand, viewer)
				if player == nil || ev.View.Winner >= 0 || ev.View.Round.Player != player.seat {
					continue
				}
				if err := player.play(ctx, ge); err != nil {
					pterm.Error.Println(err.Error())
					return 0, false
				}
			case protocol.GameWon:
				renderWinner(ev.Winner)
				return ev.Winner, true
			}
		}
	}
}
