package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/oklog/ulid/v2"
	"github.com/spf13/cobra"

	"github.com/osanhueza/fleetdesk/internal/chat"
	"github.com/osanhueza/fleetdesk/internal/config"
	"github.com/osanhueza/fleetdesk/internal/dispatch"
	fderrors "github.com/osanhueza/fleetdesk/internal/errors"
	"github.com/osanhueza/fleetdesk/internal/fleet"
	"github.com/osanhueza/fleetdesk/internal/model"
	"github.com/osanhueza/fleetdesk/internal/session"
	"github.com/osanhueza/fleetdesk/internal/store"
	"github.com/osanhueza/fleetdesk/internal/tool"
	_ "github.com/osanhueza/fleetdesk/internal/tool/builtin"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive assistant session",
	RunE: func(cmd *cobra.Command, args []string) error {
		email, _ := cmd.Flags().GetString("email")
		name, _ := cmd.Flags().GetString("name")

		rt, err := buildRuntime(cfg, email, name)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return runREPL(ctx, rt)
	},
}

func init() {
	rootCmd.AddCommand(chatCmd)
	chatCmd.Flags().String("email", "operaciones@transvip.cl", "operator email attached to the session")
	chatCmd.Flags().String("name", "Operaciones Transvip", "operator name attached to the session")
}

type runtime struct {
	registry   *tool.Registry
	dispatcher *dispatch.Dispatcher
	store      *chat.Store
}

func buildRuntime(cfg *config.Config, email, name string) (*runtime, error) {
	fleetTimeout, err := config.DurationOrDefault(cfg.Fleet.Timeout, config.DefaultFleetTimeout)
	if err != nil {
		return nil, err
	}
	fleetClient := fleet.NewClient(cfg.Fleet.BaseURL, cfg.Fleet.APIToken, fleetTimeout)

	router, err := model.NewRouter(cfg.Models)
	if err != nil {
		return nil, err
	}

	registry := tool.NewRegistry()
	builtins, err := tool.InstantiateBuiltins(tool.BuiltinOptions{
		Fleet:                fleetClient,
		Generator:            router,
		SmartModel:           cfg.Models.Smart,
		CreateTextPrompt:     cfg.Prompts.CreateText,
		RatingsSummaryPrompt: cfg.Prompts.RatingsSummary,
		BookingURL:           cfg.Fleet.BookingURL,
		AirportZones:         cfg.Fleet.AirportZones,
	})
	if err != nil {
		return nil, err
	}
	for _, t := range builtins {
		if err := registry.Register(t); err != nil {
			return nil, err
		}
	}

	lockTimeout, err := config.DurationOrDefault(cfg.Store.LockTimeout, config.DefaultStoreLockTimeout)
	if err != nil {
		return nil, err
	}
	lockRetry, err := config.DurationOrDefault(cfg.Store.LockRetry, config.DefaultStoreLockRetry)
	if err != nil {
		return nil, err
	}
	archive, err := store.NewArchive(cfg.Store.Path, email, store.ArchiveConfig{
		LockTimeout:  lockTimeout,
		LockRetry:    lockRetry,
		LockMaxRetry: cfg.Store.LockMaxRetry,
	})
	if err != nil {
		return nil, err
	}

	dispatcher := dispatch.New(registry, router, session.NewStaticProvider(email, name), dispatch.Options{
		Model:        cfg.Models.Default,
		System:       cfg.Prompts.System,
		HistoryLimit: cfg.Dispatcher.HistoryLimit,
		FrameBuffer:  cfg.Dispatcher.FrameBuffer,
	})

	return &runtime{
		registry:   registry,
		dispatcher: dispatcher,
		store:      chat.NewStore(chat.NewState(ulid.Make().String()), archive),
	}, nil
}

func runREPL(ctx context.Context, rt *runtime) error {
	fmt.Printf("Fleetdesk session: %s\n", rt.store.ChatID())
	fmt.Println("Escribe '/exit' para salir, '/history' para ver la conversación.")

	reader := bufio.NewReader(os.Stdin)
	for {
		if ctx.Err() != nil {
			return nil
		}

		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}

		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case line == "/exit":
			return nil
		case line == "/history":
			printHistory(rt)
			continue
		}

		if _, err := rt.dispatcher.SubmitUserMessage(ctx, rt.store, line, consoleSink{}); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil
			}
			fmt.Printf("\n[%s] %v\n", fderrors.Category(err), err)
			continue
		}
		fmt.Println()
	}
}

func printHistory(rt *runtime) {
	for _, entry := range chat.Project(rt.store.Get(), rt.registry) {
		label := string(entry.Variant)
		if entry.Tool != "" {
			label = entry.Tool
		}
		fmt.Printf("[%s] %s: %s\n", entry.ID, label, entry.Content)
	}
}

// consoleSink renders streamed fragments and tool frames to stdout.
type consoleSink struct{}

func (consoleSink) TextFragment(fragment string) {
	fmt.Print(fragment)
}

func (consoleSink) ToolFrame(frame tool.Frame) {
	if frame.Terminal() {
		fmt.Println(frame.Text)
		if frame.Display != nil {
			fmt.Printf("  [%s]\n", frame.Display.Name)
		}
		return
	}
	fmt.Println("… " + frame.Text)
}
