package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"

	"github.com/seu-repo/voxmart/internal/domain"
)

var (
	serverURL   = flag.String("server", "http://localhost:8080", "API server base URL")
	email       = flag.String("email", "shopper@example.com", "Account email")
	password    = flag.String("password", "secret123", "Account password")
	name        = flag.String("name", "Test Shopper", "Account name (used with -register)")
	register    = flag.Bool("register", false, "Register the account before logging in")
	language    = flag.String("language", "en", "Preferred language (en or ar)")
	transcript  = flag.String("say", "", "Send a single utterance as text and exit")
	audioFile   = flag.String("audio", "", "Send a recorded WAV file as the utterance and exit")
	fetchReply  = flag.Bool("fetch-audio", false, "Download the synthesized reply clip")
	stream      = flag.Bool("stream", false, "Use the websocket voice stream instead of REST")
	sessionWAV  = flag.String("session-wav", "", "Run a full push-to-talk session feeding this WAV file")
	engineURL   = flag.String("engine", "ws://localhost:2700", "Speech recognition engine websocket URL (session mode)")
	interactive = flag.Bool("interactive", false, "Read utterances from stdin")
	verbose     = flag.Bool("verbose", false, "Enable verbose logging")
)

func main() {
	flag.Parse()

	var logger *zap.Logger
	var err error
	if *verbose {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	config := &SimulatorConfig{
		ServerURL: strings.TrimRight(*serverURL, "/"),
		Email:     *email,
		Password:  *password,
		Name:      *name,
		Register:  *register,
		Language:  *language,
	}

	simulator := NewSimulator(config, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Println("\nShutting down simulator...")
		cancel()
		os.Exit(0)
	}()

	if err := simulator.Authenticate(ctx); err != nil {
		logger.Fatal("Authentication failed", zap.Error(err))
	}

	switch {
	case *sessionWAV != "":
		if err := simulator.RunSession(ctx, *engineURL, *sessionWAV); err != nil {
			logger.Fatal("Session failed", zap.Error(err))
		}

	case *interactive:
		fmt.Println("Voice client simulator - type an utterance, \"quit\" to exit")
		simulator.RunInteractive(ctx)

	case *stream:
		lines := flag.Args()
		if *transcript != "" {
			lines = append([]string{*transcript}, lines...)
		}
		if len(lines) == 0 {
			logger.Fatal("Streaming mode needs at least one utterance (-say or positional args)")
		}
		if err := simulator.StreamTranscripts(ctx, lines); err != nil {
			logger.Fatal("Stream failed", zap.Error(err))
		}

	case *audioFile != "":
		result, err := simulator.SendAudio(ctx, *audioFile)
		if err != nil {
			logger.Fatal("Audio upload failed", zap.Error(err))
		}
		saveReply(ctx, simulator, result, logger)

	case *transcript != "":
		result, err := simulator.SendTranscript(ctx, *transcript)
		if err != nil {
			logger.Fatal("Utterance failed", zap.Error(err))
		}
		saveReply(ctx, simulator, result, logger)

	default:
		flag.Usage()
		os.Exit(2)
	}
}

func saveReply(ctx context.Context, simulator *Simulator, result *domain.ProcessResult, logger *zap.Logger) {
	if !*fetchReply || result == nil || result.AudioFilename == nil {
		return
	}
	if err := simulator.FetchAudio(ctx, *result.AudioFilename, *result.AudioFilename); err != nil {
		logger.Error("Failed to fetch reply audio", zap.Error(err))
	}
}
