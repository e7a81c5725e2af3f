package main

import (
	"context"
	"encoding/json"
	"expvar"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/innokenty/voicecast/pkg/ai/llm"
	llmfake "github.com/innokenty/voicecast/pkg/ai/llm/fake"
	"github.com/innokenty/voicecast/pkg/ai/llm/openai"
	"github.com/innokenty/voicecast/pkg/ai/stt"
	sttfake "github.com/innokenty/voicecast/pkg/ai/stt/fake"
	sttremote "github.com/innokenty/voicecast/pkg/ai/stt/remote"
	ttsfake "github.com/innokenty/voicecast/pkg/ai/tts/fake"
	wakefake "github.com/innokenty/voicecast/pkg/ai/wake/fake"
	"github.com/innokenty/voicecast/pkg/assistant"
	"github.com/innokenty/voicecast/pkg/audio/wav"
	"github.com/innokenty/voicecast/pkg/podcast"
	"github.com/innokenty/voicecast/pkg/rtc"
	"github.com/innokenty/voicecast/pkg/session"
	"github.com/innokenty/voicecast/pkg/version"
	"github.com/innokenty/voicecast/pkg/voice"
)

var rootCmd = &cobra.Command{
	Use:   "voicecast",
	Short: "Voicecast - a Russian-language voice assistant and podcast generator",
	Long: `voicecast drives a wake-word voice assistant backed by a local LM Studio
server and an AI podcast generator where several synthetic participants
discuss a topic under a moderator.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.GetVersionInfo())
	},
}

var assistantCmd = &cobra.Command{
	Use:   "assistant",
	Short: "Voice assistant commands",
}

var assistantRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Run the assistant turn loop against simulated or recorded audio",
	RunE: func(cmd *cobra.Command, args []string) error {
		keywords, _ := cmd.Flags().GetStringSlice("keywords")
		pause, _ := cmd.Flags().GetDuration("pause")
		maxRecording, _ := cmd.Flags().GetDuration("max-recording")
		backend, _ := cmd.Flags().GetString("llm")
		llmURL, _ := cmd.Flags().GetString("llm-url")
		model, _ := cmd.Flags().GetString("model")
		filePath, _ := cmd.Flags().GetString("file")
		outPath, _ := cmd.Flags().GetString("out")
		metrics, _ := cmd.Flags().GetBool("metrics")

		logger := setupLogger()
		logger.Info("Starting assistant",
			slog.String("service", "voicecast"),
			slog.String("version", version.Version),
			slog.String("llm", backend))

		if metrics {
			startMetricsServer(logger)
		}

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runAssistant(ctx, assistantOptions{
			keywords:     keywords,
			pause:        pause,
			maxRecording: maxRecording,
			backend:      backend,
			llmURL:       llmURL,
			model:        model,
			filePath:     filePath,
			outPath:      outPath,
		}, logger)
	},
}

var transcribeCmd = &cobra.Command{
	Use:   "transcribe",
	Short: "Transcribe a WAV file with the chosen STT provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		filePath, _ := cmd.Flags().GetString("file")
		provider, _ := cmd.Flags().GetString("provider")
		url, _ := cmd.Flags().GetString("url")
		token, _ := cmd.Flags().GetString("token")
		lang, _ := cmd.Flags().GetString("lang")

		logger := setupLogger()
		logger.Info("Starting transcription",
			slog.String("file", filePath),
			slog.String("provider", provider))

		return runTranscribe(filePath, provider, url, token, lang, logger)
	},
}

var podcastCmd = &cobra.Command{
	Use:   "podcast",
	Short: "Podcast generation commands",
}

var podcastRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Record a full multi-agent podcast on a topic",
	RunE: func(cmd *cobra.Command, args []string) error {
		topic, _ := cmd.Flags().GetString("topic")
		rounds, _ := cmd.Flags().GetInt("rounds")
		noAudio, _ := cmd.Flags().GetBool("no-audio")
		outputDir, _ := cmd.Flags().GetString("output-dir")
		storeDir, _ := cmd.Flags().GetString("store-dir")
		configPath, _ := cmd.Flags().GetString("participants")
		backend, _ := cmd.Flags().GetString("llm")
		llmURL, _ := cmd.Flags().GetString("llm-url")
		model, _ := cmd.Flags().GetString("model")

		logger := setupLogger()
		logger.Info("Starting podcast",
			slog.String("topic", topic),
			slog.Int("rounds", rounds),
			slog.Bool("no_audio", noAudio))

		ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer cancel()

		return runPodcast(ctx, podcastOptions{
			topic:      topic,
			rounds:     rounds,
			noAudio:    noAudio,
			outputDir:  outputDir,
			storeDir:   storeDir,
			configPath: configPath,
			backend:    backend,
			llmURL:     llmURL,
			model:      model,
		}, logger)
	},
}

var podcastListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored podcast sessions",
	RunE: func(cmd *cobra.Command, args []string) error {
		storeDir, _ := cmd.Flags().GetString("store-dir")

		store, err := podcast.OpenStore(storeDir)
		if err != nil {
			return err
		}
		defer store.Close()

		ids, err := store.ListSessions()
		if err != nil {
			return err
		}
		if len(ids) == 0 {
			fmt.Println("No stored sessions")
			return nil
		}

		fmt.Printf("%-40s %-20s %-8s %s\n", "SESSION", "CREATED", "ROUNDS", "TOPIC")
		for _, id := range ids {
			sess, err := store.LoadSession(id)
			if err != nil {
				fmt.Printf("%-40s (unreadable: %v)\n", id, err)
				continue
			}
			fmt.Printf("%-40s %-20s %-8d %s\n",
				sess.ID, sess.CreatedAt.Format("2006-01-02 15:04"), sess.CurrentRound, sess.Topic)
		}
		return nil
	},
}

var podcastVoicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List available synthesis voices",
	Run: func(cmd *cobra.Command, args []string) {
		voices := []struct{ name, description string }{
			{"aidar", "мужской, нейтральный"},
			{"baya", "женский, мягкий"},
			{"kseniya", "женский, нейтральный"},
			{"xenia", "женский, выразительный"},
			{"eugene", "мужской, низкий"},
		}
		fmt.Printf("%-10s %s\n", "VOICE", "DESCRIPTION")
		for _, v := range voices {
			fmt.Printf("%-10s %s\n", v.name, v.description)
		}
	},
}

func setupLogger() *slog.Logger {
	logFormat := os.Getenv("VOICECAST_LOG_FORMAT")
	logLevel := os.Getenv("VOICECAST_LOG_LEVEL")

	opts := &slog.HandlerOptions{}
	switch logLevel {
	case "debug":
		opts.Level = slog.LevelDebug
	case "warn":
		opts.Level = slog.LevelWarn
	case "error":
		opts.Level = slog.LevelError
	default:
		opts.Level = slog.LevelInfo
	}

	var handler slog.Handler
	if logFormat == "console" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

func startMetricsServer(logger *slog.Logger) {
	go func() {
		logger.Info("Starting metrics server on :8080")
		mux := http.NewServeMux()
		mux.Handle("/metrics", expvar.Handler())
		if err := http.ListenAndServe(":8080", mux); err != nil {
			logger.Error("Metrics server failed", slog.String("error", err.Error()))
		}
	}()
}

func newLLMBackend(backend, llmURL, model string, logger *slog.Logger) (llm.LLM, error) {
	switch backend {
	case "fake":
		return llmfake.NewFakeLLM(), nil
	case "lmstudio":
		return openai.New(openai.Config{
			BaseURL: llmURL,
			Model:   model,
			Logger:  logger,
		}), nil
	default:
		return nil, fmt.Errorf("unknown LLM backend %q (want fake or lmstudio)", backend)
	}
}

type assistantOptions struct {
	keywords     []string
	pause        time.Duration
	maxRecording time.Duration
	backend      string
	llmURL       string
	model        string
	filePath     string
	outPath      string
}

func runAssistant(ctx context.Context, opts assistantOptions, logger *slog.Logger) error {
	const (
		sampleRate = 16000
		frameSize  = 160 // 10ms
	)

	// The demo wake engine finalizes the wake phrase shortly after the
	// stream starts; real audio keyword spotting plugs in behind the same
	// interface.
	engine := wakefake.NewFakeEngine("слушай Иннокентий", 20)
	detector, err := assistant.NewDetector(assistant.DetectorConfig{
		Engine:     engine,
		Keywords:   opts.keywords,
		SampleRate: sampleRate,
		Logger:     logger,
	})
	if err != nil {
		return err
	}

	var chat *session.Session
	if opts.backend != "none" {
		backend, err := newLLMBackend(opts.backend, opts.llmURL, opts.model, logger)
		if err != nil {
			return err
		}
		chat, err = session.New(session.Config{Backend: backend, Logger: logger})
		if err != nil {
			return err
		}
	}

	replies := make(chan assistant.Reply, 1)
	asst, err := assistant.New(assistant.Config{
		Detector:   detector,
		STT:        sttfake.NewFakeSTT("который час"),
		TTS:        ttsfake.NewFakeTTS(),
		Session:    chat,
		Gate:       voice.NewGate(voice.GateConfig{Logger: logger}),
		StopPolicy: voice.NewStopPolicy(voice.StopConfig{PauseThreshold: opts.pause}),

		MaxRecording: opts.maxRecording,
		Voice:        "aidar",
		OnReply:      func(r assistant.Reply) { replies <- r },
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	defer asst.Close()

	frames, err := loadFrames(opts.filePath, sampleRate, frameSize)
	if err != nil {
		return err
	}

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	for _, frame := range frames {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			asst.ProcessFrame(frame)
		}
	}

	select {
	case reply := <-replies:
		fmt.Printf("Heard:   %s\n", reply.Transcript)
		fmt.Printf("Replied: %s\n", reply.Text)
		if opts.outPath != "" && reply.Audio != nil {
			if err := wav.WriteFile(opts.outPath, reply.Audio); err != nil {
				return fmt.Errorf("write reply audio: %w", err)
			}
			logger.Info("Reply audio saved", slog.String("path", opts.outPath))
		}
	case <-time.After(10 * time.Second):
		return fmt.Errorf("no completed turn (state %s, stop reason %s)",
			asst.State(), asst.LastStopReason())
	case <-ctx.Done():
		return ctx.Err()
	}

	return nil
}

// loadFrames chops a WAV file into 10ms frames, or synthesizes a short
// utterance (voiced burst followed by silence) when no file is given.
func loadFrames(filePath string, sampleRate, frameSize int) ([]*rtc.AudioFrame, error) {
	if filePath != "" {
		recording, err := wav.ReadFile(filePath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", filePath, err)
		}
		sampleRate = recording.SampleRate
		frameSize = sampleRate / 100

		var frames []*rtc.AudioFrame
		for off := 0; off+frameSize <= len(recording.Samples); off += frameSize {
			frames = append(frames, &rtc.AudioFrame{
				Samples:    recording.Samples[off : off+frameSize],
				SampleRate: sampleRate,
			})
		}
		return frames, nil
	}

	var frames []*rtc.AudioFrame
	total := 300 // 3 seconds
	for i := 0; i < total; i++ {
		samples := make([]float32, frameSize)
		if i >= 20 && i < 120 {
			for j := range samples {
				samples[j] = float32(0.3 * math.Sin(2*math.Pi*220*float64(i*frameSize+j)/float64(sampleRate)))
			}
		}
		frames = append(frames, &rtc.AudioFrame{Samples: samples, SampleRate: sampleRate})
	}
	return frames, nil
}

func runTranscribe(filePath, provider, url, token, lang string, logger *slog.Logger) error {
	if filePath == "" {
		return fmt.Errorf("--file is required")
	}

	var transcriber stt.STT
	switch provider {
	case "fake":
		transcriber = sttfake.NewFakeSTT("это тестовая расшифровка")
	case "remote":
		var err error
		transcriber, err = sttremote.New(sttremote.Config{
			URL:      url,
			Token:    token,
			Language: lang,
			Logger:   logger,
		})
		if err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown STT provider %q (want fake or remote)", provider)
	}

	recording, err := wav.ReadFile(filePath)
	if err != nil {
		return fmt.Errorf("read %s: %w", filePath, err)
	}
	logger.Info("WAV file loaded",
		slog.Int("sample_rate", recording.SampleRate),
		slog.Duration("duration", recording.Duration()))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	result, err := transcriber.Transcribe(ctx, recording)
	if err != nil {
		return fmt.Errorf("transcription failed: %w", err)
	}
	if result.Text == "" {
		fmt.Println("(nothing intelligible)")
		return nil
	}

	fmt.Printf("Transcript: %s\n", result.Text)
	return nil
}

type podcastOptions struct {
	topic      string
	rounds     int
	noAudio    bool
	outputDir  string
	storeDir   string
	configPath string
	backend    string
	llmURL     string
	model      string
}

func runPodcast(ctx context.Context, opts podcastOptions, logger *slog.Logger) error {
	if opts.topic == "" {
		return fmt.Errorf("--topic is required")
	}

	backend, err := newLLMBackend(opts.backend, opts.llmURL, opts.model, logger)
	if err != nil {
		return err
	}

	roster := podcast.DefaultRoster()
	if opts.configPath != "" {
		data, err := os.ReadFile(opts.configPath)
		if err != nil {
			return fmt.Errorf("read participants: %w", err)
		}
		var configs []podcast.ProfileConfig
		if err := json.Unmarshal(data, &configs); err != nil {
			return fmt.Errorf("parse participants: %w", err)
		}
		roster = podcast.FromConfig(configs)
	}

	var store *podcast.Store
	if opts.storeDir != "" {
		store, err = podcast.OpenStore(opts.storeDir)
		if err != nil {
			return err
		}
		defer store.Close()
	}

	orch, err := podcast.New(podcast.Config{
		LLM:       backend,
		TTS:       ttsfake.NewFakeTTS(),
		Roster:    roster,
		Store:     store,
		OutputDir: opts.outputDir,
		NoAudio:   opts.noAudio,
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if err := orch.Start(ctx, opts.topic, opts.rounds); err != nil {
		return err
	}

	runErr := orch.Run(ctx)
	// Save whatever was recorded even if the run failed partway.
	if err := orch.SaveResults(); err != nil {
		logger.Error("Failed to save results", slog.String("error", err.Error()))
		if runErr == nil {
			return err
		}
	}
	if runErr != nil {
		return runErr
	}

	fmt.Printf("Podcast complete: %d utterances in %s\n",
		len(orch.Session().Transcript), orch.OutputDir())
	return nil
}

func init() {
	assistantRunCmd.Flags().StringSlice("keywords", []string{"иннокентий", "кентий"}, "Wake keywords (substring match)")
	assistantRunCmd.Flags().Duration("pause", 1500*time.Millisecond, "Silence duration that ends a recording")
	assistantRunCmd.Flags().Duration("max-recording", 15*time.Second, "Hard recording ceiling")
	assistantRunCmd.Flags().String("llm", "fake", "LLM backend (fake, lmstudio or none for echo mode)")
	assistantRunCmd.Flags().String("llm-url", "", "OpenAI-compatible base URL (default LM Studio local)")
	assistantRunCmd.Flags().String("model", "", "Model name for the LLM backend")
	assistantRunCmd.Flags().String("file", "", "WAV file to use as microphone input")
	assistantRunCmd.Flags().String("out", "", "Write the reply audio to this WAV file")
	assistantRunCmd.Flags().Bool("metrics", false, "Enable metrics server on port 8080")

	transcribeCmd.Flags().String("file", "", "Path to WAV file to transcribe")
	transcribeCmd.Flags().String("provider", "fake", "STT provider (fake or remote)")
	transcribeCmd.Flags().String("url", "", "Recognition gateway WebSocket URL (remote provider)")
	transcribeCmd.Flags().String("token", "", "Recognition gateway token")
	transcribeCmd.Flags().String("lang", "ru-RU", "Recognition language")
	transcribeCmd.MarkFlagRequired("file")

	podcastRunCmd.Flags().String("topic", "", "Podcast topic")
	podcastRunCmd.Flags().Int("rounds", 3, "Number of discussion rounds")
	podcastRunCmd.Flags().Bool("no-audio", false, "Skip synthesis, produce text only")
	podcastRunCmd.Flags().String("output-dir", "output", "Base directory for transcripts and audio")
	podcastRunCmd.Flags().String("store-dir", "", "Directory for the session database (optional)")
	podcastRunCmd.Flags().String("participants", "", "JSON file with participant profiles")
	podcastRunCmd.Flags().String("llm", "lmstudio", "LLM backend (fake or lmstudio)")
	podcastRunCmd.Flags().String("llm-url", "", "OpenAI-compatible base URL (default LM Studio local)")
	podcastRunCmd.Flags().String("model", "", "Model name for the LLM backend")
	podcastRunCmd.MarkFlagRequired("topic")

	podcastListCmd.Flags().String("store-dir", "sessions", "Directory of the session database")

	assistantCmd.AddCommand(assistantRunCmd)
	podcastCmd.AddCommand(podcastRunCmd, podcastListCmd, podcastVoicesCmd)
	rootCmd.AddCommand(versionCmd, assistantCmd, transcribeCmd, podcastCmd)
}

func main() {
	// A .env in the working directory supplies LLM and gateway settings;
	// absence is fine.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
