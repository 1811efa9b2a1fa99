package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"tradepost.app/messenger/common/logger"
	"tradepost.app/messenger/common/otel"
	"tradepost.app/messenger/core/config"
	"tradepost.app/messenger/internal/client"
	"tradepost.app/messenger/internal/model"
	"tradepost.app/messenger/internal/notify"
	"tradepost.app/messenger/internal/push"
	syncer "tradepost.app/messenger/internal/sync"
)

// The client daemon runs the full sync engine against a messenger server:
// it opens one conversation, keeps its timeline converged through polling
// and push, refreshes the conversation index on activity, and prints banner
// notifications for background conversations.
func main() {
	conversationID := flag.Int64("conversation", 0, "conversation id to open (0 = most recent)")
	flag.Parse()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(config.ServiceTypeClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)
	slog.InfoContext(ctx, "messenger client starting", "server", cfg.Client.ServerURL)

	redisOpts, err := redis.ParseURL(cfg.Push.RedisURL)
	if err != nil {
		slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
		os.Exit(1)
	}
	redisClient := redis.NewClient(redisOpts)
	defer redisClient.Close()

	backend := client.NewHTTPBackend(cfg.Client.ServerURL, cfg.Client.AuthToken)
	subscriber := push.NewRedisSubscriber(redisClient, cfg.Push.ChannelPrefix, cfg.Push.ActivityChannel)
	gate := syncer.NewGate()

	viewerID, err := backend.CurrentUserID(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "cannot load screen: authentication failed", "error", err)
		os.Exit(1)
	}

	index := syncer.NewConversationIndex(viewerID, backend)
	notifier := notify.New(gate, terminalPresenter{}, viewerID)

	refreshIndex := func(ctx context.Context) {
		convs, err := backend.FetchConversations(ctx)
		if err != nil {
			slog.WarnContext(ctx, "conversation list refresh failed", "error", err)
			return
		}
		index.Rebuild(ctx, convs)
	}
	refreshIndex(ctx)

	target := *conversationID
	if target == 0 {
		summaries := index.Summaries()
		if len(summaries) == 0 {
			slog.ErrorContext(ctx, "no conversations to open")
			os.Exit(1)
		}
		target = summaries[0].ID
	}

	session := syncer.NewSession(syncer.SessionConfig{
		Backend:      backend,
		Subscriber:   subscriber,
		Gate:         gate,
		PollInterval: cfg.Client.PollInterval,
		OnTimelineChanged: func(msgs []model.Message) {
			render(msgs, viewerID)
		},
	})

	// List screen updates ride the activity stream; banners go through the
	// notifier, which consults the gate for the on-screen conversation.
	watcher := syncer.NewIndexWatcher(subscriber, func(ctx context.Context, ev syncer.PushEvent) {
		refreshIndex(ctx)
		notifier.HandleMessage(ctx, ev)
	})
	watcher.Start(ctx)
	defer watcher.Stop()

	if err := session.Navigate(ctx, target); err != nil {
		slog.ErrorContext(ctx, "failed to open conversation", "error", err)
		os.Exit(1)
	}
	defer session.Close()

	<-ctx.Done()

	slog.InfoContext(context.Background(), "shutting down...")

	if telemetry != nil {
		if err := telemetry.Shutdown(context.Background()); err != nil {
			slog.ErrorContext(context.Background(), "otel shutdown error", "error", err)
		}
	}
}

func render(msgs []model.Message, viewerID int64) {
	fmt.Println("----")
	for _, m := range msgs {
		who := "them"
		if m.SenderID == viewerID {
			who = "me"
		}
		marker := ""
		if m.LocalOnly {
			marker = " (sending...)"
		}
		fmt.Printf("[%s] %s: %s%s\n", m.CreatedAt.Format("15:04:05"), who, m.Preview(), marker)
	}
}

type terminalPresenter struct{}

func (terminalPresenter) Present(_ context.Context, banner notify.Banner) {
	fmt.Printf("\a[notification] conversation %d: %s\n", banner.ConversationID, banner.Body)
}
