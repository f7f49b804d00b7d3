// Command hirewise-chat is a minimal terminal client for one HireWise
// conversation: it prints the day-grouped history, streams live updates,
// and sends each stdin line as a text message.
//
// Configuration comes from flags or the environment (a .env file is
// loaded when present): HIREWISE_API, HIREWISE_WS, HIREWISE_TOKEN,
// HIREWISE_USER_ID.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	hirewise "github.com/hirewise/hirewise-go-sdk"
)

func main() {
	_ = godotenv.Load()

	var (
		apiURL = flag.String("api", envOr("HIREWISE_API", hirewise.DefaultAPIServer), "REST API base URL")
		wsURL  = flag.String("ws", envOr("HIREWISE_WS", "wss://api.hirewise.app"), "WebSocket base URL")
		token  = flag.String("token", os.Getenv("HIREWISE_TOKEN"), "bearer token")
		userID = flag.Int64("user", envInt("HIREWISE_USER_ID"), "authenticated user id")
	)
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: hirewise-chat [flags] <conversation-id>")
		os.Exit(2)
	}
	convID, err := strconv.ParseInt(flag.Arg(0), 10, 64)
	if err != nil || convID <= 0 {
		fmt.Fprintf(os.Stderr, "bad conversation id %q\n", flag.Arg(0))
		os.Exit(2)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	auth := hirewise.NewAuthStore()
	auth.SetSession(*token, *userID)

	api := hirewise.NewAPIClient(*apiURL, auth)
	cache := hirewise.NewHistoryCache(api)
	session := hirewise.NewSession(*wsURL, auth, cache, logger)
	outbox := hirewise.NewOutbox(api, logger)

	session.OnUpdate(func(id int64, msgs []hirewise.Message) {
		render(msgs, auth.UserID())
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	msgs, err := session.Select(ctx, convID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "select conversation: %v (state %s)\n", err, session.ConnectionState())
		if msgs == nil {
			os.Exit(1)
		}
	}
	defer session.Deselect()
	render(msgs, auth.UserID())

	lines := make(chan string)
	go func() {
		sc := bufio.NewScanner(os.Stdin)
		for sc.Scan() {
			lines <- sc.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			if _, err := outbox.SendText(ctx, convID, line); err != nil {
				fmt.Fprintf(os.Stderr, "send: %v\n", err)
			}
		}
	}
}

func render(msgs []hirewise.Message, selfID int64) {
	for _, g := range hirewise.GroupByDay(msgs, selfID) {
		fmt.Printf("--- %s ---\n", g.Day)
		for _, m := range g.Messages {
			who := m.SenderName
			if m.Mine {
				who = "me"
			}
			switch m.MessageKind {
			case hirewise.KindText:
				fmt.Printf("[%s] %s: %s\n", m.CreatedAt.Local().Format("15:04"), who, m.Body)
			default:
				name := ""
				if m.Attachment != nil {
					name = m.Attachment.Name
				}
				fmt.Printf("[%s] %s: (%s) %s\n", m.CreatedAt.Local().Format("15:04"), who, m.MessageKind, name)
			}
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string) int64 {
	v, _ := strconv.ParseInt(os.Getenv(key), 10, 64)
	return v
}
