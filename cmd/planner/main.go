package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/olekukonko/tablewriter"

	"planner-client/api"
	"planner-client/auth"
	"planner-client/conversation"
	"planner-client/directory"
	"planner-client/internal"
	"planner-client/moderation"
	"planner-client/notification"
	"planner-client/repositories"
	"planner-client/runtime/workers"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Fatal error: %v\n", err)
		os.Exit(1)
	}
}

// run initializes all components, manages their lifecycle, and
// centralizes error reporting so every defer executes before the process
// exits.
func run() error {
	username := flag.String("user", "", "account username")
	password := flag.String("password", "", "account password")
	peer := flag.String("peer", "", "peer username to chat with")
	flag.Parse()

	// 1. Configuration & Logger
	_ = godotenv.Load()
	var config internal.Config
	if _, err := env.UnmarshalFromEnviron(&config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	log := logs.GetLoggerFromString(config.LogLevel)

	// 2. Local session storage (BadgerDB)
	db, err := badger.Open(badger.DefaultOptions(config.BadgerFilepath).
		WithLoggingLevel(badger.WARNING))
	if err != nil {
		return fmt.Errorf("session storage opening failed: %w", err)
	}
	defer func() {
		log.Info("Closing session storage...")
		_ = db.Close()
	}()

	// 3. Transport, session, auth
	sessionRepo := repositories.NewSessionRepository(db, log)
	client := api.NewClient(log, config.APIBaseURL, sessionRepo, config.RequestTimeout)
	session := auth.NewSession(log)
	authService := auth.NewAuthService(client, session, sessionRepo, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	resumed, err := authService.Resume()
	if err != nil {
		return fmt.Errorf("session resume failed: %w", err)
	}
	if !resumed {
		if *username == "" || *password == "" {
			return fmt.Errorf("no stored session: -user and -password are required")
		}
		if err := authService.Login(ctx, *username, *password); err != nil {
			return fmt.Errorf("login failed: %w", err)
		}
	}
	selfID := session.UserName()

	// 4. Permission gate: messaging must be visible for this role.
	if !session.CanDisplay(auth.FeatureMessaging) {
		return fmt.Errorf("account %q has no access to messaging", selfID)
	}

	// 5. Contact directory
	dir := directory.NewDirectory(log, client)
	if err := dir.Refresh(ctx, selfID); err != nil {
		return fmt.Errorf("loading contacts: %w", err)
	}
	printContacts(selfID, dir)

	if *peer == "" {
		log.Info("No -peer given, exiting after contact listing")
		return nil
	}

	// 6. Outbound content filter
	var filter *moderation.Filter
	if len(config.BannedWords) > 0 {
		mask, err := internal.CharacterRune(config.CharReplacement)
		if err != nil {
			return err
		}
		if filter, err = moderation.NewFilter(config.BannedWords, mask); err != nil {
			return fmt.Errorf("building content filter: %w", err)
		}
	}

	// 7. Conversation + notification workers under supervision
	store := conversation.NewStore(log, client, filter, config.ReconcileDelay)
	if err := store.Open(selfID, *peer); err != nil {
		return err
	}
	watcher := conversation.NewWatcher(log, store, config.PollInterval)
	notifications := notification.NewStore(log, client)
	refresher := workers.NewNotificationRefreshWorker(log, notifications, selfID, config.NotificationRefreshInterval)

	sup := workers.NewSupervisor(log, config.RestartInterval)
	done := make(chan struct{})
	go func() {
		sup.Add(watcher, refresher).Run(ctx)
		close(done)
	}()
	defer func() {
		sup.Stop()
		<-done
	}()

	log.Info("Chatting", "self", selfID, "peer", *peer)
	fmt.Println("Type a message and press Enter to send; an empty line prints the conversation; Ctrl+C quits.")

	lines := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
		close(lines)
	}()

	for {
		select {
		case <-ctx.Done():
			log.Info("Stopping client...")
			return nil
		case line, ok := <-lines:
			if !ok {
				return nil
			}
			if strings.TrimSpace(line) == "" {
				printConversation(selfID, store)
				continue
			}
			if !session.CanEdit(auth.FeatureMessaging) {
				fmt.Println("(read-only access: sending is disabled)")
				continue
			}
			if _, err := store.Send(ctx, line); err != nil {
				// User-initiated mutation: surface the message, keep the input.
				fmt.Printf("Send failed: %v (message not sent: %q)\n", err, line)
				continue
			}
			watcher.Focus()
		}
	}
}

func printContacts(selfID string, dir *directory.Directory) {
	table := tablewriter.NewWriter(os.Stdout)
	table.SetHeader([]string{"", "Contact", "Last message", "At"})
	table.SetAutoWrapText(false)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetBorder(false)

	for _, entry := range dir.Entries(selfID) {
		badge := color.HEX(strings.TrimPrefix(entry.Identity.Color, "#")).Sprint(entry.Identity.Initial)
		name := entry.Contact.FullName
		if name == "" {
			name = entry.Contact.UserName
		}
		table.Append([]string{badge, name, entry.Preview.LastMessage, entry.Preview.LastMessageAt})
	}
	table.Render()
}

func printConversation(selfID string, store *conversation.Store) {
	for _, m := range conversation.Ascending(store.Messages()) {
		marker := "  "
		if m.SenderID == selfID {
			marker = "> "
		}
		fmt.Printf("%s[%s] %s: %s\n", marker, m.CreatedAt, m.SenderID, m.Content)
	}
}
