// toolchat is an interactive chat assistant with web search, Wikipedia,
// SQL, weather, and translation tools, plus an optional per-turn
// response filter.
package main

import (
	"bufio"
	"context"
	"database/sql"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/effective-security/x/values"
	"github.com/effective-security/xlog"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"

	"github.com/saahil/toolcalling/assistants"
	"github.com/saahil/toolcalling/callbacks"
	"github.com/saahil/toolcalling/chat"
	"github.com/saahil/toolcalling/chatmodel"
	"github.com/saahil/toolcalling/pkg/llmfactory"
	"github.com/saahil/toolcalling/pkg/llms"
	"github.com/saahil/toolcalling/store"
	"github.com/saahil/toolcalling/tools"
	"github.com/saahil/toolcalling/tools/sqlquery"
	"github.com/saahil/toolcalling/tools/translate"
	"github.com/saahil/toolcalling/tools/weather"
	"github.com/saahil/toolcalling/tools/websearch"
	"github.com/saahil/toolcalling/tools/wikipedia"
)

var logger = xlog.NewPackageLogger("github.com/saahil/toolcalling", "toolchat")

func main() {
	cfgFile := flag.String("cfg", "", "configuration file")
	chatID := flag.String("chat-id", "", "conversation ID to resume, a new one is generated when empty")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	xlog.SetFormatter(xlog.NewStringFormatter(os.Stderr))
	if *debug {
		xlog.SetGlobalLogLevel(xlog.DEBUG)
	} else {
		xlog.SetGlobalLogLevel(xlog.INFO)
	}

	if err := run(*cfgFile, *chatID); err != nil {
		fmt.Fprintf(os.Stderr, "toolchat: %+v\n", err)
		os.Exit(1)
	}
}

func run(cfgFile, chatID string) error {
	cfg, err := loadAppConfig(cfgFile)
	if err != nil {
		return err
	}

	factory := llmfactory.New(&cfg.LLM)
	model, err := factory.AssistantModel("assistant", cfg.Assistant.Model)
	if err != nil {
		return err
	}
	filterModel, err := factory.FilterModel("filter", cfg.Assistant.FilterModel)
	if err != nil {
		return err
	}

	registry, cleanup, err := buildRegistry(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	st := buildStore(cfg)

	var opts []assistants.Option
	opts = append(opts,
		assistants.WithMessageStore(st),
		assistants.WithCallback(callbacks.NewPackageLogger(logger)),
	)
	if cfg.Assistant.Model != "" {
		opts = append(opts, assistants.WithModel(cfg.Assistant.Model))
	}
	if cfg.Assistant.MaxTokens > 0 {
		opts = append(opts, assistants.WithMaxTokens(cfg.Assistant.MaxTokens))
	}
	opts = append(opts, assistants.WithTemperature(cfg.Assistant.Temperature))

	assistant := assistants.NewAssistant(model, cfg.Assistant.SystemPrompt, registry, opts...)

	var filterOpts []llms.CallOption
	filterOpts = append(filterOpts, llms.WithTemperature(cfg.Assistant.Temperature))
	filter := chat.NewFilter(filterModel, filterOpts...)

	if chatID == "" {
		chatID = chatmodel.NewChatID()
	}
	session := chat.NewSession(chatID)
	svc := chat.NewService(assistant, filter, st, session)

	logger.KV(xlog.INFO,
		"status", "started",
		"chat_id", chatID,
		"model", model.GetName(),
		"tools", registry.Names())

	return repl(svc, chatID)
}

// buildRegistry registers the tools that have the required settings.
func buildRegistry(cfg *appConfig) (*tools.Registry, func(), error) {
	var list []tools.ITool
	cleanup := func() {}

	if key := cfg.Tools.WebSearch.APIKey; key != "" {
		t, err := websearch.New(key)
		if err != nil {
			return nil, cleanup, err
		}
		if cfg.Tools.WebSearch.BaseURL != "" {
			t = t.WithBaseURL(cfg.Tools.WebSearch.BaseURL)
		}
		list = append(list, t)
	}

	if cfg.Tools.Wikipedia.Enabled {
		t, err := wikipedia.New()
		if err != nil {
			return nil, cleanup, err
		}
		if cfg.Tools.Wikipedia.BaseURL != "" {
			t = t.WithBaseURL(cfg.Tools.Wikipedia.BaseURL)
		}
		list = append(list, t)
	}

	if key := cfg.Tools.Weather.APIKey; key != "" {
		t, err := weather.New(key)
		if err != nil {
			return nil, cleanup, err
		}
		if cfg.Tools.Weather.BaseURL != "" {
			t = t.WithBaseURL(cfg.Tools.Weather.BaseURL)
		}
		list = append(list, t)
	}

	if cfg.Tools.Translate.BaseURL != "" {
		t, err := translate.New(cfg.Tools.Translate.BaseURL)
		if err != nil {
			return nil, cleanup, err
		}
		if cfg.Tools.Translate.APIKey != "" {
			t = t.WithAPIKey(cfg.Tools.Translate.APIKey)
		}
		list = append(list, t)
	}

	if cfg.Tools.SQL.Driver != "" && cfg.Tools.SQL.DataSource != "" {
		db, err := sql.Open(cfg.Tools.SQL.Driver, cfg.Tools.SQL.DataSource)
		if err != nil {
			return nil, cleanup, err
		}
		cleanup = func() { _ = db.Close() }
		t, err := sqlquery.New(db)
		if err != nil {
			return nil, cleanup, err
		}
		list = append(list, t)
	}

	registry, err := tools.NewRegistry(list...)
	if err != nil {
		return nil, cleanup, err
	}
	return registry, cleanup, nil
}

func buildStore(cfg *appConfig) store.MessageStore {
	window := values.NumbersCoalesce(cfg.Store.Window, store.DefaultWindow)
	if cfg.Store.Type == "redis" {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Store.Redis.Addr,
			Password: cfg.Store.Redis.Password,
			DB:       cfg.Store.Redis.DB,
		})
		return store.NewRedisStore(client, cfg.Store.Redis.Prefix, window)
	}
	return store.NewMemoryStore(window)
}

func repl(svc *chat.Service, chatID string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigch := make(chan os.Signal, 1)
	signal.Notify(sigch, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigch)
	go func() {
		<-sigch
		fmt.Println("\nExiting...")
		cancel()
	}()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("Chat %s (Ctrl-C to quit, /reset to clear the conversation)\n", chatID)

	inputCh := make(chan string)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		fmt.Print("query> ")
		query, ok := readLine(ctx, inputCh)
		if !ok {
			return scanner.Err()
		}
		query = strings.TrimSpace(query)
		if query == "" {
			continue
		}
		if query == "/reset" {
			if err := svc.Reset(ctx); err != nil {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			} else {
				fmt.Println("Conversation cleared.")
			}
			continue
		}

		fmt.Print("filter (optional)> ")
		instruction, ok := readLine(ctx, inputCh)
		if !ok {
			return scanner.Err()
		}

		turn, err := svc.Submit(ctx, query, strings.TrimSpace(instruction))
		if err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Println(turn.FilteredAnswer)
	}
}

func readLine(ctx context.Context, inputCh <-chan string) (string, bool) {
	select {
	case <-ctx.Done():
		return "", false
	case line, ok := <-inputCh:
		return line, ok
	}
}
