package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/bus"
	"github.com/agentic-commerce/shopping-assistant/internal/chat"
	"github.com/agentic-commerce/shopping-assistant/internal/config"
	"github.com/agentic-commerce/shopping-assistant/internal/planner"
	"github.com/agentic-commerce/shopping-assistant/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	mockWallet := flag.Bool("mock-wallet", true, "Use the mock credential broker")
	flag.Parse()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	appConfig, err := config.LoadConfig(*configPath, logger)
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	level := *logLevel
	if level == "" {
		level = appConfig.Log.Level
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logger.Warnf("Invalid log level: %s, using 'info'", level)
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	logger.Info("Starting shopping assistant...")

	p, err := planner.NewOpenAIPlanner(planner.OpenAIConfig{
		APIKey:      appConfig.LLM.APIKey,
		BaseURL:     appConfig.LLM.BaseURL,
		Model:       appConfig.LLM.Model,
		MaxTokens:   appConfig.LLM.MaxTokens,
		Temperature: appConfig.LLM.Temperature,
	}, logger)
	if err != nil {
		logger.Fatalf("Failed to create planner: %v", err)
	}

	var broker wallet.Broker = &wallet.MockBroker{}
	if !*mockWallet {
		logger.Fatal("No platform credential broker available; run with -mock-wallet")
	}

	eventBus := bus.NewEventBus(logger)
	defer eventBus.Stop()
	eventBus.Subscribe(bus.EventStatusUpdate, func(event bus.Event) {
		if status, _ := event.Payload["status"].(string); status != "" {
			fmt.Printf("\r\033[2K[%s]", status)
		}
	})

	engine := chat.NewEngine(p, broker, eventBus, logger)

	agentURL := config.NewSetting(appConfig.Merchant.SettingPath, appConfig.Merchant.URL, logger)
	agentURL.Subscribe(func(url string) {
		if err := engine.SetAgentURL(context.Background(), url); err != nil {
			fmt.Printf("\nCould not connect to %s: %v\n", url, err)
		} else {
			fmt.Printf("\nConnected to merchant agent at %s\n", url)
		}
	})

	ctx := context.Background()
	if err := engine.SetAgentURL(ctx, agentURL.Get()); err != nil {
		fmt.Printf("Could not connect to the merchant agent at %s.\n", agentURL.Get())
		fmt.Println("Set a reachable URL with /url <address> to start shopping.")
	} else {
		fmt.Printf("Connected to merchant agent at %s\n", agentURL.Get())
	}

	fmt.Println("Type a message to start shopping, /url <address> to change the merchant, /quit to exit.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "/quit":
			return
		case strings.HasPrefix(line, "/url "):
			agentURL.Set(strings.TrimSpace(strings.TrimPrefix(line, "/url ")))
			continue
		}

		reply, err := engine.Respond(ctx, line)
		fmt.Print("\r\033[2K")
		if err != nil {
			logger.Errorf("Turn failed: %v", err)
			fmt.Println("An error occurred.")
			continue
		}
		fmt.Println(reply)
	}
}
