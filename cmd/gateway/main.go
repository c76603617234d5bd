package main

import (
	"flag"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/api"
	"github.com/agentic-commerce/shopping-assistant/internal/bus"
	"github.com/agentic-commerce/shopping-assistant/internal/chat"
	"github.com/agentic-commerce/shopping-assistant/internal/config"
	"github.com/agentic-commerce/shopping-assistant/internal/logger"
	"github.com/agentic-commerce/shopping-assistant/internal/planner"
	"github.com/agentic-commerce/shopping-assistant/internal/wallet"
)

func main() {
	configPath := flag.String("config", "config.yaml", "Path to configuration file")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	appConfig, err := config.LoadConfig(*configPath, log)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level := *logLevel
	if level == "" {
		level = appConfig.Log.Level
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		log.Warnf("Invalid log level: %s, using 'info'", level)
		parsed = logrus.InfoLevel
	}
	log.SetLevel(parsed)

	agentURL := config.NewSetting(appConfig.Merchant.SettingPath, appConfig.Merchant.URL, log)

	factory := func(eventBus *bus.EventBus) (*chat.Engine, error) {
		p, err := planner.NewOpenAIPlanner(planner.OpenAIConfig{
			APIKey:      appConfig.LLM.APIKey,
			BaseURL:     appConfig.LLM.BaseURL,
			Model:       appConfig.LLM.Model,
			MaxTokens:   appConfig.LLM.MaxTokens,
			Temperature: appConfig.LLM.Temperature,
		}, log)
		if err != nil {
			return nil, err
		}
		sessionLog := logrus.New()
		sessionLog.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
		sessionLog.SetLevel(parsed)
		sessionLog.AddHook(logger.NewBusLogHook(eventBus, "chat"))
		return chat.NewEngine(p, &wallet.MockBroker{}, eventBus, sessionLog), nil
	}

	gw := api.NewGateway(appConfig.HTTP.Port, factory, agentURL, log)
	if err := gw.Run(); err != nil {
		log.Fatalf("Gateway stopped: %v", err)
	}
}
