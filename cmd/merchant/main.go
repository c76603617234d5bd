package main

import (
	"flag"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/agentic-commerce/shopping-assistant/internal/merchant"
)

func main() {
	port := flag.Int("port", 8081, "Port to listen on")
	requireOTP := flag.Bool("require-otp", false, "Demand a one-time password before accepting payment")
	logLevel := flag.String("log-level", "info", "Log level (debug, info, warn, error)")
	flag.Parse()

	_ = godotenv.Load()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	parsed, err := logrus.ParseLevel(*logLevel)
	if err != nil {
		logger.Warnf("Invalid log level: %s, using 'info'", *logLevel)
		parsed = logrus.InfoLevel
	}
	logger.SetLevel(parsed)

	agent := merchant.New(logger)
	agent.RequireOTP = *requireOTP

	addr := fmt.Sprintf(":%d", *port)
	logger.Infof("Merchant agent %s listening on %s", agent.Name, addr)
	if err := agent.Router().Run(addr); err != nil {
		logger.Fatalf("Merchant agent stopped: %v", err)
	}
}
