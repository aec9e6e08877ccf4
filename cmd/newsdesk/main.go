package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/internal/config"
	"newsdesk/internal/headlines"
	"newsdesk/internal/newsapi"
	web "newsdesk/internal/server"
	"newsdesk/internal/store"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "dev"

	logger     *zap.Logger
	configPath string
	addr       string

	region   string
	category string
	page     int
)

var rootCmd = &cobra.Command{
	Use:   "newsdesk",
	Short: "newsdesk - top headlines by region and category",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the headlines web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if addr == "" {
			addr = cfg.Addr
		}

		svc, st, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		srv, err := web.NewServer(svc, logger)
		if err != nil {
			return fmt.Errorf("loading templates: %w", err)
		}

		// Handle shutdown signals
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			<-sigChan
			logger.Info("Shutting down...")
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := srv.Stop(ctx); err != nil {
				logger.Error("Shutdown failed", zap.Error(err))
			}
		}()

		if err := srv.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		logger.Info("Goodbye!")
		return nil
	},
}

var headlinesCmd = &cobra.Command{
	Use:   "headlines",
	Short: "Print one page of headlines",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}

		svc, st, err := buildService(cfg)
		if err != nil {
			return err
		}
		defer st.Close()

		articles := svc.GetArticles(cmd.Context(), region, category, page)
		if len(articles) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No headlines available right now.")
			return nil
		}
		for i, a := range articles {
			fmt.Fprintf(cmd.OutOrStdout(), "%d. %s\n", i+1, a.Title)
			if a.Source != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "   %s %s\n", a.Source, a.PublishedAt)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "   %s\n", a.URL)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "newsdesk %s\n", version)
	},
}

func buildService(cfg *config.Config) (*headlines.Service, store.Store, error) {
	st, err := store.Open(store.Options{
		Backend:    cfg.Cache.Backend,
		MaxEntries: cfg.Cache.MaxEntries,
		RedisAddr:  cfg.Cache.RedisAddr,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init store: %w", err)
	}

	client := newsapi.NewClient(
		cfg.NewsAPI.BaseURL,
		cfg.Token(),
		cfg.NewsAPI.PageSize,
		newsapi.NewHTTPGetter(cfg.HTTPTimeout()),
	)
	svc := headlines.NewService(st, client, logger, headlines.Options{
		TTL:            cfg.CacheTTL(),
		CoalesceMisses: cfg.Cache.CoalesceMisses,
	})

	logger.Info("Headlines service ready",
		zap.String("cache", cfg.Cache.Backend),
		zap.Duration("ttl", cfg.CacheTTL()),
		zap.Int("max_entries", cfg.Cache.MaxEntries))
	return svc, st, nil
}

func main() {
	var err error
	logger, err = zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	serveCmd.Flags().StringVar(&addr, "addr", "", "http listen address (overrides config)")
	headlinesCmd.Flags().StringVar(&region, "region", "", "region code, e.g. us or gb")
	headlinesCmd.Flags().StringVar(&category, "category", "", "category, e.g. business")
	headlinesCmd.Flags().IntVar(&page, "page", 1, "page number")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(headlinesCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
