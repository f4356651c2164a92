package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/trungvq/workmate/internal/config"
	"github.com/trungvq/workmate/internal/logger"
)

var (
	configPath string
	verbose    bool
	agentType  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "workmate",
	Short: "Trợ lý cá nhân cho Google Tasks, Calendar và Gmail",
	Long: `workmate là một trợ lý hội thoại quản lý Google Tasks, Google Calendar
và Gmail qua một vòng lặp gọi công cụ.

Usage:
  workmate chat              Trò chuyện trực tiếp trong terminal
  workmate serve             Chạy HTTP server cho các phiên hội thoại
  workmate tools             Liệt kê các công cụ đã đăng ký
  workmate version           Thông tin phiên bản`,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if configPath != "" {
			os.Setenv("CONFIG_PATH", configPath)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			logger.L.Warn("could not load config; using defaults", "error", err)
			cfg = config.Default()
		}

		if verbose {
			cfg.LogLevel = "debug"
		}
		logger.SetLevel(cfg.LogLevel)

		if agentType != "" {
			cfg.Agent.Type = agentType
		}
		return nil
	},

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Đường dẫn file cấu hình")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Bật log chi tiết")
	rootCmd.PersistentFlags().StringVarP(&agentType, "agent", "a", "", "Loại agent: all, tasks, calendar, gmail")

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(toolsCmd)
	rootCmd.AddCommand(versionCmd)
}
