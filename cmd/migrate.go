package cmd

import (
	"log"

	"slumberpod/config"
	"slumberpod/db"
	"slumberpod/model"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "初始化数据库表结构",
	Long:  `建立核心业务表(原生SQL)并对睡眠记录/闹钟/帖子表执行GORM自动迁移，不启动服务器`,
	Run: func(cmd *cobra.Command, args []string) {
		cfg := config.Load()

		conn, err := db.Connect(cfg)
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer conn.Close()

		if err := db.InitSchema(conn); err != nil {
			log.Fatalf("Failed to initialize schema: %v", err)
		}
		log.Println("Core schema initialized")

		gdb, err := db.ConnectGorm(cfg)
		if err != nil {
			log.Fatalf("Failed to connect gorm: %v", err)
		}
		if err := db.AutoMigrate(gdb, &model.SleepRecord{}, &model.Alarm{}, &model.Post{}); err != nil {
			log.Fatalf("Failed to run auto migration: %v", err)
		}
		log.Println("Auto migration complete")
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
