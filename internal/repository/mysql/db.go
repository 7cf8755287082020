package mysql

import (
	"fmt"

	"Confizz/internal/model"

	gormmysql "gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Open 按 driver 打开数据库；sqlite 只用于本地开发和测试
func Open(driver, dsn string) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch driver {
	case "mysql":
		dialector = gormmysql.Open(dsn)
	case "sqlite":
		dialector = sqlite.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		TranslateError: true,
		Logger:         gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if driver == "sqlite" {
		// sqlite 单写者，:memory: 每个连接都是独立的库
		sqlDB.SetMaxOpenConns(1)
		// 外键约束默认关闭，连接只有一个，打开一次即可
		if err := db.Exec("PRAGMA foreign_keys = ON").Error; err != nil {
			return nil, fmt.Errorf("enable sqlite foreign keys: %w", err)
		}
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.Confession{},
		&model.Comment{},
	); err != nil {
		return err
	}

	// 社区名区分大小写；mysql 默认排序规则不区分，唯一索引会把 Books 和 books 当成同一个
	if db.Dialector.Name() == "mysql" {
		if err := db.Exec("ALTER TABLE communities MODIFY name VARCHAR(100) NOT NULL COLLATE utf8mb4_bin").Error; err != nil {
			return fmt.Errorf("set community name collation: %w", err)
		}
	}
	return nil
}
