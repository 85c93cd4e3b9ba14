package main

import (
	"errors"
	"flag"
	"log"
	"fortune_shop/internal/pkg/config"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// 用法: migrate [-dir migrations] [-down] [-force N]
func main() {
	dir := flag.String("dir", "migrations", "migration files directory")
	down := flag.Bool("down", false, "roll back one step")
	force := flag.Int("force", -1, "force the schema version (clears the dirty flag)")
	flag.Parse()

	config.LoadConfig()

	m, err := migrate.New("file://"+*dir, config.GlobalConfig.Database.URL())
	if err != nil {
		log.Fatal(err)
	}
	defer m.Close()

	switch {
	case *force >= 0:
		// dirty 状态需要人工确认后强制指定版本
		if err := m.Force(*force); err != nil {
			log.Fatalf("Failed to force version: %v", err)
		}
		log.Printf("Forced version %d", *force)
		return
	case *down:
		err = m.Steps(-1)
	default:
		err = m.Up()
	}

	var dirty migrate.ErrDirty
	switch {
	case err == nil, errors.Is(err, migrate.ErrNoChange):
	case errors.As(err, &dirty):
		log.Fatalf("Database is dirty at version %d, fix it and rerun with -force %d", dirty.Version, dirty.Version-1)
	default:
		log.Fatal(err)
	}

	version, isDirty, _ := m.Version()
	log.Printf("Migration successful, version=%d dirty=%v", version, isDirty)
}
