// Command motion.report runs the humanoid motion service: the procedural
// gesture synthesiser, the live capture session control surface, and the
// sqlite-backed clip library, behind a small HTTP API.
//
// Without a host application the service drives an in-memory rig from its
// own tick loop, which is enough for the estimator bridge and clip tooling;
// embedding applications supply their own scene.RigInstance and
// scene.TickScheduler instead.
package main

import (
	"context"
	"database/sql"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	_ "modernc.org/sqlite"

	"github.com/banshee-data/motion.report/internal/api"
	"github.com/banshee-data/motion.report/internal/clipstore"
	"github.com/banshee-data/motion.report/internal/config"
	"github.com/banshee-data/motion.report/internal/rig"
	"github.com/banshee-data/motion.report/internal/scene"
)

var (
	listen        = flag.String("listen", ":8080", "Listen address")
	dbFile        = flag.String("db", "motion_clips.db", "Path to the clip database")
	migrationsDir = flag.String("migrations", "db/migrations", "Path to schema migrations")
	tuningPath    = flag.String("tuning", config.DefaultConfigPath, "Path to tuning JSON")
	tickFPS       = flag.Float64("tick-fps", 60, "Headless tick rate")
)

func main() {
	flag.Parse()

	if *listen == "" {
		log.Fatal("Listen address is required")
	}

	tuning, err := config.LoadTuningConfig(*tuningPath)
	if err != nil {
		log.Fatalf("load tuning: %v", err)
	}

	db, err := sql.Open("sqlite", *dbFile)
	if err != nil {
		log.Fatalf("open clip database: %v", err)
	}
	defer db.Close()

	if err := clipstore.MigrateUp(db, *migrationsDir); err != nil {
		log.Fatalf("migrate clip database: %v", err)
	}
	if version, dirty, err := clipstore.MigrateVersion(db, *migrationsDir); err == nil {
		log.Printf("clip database at schema version %d (dirty=%v)", version, dirty)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := scene.NewLoopScheduler()
	go sched.Run(ctx, *tickFPS)

	server := api.NewServer(rig.DefaultStats(), clipstore.New(db), tuning, sched, scene.NewMemoryRig())

	httpServer := &http.Server{Addr: *listen, Handler: server.Handler()}
	go func() {
		<-ctx.Done()
		log.Print("shutting down")
		if sess := server.Session(); sess != nil {
			sess.Stop()
		}
		_ = httpServer.Shutdown(context.Background())
	}()

	log.Printf("motion service listening on %s", *listen)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("serve: %v", err)
	}
}
