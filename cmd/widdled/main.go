package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/ericyan/iputil"

	"github.com/widdle/reader"
	"github.com/widdle/reader/artwork"
	"github.com/widdle/reader/bridge"
	"github.com/widdle/reader/mpris"
	"github.com/widdle/reader/prefs"
	"github.com/widdle/reader/scanner"
)

var defaultHost = ""

func init() {
	if addr, _ := iputil.DefaultIPv4(); addr != nil {
		defaultHost = addr.IP.String()
	}
}

func main() {
	h := flag.Bool("h", false, "show help")
	flag.Parse()

	if *h {
		flag.Usage()
		os.Exit(0)
	}

	cfg := initConfig(defaultHost)

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalln(err)
	}
	if err := os.MkdirAll(cfg.Artwork.CacheDir, 0o755); err != nil {
		log.Fatalln(err)
	}

	store, err := prefs.Open(filepath.Join(cfg.DataDir, "widdle.db"), prefs.Options{})
	if err != nil {
		log.Fatalln(err)
	}
	defer store.Close()

	var b *bridge.Bridge

	var launcher reader.Launcher
	if cfg.App.Path != "" {
		launcher = &bridge.ProcessLauncher{Path: cfg.App.Path}
	}

	b = bridge.New(bridge.Config{
		Mailbox:  prefs.NewMailbox(store),
		Launcher: launcher,
		NewController: func(busName string) (reader.Controller, error) {
			return mpris.NewController(busName)
		},
		NewTarget: func(busName string) (reader.MediaSession, error) {
			return mpris.NewSession(busName, b)
		},
		Artwork: &artwork.Loader{
			MaxDimension: cfg.Artwork.MaxDimension,
			CacheDir:     cfg.Artwork.CacheDir,
		},
	})

	busName := cfg.Session.BusName
	if busName == "" {
		busName = mpris.DefaultBusName
	}
	session, err := mpris.NewSession(busName, b)
	if err != nil {
		log.Fatalln(err)
	}
	defer session.Release()
	b.BindSession(session, session.Owner())
	log.Printf("Claimed %s as %s\n", session.Name(), session.Owner())

	if cfg.Library.Root != "" {
		go refreshLibrary(store, cfg.Library.Root)
	}

	addr := cfg.Listen.Host + ":" + strconv.Itoa(cfg.Listen.Port)

	srv, err := bridge.NewServer(b, addr)
	if err != nil {
		log.Fatalln(err)
	}
	log.Println("Listening on", srv.Addr())

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Fatalln(err)
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	s := <-sig
	log.Printf("Signal %s received, stopping server...\n", s)
	srv.Close()
}

// refreshLibrary scans the library root and upserts a record per book
// folder, keeping any existing listening state.
func refreshLibrary(store *prefs.Store, root string) {
	result := <-scanner.ScanAsync(root, nil)
	if result.Err != nil {
		log.Println("library scan:", result.Err)
		return
	}

	books := make([]prefs.Audiobook, 0, len(result.Dirs))
	for _, dir := range result.Dirs {
		existing, err := store.Book(dir)
		if err != nil {
			log.Println("library scan:", err)
			continue
		}
		if existing != nil {
			continue
		}

		books = append(books, prefs.Audiobook{
			ID:     dir,
			Title:  filepath.Base(dir),
			Folder: dir,
			Speed:  1.0,
		})
	}

	if err := store.SaveBooks(books); err != nil {
		log.Println("library scan:", err)
		return
	}

	log.Printf("Library scan found %d folders, %d new\n", len(result.Dirs), len(books))
}
