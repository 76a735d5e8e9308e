package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"time"

	"SketchBoard/internal/broadcast"
	"SketchBoard/internal/config"
	"SketchBoard/internal/element"
	"SketchBoard/internal/export"
	"SketchBoard/internal/history"
	"SketchBoard/internal/interaction"
	boardnet "SketchBoard/internal/net"
	"SketchBoard/internal/session"
	"SketchBoard/internal/storage"
	"SketchBoard/internal/ui"
)

const usage = `usage: sketchboard [-config file] <command> [flags]

commands:
  serve    run the relay and canvas API
  draw     open a canvas in a window
  export   render a stored canvas to PDF

A share link (sketchboard://host:port/canvas) on its own opens that canvas.
`

func main() {
	global := flag.NewFlagSet("sketchboard", flag.ExitOnError)
	configPath := global.String("config", "", "config file (default "+config.DefaultPath()+")")
	global.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	global.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal(err)
	}

	args := global.Args()
	if len(args) == 0 {
		global.Usage()
		os.Exit(2)
	}
	if strings.HasPrefix(args[0], boardnet.ShareScheme) {
		args = append([]string{"draw"}, args...)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	switch args[0] {
	case "serve":
		err = runServe(ctx, cfg, args[1:])
	case "draw":
		err = runDraw(ctx, cfg, args[1:])
	case "export":
		err = runExport(ctx, cfg, args[1:])
	default:
		global.Usage()
		os.Exit(2)
	}
	if err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal(err)
	}
}

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", cfg.Server.Addr, "listen address")
	dbPath := fs.String("db", cfg.Server.DBPath, "SQLite database path")
	mdns := fs.Bool("mdns", cfg.Server.MDNS, "advertise the relay on the local network")
	fs.Parse(args)

	db, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	srv := &http.Server{
		Addr:    *addr,
		Handler: boardnet.NewServer(storage.NewCanvasStore(db), boardnet.NewPeerManager()),
	}

	port, err := portOf(*addr)
	if err != nil {
		return err
	}
	if *mdns {
		adv, err := boardnet.Advertise(port)
		if err != nil {
			log.Printf("[MDNS] not advertising: %v", err)
		} else {
			defer adv.Shutdown()
			log.Printf("[MDNS] advertising on port %d", port)
		}
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		srv.Shutdown(shutdownCtx)
	}()

	log.Printf("[RELAY] listening on %s, new canvases can be opened with: sketchboard draw -server http://%s",
		*addr, net.JoinHostPort(boardnet.OutgoingIP(), strconv.Itoa(port)))
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func portOf(addr string) (int, error) {
	_, p, err := net.SplitHostPort(addr)
	if err != nil {
		return 0, fmt.Errorf("listen address %q: %w", addr, err)
	}
	return strconv.Atoi(p)
}

func runDraw(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("draw", flag.ExitOnError)
	serverURL := fs.String("server", cfg.Client.ServerURL, "relay URL")
	canvasID := fs.String("canvas", cfg.Client.CanvasID, "canvas to open; empty creates a new one")
	name := fs.String("name", cfg.Client.Name, "name for a new canvas")
	toolName := fs.String("tool", cfg.Client.Tool, "initial tool: line, rectangle, freedraw or select")
	autosave := fs.String("autosave", cfg.Client.Autosave, "autosave schedule, empty to disable")
	discover := fs.Bool("discover", false, "look for a relay on the local network")
	fs.Parse(args)

	if fs.NArg() > 0 {
		var err error
		*serverURL, *canvasID, err = boardnet.ParseShareLink(fs.Arg(0))
		if err != nil {
			return err
		}
	} else if *discover {
		found, err := boardnet.Browse(3 * time.Second)
		if err != nil {
			return err
		}
		if len(found) == 0 {
			return errors.New("no relay found on the local network")
		}
		log.Printf("[MDNS] using relay %s", found[0])
		*serverURL = found[0]
	}

	tool, err := interaction.ParseTool(*toolName)
	if err != nil {
		return err
	}

	api := boardnet.NewAPIClient(*serverURL)
	var canvas *storage.Canvas
	if *canvasID == "" {
		canvas, err = api.CreateCanvas(ctx, *name, history.ToDocument(history.New(element.Store{})))
	} else {
		canvas, err = api.GetCanvas(ctx, *canvasID)
	}
	if err != nil {
		return err
	}
	h, err := history.FromDocument(canvas.Document, history.WithLimit(cfg.History.Limit))
	if err != nil {
		return fmt.Errorf("canvas %s: %w", canvas.ID, err)
	}

	conn, err := boardnet.Dial(ctx, *serverURL, canvas.ID)
	if err != nil {
		return err
	}
	defer conn.Close()

	board := ui.NewBoardWidget()
	s := session.New(session.Options{
		CanvasID: canvas.ID,
		History:  h,
		Channel:  conn,
		Surface:  board,
		Saver:    api,
	})
	board.OnEvent = s.Post

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go s.Run(ctx)
	s.Post(session.SelectTool{Tool: tool})

	go func() {
		err := conn.Listen(ctx, func(msg broadcast.Message) { s.Post(session.Remote{Msg: msg}) })
		if err != nil {
			log.Printf("[SESSION] %s: relay connection lost: %v", canvas.ID, err)
		}
	}()

	if *autosave != "" {
		if _, err := session.StartAutosave(ctx, *autosave, s); err != nil {
			return err
		}
	}

	ui.RunApp(board, ui.Options{
		Title:     "SketchBoard - " + canvas.Name,
		ShareLink: shareLink(*serverURL, canvas.ID),
		Tool:      tool,
		Save: func() error {
			saveCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
			defer cancel()
			return s.Save(saveCtx)
		},
		Export: func(w io.Writer) error {
			doc, err := s.Document(ctx)
			if err != nil {
				return err
			}
			return export.WritePDF(w, doc.History[doc.Index])
		},
	})

	// Window closed: keep the last state.
	saveCtx, cancelSave := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelSave()
	if err := s.Save(saveCtx); err != nil {
		log.Printf("[SESSION] %s: final save failed: %v", canvas.ID, err)
	}
	return nil
}

// shareLink points others at canvasID on serverURL. A loopback relay is
// shared under this host's LAN address.
func shareLink(serverURL, canvasID string) string {
	u, err := url.Parse(serverURL)
	if err != nil || u.Scheme != "http" {
		return ""
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		port = 80
	}
	host := u.Hostname()
	if ip := net.ParseIP(host); host == "localhost" || (ip != nil && ip.IsLoopback()) {
		host = boardnet.OutgoingIP()
	}
	return boardnet.ShareLink(host, port, canvasID)
}

func runExport(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	dbPath := fs.String("db", cfg.Server.DBPath, "SQLite database path")
	canvasID := fs.String("canvas", "", "canvas id")
	out := fs.String("out", "sketch.pdf", "output file")
	fs.Parse(args)

	if *canvasID == "" {
		return errors.New("export: -canvas is required")
	}

	db, err := storage.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()

	c, err := storage.NewCanvasStore(db).Get(ctx, *canvasID)
	if err != nil {
		return err
	}
	h, err := history.FromDocument(c.Document)
	if err != nil {
		return err
	}
	if err := export.ExportPDF(*out, h.Current().Elements()); err != nil {
		return err
	}
	log.Printf("exported %q to %s", c.Name, *out)
	return nil
}
