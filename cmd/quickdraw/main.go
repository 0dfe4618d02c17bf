package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/Hyun-hyo-min/QuickDraw/internal/auth"
	"github.com/Hyun-hyo-min/QuickDraw/internal/canvas"
	"github.com/Hyun-hyo-min/QuickDraw/internal/channel"
	"github.com/Hyun-hyo-min/QuickDraw/internal/chat"
	"github.com/Hyun-hyo-min/QuickDraw/internal/config"
	"github.com/Hyun-hyo-min/QuickDraw/internal/gateway"
	"github.com/Hyun-hyo-min/QuickDraw/internal/room"
	"github.com/Hyun-hyo-min/QuickDraw/internal/session"
	"github.com/Hyun-hyo-min/QuickDraw/internal/tasks"
	"github.com/Hyun-hyo-min/QuickDraw/internal/types"
)

type app struct {
	cfg     *config.Config
	store   *session.Store
	gateway *gateway.Client
}

// consoleNavigator records where the controller wants to go; the command
// loop acts on it after Enter returns.
type consoleNavigator struct {
	redirect string
}

func (n *consoleNavigator) ToRoom(id string) { n.redirect = id }
func (n *consoleNavigator) ToList()          { fmt.Println("Returning to the room list.") }
func (n *consoleNavigator) ToLogin()         { fmt.Println("Session expired. Please login again.") }

type wsDialer struct {
	base string
}

func (d wsDialer) Dial(ctx context.Context, roomID string, user types.UserID, handler func(types.Frame)) (room.Channel, error) {
	ch, err := channel.Dial(ctx, d.base, roomID, user, handler)
	if err != nil {
		return nil, err
	}
	return ch, nil
}

func main() {
	cfg := config.Load()

	store, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		log.Fatal("Failed to open session store:", err)
	}
	defer store.Close()

	sweeper := tasks.NewCredentialSweeper(store)
	sweeper.Start()
	defer sweeper.Stop()

	a := &app{
		cfg:     cfg,
		store:   store,
		gateway: gateway.NewClient(cfg.APIBaseURL, store),
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		a.run(context.Background())
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case <-stop:
		fmt.Println("\nShutdown signal received. Cleaning up...")
	case <-done:
	}
	fmt.Println("Goodbye! 👋")
}

func (a *app) run(ctx context.Context) {
	fmt.Println("🎨 QuickDraw client ready.")
	scanner := bufio.NewScanner(os.Stdin)

	if user := a.identity(); user != "" {
		fmt.Printf("Logged in as %s\n", user)
	}

	// A stored room id survives restarts: rejoin before showing the list.
	if id, ok := a.store.RoomID(); ok {
		log.Printf("[ROOM] Resuming previous session in room %s", id)
		a.runSession(ctx, scanner, id)
	}

	a.printHelp()
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)

		switch fields[0] {
		case "help":
			a.printHelp()

		case "login":
			if len(fields) < 2 {
				fmt.Println("usage: login <credential>")
				continue
			}
			a.login(ctx, fields[1])

		case "logout":
			if err := a.store.ClearCredential(); err != nil {
				log.Printf("[SESSION] Logout failed: %v", err)
			}
			fmt.Println("Logged out.")

		case "rooms":
			page := 1
			if len(fields) > 1 {
				if n, err := strconv.Atoi(fields[1]); err == nil && n > 0 {
					page = n
				}
			}
			a.listRooms(ctx, page)

		case "create":
			if len(fields) < 2 {
				fmt.Println("usage: create <room name>")
				continue
			}
			a.createRoom(ctx, strings.Join(fields[1:], " "))

		case "join":
			if len(fields) < 2 {
				fmt.Println("usage: join <room id>")
				continue
			}
			a.joinRoom(ctx, scanner, fields[1])

		case "enter":
			if len(fields) < 2 {
				fmt.Println("usage: enter <room id>")
				continue
			}
			a.runSession(ctx, scanner, fields[1])

		case "exit", "quit":
			return

		default:
			fmt.Printf("Unknown command %q (try: help)\n", fields[0])
		}
	}
}

func (a *app) login(ctx context.Context, credential string) {
	token, err := a.gateway.Login(ctx, credential)
	if err != nil {
		fmt.Println("Login failed:", err)
		return
	}
	if err := a.store.SetCredential(token); err != nil {
		log.Printf("[SESSION] Failed to persist credential: %v", err)
		return
	}
	if user := a.identity(); user != "" {
		fmt.Printf("Logged in as %s\n", user)
	}
}

func (a *app) listRooms(ctx context.Context, page int) {
	list, err := a.gateway.ListRooms(ctx, page, a.cfg.PageSize)
	if err != nil {
		if a.handleUnauthorized(err) {
			return
		}
		// Read-path failure degrades to an empty listing.
		fmt.Println("No rooms available")
		return
	}

	if len(list.Rooms) == 0 {
		fmt.Println("No rooms available")
		return
	}
	for _, r := range list.Rooms {
		fmt.Printf("  %s - %s : %d/%d\n", r.ID, r.Name, r.CurrentPlayers, r.MaxPlayers)
	}
	fmt.Printf("Page %d of %d\n", page, list.TotalPages)
}

func (a *app) createRoom(ctx context.Context, name string) {
	id, err := a.gateway.CreateRoom(ctx, name)
	if err != nil {
		if a.handleUnauthorized(err) {
			return
		}
		fmt.Println("Create failed:", err)
		return
	}
	fmt.Println("Room created:", id)
}

func (a *app) joinRoom(ctx context.Context, scanner *bufio.Scanner, id string) {
	err := a.gateway.JoinRoom(ctx, id)
	switch {
	case err == nil:
	case errors.Is(err, gateway.ErrRoomFull):
		fmt.Println("Room is full.")
		return
	case errors.Is(err, gateway.ErrAlreadyInRoom):
		// The session store knows which room; entering it reconciles.
		fmt.Println("Already in a room, rejoining it instead.")
	case a.handleUnauthorized(err):
		return
	default:
		fmt.Println("Join failed:", err)
		return
	}
	a.runSession(ctx, scanner, id)
}

func (a *app) runSession(ctx context.Context, scanner *bufio.Scanner, roomID string) {
	user := a.identity()

	for roomID != "" {
		painter := canvas.NewImagePainter(canvas.DefaultWidth, canvas.DefaultHeight)
		surface := canvas.NewSurface(painter)
		buffer := chat.NewBuffer(user, chat.DefaultTTL)
		buffer.OnAppend(func(m chat.Message) {
			fmt.Printf("%s: %s\n", m.User, m.Text)
		})

		nav := &consoleNavigator{}
		ctrl := room.NewController(a.gateway, a.store, surface, buffer,
			wsDialer{base: a.cfg.WSBaseURL}, nav, user)

		if err := ctrl.Enter(ctx, roomID); err != nil {
			return
		}
		if nav.redirect != "" {
			roomID = nav.redirect
			continue
		}
		if ctrl.State() != room.StateReady {
			return
		}

		a.sessionLoop(ctx, scanner, ctrl, buffer, painter)
		return
	}
}

func (a *app) sessionLoop(ctx context.Context, scanner *bufio.Scanner, ctrl *room.Controller, buffer *chat.Buffer, painter *canvas.ImagePainter) {
	defer ctrl.Close()

	r := ctrl.Room()
	fmt.Printf("Entered room %q hosted by %s. Type a message, or /help.\n", r.Name, r.Host)

	for {
		if !scanner.Scan() {
			return
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "/") {
			ctrl.SendChat(line)
			continue
		}

		fields := strings.Fields(line)
		switch fields[0] {
		case "/help":
			fmt.Println("Commands: /who /chat /line x1 y1 x2 y2 /save [file] /leave /quit /delete")

		case "/who":
			for _, p := range ctrl.Room().Players {
				fmt.Println("  -", p.UserID)
			}

		case "/chat":
			for _, l := range buffer.Lines() {
				fmt.Println("  ", l)
			}

		case "/line":
			if len(fields) != 5 {
				fmt.Println("usage: /line x1 y1 x2 y2")
				continue
			}
			coords := make([]float64, 4)
			bad := false
			for i, f := range fields[1:] {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					bad = true
					break
				}
				coords[i] = v
			}
			if bad {
				fmt.Println("usage: /line x1 y1 x2 y2")
				continue
			}
			ctrl.PointerDown(canvas.Point{X: coords[0], Y: coords[1]})
			ctrl.PointerMove(canvas.Point{X: coords[2], Y: coords[3]}, true)

		case "/save":
			name := "canvas.png"
			if len(fields) > 1 {
				name = fields[1]
			}
			a.saveCanvas(painter, name)

		case "/leave":
			return

		case "/quit":
			ctrl.Quit(ctx)
			return

		case "/delete":
			if !ctrl.CanDelete() {
				fmt.Println("Only the host can delete this room.")
				continue
			}
			ctrl.Delete(ctx)
			return

		default:
			fmt.Printf("Unknown command %q\n", fields[0])
		}
	}
}

func (a *app) saveCanvas(painter *canvas.ImagePainter, name string) {
	f, err := os.Create(name)
	if err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	defer f.Close()

	if err := painter.EncodePNG(f); err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	fmt.Println("Canvas written to", name)
}

func (a *app) identity() types.UserID {
	token, ok := a.store.Credential()
	if !ok {
		return ""
	}
	user, err := auth.Identity(token)
	if err != nil {
		log.Printf("[AUTH] No usable identity in stored token: %v", err)
		return ""
	}
	return user
}

func (a *app) handleUnauthorized(err error) bool {
	if !errors.Is(err, gateway.ErrUnauthorized) {
		return false
	}
	if clearErr := a.store.ClearCredential(); clearErr != nil {
		log.Printf("[SESSION] Failed to clear credential: %v", clearErr)
	}
	fmt.Println("Session expired. Please login again.")
	return true
}

func (a *app) printHelp() {
	fmt.Println("Commands:")
	fmt.Println("  login <credential>   exchange a credential for an access token")
	fmt.Println("  logout               forget the stored access token")
	fmt.Println("  rooms [page]         list rooms")
	fmt.Println("  create <name>        create a room (you become the host)")
	fmt.Println("  join <room id>       join a room and enter it")
	fmt.Println("  enter <room id>      enter a room you already belong to")
	fmt.Println("  exit                 leave the client")
}
