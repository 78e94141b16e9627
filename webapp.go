package main

import (
	"embed"
	"encoding/json"
	"flag"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"sync"
	"text/template"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"chess-agent/chessagent"
)

const DefaultPort = 8080

//go:embed assets
var assets embed.FS
var static fs.FS
var templates fs.FS

func init() {
	static, _ = fs.Sub(assets, "assets/static")
	templates, _ = fs.Sub(assets, "assets/templates")
}

func stdoutLogger(next http.Handler) http.Handler {
	return handlers.LoggingHandler(os.Stdout, next)
}

// MoveRequest is one engine query from a client: a position and how hard
// the engine should think about it.
type MoveRequest struct {
	FEN         string `json:"fen"`
	Difficulty  string `json:"difficulty"`
	Aggressive  bool   `json:"aggressive,omitempty"`
	TimeLimitMs int    `json:"timeLimitMs,omitempty"`
}

type MoveResponse struct {
	Move     string                   `json:"move,omitempty"`
	SAN      string                   `json:"san,omitempty"`
	Analysis *chessagent.MoveAnalysis `json:"analysis,omitempty"`
	Outcome  string                   `json:"outcome,omitempty"`
	Error    string                   `json:"error,omitempty"`
}

// suggestMove runs one engine query and shapes the response. All failures
// come back as a response with Error set; the connection stays usable.
func suggestMove(req MoveRequest) MoveResponse {
	board, err := chessagent.NewBoardFromFEN(req.FEN)
	if err != nil {
		return MoveResponse{Error: fmt.Sprintf("invalid position: %v", err)}
	}

	difficulty := chessagent.Difficulty(req.Difficulty)
	if req.Difficulty == "" {
		difficulty = chessagent.DifficultyMedium
	}

	var agent *chessagent.Agent
	if req.Aggressive {
		agent, err = chessagent.NewAggressiveAgent(difficulty, board.SideToMove())
	} else {
		agent, err = chessagent.NewAgent(difficulty, board.SideToMove())
	}
	if err != nil {
		return MoveResponse{Error: err.Error()}
	}

	var opts []chessagent.SearchOption
	if req.TimeLimitMs > 0 {
		opts = append(opts, chessagent.WithTimeLimit(time.Duration(req.TimeLimitMs)*time.Millisecond))
	}

	suggestion := agent.SuggestMove(board, opts...)
	if suggestion.Move == nil {
		return MoveResponse{Outcome: board.Outcome().String()}
	}

	return MoveResponse{
		Move:     suggestion.Move.String(),
		SAN:      suggestion.Analysis.SAN,
		Analysis: suggestion.Analysis,
		Outcome:  board.Outcome().String(),
	}
}

type Client struct {
	conn        *websocket.Conn
	application *Application
}

type Application struct {
	router      *mux.Router
	templates   *template.Template
	clients     map[*Client]interface{}
	clientsLock sync.RWMutex
	upgrader    websocket.Upgrader
}

func NewApplication() *Application {
	templateParser := template.New("")
	templateParser.Delims("[[", "]]")
	result := Application{
		router:    mux.NewRouter(),
		templates: template.Must(templateParser.ParseFS(templates, "*.html.gotmpl")),
		clients:   make(map[*Client]interface{}),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
	result.router.NotFoundHandler = stdoutLogger(http.HandlerFunc(notFoundHandler))
	result.router.Use(stdoutLogger)

	result.router.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(static))))
	result.router.HandleFunc("/", result.indexHandler)
	result.router.HandleFunc("/api/move", result.moveHandler).Methods(http.MethodPost)
	result.router.HandleFunc("/ws", result.wsHandler)
	return &result
}

func (app *Application) indexHandler(w http.ResponseWriter, r *http.Request) {
	templateVars := struct {
		Title string
	}{
		Title: "Chess Agent",
	}

	err := app.templates.ExecuteTemplate(w, "index.html.gotmpl", templateVars)
	if err != nil {
		fmt.Printf("Error rendering template: %v\n", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}

func (app *Application) moveHandler(w http.ResponseWriter, r *http.Request) {
	var req MoveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(suggestMove(req)); err != nil {
		fmt.Printf("Error encoding response: %v\n", err)
	}
}

func (application *Application) wsHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := application.upgrader.Upgrade(w, r, nil)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	fmt.Printf("New websocket connection from %s\n", conn.RemoteAddr())
	client := &Client{
		conn:        conn,
		application: application,
	}
	application.clientsLock.Lock()
	application.clients[client] = nil
	application.clientsLock.Unlock()
	go func() {
		for {
			_, messageJson, err := client.conn.ReadMessage()
			if err != nil {
				fmt.Printf("Error reading message: %v\n", err)
				application.clientsLock.Lock()
				delete(application.clients, client)
				application.clientsLock.Unlock()
				client.conn.Close()
				return
			}
			var request MoveRequest
			if err := json.Unmarshal(messageJson, &request); err != nil {
				fmt.Printf("Error parsing message: %v\n", err)
				client.send(MoveResponse{Error: "malformed request"})
				continue
			}
			client.send(suggestMove(request))
		}
	}()
}

func (client *Client) send(response MoveResponse) {
	payload, err := json.Marshal(response)
	if err != nil {
		fmt.Printf("Error encoding response: %v\n", err)
		return
	}
	if err := client.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
		fmt.Printf("Error writing message: %v\n", err)
	}
}

func (app *Application) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	app.router.ServeHTTP(w, r)
}

func notFoundHandler(w http.ResponseWriter, r *http.Request) {
	http.Error(w, "File Not Found", http.StatusNotFound)
}

func main() {
	var port uint
	flag.UintVar(&port, "port", DefaultPort, "Port to listen on")
	flag.Parse()
	if port == 0 || port > 65535 {
		fmt.Println("Invalid port number")
		os.Exit(1)
	}
	fmt.Printf("Starting server on :%d\n", port)
	app := NewApplication()
	http.ListenAndServe(fmt.Sprintf(":%d", port), app)
}
