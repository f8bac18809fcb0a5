package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/julienschmidt/httprouter"
	qrcode "github.com/skip2/go-qrcode"
	"quizboard-service/internal/app"
	"quizboard-service/internal/auth"
	"quizboard-service/internal/domain"
)

// RESTHandler serves the read-only fetch interface plus host auth. All
// endpoints are idempotent except login/logout/game creation; none mutate
// board or score state.
type RESTHandler struct {
	service  *app.GameService
	guard    *auth.Guard
	sessions *auth.Service
	baseURL  string
}

func NewRESTHandler(service *app.GameService, guard *auth.Guard, sessions *auth.Service, baseURL string) *RESTHandler {
	return &RESTHandler{
		service:  service,
		guard:    guard,
		sessions: sessions,
		baseURL:  strings.TrimRight(baseURL, "/"),
	}
}

// NewRouter assembles the full HTTP surface: REST routes and the websocket
// endpoint.
func NewRouter(rest *RESTHandler, ws *WSHandler) http.Handler {
	router := httprouter.New()

	router.HandlerFunc(http.MethodGet, "/ws", ws.ServeWS)
	router.HandlerFunc(http.MethodGet, "/api/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	router.HandlerFunc(http.MethodPost, "/api/host/login", rest.hostLogin)
	router.HandlerFunc(http.MethodPost, "/api/host/logout", rest.hostLogout)
	router.HandlerFunc(http.MethodGet, "/api/host/session", rest.hostSession)
	router.HandlerFunc(http.MethodPost, "/api/host/game", rest.hostCreateGame)
	router.Handle(http.MethodGet, "/api/host/board/:gameId", rest.hostBoard)
	router.Handle(http.MethodGet, "/api/host/question/:qid", rest.hostQuestion)
	router.Handle(http.MethodPost, "/api/host/question/:qid/submit", rest.hostCheckAnswer)

	router.HandlerFunc(http.MethodGet, "/api/player/session", rest.playerSession)
	router.Handle(http.MethodGet, "/api/player/board/:gameId", rest.playerBoard)
	router.Handle(http.MethodGet, "/api/player/question/:qid", rest.playerQuestion)
	router.Handle(http.MethodGet, "/api/join/:gameId/qr.png", rest.joinQR)

	return router
}

func (h *RESTHandler) hostLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrInvalidPassword)
		return
	}
	token, _, err := h.sessions.LoginHost(r.Context(), body.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true, "token": token})
}

func (h *RESTHandler) hostLogout(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	if _, err := h.guard.Host(r.Context(), token); err != nil {
		writeError(w, err)
		return
	}
	if err := h.sessions.Logout(r.Context(), token); err != nil {
		log.Printf("logout: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

func (h *RESTHandler) hostSession(w http.ResponseWriter, r *http.Request) {
	ident, err := h.guard.Host(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"role": ident.Role, "gameId": ident.HostGameID})
}

func (h *RESTHandler) hostCreateGame(w http.ResponseWriter, r *http.Request) {
	token := bearerToken(r)
	ident, err := h.guard.Host(r.Context(), token)
	if err != nil {
		writeError(w, err)
		return
	}
	game, err := h.service.CreateGame(r.Context(), ident.HostID)
	if err != nil {
		writeError(w, err)
		return
	}
	// best-effort session pointer
	if err := h.sessions.BindHostGame(r.Context(), token, ident, game.ID()); err != nil {
		log.Printf("bind host game: %v", err)
	}
	writeJSON(w, http.StatusOK, map[string]string{"gameId": game.ID()})
}

func (h *RESTHandler) hostBoard(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ident, err := h.guard.Host(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	game, err := h.service.GameForHost(p.ByName("gameId"), ident.HostID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, game.Snapshot())
}

func (h *RESTHandler) hostQuestion(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ident, err := h.guard.Host(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	question, err := h.service.QuestionForHost(r.Context(), p.ByName("qid"), ident.HostID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"qid":     question.ID,
		"prompt":  question.Prompt,
		"options": question.Options,
		"answer":  question.Answer,
		"points":  question.Points,
	})
}

func (h *RESTHandler) hostCheckAnswer(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ident, err := h.guard.Host(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	var body struct {
		Choice string `json:"choice"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, domain.ErrInvalidChoice)
		return
	}
	correct, answer, err := h.service.CheckAnswer(r.Context(), p.ByName("qid"), ident.HostID, body.Choice)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"correct": correct, "answer": answer})
}

func (h *RESTHandler) playerSession(w http.ResponseWriter, r *http.Request) {
	ident, err := h.guard.Player(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"role":   ident.Role,
		"name":   ident.Name,
		"gameId": ident.GameID,
	})
}

func (h *RESTHandler) playerBoard(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ident, err := h.guard.Player(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	gameID := p.ByName("gameId")
	if ident.GameID != gameID {
		writeError(w, domain.ErrAccessDenied)
		return
	}
	snapshot, err := h.service.Board(gameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snapshot)
}

// playerQuestion returns question detail with the answer key withheld.
func (h *RESTHandler) playerQuestion(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	ident, err := h.guard.Player(r.Context(), bearerToken(r))
	if err != nil {
		writeError(w, err)
		return
	}
	question, err := h.service.QuestionForPlayer(r.Context(), p.ByName("qid"), ident.GameID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"qid":     question.ID,
		"prompt":  question.Prompt,
		"options": question.Options,
		"points":  question.Points,
	})
}

// joinQR renders the join link for a game as a PNG QR code. Anyone with the
// game id can join, so the endpoint is unauthenticated.
func (h *RESTHandler) joinQR(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	gameID := p.ByName("gameId")
	if _, ok := h.service.Game(gameID); !ok {
		writeError(w, domain.ErrGameNotFound)
		return
	}
	url := h.baseURL + "/play/join?gameId=" + gameID
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(png); err != nil {
		log.Printf("write qr: %v", err)
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return r.URL.Query().Get("token")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	code := domain.CodeOf(err)
	writeJSON(w, domain.HTTPStatus(code), map[string]any{
		"ok":    false,
		"error": err.Error(),
		"code":  code,
	})
}
