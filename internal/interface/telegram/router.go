package telegram

import (
	"context"
	"strings"

	"github.com/promohub/levelup-hub/internal/interface/telegram/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// ROUTER
// Сопоставляет команды и callback-префиксы обработчикам.
// Регистрация идёт на старте из одной горутины, дальше только чтение,
// поэтому карты не нуждаются в блокировках.
// ══════════════════════════════════════════════════════════════════════════════

// CommandHandler обрабатывает одну команду бота.
type CommandHandler interface {
	Handle(ctx context.Context, req handler.Request) (*handler.Response, error)
}

// CallbackHandler обрабатывает нажатия inline-кнопок.
// payload - часть callback data после зарегистрированного префикса.
type CallbackHandler interface {
	HandleCallback(ctx context.Context, req handler.Request, payload string) (*handler.Response, error)
}

// Router направляет обновления к обработчикам.
type Router struct {
	commands  map[string]CommandHandler
	callbacks map[string]CallbackHandler
}

// NewRouter создаёт пустой маршрутизатор.
func NewRouter() *Router {
	return &Router{
		commands:  make(map[string]CommandHandler),
		callbacks: make(map[string]CallbackHandler),
	}
}

// RegisterCommand привязывает обработчик к команде ("/start" или "start").
func (r *Router) RegisterCommand(name string, h CommandHandler) {
	r.commands[strings.TrimPrefix(name, "/")] = h
}

// RegisterCallbackPrefix привязывает обработчик к префиксу callback data
// (например "buy:").
func (r *Router) RegisterCallbackPrefix(prefix string, h CallbackHandler) {
	r.callbacks[prefix] = h
}

// Command находит обработчик команды.
func (r *Router) Command(name string) (CommandHandler, bool) {
	h, ok := r.commands[strings.TrimPrefix(name, "/")]
	return h, ok
}

// Callback находит обработчик по callback data и отрезает префикс.
func (r *Router) Callback(data string) (CallbackHandler, string, bool) {
	for prefix, h := range r.callbacks {
		if strings.HasPrefix(data, prefix) {
			return h, strings.TrimPrefix(data, prefix), true
		}
	}
	return nil, "", false
}

// Commands возвращает список зарегистрированных команд.
func (r *Router) Commands() []string {
	names := make([]string, 0, len(r.commands))
	for name := range r.commands {
		names = append(names, name)
	}
	return names
}
