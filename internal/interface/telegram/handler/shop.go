package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/application/query"
	"github.com/promohub/levelup-hub/internal/domain/account"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/interface/telegram/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHOP HANDLERS
// /shop - витрина с кнопками, /buy - покупка текстом.
// Кнопка витрины ведёт в тот же BuyHandler через callback payload.
// ══════════════════════════════════════════════════════════════════════════════

// ShopHandler обрабатывает команду /shop.
type ShopHandler struct {
	catalog  *economy.Catalog
	profiles *query.GetProfileHandler
	shop     *presenter.ShopPresenter
}

// NewShopHandler создаёт обработчик /shop.
func NewShopHandler(catalog *economy.Catalog, profiles *query.GetProfileHandler, shop *presenter.ShopPresenter) *ShopHandler {
	return &ShopHandler{catalog: catalog, profiles: profiles, shop: shop}
}

// Handle показывает витрину с текущим балансом отправителя.
func (h *ShopHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	balance := 0
	dto, err := h.profiles.Handle(ctx, query.GetProfileQuery{TelegramID: req.TelegramID})
	switch {
	case err == nil:
		balance = dto.Coins
	case errors.Is(err, account.ErrAccountNotFound):
		// Новичок без аккаунта видит витрину с нулевым балансом.
	default:
		return nil, fmt.Errorf("shop: %w", err)
	}

	text, keyboard := h.shop.FormatShop(h.catalog.Items(), balance)
	return &Response{Text: text, Keyboard: keyboard}, nil
}

// BuyHandler обрабатывает команду /buy и кнопки витрины.
type BuyHandler struct {
	purchases *command.PurchaseItemHandler
	shop      *presenter.ShopPresenter
}

// NewBuyHandler создаёт обработчик покупок.
func NewBuyHandler(purchases *command.PurchaseItemHandler, shop *presenter.ShopPresenter) *BuyHandler {
	return &BuyHandler{purchases: purchases, shop: shop}
}

// Handle выполняет покупку: /buy <товар> [титул...].
func (h *BuyHandler) Handle(ctx context.Context, req Request) (*Response, error) {
	args := strings.TrimSpace(req.Args)
	if args == "" {
		return &Response{Text: "🛍 Что покупаем? Например: <code>/buy xp-boost</code>. Список: /shop."}, nil
	}

	itemID, title, _ := strings.Cut(args, " ")
	return h.purchase(ctx, req, economy.ItemKind(itemID), strings.TrimSpace(title))
}

// HandleCallback выполняет покупку по кнопке витрины.
// payload - часть callback data после префикса, то есть id товара.
func (h *BuyHandler) HandleCallback(ctx context.Context, req Request, payload string) (*Response, error) {
	kind := economy.ItemKind(payload)
	if kind == economy.ItemCustomTitle {
		// Титулу нужен текст, кнопкой его не передать.
		return &Response{Text: "🏷 Титул покупается командой: <code>/buy custom-title Твой Титул</code>."}, nil
	}
	return h.purchase(ctx, req, kind, "")
}

func (h *BuyHandler) purchase(ctx context.Context, req Request, kind economy.ItemKind, title string) (*Response, error) {
	res, err := h.purchases.Handle(ctx, command.PurchaseItemCommand{
		TelegramID:    req.TelegramID,
		Username:      req.Username,
		FirstName:     req.FirstName,
		Item:          kind,
		Title:         title,
		CorrelationID: uuid.NewString(),
	})
	if err != nil {
		if msg := UserMessage(err); msg != "" {
			return &Response{Text: msg}, nil
		}
		return nil, fmt.Errorf("buy %q: %w", kind, err)
	}

	return &Response{Text: h.shop.FormatPurchase(res)}, nil
}
