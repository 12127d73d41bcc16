package presenter

import (
	"fmt"
	"strings"

	"github.com/promohub/levelup-hub/internal/application/command"
	"github.com/promohub/levelup-hub/internal/domain/economy"
	"github.com/promohub/levelup-hub/internal/infrastructure/external/telegram"
)

// ══════════════════════════════════════════════════════════════════════════════
// SHOP PRESENTER
// Витрина магазина и подтверждение покупки.
// Кнопки каждой позиции несут callback data вида "buy:<item-id>".
// ══════════════════════════════════════════════════════════════════════════════

// BuyCallbackPrefix - префикс callback data кнопок покупки.
const BuyCallbackPrefix = "buy:"

// ShopPresenter форматирует витрину магазина и результаты покупок.
type ShopPresenter struct{}

// NewShopPresenter создаёт презентер магазина.
func NewShopPresenter() *ShopPresenter {
	return &ShopPresenter{}
}

// FormatShop форматирует витрину с кнопками покупки под каждой позицией.
func (p *ShopPresenter) FormatShop(items []*economy.Item, balance int) (string, *telegram.InlineKeyboardMarkup) {
	var sb strings.Builder

	sb.WriteString("🛍 <b>Магазин HubCoins</b>\n")
	sb.WriteString(fmt.Sprintf("Твой баланс: <b>%d</b>\n\n", balance))

	keyboard := telegram.NewKeyboard()
	for _, item := range items {
		sb.WriteString(fmt.Sprintf("%s <b>%s</b> - %d HubCoins\n", item.Emoji, EscapeHTML(item.Name), item.Price))
		sb.WriteString(fmt.Sprintf("<i>%s</i>\n\n", EscapeHTML(item.Description)))

		keyboard.Row(telegram.Button(
			fmt.Sprintf("%s %s · %d", item.Emoji, item.Name, item.Price),
			BuyCallbackPrefix+string(item.Kind),
		))
	}

	sb.WriteString("Покупка: кнопкой ниже или <code>/buy &lt;товар&gt;</code>.\n")
	sb.WriteString("Для титула: <code>/buy custom-title Твой Титул</code>.")

	return sb.String(), keyboard.Build()
}

// FormatPurchase форматирует подтверждение успешной покупки.
func (p *ShopPresenter) FormatPurchase(res *command.PurchaseItemResult) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("%s <b>%s</b> куплен за %d HubCoins!\n", res.Item.Emoji, EscapeHTML(res.Item.Name), res.Price))

	if res.Effect != nil {
		for _, line := range res.Effect.Lines {
			sb.WriteString(fmt.Sprintf("· %s\n", EscapeHTML(line)))
		}
		if res.Effect.Consolation {
			sb.WriteString("<i>Не повезло в розыгрыше, но без награды не уйдёшь.</i>\n")
		}
	}

	sb.WriteString(fmt.Sprintf("\n💰 Остаток: <b>%d HubCoins</b>", res.NewBalance))
	sb.WriteString(FormatUnlocked(res.Achievements))

	return sb.String()
}
