package service

import (
	"context"
	"strings"

	"nautia-api/internal/domain"
	"nautia-api/internal/repository"

	"go.uber.org/zap"
)

// Intent is a bot conversation intent.
type Intent string

const (
	IntentGreeting Intent = "greeting"
	IntentProducts Intent = "products"
	IntentServices Intent = "services"
	IntentPricing  Intent = "pricing"
	IntentLocation Intent = "location"
	IntentHuman    Intent = "human"
	IntentThanks   Intent = "thanks"
	IntentFallback Intent = "fallback"
)

// BotReply is a canned response plus optional quick-reply options.
type BotReply struct {
	Intent  Intent
	Text    string
	Options []string
}

type intentRule struct {
	intent   Intent
	keywords []string
}

// Rules are ordered; the first rule with a matching keyword wins. The
// handoff rule sits before thanks so "obrigado, quero falar com humano"
// still reaches a person.
var intentRules = []intentRule{
	{IntentGreeting, []string{"olá", "ola", "bom dia", "boa tarde", "boa noite", "hello", "hi"}},
	{IntentProducts, []string{"produto", "catálogo", "catalogo", "equipamento", "radar", "gps", "sonar", "sonda"}},
	{IntentServices, []string{"serviço", "servico", "instalação", "instalacao", "manutenção", "manutencao", "reparação", "reparacao", "assistência", "assistencia"}},
	{IntentPricing, []string{"preço", "preco", "orçamento", "orcamento", "custo", "valor", "quanto custa"}},
	{IntentLocation, []string{"onde", "localização", "localizacao", "endereço", "endereco", "morada", "escritório", "escritorio"}},
	{IntentHuman, []string{"humano", "falar com", "atendente", "agente", "operador", "pessoa real"}},
	{IntentThanks, []string{"obrigado", "obrigada", "agradeço", "agradeco", "valeu"}},
}

// defaultProductOptions is used when no product categories are registered.
var defaultProductOptions = []string{"Radares", "GPS e Navegação", "Sonares", "Rádios VHF"}

// ClassifyIntent lower-cases the message and tests it against the ordered
// keyword sets. First match wins; no match is the fallback.
func ClassifyIntent(text string) Intent {
	text = strings.ToLower(text)
	for _, rule := range intentRules {
		for _, keyword := range rule.keywords {
			if strings.Contains(text, keyword) {
				return rule.intent
			}
		}
	}
	return IntentFallback
}

// BotResponder turns the latest user message into a canned reply. It is
// best-effort keyword matching, not NLP; anything it cannot place lands on
// the fallback reply with an offer to hand off.
type BotResponder struct {
	categories repository.CategoryRepository
	logger     *zap.Logger
}

// NewBotResponder creates a new BotResponder
func NewBotResponder(categories repository.CategoryRepository, logger *zap.Logger) *BotResponder {
	return &BotResponder{categories: categories, logger: logger}
}

// Reply produces the response for a user message. The products branch pulls
// live category names so quick-reply options track the catalog.
func (b *BotResponder) Reply(ctx context.Context, text string) BotReply {
	intent := ClassifyIntent(text)

	switch intent {
	case IntentGreeting:
		return BotReply{
			Intent:  intent,
			Text:    "Olá! Bem-vindo à Nautia. Como posso ajudar?",
			Options: []string{"Ver produtos", "Nossos serviços", "Pedir orçamento", "Falar com humano"},
		}
	case IntentProducts:
		return BotReply{
			Intent:  intent,
			Text:    "Temos equipamentos para navegação, comunicação e pesca. Que categoria lhe interessa?",
			Options: b.productOptions(ctx),
		}
	case IntentServices:
		return BotReply{
			Intent:  intent,
			Text:    "Fazemos instalação, manutenção e reparação de equipamentos marítimos a bordo e em oficina.",
			Options: []string{"Agendar visita", "Pedir orçamento", "Falar com humano"},
		}
	case IntentPricing:
		return BotReply{
			Intent:  intent,
			Text:    "Para um orçamento, deixe os seus dados no formulário de contacto ou fale com a nossa equipa.",
			Options: []string{"Falar com humano", "Ver produtos"},
		}
	case IntentLocation:
		return BotReply{
			Intent: intent,
			Text:   "Estamos no porto de Luanda, com assistência técnica no Namibe e em Benguela.",
		}
	case IntentHuman:
		return BotReply{
			Intent: intent,
			Text:   "Claro, vou chamar alguém da equipa. Aguarde um momento, por favor.",
		}
	case IntentThanks:
		return BotReply{
			Intent: intent,
			Text:   "De nada! Se precisar de mais alguma coisa, estou por aqui.",
		}
	default:
		return BotReply{
			Intent:  IntentFallback,
			Text:    "Desculpe, não percebi. Pode reformular, ou falar diretamente com a nossa equipa.",
			Options: []string{"Falar com humano", "Ver produtos", "Nossos serviços"},
		}
	}
}

func (b *BotResponder) productOptions(ctx context.Context) []string {
	categories, err := b.categories.List(ctx, domain.CategoryTypeProduct)
	if err != nil {
		b.logger.Warn("Failed to load product categories for bot options", zap.Error(err))
		return defaultProductOptions
	}
	if len(categories) == 0 {
		return defaultProductOptions
	}

	options := make([]string, 0, len(categories))
	for _, category := range categories {
		options = append(options, category.Name)
	}
	return options
}
