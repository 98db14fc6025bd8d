package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/deppfellow/storefront/internal/config"
	"github.com/deppfellow/storefront/internal/lib/chatbot"
	"github.com/deppfellow/storefront/internal/lib/whatsapp"
	"github.com/deppfellow/storefront/internal/model"
)

const chatLastMessageMax = 500

var orderStatusLabels = map[model.OrderStatus]string{
	model.OrderStatusPendingPayment: "está pendiente de pago",
	model.OrderStatusPaid:           "tiene el pago aprobado y pronto entra en preparación",
	model.OrderStatusPaymentFailed:  "tuvo un pago rechazado; puedes intentar pagar de nuevo",
	model.OrderStatusProcessing:     "se está preparando",
	model.OrderStatusShipped:        "ya fue despachado",
	model.OrderStatusDelivered:      "fue entregado",
	model.OrderStatusCancelled:      "fue cancelado",
	model.OrderStatusExpired:        "venció sin recibir el pago",
}

// ChatService answers the storefront support chatbot and hands the
// conversation off to WhatsApp when the bot cannot help.
type ChatService struct {
	sessions        ChatSessionStore
	orders          OrderStore
	kb              *chatbot.KnowledgeBase
	references      *chatbot.ReferenceFinder
	supportPhone    string
	fallbackHandoff int
	logger          *zerolog.Logger
	now             func() time.Time
}

func NewChatService(sessions ChatSessionStore, orders OrderStore, kb *chatbot.KnowledgeBase, store config.StoreConfig, logger *zerolog.Logger) *ChatService {
	return &ChatService{
		sessions:        sessions,
		orders:          orders,
		kb:              kb,
		references:      chatbot.NewReferenceFinder(store.ReferencePrefix),
		supportPhone:    store.SupportWhatsAppPhone,
		fallbackHandoff: store.ChatbotFallbackHandoff,
		logger:          logger,
		now:             time.Now,
	}
}

func (s *ChatService) session(ctx context.Context, rawID string) (*model.ChatSession, error) {
	if rawID != "" {
		id, err := uuid.Parse(rawID)
		if err == nil {
			sess, err := s.sessions.GetByID(ctx, id)
			if err == nil {
				return sess, nil
			}
			if !isNotFound(err) {
				return nil, err
			}
		}
	}
	return s.sessions.Create(ctx)
}

// Reply answers one customer message. Unknown or missing session ids start
// a new conversation.
func (s *ChatService) Reply(ctx context.Context, p *model.ChatPayload) (*model.ChatReply, error) {
	sess, err := s.session(ctx, p.SessionID)
	if err != nil {
		return nil, fmt.Errorf("load chat session: %w", err)
	}

	match := s.kb.Match(p.Message)
	reply := &model.ChatReply{
		SessionID:    sess.ID.String(),
		Reply:        match.Answer.Reply,
		Intent:       match.Intent,
		QuickReplies: match.Answer.QuickReplies,
	}

	if ref := s.references.Find(p.Message); ref != "" {
		reply.Intent = chatbot.IntentOrderStatus
		reply.Reply = s.orderStatusReply(ctx, ref)
		reply.QuickReplies = []string{"Hablar con una persona"}
		match.Handoff = false
	}

	if reply.Intent == chatbot.IntentFallback {
		sess.FallbackCount++
	} else {
		sess.FallbackCount = 0
	}
	sess.MessageCount++
	sess.LastIntent = reply.Intent
	sess.LastMessage = truncate(p.Message, chatLastMessageMax)

	if match.Handoff || (s.fallbackHandoff > 0 && sess.FallbackCount >= s.fallbackHandoff) {
		s.handoff(sess, reply, p.Message)
	}
	if reply.QuickReplies == nil {
		reply.QuickReplies = []string{}
	}

	if _, err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save chat session: %w", err)
	}

	s.logger.Debug().
		Str("session_id", reply.SessionID).
		Str("intent", reply.Intent).
		Bool("handoff", reply.HandoffURL != nil).
		Msg("chatbot replied")
	return reply, nil
}

func (s *ChatService) orderStatusReply(ctx context.Context, reference string) string {
	o, err := s.orders.GetByReference(ctx, reference)
	if err != nil {
		if !isNotFound(err) {
			s.logger.Error().Err(err).Str("reference", reference).Msg("chatbot order lookup failed")
			return "No pude consultar tu pedido en este momento. Intenta de nuevo en unos minutos."
		}
		return fmt.Sprintf("No encontré un pedido con la referencia %s. Revisa que esté bien escrita.", reference)
	}

	label, ok := orderStatusLabels[o.Status]
	if !ok {
		label = "está en estado " + string(o.Status)
	}
	msg := fmt.Sprintf("Tu pedido %s %s.", o.Reference, label)
	if o.Status == model.OrderStatusShipped && o.TrackingNumber != nil {
		msg += " Número de guía: " + *o.TrackingNumber + "."
	}
	return msg
}

// handoff links the customer to the support WhatsApp. Without a configured
// phone the bot keeps answering on its own.
func (s *ChatService) handoff(sess *model.ChatSession, reply *model.ChatReply, message string) {
	if s.supportPhone == "" {
		return
	}

	if reply.Intent == chatbot.IntentFallback {
		if human, ok := s.kb.Intent(chatbot.IntentHuman); ok {
			reply.Reply = human.Reply
			reply.QuickReplies = human.QuickReplies
		}
	}

	summary := fmt.Sprintf("Hola, vengo del chat de la tienda. Mi consulta: %s", truncate(message, 300))
	link := whatsapp.ClickToChatURL(s.supportPhone, summary)
	reply.HandoffURL = &link

	if !sess.HandedOff {
		now := s.now()
		sess.HandedOff = true
		sess.HandedOffAt = &now
	}
	sess.FallbackCount = 0
}
