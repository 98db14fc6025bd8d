package chatbot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKnowledgeBase_Match(t *testing.T) {
	kb := Default()

	tests := []struct {
		message string
		intent  string
		handoff bool
	}{
		{message: "¿hacen envíos a Medellín?", intent: "shipping"},
		{message: "quiero hablar con una persona", intent: IntentHuman, handoff: true},
		{message: "Hola!", intent: "greeting"},
		{message: "¿Puedo pagar con Nequi o PSE?", intent: "payment"},
		{message: "¿De qué material están hechos?", intent: "materials"},
		{message: "cómo limpio una mancha en el cuero", intent: "care"},
		{message: "quiero devolver mi bolso", intent: "returns"},
		{message: "¿hacen bolsos personalizados con iniciales?", intent: "custom_orders"},
		{message: "¿cuál es el estado de mi pedido?", intent: IntentOrderStatus},
		{message: "asdf qwerty", intent: IntentFallback},
	}

	for _, tt := range tests {
		t.Run(tt.message, func(t *testing.T) {
			m := kb.Match(tt.message)
			assert.Equal(t, tt.intent, m.Intent)
			assert.Equal(t, tt.handoff, m.Handoff)
			assert.NotEmpty(t, m.Answer.Reply)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load([]byte("intents: []"))
	assert.Error(t, err)

	_, err = Load([]byte("intents:\n  - name: a\n  - name: a\n"))
	assert.ErrorContains(t, err, "duplicate")

	_, err = Load([]byte("intents: ["))
	assert.ErrorContains(t, err, "parse knowledge base")
}

func TestLoad_NormalizesKeywords(t *testing.T) {
	kb, err := Load([]byte("intents:\n  - name: shipping\n    keywords: [\"Envíos\", \"Hablar  Con\"]\n    reply: ok\n"))
	require.NoError(t, err)
	assert.Equal(t, []string{"envios", "hablar con"}, kb.Intents[0].Keywords)
	assert.Equal(t, "shipping", kb.Match("ENVIOS?").Intent)
}

func TestReferenceFinder(t *testing.T) {
	f := NewReferenceFinder("ORD")

	assert.Equal(t, "ORD-cv1h2k3l4m5n6o7p8q9r", f.Find("mi pedido es ord-CV1H2K3L4M5N6O7P8Q9R, gracias"))
	assert.Equal(t, "", f.Find("mi pedido es ORD-123"))
}
