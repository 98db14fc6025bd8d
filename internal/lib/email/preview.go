package email

import "time"

// PreviewData holds sample data for rendering each template locally.
var PreviewData = map[Template]any{
	TemplateWelcome: WelcomeData{Name: "Valentina", MarketingOptIn: true},
	TemplateOrderConfirmation: OrderData{
		Reference:    "ORD-d3kq8p2v9h1c5n0tg6s0",
		CustomerName: "Valentina Restrepo",
		Items: []OrderItemData{
			{Name: "Bolso Tote Café", Quantity: 1, LineTotalInCents: 45000000},
			{Name: "Clutch Fique Natural", Quantity: 2, LineTotalInCents: 36000000},
		},
		Currency:        "COP",
		SubtotalInCents: 81000000,
		ShippingInCents: 0,
		TotalInCents:    81000000,
		ShippingAddress: "Cra 43A # 1 Sur - 100",
		City:            "Medellín",
		TrackURL:        "https://example.com/pedidos/ORD-d3kq8p2v9h1c5n0tg6s0",
	},
	TemplateOrderShipped: OrderData{
		Reference:       "ORD-d3kq8p2v9h1c5n0tg6s0",
		CustomerName:    "Valentina Restrepo",
		ShippingAddress: "Cra 43A # 1 Sur - 100",
		City:            "Medellín",
		TrackingNumber:  "SERV-889201",
		TrackURL:        "https://example.com/pedidos/ORD-d3kq8p2v9h1c5n0tg6s0",
	},
	TemplateContactNotification: ContactData{
		Name:       "Camilo",
		Email:      "camilo@example.com",
		Phone:      "+57 300 000 0000",
		Subject:    "Pedido corporativo",
		Message:    "Hola,\nnecesito 30 bolsos con logo para diciembre.",
		ReceivedAt: time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC),
	},
	TemplateContactAutoReply: ContactData{Name: "Camilo", Subject: "Pedido corporativo"},
	TemplateCampaign: CampaignData{
		Subject:  "Nueva colección Andes",
		Heading:  "Llegó la colección Andes",
		Body:     "Bolsos tejidos en fique por artesanas de Boyacá.\nEdición limitada.",
		CTALabel: "Ver colección",
		CTAURL:   "https://example.com/colecciones/andes",
	},
}
