// Package lib holds the integrations and helpers the services build on:
// Wompi payments, the Redis cache, background jobs, Resend email, WhatsApp,
// Kafka events, S3 uploads, the admin live feed, the chatbot knowledge base
// and xlsx exports.
package lib
